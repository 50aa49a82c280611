package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
	"golang.org/x/sync/errgroup"
)

// UserBackend 是用户管理相关的远程操作。
type UserBackend interface {
	ListUsers(ctx context.Context) ([]backend.User, error)
	CreateUser(ctx context.Context, user backend.NewUser) error
	DeleteUser(ctx context.Context, id string) error
}

// UserListing 是用户写操作之后重新拉取的列表。
type UserListing struct {
	Result Result
	Users  []backend.User
	Failed []string
}

// UserService 提供管理员的用户列表、新增与批量删除。
type UserService struct {
	users    UserBackend
	validate *Validator
	log      logrus.FieldLogger
}

func NewUserService(users UserBackend, validate *Validator, log logrus.FieldLogger) *UserService {
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{users: users, validate: validate, log: loggerOrDefault(log)}
}

// List 拉取全部用户。
func (s *UserService) List(ctx context.Context) ([]backend.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.log.WithError(err).Error("获取用户列表失败")
		return nil, err
	}
	return users, nil
}

// Create 新增用户后重新拉取列表。
func (s *UserService) Create(ctx context.Context, input backend.NewUser, lang string) UserListing {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Validate(input); err != nil {
		return s.relist(ctx, Failure(err.Error()), nil)
	}

	result := Ok()
	if err := s.users.CreateUser(ctx, input); err != nil {
		if errors.Is(err, backend.ErrConflict) {
			result = Conflict(locale.Pick(lang, "user "+input.Name+" already exists", input.Name+" 用户已存在"))
		} else {
			s.log.WithError(err).WithField("user", input.Name).Error("新增用户失败")
			result = Failure(err.Error())
		}
	}
	return s.relist(ctx, result, nil)
}

// DeleteSelected 并发删除选中的用户，等待全部请求结束后再拉取列表。
// 单个删除失败不会取消其他删除，失败的 ID 记录在 Failed 中。
func (s *UserService) DeleteSelected(ctx context.Context, ids []string) UserListing {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed []string
	)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			if err := s.users.DeleteUser(ctx, id); err != nil {
				s.log.WithError(err).WithField("user_id", id).Error("删除用户失败")
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result := Ok()
	if len(failed) > 0 {
		result = Failure("failed to delete " + strings.Join(failed, ", "))
	}
	return s.relist(ctx, result, failed)
}

func (s *UserService) relist(ctx context.Context, result Result, failed []string) UserListing {
	users, err := s.List(ctx)
	if err != nil && result.IsOK() {
		result = Failure(err.Error())
	}
	return UserListing{Result: result, Users: users, Failed: failed}
}
