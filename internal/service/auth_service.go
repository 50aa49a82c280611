package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
)

var (
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrTooManyAttempts     = errors.New("too many login attempts")
	ErrAccountExists       = errors.New("account already exists")
)

// AuthBackend 是登录相关的远程操作。
type AuthBackend interface {
	Login(ctx context.Context, username, password string) (backend.User, error)
	Register(ctx context.Context, username, password string) (backend.User, error)
	Logout(ctx context.Context) error
	Auth(ctx context.Context) (backend.AuthState, error)
}

// AttemptLimiter 限制同一来源的登录尝试频率。
type AttemptLimiter interface {
	Allow(key string) bool
}

// Identity 是当前登录用户在界面上的身份。
type Identity struct {
	Name string
	Role backend.Role
}

// IsAdmin reports whether the identity may manage users.
func (i Identity) IsAdmin() bool {
	return i.Role >= backend.RoleAdmin
}

// AuthService 负责登录、注册、退出以及会话探测。
// 后端会话 Cookie 通过 ctx 上的 backend.Credentials 传递。
type AuthService struct {
	auth    AuthBackend
	limiter AttemptLimiter
	log     logrus.FieldLogger
}

// NewAuthService 构造 AuthService，limiter 可以为 nil。
func NewAuthService(auth AuthBackend, limiter AttemptLimiter, log logrus.FieldLogger) *AuthService {
	return &AuthService{auth: auth, limiter: limiter, log: loggerOrDefault(log)}
}

// Login 以 key 为限流单位校验凭据。
func (s *AuthService) Login(ctx context.Context, key, username, password string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Identity{}, ErrCredentialsRequired
	}
	if s.limiter != nil && !s.limiter.Allow(key) {
		s.log.WithField("key", key).Warn("登录尝试过于频繁")
		return Identity{}, ErrTooManyAttempts
	}

	user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		// 后端对未知用户回 404，对密码错误回 400
		if errors.Is(err, backend.ErrNotFound) || errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrBadRequest) {
			return Identity{}, ErrInvalidCredentials
		}
		s.log.WithError(err).WithField("user", username).Error("登录失败")
		return Identity{}, err
	}
	s.log.WithField("user", user.Name).Info("用户登录")
	return Identity{Name: user.Name, Role: user.Role}, nil
}

// Register 注册普通用户并直接登录。
func (s *AuthService) Register(ctx context.Context, username, password string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Identity{}, ErrCredentialsRequired
	}
	user, err := s.auth.Register(ctx, username, password)
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return Identity{}, ErrAccountExists
		}
		s.log.WithError(err).WithField("user", username).Error("注册失败")
		return Identity{}, err
	}
	return Identity{Name: user.Name, Role: user.Role}, nil
}

// Logout 通知后端结束会话，无论成功与否都清除本地保存的 Cookie。
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("退出登录失败")
	}
	if creds := backend.CredentialsFrom(ctx); creds != nil {
		creds.Clear()
	}
}

// Probe 询问后端当前会话是否有效。
func (s *AuthService) Probe(ctx context.Context) (Identity, bool) {
	state, err := s.auth.Auth(ctx)
	if err != nil {
		if !errors.Is(err, backend.ErrUnauthorized) {
			s.log.WithError(err).Debug("会话探测失败")
		}
		return Identity{}, false
	}
	role, _ := backend.ParseRole(state.Role)
	return Identity{Name: state.User, Role: role}, true
}
