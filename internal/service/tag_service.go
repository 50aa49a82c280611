package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
	"golang.org/x/text/unicode/norm"
)

// TagBackend 是标签相关的远程操作。
type TagBackend interface {
	ListTags(ctx context.Context) ([]backend.Tag, error)
	CreateTag(ctx context.Context, tag backend.Tag) error
	DeleteTag(ctx context.Context, name string) error
	PatchTag(ctx context.Context, name string, patch backend.TagPatch) error
	MoveTag(ctx context.Context, name string, order int) error
	AttachTagToCategory(ctx context.Context, name, categoryID string) error
	RemoveTagFromCategory(ctx context.Context, name string) error
}

// TagService 负责标签的增删改，每次写入后都会刷新目录。
type TagService struct {
	backend   TagBackend
	directory TagDirectory
	log       logrus.FieldLogger
}

// RenameOutcome 描述一次改名的结果。
// DroppedFields 为 true 表示后端在改名时没有保留原有的 Order 或分类。
type RenameOutcome struct {
	Result        Result
	Tag           backend.Tag
	DroppedFields bool
}

// NewTagService creates a TagService instance.
func NewTagService(client TagBackend, directory TagDirectory, log logrus.FieldLogger) *TagService {
	return &TagService{backend: client, directory: directory, log: loggerOrDefault(log)}
}

// NormalizeTagName 去掉首尾空白并统一为 NFC 形式。
func NormalizeTagName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Create adds a tag after the current highest order. A duplicate name
// yields a Conflict carrying the localized message.
func (s *TagService) Create(ctx context.Context, name, lang string) Result {
	name = NormalizeTagName(name)
	if name == "" {
		return Failure(locale.Pick(lang, "tag name is required", "标签名称不能为空"))
	}

	tag := backend.Tag{Name: name, Order: s.nextOrder()}
	if err := s.backend.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return Conflict(locale.TagExists(lang, name))
		}
		s.log.WithError(err).WithField("tag", name).Error("创建标签失败")
		return Failure(locale.Pick(lang, fmt.Sprintf("Error adding tag %s: %v", name, err), fmt.Sprintf("添加标签 %s 失败: %v", name, err)))
	}

	s.refresh(ctx)
	return Ok()
}

// Delete 删除标签。失败只记录日志，目录总会重新拉取。
func (s *TagService) Delete(ctx context.Context, name string) Result {
	if err := s.backend.DeleteTag(ctx, name); err != nil {
		s.log.WithError(err).WithField("tag", name).Error("删除标签失败")
	}
	s.refresh(ctx)
	return Ok()
}

// Rename 修改标签名称，并在同一个请求中带上原有的 Order 与分类。
// 刷新后若发现这些字段丢失，会在结果中标记 DroppedFields。
func (s *TagService) Rename(ctx context.Context, oldName, newName, lang string) RenameOutcome {
	newName = NormalizeTagName(newName)
	if newName == "" {
		return RenameOutcome{Result: Failure(locale.Pick(lang, "tag name is required", "标签名称不能为空"))}
	}
	if newName == oldName {
		current, _ := s.directory.Lookup(oldName)
		return RenameOutcome{Result: Ok(), Tag: current}
	}

	previous, known := s.directory.Lookup(oldName)
	patch := backend.TagPatch{Name: &newName}
	if known {
		order := previous.Order
		patch.Order = &order
		if previous.Category != nil {
			category := *previous.Category
			patch.Category = &category
		}
	}

	if err := s.backend.PatchTag(ctx, oldName, patch); err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return RenameOutcome{Result: Conflict(locale.TagExists(lang, newName))}
		}
		s.log.WithError(err).WithField("tag", oldName).Error("修改标签失败")
		return RenameOutcome{Result: Failure(err.Error())}
	}

	s.refresh(ctx)

	outcome := RenameOutcome{Result: Ok()}
	renamed, ok := s.directory.Lookup(newName)
	if !ok {
		return outcome
	}
	outcome.Tag = renamed
	if known && (renamed.Order != previous.Order || renamed.CategoryID() != previous.CategoryID()) {
		outcome.DroppedFields = true
		s.log.WithFields(logrus.Fields{
			"tag":             newName,
			"order_before":    previous.Order,
			"order_after":     renamed.Order,
			"category_before": previous.CategoryID(),
			"category_after":  renamed.CategoryID(),
		}).Warn("改名后标签字段未被保留")
	}
	return outcome
}

// Tags returns the current directory snapshot.
func (s *TagService) Tags() []backend.Tag {
	return s.directory.GetAll()
}

func (s *TagService) nextOrder() int {
	tags := s.directory.GetAll()
	if len(tags) == 0 {
		return 0
	}
	highest := tags[0].Order
	for _, tag := range tags[1:] {
		if tag.Order > highest {
			highest = tag.Order
		}
	}
	return highest + 1
}

func (s *TagService) refresh(ctx context.Context) {
	if err := s.directory.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("刷新标签目录失败")
	}
}
