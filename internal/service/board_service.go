package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
)

// CategoryBackend 是分类相关的远程操作。
type CategoryBackend interface {
	ListCategories(ctx context.Context) ([]backend.Category, error)
	RenameCategory(ctx context.Context, id, name string) error
}

// SwapReport 记录一次拖放交换的过程。
// 第二步失败时会把源标签移回原位，Compensated 与 CompensationFailed 反映回滚情况。
type SwapReport struct {
	Source             string
	Destination        string
	Moved              bool
	Compensated        bool
	CompensationFailed bool
}

// BoardService 管理标签看板：分类改名、拖入分类、移出分类以及标签间的拖放交换。
type BoardService struct {
	categories CategoryBackend
	tags       TagBackend
	directory  TagDirectory
	log        logrus.FieldLogger
}

// NewBoardService 构造 BoardService。
func NewBoardService(categories CategoryBackend, tags TagBackend, directory TagDirectory, log logrus.FieldLogger) *BoardService {
	return &BoardService{categories: categories, tags: tags, directory: directory, log: loggerOrDefault(log)}
}

// Categories 拉取全部分类。
func (s *BoardService) Categories(ctx context.Context) ([]backend.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		s.log.WithError(err).Error("获取分类失败")
		return nil, err
	}
	return categories, nil
}

// RenameCategory 修改分类名称，空名称直接拒绝。
func (s *BoardService) RenameCategory(ctx context.Context, id, name, lang string) Sync {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return s.skipped(Failure(locale.Pick(lang, "category name is required", "分类名称不能为空")))
	}

	result := Ok()
	if err := s.categories.RenameCategory(ctx, id, name); err != nil {
		s.log.WithError(err).WithField("category", id).Error("修改分类名称失败")
		result = Failure(err.Error())
	}
	return s.sync(ctx, result)
}

// BeginDrag 在工作区记录被拖动的标签，标签不在目录中时返回 false。
func (s *BoardService) BeginDrag(ws *Workspace, name string) bool {
	tag, ok := s.directory.Lookup(name)
	if !ok {
		return false
	}
	ws.BeginDrag(tag)
	return true
}

// DropOnCategory 把正在拖动的标签放入分类。没有拖动中的标签或目标为空时不做任何事。
func (s *BoardService) DropOnCategory(ctx context.Context, ws *Workspace, categoryID string) Sync {
	tag, ok := ws.takeDragged()
	if !ok || categoryID == "" {
		return s.skipped(Ok())
	}

	if err := s.tags.AttachTagToCategory(ctx, tag.Name, categoryID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"tag": tag.Name, "category": categoryID}).Error("标签加入分类失败")
	}
	return s.sync(ctx, Ok())
}

// RemoveFromCategory 把标签移出其所在分类。
func (s *BoardService) RemoveFromCategory(ctx context.Context, name string) Sync {
	if name == "" {
		return s.skipped(Ok())
	}
	if err := s.tags.RemoveTagFromCategory(ctx, name); err != nil {
		s.log.WithError(err).WithField("tag", name).Error("标签移出分类失败")
	}
	return s.sync(ctx, Ok())
}

// DropOnTag 交换拖动标签与目标标签的 Order。
// 两次移动不是原子的：第二步失败时尝试把源标签移回原来的 Order。
func (s *BoardService) DropOnTag(ctx context.Context, ws *Workspace, destination string) (Sync, SwapReport) {
	src, ok := ws.takeDragged()
	if !ok {
		return s.skipped(Ok()), SwapReport{Destination: destination}
	}
	report := SwapReport{Source: src.Name, Destination: destination}

	dest, ok := s.directory.Lookup(destination)
	if !ok || dest.Name == src.Name {
		return s.skipped(Ok()), report
	}

	logger := s.log.WithFields(logrus.Fields{"source": src.Name, "destination": dest.Name})

	if err := s.tags.MoveTag(ctx, src.Name, dest.Order); err != nil {
		logger.WithError(err).Error("移动源标签失败")
		return s.sync(ctx, Failure(err.Error())), report
	}

	if err := s.tags.MoveTag(ctx, dest.Name, src.Order); err != nil {
		logger.WithError(err).Error("移动目标标签失败，回滚源标签")
		report.Compensated = true
		if rollbackErr := s.tags.MoveTag(ctx, src.Name, src.Order); rollbackErr != nil {
			report.CompensationFailed = true
			logger.WithError(rollbackErr).Error("回滚源标签失败，目录中可能出现重复的 Order")
		}
		return s.sync(ctx, Failure(err.Error())), report
	}

	report.Moved = true
	return s.sync(ctx, Ok()), report
}

func (s *BoardService) skipped(result Result) Sync {
	return Sync{Result: result, Tags: s.directory.GetAll(), Skipped: true}
}

// sync 在写操作之后重新拉取标签目录与分类。
func (s *BoardService) sync(ctx context.Context, result Result) Sync {
	if err := s.directory.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("刷新标签目录失败")
	}
	out := Sync{Result: result, Tags: s.directory.GetAll()}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		s.log.WithError(err).Warn("刷新分类失败")
		return out
	}
	out.Categories = categories
	return out
}
