package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
)

// WebsiteBackend 是网页条目相关的远程操作。
type WebsiteBackend interface {
	SearchWebsites(ctx context.Context, names []string) ([]backend.Website, error)
	CreateWebsite(ctx context.Context, site backend.Website) error
	UpdateWebsite(ctx context.Context, site backend.Website) error
	DeleteWebsite(ctx context.Context, id int) error
}

// SearchService 按已选标签检索网页条目，结果写入工作区。
type SearchService struct {
	sites     WebsiteBackend
	directory TagDirectory
	log       logrus.FieldLogger
}

func NewSearchService(sites WebsiteBackend, directory TagDirectory, log logrus.FieldLogger) *SearchService {
	return &SearchService{sites: sites, directory: directory, log: loggerOrDefault(log)}
}

// Options 返回可供选择的标签，以名称为键。
func (s *SearchService) Options() map[string]backend.Tag {
	return s.directory.ByName()
}

// Search 用工作区的当前选择发起查询。
// 未选择任何标签时不发请求；查询失败时保留旧结果。
func (s *SearchService) Search(ctx context.Context, ws *Workspace, lang string) Result {
	names := SearchQuery(ws.Selection())
	if len(names) == 0 {
		return Failure(locale.SelectTagsFirst(lang))
	}

	sites, err := s.sites.SearchWebsites(ctx, names)
	if err != nil {
		s.log.WithError(err).WithField("tags", names).Error("搜索失败")
		return Failure(err.Error())
	}
	ws.ReplaceResults(sites)
	return Ok()
}

// SearchQuery 去重并排序所选标签，使同一组选择总是得到同一个请求路径。
func SearchQuery(selection []string) []string {
	seen := make(map[string]struct{}, len(selection))
	names := make([]string, 0, len(selection))
	for _, name := range selection {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
