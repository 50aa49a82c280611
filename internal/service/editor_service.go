package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
)

// EntryInput 是编辑器表单提交的字段。
type EntryInput struct {
	URL         string
	Title       string
	Description string
	Tags        []string
}

// EditorService 管理单个网页条目的编辑流程：打开、修改、保存、关闭与删除。
type EditorService struct {
	sites    WebsiteBackend
	validate *Validator
	log      logrus.FieldLogger
}

func NewEditorService(sites WebsiteBackend, validate *Validator, log logrus.FieldLogger) *EditorService {
	if validate == nil {
		validate = NewValidator()
	}
	return &EditorService{sites: sites, validate: validate, log: loggerOrDefault(log)}
}

// Open 把结果列表中的条目载入草稿，找不到时返回 false。
func (s *EditorService) Open(ws *Workspace, id int) bool {
	site, ok := ws.findResult(id)
	if !ok {
		return false
	}
	ws.setDraft(site)
	return true
}

// Update 用表单字段覆盖草稿，保留草稿的 ID。
func (s *EditorService) Update(ws *Workspace, input EntryInput) backend.Website {
	draft := ws.Draft()
	draft.URL = strings.TrimSpace(input.URL)
	draft.Title = strings.TrimSpace(input.Title)
	draft.Description = input.Description
	draft.Tags = normalizeEntryTags(input.Tags)
	ws.setDraft(draft)
	return draft
}

// Save 提交草稿：没有 ID 时新建，有 ID 时更新。结果同时写入工作区通知。
func (s *EditorService) Save(ctx context.Context, ws *Workspace, lang string) Result {
	draft := ws.Draft()
	result := s.save(ctx, draft, lang)
	ws.SetNotice(Notice{Success: result.IsOK(), Message: result.Message(lang)})
	return result
}

func (s *EditorService) save(ctx context.Context, draft backend.Website, lang string) Result {
	if err := s.validate.Validate(draft); err != nil {
		return Failure(err.Error())
	}

	var err error
	if draft.Persisted() {
		err = s.sites.UpdateWebsite(ctx, draft)
	} else {
		err = s.sites.CreateWebsite(ctx, draft)
	}
	if err == nil {
		return Ok()
	}
	if errors.Is(err, backend.ErrConflict) {
		return Conflict(locale.Pick(lang, fmt.Sprintf("entry %s already exists", draft.URL), fmt.Sprintf("%s 已存在", draft.URL)))
	}
	s.log.WithError(err).WithField("url", draft.URL).Error("保存条目失败")
	return Failure(err.Error())
}

// Close 关闭编辑器。草稿若对应结果列表中已有的条目，则按 ID 替换它；
// 草稿随后重置为模板条目。
func (s *EditorService) Close(ws *Workspace) {
	draft := ws.Draft()
	if draft.Persisted() {
		ws.mergeResult(draft)
	}
	ws.setDraft(NewDraft())
}

// Delete 删除条目并从结果列表移除。远程删除失败只记录日志。
func (s *EditorService) Delete(ctx context.Context, ws *Workspace, id int) {
	if err := s.sites.DeleteWebsite(ctx, id); err != nil {
		s.log.WithError(err).WithField("id", id).Error("删除条目失败")
	}
	ws.removeResult(id)
	if draft := ws.Draft(); draft.ID != nil && *draft.ID == id {
		ws.setDraft(NewDraft())
	}
}

// ParseEntryTags 拆分逗号分隔的标签输入，兼容中文逗号。
func ParseEntryTags(raw string) []string {
	raw = strings.ReplaceAll(raw, "，", ",")
	return normalizeEntryTags(strings.Split(raw, ","))
}

func normalizeEntryTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = NormalizeTagName(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
