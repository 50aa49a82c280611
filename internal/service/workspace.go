package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tagboard/internal/backend"
)

// Notice 是页面顶部的一次性通知。
type Notice struct {
	Success bool
	Message string
}

// NewDraft 返回编辑器的模板条目。
func NewDraft() backend.Website {
	return backend.Website{
		URL:         "http://www.baidu.com",
		Tags:        []string{"中文", "搜索"},
		Title:       "百度",
		Description: "谨防百度广告网页",
	}
}

// Workspace 保存单个浏览器会话的界面状态：已选标签、搜索结果、
// 正在拖动的标签、编辑器草稿以及待展示的通知。
type Workspace struct {
	ID string

	mu        sync.Mutex
	selection []string
	results   []backend.Website
	dragged   *backend.Tag
	draft     backend.Website
	notice    *Notice
	touched   time.Time
}

func newWorkspace(id string, now time.Time) *Workspace {
	return &Workspace{ID: id, draft: NewDraft(), touched: now}
}

// Selection 返回当前选中的标签名，保持选择的先后顺序。
func (w *Workspace) Selection() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.selection...)
}

// Select adds name to the selection; it reports false when already selected.
func (w *Workspace) Select(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.selection {
		if existing == name {
			return false
		}
	}
	w.selection = append(w.selection, name)
	return true
}

func (w *Workspace) Deselect(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.selection {
		if existing == name {
			w.selection = append(w.selection[:i], w.selection[i+1:]...)
			return
		}
	}
}

// SetSelection 用表单提交的完整选择替换当前选择，重复项只保留一次。
func (w *Workspace) SetSelection(names []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection = w.selection[:0]
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		w.selection = append(w.selection, name)
	}
}

func (w *Workspace) Results() []backend.Website {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]backend.Website(nil), w.results...)
}

// ReplaceResults 用新的搜索结果整体替换旧结果。
func (w *Workspace) ReplaceResults(sites []backend.Website) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = append([]backend.Website(nil), sites...)
}

// mergeResult 按 ID 替换结果列表中的条目；列表中没有该 ID 时不做任何事。
func (w *Workspace) mergeResult(site backend.Website) {
	if site.ID == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.results {
		if existing.ID != nil && *existing.ID == *site.ID {
			w.results[i] = site
			return
		}
	}
}

func (w *Workspace) removeResult(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.results {
		if existing.ID != nil && *existing.ID == id {
			w.results = append(w.results[:i], w.results[i+1:]...)
			return
		}
	}
}

func (w *Workspace) findResult(id int) (backend.Website, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.results {
		if existing.ID != nil && *existing.ID == id {
			return existing, true
		}
	}
	return backend.Website{}, false
}

// BeginDrag 记录正在拖动的标签。
func (w *Workspace) BeginDrag(tag backend.Tag) {
	w.mu.Lock()
	defer w.mu.Unlock()
	dragged := cloneTag(tag)
	w.dragged = &dragged
}

// Dragged returns the tag being dragged, if any.
func (w *Workspace) Dragged() (backend.Tag, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dragged == nil {
		return backend.Tag{}, false
	}
	return cloneTag(*w.dragged), true
}

// takeDragged 取出并清除拖动状态，一次拖动只能放下一次。
func (w *Workspace) takeDragged() (backend.Tag, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dragged == nil {
		return backend.Tag{}, false
	}
	tag := *w.dragged
	w.dragged = nil
	return tag, true
}

// Draft 返回编辑器当前的草稿。
func (w *Workspace) Draft() backend.Website {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneWebsite(w.draft)
}

// EditorOpen 草稿带有 ID 时编辑器处于打开状态。
func (w *Workspace) EditorOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.ID != nil
}

func (w *Workspace) setDraft(site backend.Website) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = cloneWebsite(site)
}

func (w *Workspace) SetNotice(n Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notice = &n
}

// TakeNotice 返回并清除待展示的通知，关闭通知即丢弃它。
func (w *Workspace) TakeNotice() (Notice, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.notice == nil {
		return Notice{}, false
	}
	n := *w.notice
	w.notice = nil
	return n, true
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.touched = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.touched)
}

func cloneWebsite(site backend.Website) backend.Website {
	if site.ID != nil {
		id := *site.ID
		site.ID = &id
	}
	site.Tags = append([]string(nil), site.Tags...)
	return site
}

// WorkspaceStore 按会话 ID 保存工作区，长时间未访问的工作区会被回收。
type WorkspaceStore struct {
	mu        sync.Mutex
	items     map[string]*Workspace
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewWorkspaceStore 构造 WorkspaceStore，ttl 为 0 时不回收。
func NewWorkspaceStore(ttl time.Duration) *WorkspaceStore {
	return &WorkspaceStore{
		items: make(map[string]*Workspace),
		ttl:   ttl,
		now:   time.Now,
	}
}

// NewID 生成新的工作区 ID。
func (s *WorkspaceStore) NewID() string {
	return uuid.NewString()
}

// Get 返回 id 对应的工作区，不存在时创建。
func (s *WorkspaceStore) Get(id string) *Workspace {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl > 0 && now.Sub(s.lastSweep) > time.Minute {
		s.sweepLocked(now)
		s.lastSweep = now
	}

	ws, ok := s.items[id]
	if !ok {
		ws = newWorkspace(id, now)
		s.items[id] = ws
		return ws
	}
	ws.touch(now)
	return ws
}

// Drop 删除工作区，退出登录时调用。
func (s *WorkspaceStore) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Len returns the number of live workspaces.
func (s *WorkspaceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *WorkspaceStore) sweepLocked(now time.Time) {
	for id, ws := range s.items {
		if ws.idleSince(now) > s.ttl {
			delete(s.items, id)
		}
	}
}
