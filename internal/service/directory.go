package service

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TagLister 是目录刷新时使用的数据源。
type TagLister interface {
	ListTags(ctx context.Context) ([]backend.Tag, error)
}

// TagCache 是目录的本地持久化副本。
type TagCache interface {
	LoadTags() ([]backend.Tag, bool, error)
	SaveTags(tags []backend.Tag) error
	ClearTags() error
}

// TagDirectory 是各个界面组件共享的标签目录。
type TagDirectory interface {
	GetAll() []backend.Tag
	Refresh(ctx context.Context) error
	Subscribe(fn func([]backend.Tag)) func()
	Lookup(name string) (backend.Tag, bool)
	ByName() map[string]backend.Tag
}

// DefaultTags 在后端没有任何标签时作为初始目录。
func DefaultTags() []backend.Tag {
	return []backend.Tag{{Name: "中文"}, {Name: "搜索"}}
}

type subscriber struct {
	id int
	fn func([]backend.Tag)
}

// Directory 保存全部标签的唯一副本，并在变化后通知订阅者。
type Directory struct {
	source TagLister
	cache  TagCache
	log    logrus.FieldLogger

	mu          sync.Mutex
	tags        []backend.Tag
	version     uint64
	collator    *collate.Collator
	subscribers []subscriber
	nextID      int

	// persistMu 保证缓存只会被更新的快照覆盖
	persistMu sync.Mutex
	persisted uint64
}

// NewDirectory 构造目录，cache 可以为 nil。
func NewDirectory(source TagLister, cache TagCache, log logrus.FieldLogger) *Directory {
	return &Directory{
		source:   source,
		cache:    cache,
		log:      loggerOrDefault(log),
		collator: collate.New(language.Chinese),
	}
}

// Load 先用本地缓存填充目录，再向后端刷新。
func (d *Directory) Load(ctx context.Context) error {
	if d.cache != nil {
		cached, ok, err := d.cache.LoadTags()
		if err != nil {
			d.log.WithError(err).Warn("读取标签缓存失败")
		} else if ok {
			d.replace(cached, false)
		}
	}
	return d.Refresh(ctx)
}

// Refresh 从后端拉取完整目录。后端为空时使用默认标签；
// 拉取失败时保留当前目录并返回错误。
func (d *Directory) Refresh(ctx context.Context) error {
	tags, err := d.source.ListTags(ctx)
	if err != nil {
		d.log.WithError(err).Error("获取标签失败")
		return err
	}
	if len(tags) == 0 {
		tags = DefaultTags()
	}
	d.Set(tags)
	return nil
}

// Set 整体替换目录。传入 nil 会清空目录和缓存。
func (d *Directory) Set(tags []backend.Tag) {
	d.replace(tags, true)
}

func (d *Directory) replace(tags []backend.Tag, persist bool) {
	d.mu.Lock()
	if tags == nil {
		d.tags = nil
	} else {
		next := cloneTags(tags)
		sort.SliceStable(next, func(i, j int) bool {
			if next[i].Order != next[j].Order {
				return next[i].Order < next[j].Order
			}
			return d.collator.CompareString(next[i].Name, next[j].Name) < 0
		})
		d.tags = next
	}
	d.version++
	version := d.version
	snapshot := cloneTags(d.tags)
	subs := append([]subscriber(nil), d.subscribers...)
	d.mu.Unlock()

	if persist {
		d.persist(snapshot, version)
	}
	for _, sub := range subs {
		sub.fn(cloneTags(snapshot))
	}
}

func (d *Directory) persist(tags []backend.Tag, version uint64) {
	if d.cache == nil {
		return
	}
	d.persistMu.Lock()
	defer d.persistMu.Unlock()
	if version <= d.persisted {
		return
	}
	d.persisted = version

	var err error
	if tags == nil {
		err = d.cache.ClearTags()
	} else {
		err = d.cache.SaveTags(tags)
	}
	if err != nil {
		d.log.WithError(err).Warn("写入标签缓存失败")
	}
}

// GetAll 返回目录的副本，顺序为 Order 升序、同 Order 按名称排序。
func (d *Directory) GetAll() []backend.Tag {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneTags(d.tags)
}

// Loaded reports whether the directory holds any tags yet.
func (d *Directory) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tags) > 0
}

func (d *Directory) Lookup(name string) (backend.Tag, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, tag := range d.tags {
		if tag.Name == name {
			return cloneTag(tag), true
		}
	}
	return backend.Tag{}, false
}

// ByName 返回以名称为键的目录视图，供搜索面板的选项使用。
func (d *Directory) ByName() map[string]backend.Tag {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]backend.Tag, len(d.tags))
	for _, tag := range d.tags {
		out[tag.Name] = cloneTag(tag)
	}
	return out
}

// Subscribe 注册变化回调，返回取消订阅的函数。
func (d *Directory) Subscribe(fn func([]backend.Tag)) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subscribers = append(d.subscribers, subscriber{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, sub := range d.subscribers {
			if sub.id == id {
				d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
				return
			}
		}
	}
}

// DuplicateOrders 列出被多个标签共用的 Order 值，
// 交换失败且回滚也失败时可以借此发现不一致。
func (d *Directory) DuplicateOrders() map[int][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	byOrder := make(map[int][]string)
	for _, tag := range d.tags {
		byOrder[tag.Order] = append(byOrder[tag.Order], tag.Name)
	}
	for order, names := range byOrder {
		if len(names) < 2 {
			delete(byOrder, order)
		}
	}
	return byOrder
}

func cloneTag(tag backend.Tag) backend.Tag {
	if tag.Category != nil {
		category := *tag.Category
		tag.Category = &category
	}
	return tag
}

func cloneTags(tags []backend.Tag) []backend.Tag {
	if tags == nil {
		return nil
	}
	out := make([]backend.Tag, len(tags))
	for i, tag := range tags {
		out[i] = cloneTag(tag)
	}
	return out
}
