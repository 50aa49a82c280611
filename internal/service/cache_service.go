package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tagsCacheKey = "tags"

// CacheService 把最近一次成功拉取的标签目录保存在本地 SQLite 中，
// 进程重启后可以先用缓存渲染，再等待后端刷新。
type CacheService struct {
	db *gorm.DB
}

// NewCacheService 构造 CacheService。
func NewCacheService(gdb *gorm.DB) *CacheService {
	return &CacheService{db: gdb}
}

// LoadTags 读取缓存的标签，缓存不存在时 ok 为 false。
func (s *CacheService) LoadTags() ([]backend.Tag, bool, error) {
	var entry db.CacheEntry
	if err := s.db.Where(&db.CacheEntry{Key: tagsCacheKey}).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var tags []backend.Tag
	if err := json.Unmarshal([]byte(entry.Value), &tags); err != nil {
		return nil, false, fmt.Errorf("decode cached tags: %w", err)
	}
	return tags, true, nil
}

// SaveTags 覆盖写入缓存。
func (s *CacheService) SaveTags(tags []backend.Tag) error {
	payload, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	entry := db.CacheEntry{Key: tagsCacheKey, Value: string(payload)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// ClearTags 删除缓存，目录被置空时调用。
func (s *CacheService) ClearTags() error {
	return s.db.Where(&db.CacheEntry{Key: tagsCacheKey}).Delete(&db.CacheEntry{}).Error
}
