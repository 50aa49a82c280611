package db

import "time"

// CacheEntry 是本地持久化缓存的一行，以固定的 Key 区分不同缓存内容。
// 缓存只是尽力而为的副本，随时可以被后端的成功拉取覆盖。
type CacheEntry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
