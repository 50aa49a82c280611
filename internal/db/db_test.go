package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	gdb, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if !gdb.Migrator().HasTable(&CacheEntry{}) {
		t.Fatal("expected cache_entries table to exist")
	}

	if err := gdb.Create(&CacheEntry{Key: "tags", Value: "[]"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got CacheEntry
	if err := gdb.Where(&CacheEntry{Key: "tags"}).First(&got).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Value != "[]" {
		t.Fatalf("unexpected value %q", got.Value)
	}
}
