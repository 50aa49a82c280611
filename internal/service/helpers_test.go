package service

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/backend/fakebackend"
	"github.com/tagboard/internal/db"
)

type testEnv struct {
	fake      *fakebackend.Server
	client    *backend.Client
	directory *Directory
	cache     *CacheService
	log       *logrus.Logger
	hook      *logtest.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := fakebackend.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL+fakebackend.PathPrefix, 5*time.Second)
	log, hook := logtest.NewNullLogger()
	cache := newTestCache(t)

	return &testEnv{
		fake:      fake,
		client:    client,
		directory: NewDirectory(client, cache, log),
		cache:     cache,
		log:       log,
		hook:      hook,
	}
}

func newTestCache(t *testing.T) *CacheService {
	t.Helper()

	dsn := fmt.Sprintf("file:service-cache-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewCacheService(gdb)
}

// adminContext 登录种子管理员账号并返回携带其会话的 ctx。
func (e *testEnv) adminContext(t *testing.T) context.Context {
	t.Helper()
	ctx := backend.WithCredentials(context.Background(), backend.NewCredentials(""))
	if _, err := e.client.Login(ctx, "admin", "admin"); err != nil {
		t.Fatalf("login admin: %v", err)
	}
	return ctx
}

func tagNames(tags []backend.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
