package service

import (
	"testing"
	"time"
)

func TestWorkspaceSelection(t *testing.T) {
	ws := newWorkspace("ws", time.Now())

	if !ws.Select("中文") || ws.Select("中文") {
		t.Fatal("expected second select of the same tag to be rejected")
	}
	ws.Select("搜索")
	ws.Deselect("中文")
	if got := ws.Selection(); len(got) != 1 || got[0] != "搜索" {
		t.Fatalf("unexpected selection %v", got)
	}

	ws.SetSelection([]string{"a", "b", "a", ""})
	if got := ws.Selection(); len(got) != 2 {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestWorkspaceStoreSweepsIdleWorkspaces(t *testing.T) {
	store := NewWorkspaceStore(time.Hour)
	current := time.Unix(10_000, 0)
	store.now = func() time.Time { return current }

	first := store.Get("a")
	if store.Get("a") != first {
		t.Fatal("expected the same workspace for the same id")
	}

	current = current.Add(2 * time.Hour)
	store.Get("b")

	if store.Len() != 1 {
		t.Fatalf("expected idle workspace to be swept, have %d", store.Len())
	}
}
