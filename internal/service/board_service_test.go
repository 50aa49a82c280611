package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tagboard/internal/backend"
)

func newBoardEnv(t *testing.T) (*testEnv, *BoardService, context.Context) {
	t.Helper()
	env := newTestEnv(t)
	env.fake.SeedTag(backend.Tag{Name: "Go", Order: 1})
	env.fake.SeedTag(backend.Tag{Name: "Rust", Order: 2})
	ctx := env.adminContext(t)
	if err := env.directory.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return env, NewBoardService(env.client, env.client, env.directory, env.log), ctx
}

func TestBoardDropOnTagSwapsOrders(t *testing.T) {
	_, svc, ctx := newBoardEnv(t)
	ws := newWorkspace("ws", time.Now())

	if !svc.BeginDrag(ws, "Go") {
		t.Fatal("expected drag to start")
	}
	sync, report := svc.DropOnTag(ctx, ws, "Rust")

	if !sync.Result.IsOK() || !report.Moved {
		t.Fatalf("unexpected swap result %+v %+v", sync.Result, report)
	}
	got := tagNames(sync.Tags)
	if len(got) != 2 || got[0] != "Rust" || got[1] != "Go" {
		t.Fatalf("expected swapped order, got %v", got)
	}
	if len(sync.Categories) != 4 {
		t.Fatalf("expected categories to be refetched, got %d", len(sync.Categories))
	}
	if _, ok := ws.Dragged(); ok {
		t.Fatal("expected drag state to be cleared")
	}
}

func TestBoardDropOnTagCompensatesWhenSecondMoveFails(t *testing.T) {
	env, svc, ctx := newBoardEnv(t)
	env.fake.SetFault(func(r *http.Request) bool {
		return r.Method == http.MethodPatch && r.URL.Path == "/v1/tag/Rust"
	})
	ws := newWorkspace("ws", time.Now())
	svc.BeginDrag(ws, "Go")

	sync, report := svc.DropOnTag(ctx, ws, "Rust")

	if sync.Result.Kind != ResultFailure {
		t.Fatalf("expected failure, got %+v", sync.Result)
	}
	if !report.Compensated || report.CompensationFailed {
		t.Fatalf("expected successful compensation, got %+v", report)
	}
	if dups := env.directory.DuplicateOrders(); len(dups) != 0 {
		t.Fatalf("expected no duplicate orders after rollback, got %v", dups)
	}
	goTag, _ := env.directory.Lookup("Go")
	if goTag.Order != 1 {
		t.Fatalf("expected Go back at order 1, got %d", goTag.Order)
	}
}

func TestBoardDropOnTagReportsFailedCompensation(t *testing.T) {
	env, svc, ctx := newBoardEnv(t)
	var patches atomic.Int32
	env.fake.SetFault(func(r *http.Request) bool {
		if r.Method != http.MethodPatch {
			return false
		}
		return patches.Add(1) > 1
	})
	ws := newWorkspace("ws", time.Now())
	svc.BeginDrag(ws, "Go")

	_, report := svc.DropOnTag(ctx, ws, "Rust")

	if !report.CompensationFailed {
		t.Fatalf("expected failed compensation, got %+v", report)
	}
	if dups := env.directory.DuplicateOrders(); len(dups[2]) != 2 {
		t.Fatalf("expected duplicate order 2 to be detectable, got %v", dups)
	}
}

func TestBoardDropWithoutDragIsNoop(t *testing.T) {
	env, svc, ctx := newBoardEnv(t)
	before := len(env.fake.Calls())
	ws := newWorkspace("ws", time.Now())

	sync := svc.DropOnCategory(ctx, ws, env.fake.Categories()[0].ID)
	if !sync.Skipped {
		t.Fatal("expected drop without drag to be skipped")
	}
	swap, _ := svc.DropOnTag(ctx, ws, "Rust")
	if !swap.Skipped {
		t.Fatal("expected tag drop without drag to be skipped")
	}
	if after := len(env.fake.Calls()); after != before {
		t.Fatalf("expected no backend calls, got %d new", after-before)
	}
}

func TestBoardDropOnCategoryAndRemove(t *testing.T) {
	env, svc, ctx := newBoardEnv(t)
	categoryID := env.fake.Categories()[1].ID
	ws := newWorkspace("ws", time.Now())

	svc.BeginDrag(ws, "Go")
	sync := svc.DropOnCategory(ctx, ws, categoryID)
	if sync.Skipped {
		t.Fatal("expected drop to reach the backend")
	}
	var projected []string
	for _, category := range sync.Categories {
		if category.ID == categoryID {
			projected = tagNames(category.Tags)
		}
	}
	if len(projected) != 1 || projected[0] != "Go" {
		t.Fatalf("expected Go under the category, got %v", projected)
	}

	sync = svc.RemoveFromCategory(ctx, "Go")
	goTag, _ := env.directory.Lookup("Go")
	if goTag.Category != nil {
		t.Fatalf("expected category to be cleared, got %q", goTag.CategoryID())
	}
	for _, category := range sync.Categories {
		if category.ID == categoryID && len(category.Tags) != 0 {
			t.Fatalf("expected category to be empty, got %v", tagNames(category.Tags))
		}
	}
}

func TestBoardRenameCategory(t *testing.T) {
	env, svc, ctx := newBoardEnv(t)
	categoryID := env.fake.Categories()[0].ID

	sync := svc.RenameCategory(ctx, categoryID, "  常用  ", "zh")
	if !sync.Result.IsOK() {
		t.Fatalf("rename category: %+v", sync.Result)
	}
	found := false
	for _, category := range sync.Categories {
		if category.ID == categoryID && category.Name == "常用" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected renamed category in %+v", sync.Categories)
	}

	blank := svc.RenameCategory(ctx, categoryID, " ", "zh")
	if blank.Result.Kind != ResultFailure || !blank.Skipped {
		t.Fatalf("expected blank name to be rejected, got %+v", blank)
	}
}
