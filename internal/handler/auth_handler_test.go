package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/tagboard/internal/backend"
)

func TestLoginWrongPasswordRendersError(t *testing.T) {
	h := newShellHarness(t)

	rec := h.postForm("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	name, data := h.renderer.lastRendered()
	if name != "login.html" || data["error"] != "用户名或密码错误" {
		t.Fatalf("unexpected render %q %v", name, data["error"])
	}
}

func TestLoginProbeLogout(t *testing.T) {
	h := newShellHarness(t)
	h.login("admin", "admin")

	rec := h.get("/api/auth")
	payload := decodeBody(t, rec.Body.Bytes())
	if payload["authenticated"] != true || payload["role"] != "RoleAdmin" {
		t.Fatalf("unexpected auth payload %v", payload)
	}

	rec = h.postForm("/logout", url.Values{})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("unexpected logout response %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = h.get("/api/auth")
	if decodeBody(t, rec.Body.Bytes())["authenticated"] != false {
		t.Fatalf("expected unauthenticated after logout, got %s", rec.Body.String())
	}
}

func TestAdminPagesRequireAdminRole(t *testing.T) {
	h := newShellHarness(t)

	rec := h.get("/admin/users")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d", rec.Code)
	}

	h.fake.SeedUser("player", "pw", backend.RolePlayer)
	h.login("player", "pw")
	if rec := h.get("/admin/users"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for player, got %d", rec.Code)
	}

	h.postForm("/logout", url.Values{})
	h.login("admin", "admin")
	rec = h.get("/admin/users")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", rec.Code)
	}
	name, data := h.renderer.lastRendered()
	users, _ := data["users"].([]userView)
	if name != "users.html" || len(users) != 2 {
		t.Fatalf("unexpected render %q with %+v", name, users)
	}
}

func TestDeleteUsersReportsFailures(t *testing.T) {
	h := newShellHarness(t)
	bob := h.fake.SeedUser("bob", "pw", backend.RolePlayer)
	h.login("admin", "admin")

	rec := h.postForm("/admin/users/delete", url.Values{"ids": {bob, "missing"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	_, data := h.renderer.lastRendered()
	failed, _ := data["failed"].([]string)
	if len(failed) != 1 || failed[0] != "missing" {
		t.Fatalf("unexpected failed ids %v", failed)
	}
	if len(h.fake.Users()) != 1 {
		t.Fatalf("expected bob to be deleted, got %+v", h.fake.Users())
	}
}
