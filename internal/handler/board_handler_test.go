package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/service"
)

func TestShowBoardSeedsDefaultTags(t *testing.T) {
	h := newShellHarness(t)

	rec := h.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	name, data := h.renderer.lastRendered()
	if name != "index.html" {
		t.Fatalf("expected index.html, got %q", name)
	}
	tags, _ := data["tags"].([]tagView)
	if len(tags) != 2 {
		t.Fatalf("expected the two default tags, got %+v", tags)
	}
	if data["canSearch"] != false {
		t.Fatal("expected search to be disabled without a selection")
	}
}

func TestSearchFormStoresResults(t *testing.T) {
	h := newShellHarness(t)
	h.fake.SeedSite(backend.Website{URL: "http://www.baidu.com", Title: "百度", Tags: []string{"中文", "搜索"}, Description: "**谨防**百度广告网页"})

	rec := h.postForm("/search", url.Values{"tags": {"中文", "搜索"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}

	h.get("/")
	_, data := h.renderer.lastRendered()
	results, _ := data["results"].([]entryView)
	if len(results) != 1 || results[0].Title != "百度" {
		t.Fatalf("unexpected results %+v", results)
	}
	if !strings.Contains(string(results[0].DescriptionHTML), "<strong>谨防</strong>") {
		t.Fatalf("expected rendered markdown, got %q", results[0].DescriptionHTML)
	}
	if searches := h.fake.Searches(); len(searches) != 1 || len(searches[0]) != 2 {
		t.Fatalf("unexpected backend searches %v", searches)
	}
}

func TestSearchFormWithoutSelectionShowsPrompt(t *testing.T) {
	h := newShellHarness(t)

	h.postForm("/search", url.Values{})
	h.get("/")

	_, data := h.renderer.lastRendered()
	notice, ok := data["notice"].(service.Notice)
	if !ok || notice.Message != "请选择要搜索的tag" {
		t.Fatalf("unexpected notice %+v", data["notice"])
	}
	if len(h.fake.Searches()) != 0 {
		t.Fatal("expected no backend search")
	}
}

func TestSearchFormWithEverythingUncheckedClearsSelection(t *testing.T) {
	h := newShellHarness(t)
	h.fake.SeedTag(backend.Tag{Name: "Go", Order: 1})
	h.fake.SeedSite(backend.Website{URL: "https://go.dev", Title: "Go", Tags: []string{"Go"}})

	h.postForm("/search", url.Values{"tags": {"Go"}})
	h.postForm("/search", url.Values{})
	h.get("/")

	_, data := h.renderer.lastRendered()
	if selection, _ := data["selection"].([]string); len(selection) != 0 {
		t.Fatalf("expected selection to be cleared, got %v", selection)
	}
	if data["canSearch"] != false {
		t.Fatal("expected search to be disabled")
	}
	notice, _ := data["notice"].(service.Notice)
	if notice.Message != "请选择要搜索的tag" {
		t.Fatalf("unexpected notice %+v", data["notice"])
	}
	if searches := h.fake.Searches(); len(searches) != 1 {
		t.Fatalf("expected only the first search to reach the backend, got %v", searches)
	}
}

func TestRenameTagFormWithFailedRefreshKeepsSelectionClean(t *testing.T) {
	h := newShellHarness(t)
	h.fake.SeedTag(backend.Tag{Name: "Go", Order: 1})
	h.login("admin", "admin")
	h.get("/")
	h.postForm("/selection", url.Values{"name": {"Go"}})

	h.fake.SetFault(func(r *http.Request) bool {
		return r.Method == http.MethodGet && r.URL.Path == "/v1/tag"
	})
	h.postForm("/tags/Go/rename", url.Values{"name": {"Golang"}})
	h.get("/")

	_, data := h.renderer.lastRendered()
	selection, _ := data["selection"].([]string)
	for _, name := range selection {
		if name == "" || name == "Go" {
			t.Fatalf("unexpected selection %q", selection)
		}
	}
}

func TestCreateTagFormConflictBecomesNotice(t *testing.T) {
	h := newShellHarness(t)
	h.fake.SeedTag(backend.Tag{Name: "中文"})
	h.login("admin", "admin")

	h.postForm("/tags", url.Values{"name": {"中文"}})
	h.get("/")

	_, data := h.renderer.lastRendered()
	notice, _ := data["notice"].(service.Notice)
	if notice.Message != "中文 标签已存在" {
		t.Fatalf("unexpected notice %+v", notice)
	}
}

func TestSaveEntryShowsSuccessNoticeOnce(t *testing.T) {
	h := newShellHarness(t)

	rec := h.postForm("/entries", url.Values{
		"url":   {"https://go.dev"},
		"title": {"Go"},
		"tags":  {"Go，中文"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}

	h.get("/")
	_, data := h.renderer.lastRendered()
	notice, ok := data["notice"].(service.Notice)
	if !ok || !notice.Success || notice.Message != "成功！" {
		t.Fatalf("unexpected notice %+v", data["notice"])
	}

	h.get("/")
	_, data = h.renderer.lastRendered()
	if _, ok := data["notice"]; ok {
		t.Fatal("expected notice to be shown only once")
	}
	site, ok := h.fake.Site(1)
	if !ok || len(site.Tags) != 2 {
		t.Fatalf("unexpected stored site %+v", site)
	}
}

func TestOpenAndCloseEntry(t *testing.T) {
	h := newShellHarness(t)
	h.fake.SeedSite(backend.Website{URL: "https://go.dev", Title: "Go", Tags: []string{"中文"}})
	h.postForm("/search", url.Values{"tags": {"中文"}})

	h.get("/entries/1/edit")
	h.get("/")
	_, data := h.renderer.lastRendered()
	if data["editorOpen"] != true {
		t.Fatal("expected editor to be open")
	}

	h.postForm("/entries/close", url.Values{})
	h.get("/")
	_, data = h.renderer.lastRendered()
	if data["editorOpen"] != false {
		t.Fatal("expected editor to be closed")
	}
	if draft, _ := data["draft"].(entryView); draft.Title != "百度" {
		t.Fatalf("expected template draft, got %+v", draft)
	}
}

func TestLocaleQueryPersistsCookie(t *testing.T) {
	h := newShellHarness(t)

	rec := h.get("/?lang=en")
	if got := rec.Header().Get("Content-Language"); got != "en-US" {
		t.Fatalf("expected Content-Language en-US, got %q", got)
	}
	if !strings.Contains(strings.Join(rec.Header().Values("Set-Cookie"), ";"), languageCookieName+"=en") {
		t.Fatalf("expected language cookie, got %v", rec.Header().Values("Set-Cookie"))
	}

	h.get("/")
	_, data := h.renderer.lastRendered()
	if data["lang"] != "en" {
		t.Fatalf("expected remembered english, got %v", data["lang"])
	}
}
