package handler

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/backend/fakebackend"
)

type stubHTMLRender struct {
	mu   sync.Mutex
	last *stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	instance := &stubHTMLInstance{name: name, data: data}
	r.mu.Lock()
	r.last = instance
	r.mu.Unlock()
	return instance
}

func (r *stubHTMLRender) lastRendered() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return "", nil
	}
	data, _ := r.last.data.(gin.H)
	return r.last.name, data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type shellHarness struct {
	t        *testing.T
	fake     *fakebackend.Server
	api      *API
	engine   *gin.Engine
	renderer *stubHTMLRender
	jar      *cookiejar.Jar
	hook     *logtest.Hook
}

const sessionCookieName = "tagboard_session"

var harnessURL, _ = url.Parse("http://example.com/")

func newShellHarness(t *testing.T) *shellHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := fakebackend.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	log, hook := logtest.NewNullLogger()
	api := NewAPI(Options{
		Client:          backend.New(srv.URL+fakebackend.PathPrefix, 5*time.Second),
		Logger:          log,
		DefaultLanguage: "zh",
	})

	renderer := &stubHTMLRender{}
	engine := gin.New()
	engine.UseRawPath = true
	engine.HTMLRender = renderer
	store := cookie.NewStore([]byte("test-secret"))
	store.Options(sessions.Options{Path: "/", HttpOnly: true})
	engine.Use(sessions.Sessions(sessionCookieName, store))
	shell := engine.Group("", api.LocaleMiddleware(), api.SessionMiddleware())
	shell.GET("/", api.ShowBoard)
	shell.POST("/login", api.Login)
	shell.POST("/logout", api.Logout)
	shell.POST("/tags", api.CreateTagForm)
	shell.POST("/tags/:name/rename", api.RenameTagForm)
	shell.POST("/selection", api.SelectTag)
	shell.POST("/search", api.SearchForm)
	shell.GET("/entries/:id/edit", api.OpenEntry)
	shell.POST("/entries", api.SaveEntry)
	shell.POST("/entries/close", api.CloseEntry)
	shell.GET("/api/auth", api.AuthStatus)
	shell.GET("/api/tags", api.GetTags)
	shell.POST("/api/tags", api.CreateTag)
	shell.PATCH("/api/tags/:name", api.RenameTag)
	shell.POST("/api/drag", api.BeginDrag)
	shell.POST("/api/drop/tag", api.DropOnTag)
	shell.POST("/api/drop/category", api.DropOnCategory)
	shell.GET("/admin/users", AdminRequired(), api.ShowUsers)
	shell.POST("/admin/users/delete", AdminRequired(), api.DeleteUsers)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &shellHarness{t: t, fake: fake, api: api, engine: engine, renderer: renderer, jar: jar, hook: hook}
}

func (h *shellHarness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	for _, c := range h.jar.Cookies(harnessURL) {
		req.AddCookie(c)
	}
	recorder := httptest.NewRecorder()
	h.engine.ServeHTTP(recorder, req)
	h.jar.SetCookies(harnessURL, recorder.Result().Cookies())
	return recorder
}

func (h *shellHarness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *shellHarness) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *shellHarness) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

func (h *shellHarness) login(username, password string) {
	h.t.Helper()
	rec := h.postForm("/login", url.Values{"username": {username}, "password": {password}})
	if rec.Code != http.StatusFound {
		h.t.Fatalf("login %s: expected 302, got %d", username, rec.Code)
	}
}
