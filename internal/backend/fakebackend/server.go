// Package fakebackend serves the bookmark backend's REST contract from
// memory. Tests use it as the remote collaborator; the dev-backend command
// runs it for local work on the shell.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tagboard/internal/backend"
)

// PathPrefix is where the contract is mounted, matching the real backend.
const PathPrefix = "/v1"

const sessionCookie = "session"

type account struct {
	user     backend.User
	password string
}

// Server is an in-memory backend. The zero value is not usable; call New.
type Server struct {
	mu         sync.Mutex
	tags       map[string]backend.Tag
	categories []backend.Category
	sites      map[int]backend.Website
	nextSiteID int
	accounts   map[string]*account
	sessions   map[string]string
	searches   [][]string
	calls      []string

	dropFieldsOnRename bool
	fault              func(*http.Request) bool
	before             func(*http.Request)

	engine *gin.Engine
}

// New returns a server seeded like a fresh backend: four empty categories
// and an admin account (admin/admin).
func New() *Server {
	s := &Server{
		tags:     make(map[string]backend.Tag),
		sites:    make(map[int]backend.Website),
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
	}
	for i := 1; i <= 4; i++ {
		s.categories = append(s.categories, backend.Category{
			ID:   uuid.NewString(),
			Name: "Category" + strconv.Itoa(i),
		})
	}
	s.SeedUser("admin", "admin", backend.RoleAdmin)
	s.engine = s.routes()
	return s
}

// ServeHTTP lets the server back an httptest.Server directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// SetDropFieldsOnRename makes a tag rename forget Order and Category, the
// behavior of a backend that re-creates the record under the new name.
func (s *Server) SetDropFieldsOnRename(drop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropFieldsOnRename = drop
}

// SetFault installs a predicate; matching requests fail with 500.
func (s *Server) SetFault(fn func(*http.Request) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// SetBeforeHandle installs a hook run (without the server lock) before each
// request is handled.
func (s *Server) SetBeforeHandle(fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = fn
}

// Calls returns "METHOD /path" for every request seen so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Searches returns the tag-name lists received by GET /web/{tags}.
func (s *Server) Searches() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, 0, len(s.searches))
	for _, names := range s.searches {
		out = append(out, append([]string(nil), names...))
	}
	return out
}

// SeedTag stores a tag as-is.
func (s *Server) SeedTag(tag backend.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag.Name] = tag
}

// SeedSite stores an entry and returns its id.
func (s *Server) SeedSite(site backend.Website) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSiteLocked(site)
}

// SeedUser stores an account and returns its id.
func (s *Server) SeedUser(name, password string, role backend.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.accounts[id] = &account{
		user:     backend.User{ID: id, Name: name, Role: role},
		password: password,
	}
	return id
}

// Tags returns the stored tags ordered by Order, then Name.
func (s *Server) Tags() []backend.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTagsLocked()
}

// Categories returns the categories with their projected tags.
func (s *Server) Categories() []backend.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectLocked()
}

// Site returns the stored entry with id.
func (s *Server) Site(id int) (backend.Website, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	site, ok := s.sites[id]
	return site, ok
}

// Users returns the stored accounts ordered by name.
func (s *Server) Users() []backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usersLocked()
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// tag names may contain an escaped "/"
	r.UseRawPath = true
	r.Use(gin.Recovery(), s.intercept())

	v1 := r.Group(PathPrefix)
	{
		v1.POST("/register", s.handleRegister)
		v1.POST("/login", s.handleLogin)
		v1.POST("/logout", s.handleLogout)
		v1.GET("/auth", s.handleAuth)
		v1.GET("/user", s.handleListUsers)
		v1.POST("/user", s.handleAddUser)
		v1.DELETE("/user/:id", s.handleRemoveUser)

		v1.POST("/web", s.handleAddSite)
		v1.GET("/web/:tags", s.handleSearchSites)
		v1.PATCH("/web/:id", s.handlePatchSite)
		v1.DELETE("/web/:id", s.handleDeleteSite)

		v1.GET("/tag", s.handleListTags)
		v1.POST("/tag", s.requireSession(backend.RolePlayer), s.handleAddTag)
		v1.PATCH("/tag/:name", s.requireSession(backend.RolePlayer), s.handlePatchTag)
		v1.DELETE("/tag/:name", s.requireSession(backend.RoleManager), s.handleDeleteTag)

		v1.GET("/categories", s.handleListCategories)
		v1.PATCH("/categories/:id", s.handlePatchCategory)
	}
	return r
}

func (s *Server) intercept() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls = append(s.calls, c.Request.Method+" "+c.Request.URL.Path)
		before := s.before
		fault := s.fault
		s.mu.Unlock()

		if before != nil {
			before(c.Request)
		}
		if fault != nil && fault(c.Request) {
			c.String(http.StatusInternalServerError, "injected failure")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireSession(min backend.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.sessionUser(c)
		if !ok {
			c.String(http.StatusUnauthorized, "登录信息已失效")
			c.Abort()
			return
		}
		if user.Role < min {
			c.Status(http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) sessionUser(c *gin.Context) (backend.User, bool) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return backend.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[token]
	if !ok {
		return backend.User{}, false
	}
	acct, ok := s.accounts[id]
	if !ok {
		return backend.User{}, false
	}
	return acct.user, true
}

func (s *Server) sortedTagsLocked() []backend.Tag {
	tags := make([]backend.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Order != tags[j].Order {
			return tags[i].Order < tags[j].Order
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}

func (s *Server) projectLocked() []backend.Category {
	tags := s.sortedTagsLocked()
	out := make([]backend.Category, 0, len(s.categories))
	for _, category := range s.categories {
		projected := backend.Category{ID: category.ID, Name: category.Name}
		for _, tag := range tags {
			if tag.CategoryID() == category.ID {
				projected.Tags = append(projected.Tags, tag)
			}
		}
		out = append(out, projected)
	}
	return out
}

func (s *Server) usersLocked() []backend.User {
	users := make([]backend.User, 0, len(s.accounts))
	for _, acct := range s.accounts {
		users = append(users, acct.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

func (s *Server) insertSiteLocked(site backend.Website) int {
	s.nextSiteID++
	id := s.nextSiteID
	site.ID = &id
	s.sites[id] = site
	return id
}

func writeJSON(c *gin.Context, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
