package fakebackend

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tagboard/internal/backend"
)

type authRequest struct {
	Username string
	Password string
}

func (s *Server) handleRegister(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.String(http.StatusBadRequest, "无法解析请求体")
		return
	}

	s.mu.Lock()
	for _, acct := range s.accounts {
		if acct.user.Name == req.Username {
			s.mu.Unlock()
			c.String(http.StatusConflict, "user already exists")
			return
		}
	}
	id := uuid.NewString()
	acct := &account{user: backend.User{ID: id, Name: req.Username, Role: backend.RolePlayer}, password: req.Password}
	s.accounts[id] = acct
	token := s.openSessionLocked(id)
	s.mu.Unlock()

	c.SetCookie(sessionCookie, token, 3600, "/", "", false, true)
	writeJSON(c, acct.user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "无法解析请求体")
		return
	}

	s.mu.Lock()
	var found *account
	for _, acct := range s.accounts {
		if acct.user.Name == req.Username {
			found = acct
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		c.String(http.StatusNotFound, "user not found")
		return
	}
	if found.password != req.Password {
		s.mu.Unlock()
		c.String(http.StatusBadRequest, "密码错误")
		return
	}
	token := s.openSessionLocked(found.user.ID)
	s.mu.Unlock()

	c.SetCookie(sessionCookie, token, 3600, "/", "", false, true)
	writeJSON(c, found.user)
}

func (s *Server) openSessionLocked(userID string) string {
	token := uuid.NewString()
	s.sessions[token] = userID
	return token
}

func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusOK)
}

func (s *Server) handleAuth(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "not authorized"})
		return
	}
	role := "guest"
	switch user.Role {
	case backend.RoleAdmin:
		role = "admin"
	case backend.RoleManager:
		role = "manager"
	case backend.RolePlayer:
		role = "player"
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Name, "role": role})
}

func (s *Server) handleListUsers(c *gin.Context) {
	s.mu.Lock()
	users := s.usersLocked()
	s.mu.Unlock()
	writeJSON(c, users)
}

func (s *Server) handleAddUser(c *gin.Context) {
	var payload backend.NewUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	s.SeedUser(payload.Name, payload.Password, payload.Role)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleRemoveUser(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.accounts[id]
	delete(s.accounts, id)
	for token, owner := range s.sessions {
		if owner == id {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
	if !ok {
		c.String(http.StatusInternalServerError, "delete user with ID "+id+" failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAddSite(c *gin.Context) {
	var site backend.Website
	if err := c.ShouldBindJSON(&site); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sites {
		if existing.URL == site.URL {
			c.String(http.StatusConflict, "website already exists")
			return
		}
	}
	s.insertSiteLocked(site)
	c.String(http.StatusOK, "success")
}

func (s *Server) handleSearchSites(c *gin.Context) {
	names := splitNames(c.Param("tags"))

	s.mu.Lock()
	s.searches = append(s.searches, names)
	var matches []backend.Website
	for id := 1; id <= s.nextSiteID; id++ {
		site, ok := s.sites[id]
		if !ok {
			continue
		}
		if containsAll(site.Tags, names) {
			matches = append(matches, site)
		}
	}
	s.mu.Unlock()

	writeJSON(c, matches)
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, name := range have {
		set[name] = struct{}{}
	}
	for _, name := range want {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}

func (s *Server) handlePatchSite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	var site backend.Website
	if err := c.ShouldBindJSON(&site); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sites[id]; !ok {
		c.String(http.StatusBadRequest, "website not found")
		return
	}
	site.ID = &id
	s.sites[id] = site
	c.String(http.StatusOK, "success")
}

func (s *Server) handleDeleteSite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	delete(s.sites, id)
	s.mu.Unlock()
	c.String(http.StatusOK, "success")
}

func (s *Server) handleListTags(c *gin.Context) {
	s.mu.Lock()
	tags := s.sortedTagsLocked()
	s.mu.Unlock()
	if len(tags) == 0 {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	writeJSON(c, tags)
}

func (s *Server) handleAddTag(c *gin.Context) {
	var tag backend.Tag
	if err := c.ShouldBindJSON(&tag); err != nil || tag.Name == "" {
		c.String(http.StatusBadRequest, "invalid tag")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tags[tag.Name]; exists {
		c.String(http.StatusConflict, "add Tag "+tag.Name+" failed to exec.")
		return
	}
	s.tags[tag.Name] = tag
	c.String(http.StatusOK, "success")
}

func (s *Server) handleDeleteTag(c *gin.Context) {
	name := c.Param("name")
	s.mu.Lock()
	delete(s.tags, name)
	s.mu.Unlock()
	c.String(http.StatusOK, "success")
}

func (s *Server) handlePatchTag(c *gin.Context) {
	name := c.Param("name")

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[name]
	if !ok {
		c.String(http.StatusNotFound, "tag "+name+" not found")
		return
	}

	if raw, ok := fields["Order"]; ok {
		if err := json.Unmarshal(raw, &tag.Order); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
	}
	if raw, ok := fields["Category"]; ok {
		var category *string
		if err := json.Unmarshal(raw, &category); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		tag.Category = category
	}

	newName := name
	if raw, ok := fields["Name"]; ok {
		if err := json.Unmarshal(raw, &newName); err != nil || newName == "" {
			c.String(http.StatusBadRequest, "invalid name")
			return
		}
	}
	if newName != name {
		if _, exists := s.tags[newName]; exists {
			c.String(http.StatusConflict, "tag "+newName+" already exists")
			return
		}
		delete(s.tags, name)
		if s.dropFieldsOnRename {
			tag = backend.Tag{}
		}
		tag.Name = newName
	}
	s.tags[tag.Name] = tag
	c.String(http.StatusOK, "success")
}

func (s *Server) handleListCategories(c *gin.Context) {
	s.mu.Lock()
	categories := s.projectLocked()
	s.mu.Unlock()
	writeJSON(c, categories)
}

func (s *Server) handlePatchCategory(c *gin.Context) {
	id := c.Param("id")
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			if body.Name != "" {
				s.categories[i].Name = body.Name
			}
			c.String(http.StatusOK, "success")
			return
		}
	}
	c.String(http.StatusBadRequest, "update "+id+" Category failed")
}
