package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/locale"
	"github.com/tagboard/internal/service"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": locale.Pick(a.language(c), "Sign in", "登录"),
	})
}

// Login 处理登录表单。后端返回的会话 Cookie 与用户资料一起保存在会话中。
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	identity, err := a.auth.Login(c.Request.Context(), c.ClientIP(), username, c.PostForm("password"))
	if err != nil {
		a.renderLoginError(c, err, username)
		return
	}
	a.completeSignIn(c, identity, username)
}

// Register 注册并直接登录。
func (a *API) Register(c *gin.Context) {
	username := c.PostForm("username")
	identity, err := a.auth.Register(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		a.renderLoginError(c, err, username)
		return
	}
	a.completeSignIn(c, identity, username)
}

func (a *API) completeSignIn(c *gin.Context, identity service.Identity, username string) {
	if err := a.persistSession(c, &identity); err != nil {
		a.log.WithError(err).Error("保存会话失败")
		a.renderLoginError(c, err, username)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (a *API) renderLoginError(c *gin.Context, err error, username string) {
	lang := a.language(c)
	status := http.StatusInternalServerError
	message := locale.Pick(lang, "Sign in failed, please retry later", "登录失败，请稍后再试")
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		status = http.StatusBadRequest
		message = locale.Pick(lang, "Username and password are required", "请输入用户名和密码")
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = locale.Pick(lang, "Invalid username or password", "用户名或密码错误")
	case errors.Is(err, service.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
		message = locale.Pick(lang, "Too many attempts, please wait a minute", "尝试次数过多，请稍后再试")
	case errors.Is(err, service.ErrAccountExists):
		status = http.StatusConflict
		message = locale.Pick(lang, "Account already exists", "用户已存在")
	}
	a.renderHTML(c, status, "login.html", gin.H{
		"title":    locale.Pick(lang, "Sign in", "登录"),
		"error":    message,
		"username": username,
	})
}

// Logout 通知后端退出，并清除会话中的用户资料、后端 Cookie 与工作区。
func (a *API) Logout(c *gin.Context) {
	a.auth.Logout(c.Request.Context())
	if ws := a.workspace(c); ws != nil {
		a.workspaces.Drop(ws.ID)
	}
	session := sessions.Default(c)
	session.Delete(sessionWorkspaceKey)
	if err := a.persistSession(c, nil); err != nil {
		a.log.WithError(err).Warn("保存会话失败")
	}
	c.Redirect(http.StatusFound, "/login")
}

// AuthStatus 探测后端会话；后端已不认可时清除本地缓存的用户资料。
func (a *API) AuthStatus(c *gin.Context) {
	identity, ok := a.auth.Probe(c.Request.Context())
	if !ok {
		if _, cached := currentIdentity(c); cached {
			if err := a.persistSession(c, nil); err != nil {
				a.log.WithError(err).Warn("保存会话失败")
			}
		}
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          identity.Name,
		"role":          identity.Role.String(),
	})
}
