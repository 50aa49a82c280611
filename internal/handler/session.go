package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/service"
)

const (
	sessionWorkspaceKey = "workspace_id"
	sessionBackendKey   = "backend_cookie"
	sessionUserKey      = "user_name"
	sessionRoleKey      = "user_role"

	workspaceContextKey   = "__workspace"
	credentialsContextKey = "__backend_credentials"
	requestIDHeader       = "X-Request-ID"
)

// SessionMiddleware 为每个浏览器会话分配工作区，并把保存在会话中的
// 后端 Cookie 挂到请求 ctx 上，后续的后端调用会自动带上它们。
func (a *API) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, _ := session.Get(sessionWorkspaceKey).(string)
		if id == "" {
			id = a.workspaces.NewID()
			session.Set(sessionWorkspaceKey, id)
		}
		c.Set(workspaceContextKey, a.workspaces.Get(id))

		stored, _ := session.Get(sessionBackendKey).(string)
		creds := backend.NewCredentials(stored)
		c.Set(credentialsContextKey, creds)

		// 未保存的会话改动在写出响应头之前统一保存一次
		writer := &sessionFlushWriter{ResponseWriter: c.Writer, session: session, creds: creds, log: a.log}
		c.Writer = writer

		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx := backend.WithCredentials(c.Request.Context(), creds)
		ctx = backend.WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		writer.flush()
	}
}

type sessionFlushWriter struct {
	gin.ResponseWriter
	session sessions.Session
	creds   *backend.Credentials
	log     logrus.FieldLogger
}

func (w *sessionFlushWriter) flush() {
	if w.ResponseWriter.Written() {
		return
	}
	// 后端在任意请求中轮换或清除了 Cookie
	if w.creds != nil && w.creds.Changed() {
		stored, _ := w.session.Get(sessionBackendKey).(string)
		if header := w.creds.Header(); header != stored {
			if header == "" {
				w.session.Delete(sessionBackendKey)
			} else {
				w.session.Set(sessionBackendKey, header)
			}
		}
	}
	if pending, ok := w.session.(interface{ Written() bool }); ok && !pending.Written() {
		return
	}
	if err := w.session.Save(); err != nil {
		w.log.WithError(err).Warn("保存会话失败")
	}
}

func (w *sessionFlushWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionFlushWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionFlushWriter) Write(data []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(data)
}

func (w *sessionFlushWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

// RequestLogger 以结构化字段记录每个请求。
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": c.Writer.Header().Get(requestIDHeader),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request completed with errors")
			return
		}
		entry.Info("request")
	}
}

func (a *API) workspace(c *gin.Context) *service.Workspace {
	if value, ok := c.Get(workspaceContextKey); ok {
		if ws, ok := value.(*service.Workspace); ok {
			return ws
		}
	}
	// 未经过 SessionMiddleware 的请求使用临时工作区
	ws := a.workspaces.Get(a.workspaces.NewID())
	c.Set(workspaceContextKey, ws)
	return ws
}

func requestCredentials(c *gin.Context) *backend.Credentials {
	if value, ok := c.Get(credentialsContextKey); ok {
		if creds, ok := value.(*backend.Credentials); ok {
			return creds
		}
	}
	return nil
}

// persistSession 把登录结果和最新的后端 Cookie 写回会话。
func (a *API) persistSession(c *gin.Context, identity *service.Identity) error {
	session := sessions.Default(c)
	if creds := requestCredentials(c); creds != nil {
		if creds.Empty() {
			session.Delete(sessionBackendKey)
		} else {
			session.Set(sessionBackendKey, creds.Header())
		}
	}
	if identity == nil {
		session.Delete(sessionUserKey)
		session.Delete(sessionRoleKey)
	} else {
		session.Set(sessionUserKey, identity.Name)
		session.Set(sessionRoleKey, int(identity.Role))
	}
	return session.Save()
}

func currentIdentity(c *gin.Context) (service.Identity, bool) {
	session := sessions.Default(c)
	name, _ := session.Get(sessionUserKey).(string)
	if name == "" {
		return service.Identity{}, false
	}
	role, _ := session.Get(sessionRoleKey).(int)
	return service.Identity{Name: name, Role: backend.Role(role)}, true
}

// AuthRequired 要求已登录，页面请求跳转到登录页，JSON 请求返回 401。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentIdentity(c); !ok {
			denyAccess(c, http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// AdminRequired 要求当前用户为管理员。
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			denyAccess(c, http.StatusUnauthorized)
			return
		}
		if !identity.IsAdmin() {
			denyAccess(c, http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func denyAccess(c *gin.Context, status int) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		respondError(c, status, http.StatusText(status))
		c.Abort()
		return
	}
	if status == http.StatusUnauthorized {
		c.Redirect(http.StatusFound, "/login")
	} else {
		c.String(status, http.StatusText(status))
	}
	c.Abort()
}
