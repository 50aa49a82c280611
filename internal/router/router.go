package router

import (
	"crypto/sha256"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/handler"
	"golang.org/x/crypto/hkdf"
)

const sessionName = "tagboard_session"

// Options 描述路由需要的依赖。
type Options struct {
	API           *handler.API
	SessionSecret string
	TemplateGlob  string
	Logger        logrus.FieldLogger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := gin.New()
	// 标签名中可能包含转义后的 "/"
	r.UseRawPath = true
	r.Use(gin.Recovery(), handler.RequestLogger(log))

	authKey, encryptionKey := sessionKeys(opts.SessionSecret)
	store := cookie.NewStore(authKey, encryptionKey)
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetFuncMap(templateFuncs())
	if glob := strings.TrimSpace(opts.TemplateGlob); glob != "" {
		r.LoadHTMLGlob(glob)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := opts.API
	if api == nil {
		return r
	}

	shell := r.Group("", api.LocaleMiddleware(), api.SessionMiddleware())
	{
		shell.GET("/login", api.ShowLoginPage)
		shell.POST("/login", api.Login)
		shell.POST("/register", api.Register)
		shell.POST("/logout", api.Logout)

		shell.GET("/", api.ShowBoard)
		shell.POST("/selection", api.SelectTag)
		shell.POST("/selection/remove", api.DeselectTag)
		shell.POST("/search", api.SearchForm)

		// 标签与分类的写操作需要后端会话
		editing := shell.Group("", handler.AuthRequired())
		{
			editing.POST("/tags", api.CreateTagForm)
			editing.POST("/tags/:name/rename", api.RenameTagForm)
			editing.POST("/tags/:name/delete", api.DeleteTagForm)
			editing.POST("/categories/:id/rename", api.RenameCategoryForm)
		}

		shell.GET("/entries/:id/edit", api.OpenEntry)
		shell.POST("/entries", api.SaveEntry)
		shell.POST("/entries/close", api.CloseEntry)
		shell.POST("/entries/:id/delete", api.DeleteEntry)

		jsonAPI := shell.Group("/api")
		{
			jsonAPI.GET("/auth", api.AuthStatus)
			jsonAPI.GET("/tags", api.GetTags)
			jsonAPI.GET("/categories", api.GetCategories)

			writes := jsonAPI.Group("", handler.AuthRequired())
			writes.POST("/tags", api.CreateTag)
			writes.PATCH("/tags/:name", api.RenameTag)
			writes.DELETE("/tags/:name", api.DeleteTag)
			writes.DELETE("/tags/:name/category", api.RemoveFromCategory)
			writes.PATCH("/categories/:id", api.RenameCategory)
			writes.POST("/drag", api.BeginDrag)
			writes.POST("/drop/category", api.DropOnCategory)
			writes.POST("/drop/tag", api.DropOnTag)
		}

		admin := shell.Group("/admin", handler.AdminRequired())
		{
			admin.GET("/users", api.ShowUsers)
			admin.POST("/users", api.CreateUser)
			admin.POST("/users/delete", api.DeleteUsers)
		}
	}

	return r
}

// templateFuncs 是页面模板可用的辅助函数。
// 标签名作为路径段出现在表单 action 中，必须用 pathEscape 而不是 urlquery。
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":       strings.Join,
		"pathEscape": url.PathEscape,
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// sessionKeys 从 SESSION_SECRET 派生会话 Cookie 的签名密钥与加密密钥。
func sessionKeys(secret string) ([]byte, []byte) {
	if secret == "" {
		secret = "tagboard-dev-secret"
	}
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte("tagboard session"))
	authKey := make([]byte, 32)
	encryptionKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, authKey); err != nil {
		panic(err)
	}
	if _, err := io.ReadFull(reader, encryptionKey); err != nil {
		panic(err)
	}
	return authKey, encryptionKey
}
