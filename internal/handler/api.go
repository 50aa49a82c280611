package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
	"github.com/tagboard/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	directory  *service.Directory
	tags       *service.TagService
	board      *service.BoardService
	search     *service.SearchService
	editor     *service.EditorService
	users      *service.UserService
	auth       *service.AuthService
	workspaces *service.WorkspaceStore
	log        logrus.FieldLogger

	defaultLanguage string
}

// Options 描述构造 API 所需的依赖。
type Options struct {
	Client          *backend.Client
	Directory       *service.Directory
	Limiter         service.AttemptLimiter
	Logger          logrus.FieldLogger
	DefaultLanguage string
	WorkspaceTTL    time.Duration
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	directory := opts.Directory
	if directory == nil {
		directory = service.NewDirectory(opts.Client, nil, log)
	}
	ttl := opts.WorkspaceTTL
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	validate := service.NewValidator()

	return &API{
		directory:       directory,
		tags:            service.NewTagService(opts.Client, directory, log),
		board:           service.NewBoardService(opts.Client, opts.Client, directory, log),
		search:          service.NewSearchService(opts.Client, directory, log),
		editor:          service.NewEditorService(opts.Client, validate, log),
		users:           service.NewUserService(opts.Client, validate, log),
		auth:            service.NewAuthService(opts.Client, opts.Limiter, log),
		workspaces:      service.NewWorkspaceStore(ttl),
		log:             log,
		defaultLanguage: locale.PreferenceForLanguage(opts.DefaultLanguage).Language,
	}
}

// Directory exposes the shared tag directory.
func (a *API) Directory() *service.Directory {
	return a.directory
}

// renderHTML 在模板数据中附加语言、登录用户等公共字段。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	pref := a.requestLocale(c)
	if _, exists := payload["lang"]; !exists {
		payload["lang"] = pref.Language
	}
	if _, exists := payload["htmlLang"]; !exists {
		payload["htmlLang"] = pref.HTMLLang
	}
	if _, exists := payload["languageLinks"]; !exists {
		payload["languageLinks"] = buildLanguageLinks(c)
	}
	if _, exists := payload["user"]; !exists {
		if identity, ok := currentIdentity(c); ok {
			payload["user"] = gin.H{"name": identity.Name, "role": identity.Role.String(), "isAdmin": identity.IsAdmin()}
		}
	}

	c.HTML(status, template, payload)
}
