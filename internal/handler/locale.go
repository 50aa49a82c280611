package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/locale"
)

const (
	localeKey          = "tagboard.locale"
	languageCookieName = "tb_lang"
	languageCookieTTL  = 365 * 24 * 60 * 60
)

var shellLanguages = []string{locale.LanguageChinese, locale.LanguageEnglish}

// LocaleMiddleware 为每个请求确定界面语言，并写出 Content-Language。
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := a.requestLocale(c)
		c.Header("Content-Language", pref.HTMLLang)
		c.Writer.Header().Add("Vary", "Accept-Language")
		c.Next()
	}
}

func (a *API) requestLocale(c *gin.Context) locale.Preference {
	if value, ok := c.Get(localeKey); ok {
		if pref, ok := value.(locale.Preference); ok {
			return pref
		}
	}

	pref := locale.PreferenceForLanguage(a.pickLanguage(c))
	c.Set(localeKey, pref)
	return pref
}

func (a *API) language(c *gin.Context) string {
	return a.requestLocale(c).Language
}

// pickLanguage: ?lang > tb_lang cookie > Accept-Language > 默认语言。
// 显式的 ?lang 会记进 Cookie，供之后的页面沿用。
func (a *API) pickLanguage(c *gin.Context) string {
	if lang := locale.NormalizeLanguage(c.Query("lang")); lang != "" {
		rememberLanguage(c, lang)
		return lang
	}
	if raw, err := c.Cookie(languageCookieName); err == nil {
		if lang := locale.NormalizeLanguage(raw); lang != "" {
			return lang
		}
	}
	if lang := locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")); lang != "" {
		return lang
	}
	if a.defaultLanguage != "" {
		return a.defaultLanguage
	}
	return locale.LanguageChinese
}

func rememberLanguage(c *gin.Context, lang string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   languageCookieTTL,
		HttpOnly: true,
		Secure:   isHTTPS(c.Request),
		SameSite: http.SameSiteLaxMode,
	})
}

func isHTTPS(req *http.Request) bool {
	if req == nil {
		return false
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		return strings.EqualFold(strings.TrimSpace(first), "https")
	}
	return req.TLS != nil
}

// buildLanguageLinks 生成切换语言用的当前页链接，保留已有的查询参数。
func buildLanguageLinks(c *gin.Context) map[string]string {
	links := make(map[string]string, len(shellLanguages))
	if c.Request == nil || c.Request.URL == nil {
		for _, lang := range shellLanguages {
			links[lang] = "/?lang=" + lang
		}
		return links
	}

	for _, lang := range shellLanguages {
		target := *c.Request.URL
		query := target.Query()
		query.Set("lang", lang)
		target.RawQuery = query.Encode()
		links[lang] = target.RequestURI()
	}
	return links
}
