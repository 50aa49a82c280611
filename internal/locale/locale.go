package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

type Preference struct {
	Language string
	HTMLLang string
}

var matcher = language.NewMatcher([]language.Tag{
	language.SimplifiedChinese,
	language.English,
})

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 按 Accept-Language 的权重在中文与英文之间协商，
// 无法匹配时返回空字符串。
func LanguageFromAcceptLanguage(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(trimmed)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	if index == 1 {
		return LanguageEnglish
	}
	return LanguageChinese
}

func PreferenceForLanguage(lang string) Preference {
	if NormalizeLanguage(lang) == LanguageEnglish {
		return Preference{Language: LanguageEnglish, HTMLLang: "en-US"}
	}
	return Preference{Language: LanguageChinese, HTMLLang: "zh-CN"}
}
