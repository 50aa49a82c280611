package locale

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "zh", want: LanguageChinese},
		{input: "zh-CN", want: LanguageChinese},
		{input: "ZH_hans", want: LanguageChinese},
		{input: "en", want: LanguageEnglish},
		{input: "en-US", want: LanguageEnglish},
		{input: "fr", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeLanguage(tc.input); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "zh-CN,zh;q=0.9,en;q=0.8", want: LanguageChinese},
		{input: "en-US,en;q=0.9", want: LanguageEnglish},
		{input: "en;q=0.2,zh;q=0.9", want: LanguageChinese},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := LanguageFromAcceptLanguage(tc.input); got != tc.want {
			t.Fatalf("LanguageFromAcceptLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTagExistsMessage(t *testing.T) {
	if got := TagExists("zh", "中文"); got != "中文 标签已存在" {
		t.Fatalf("unexpected chinese message %q", got)
	}
	if got := TagExists("en", "Go"); got != "tag Go already exists" {
		t.Fatalf("unexpected english message %q", got)
	}
}

func TestPreferenceForLanguage(t *testing.T) {
	if pref := PreferenceForLanguage("en-GB"); pref.HTMLLang != "en-US" {
		t.Fatalf("expected en-US, got %q", pref.HTMLLang)
	}
	if pref := PreferenceForLanguage("fr"); pref.Language != LanguageChinese {
		t.Fatalf("expected chinese fallback, got %q", pref.Language)
	}
}
