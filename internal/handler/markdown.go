package handler

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tagboard/internal/backend"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

type entryView struct {
	ID              int
	Persisted       bool
	URL             string
	Title           string
	Tags            []string
	Description     string
	DescriptionHTML template.HTML
}

func newEntryView(site backend.Website) entryView {
	view := entryView{
		Persisted:   site.Persisted(),
		URL:         site.URL,
		Title:       site.Title,
		Tags:        site.Tags,
		Description: site.Description,
	}
	if site.ID != nil {
		view.ID = *site.ID
	}
	if rendered, err := renderMarkdown(site.Description); err == nil {
		view.DescriptionHTML = rendered
	} else {
		view.DescriptionHTML = template.HTML(template.HTMLEscapeString(site.Description))
	}
	return view
}

func newEntryViews(sites []backend.Website) []entryView {
	views := make([]entryView, 0, len(sites))
	for _, site := range sites {
		views = append(views, newEntryView(site))
	}
	return views
}
