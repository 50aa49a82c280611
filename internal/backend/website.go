package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Website is a bookmarked entry. A nil ID means the entry was never saved.
type Website struct {
	ID          *int     `json:"ID,omitempty"`
	URL         string   `json:"URL" validate:"required,url"`
	Tags        []string `json:"Tags"`
	Title       string   `json:"Title" validate:"required"`
	Description string   `json:"Description"`
}

// Persisted reports whether the entry has a backend identifier.
func (w Website) Persisted() bool {
	return w.ID != nil
}

// SearchWebsites asks the backend for entries matching every name. Names are
// escaped one by one and comma joined, the shape GET /web/{tags} expects.
func (c *Client) SearchWebsites(ctx context.Context, names []string) ([]Website, error) {
	escaped := make([]string, 0, len(names))
	for _, name := range names {
		escaped = append(escaped, url.PathEscape(name))
	}
	endpoint := c.baseURL + "/web/" + strings.Join(escaped, ",")

	var sites []Website
	err := c.request(ctx, endpoint).
		ToJSON(&sites).
		Fetch(ctx)
	if err != nil {
		return nil, classify("search websites", err)
	}
	return sites, nil
}

// CreateWebsite posts a new entry; a duplicate wraps ErrConflict.
func (c *Client) CreateWebsite(ctx context.Context, site Website) error {
	err := c.request(ctx, c.endpoint("web")).
		BodyJSON(site).
		Fetch(ctx)
	return classify("create website "+site.URL, err)
}

// UpdateWebsite patches a persisted entry.
func (c *Client) UpdateWebsite(ctx context.Context, site Website) error {
	if site.ID == nil {
		return classify("update website", ErrNotFound)
	}
	id := strconv.Itoa(*site.ID)
	err := c.request(ctx, c.endpoint("web", id)).
		Method(http.MethodPatch).
		BodyJSON(site).
		Fetch(ctx)
	return classify("update website "+id, err)
}

// DeleteWebsite removes the entry with id.
func (c *Client) DeleteWebsite(ctx context.Context, id int) error {
	raw := strconv.Itoa(id)
	err := c.request(ctx, c.endpoint("web", raw)).
		Method(http.MethodDelete).
		Fetch(ctx)
	return classify("delete website "+raw, err)
}
