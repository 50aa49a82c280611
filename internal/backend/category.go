package backend

import (
	"context"
	"net/http"
)

// Category groups tags. Tags is computed by the backend from each tag's
// Category field and is read-only on the client.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags []Tag  `json:"tags,omitempty"`
}

// ListCategories fetches every category with its projected tags.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := c.request(ctx, c.endpoint("categories")).
		ToJSON(&categories).
		Fetch(ctx)
	if err != nil {
		return nil, classify("list categories", err)
	}
	return categories, nil
}

// RenameCategory patches the category name.
func (c *Client) RenameCategory(ctx context.Context, id, name string) error {
	err := c.request(ctx, c.endpoint("categories", id)).
		Method(http.MethodPatch).
		BodyJSON(map[string]string{"name": name}).
		Fetch(ctx)
	return classify("rename category "+id, err)
}
