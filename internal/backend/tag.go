package backend

import (
	"context"
	"encoding/json"
	"net/http"
)

// Tag 与后端的标签结构保持一致，Name 是唯一主键。
type Tag struct {
	Name     string  `json:"Name"`
	Order    int     `json:"Order"`
	Category *string `json:"Category,omitempty"`
}

// CategoryID returns the assigned category id or "".
func (t Tag) CategoryID() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// TagPatch is a partial tag update. ClearCategory sends an explicit
// "Category": null, which the backend treats as removal.
type TagPatch struct {
	Name          *string
	Order         *int
	Category      *string
	ClearCategory bool
}

// MarshalJSON emits only the fields that are set.
func (p TagPatch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 3)
	if p.Name != nil {
		body["Name"] = *p.Name
	}
	if p.Order != nil {
		body["Order"] = *p.Order
	}
	if p.ClearCategory {
		body["Category"] = nil
	} else if p.Category != nil {
		body["Category"] = *p.Category
	}
	return json.Marshal(body)
}

// ListTags fetches every tag. A "null" body yields a nil slice.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := c.request(ctx, c.endpoint("tag")).
		ToJSON(&tags).
		Fetch(ctx)
	if err != nil {
		return nil, classify("list tags", err)
	}
	return tags, nil
}

// CreateTag posts a new tag; a duplicate name wraps ErrConflict.
func (c *Client) CreateTag(ctx context.Context, tag Tag) error {
	err := c.request(ctx, c.endpoint("tag")).
		BodyJSON(tag).
		Fetch(ctx)
	return classify("create tag "+tag.Name, err)
}

// DeleteTag removes the tag with the given name.
func (c *Client) DeleteTag(ctx context.Context, name string) error {
	err := c.request(ctx, c.endpoint("tag", name)).
		Method(http.MethodDelete).
		Fetch(ctx)
	return classify("delete tag "+name, err)
}

// PatchTag applies a partial update to the tag currently named name.
func (c *Client) PatchTag(ctx context.Context, name string, patch TagPatch) error {
	err := c.request(ctx, c.endpoint("tag", name)).
		Method(http.MethodPatch).
		BodyJSON(patch).
		Fetch(ctx)
	return classify("patch tag "+name, err)
}

// MoveTag sets the tag's Order.
func (c *Client) MoveTag(ctx context.Context, name string, order int) error {
	return c.PatchTag(ctx, name, TagPatch{Order: &order})
}

// AttachTagToCategory assigns the tag to categoryID.
func (c *Client) AttachTagToCategory(ctx context.Context, name, categoryID string) error {
	return c.PatchTag(ctx, name, TagPatch{Category: &categoryID})
}

// RemoveTagFromCategory clears the tag's category.
func (c *Client) RemoveTagFromCategory(ctx context.Context, name string) error {
	return c.PatchTag(ctx, name, TagPatch{ClearCategory: true})
}
