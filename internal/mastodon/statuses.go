package mastodon

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// StatusParams is the body of a new status. Empty fields are left to server defaults.
type StatusParams struct {
	Status      string
	InReplyToID ID
	MediaIDs    []ID
	Sensitive   bool
	SpoilerText string
	Visibility  string
	Language    string
	// IdempotencyKey defaults to a random UUID so retried posts are not duplicated.
	IdempotencyKey string
}

func (p StatusParams) form() url.Values {
	form := url.Values{}
	if p.Status != "" {
		form.Set("status", p.Status)
	}
	if p.InReplyToID > 0 {
		form.Set("in_reply_to_id", p.InReplyToID.String())
	}
	for _, id := range p.MediaIDs {
		form.Add("media_ids[]", id.String())
	}
	if p.Sensitive {
		form.Set("sensitive", "true")
	}
	if p.SpoilerText != "" {
		form.Set("spoiler_text", p.SpoilerText)
	}
	if p.Visibility != "" {
		form.Set("visibility", p.Visibility)
	}
	if p.Language != "" {
		form.Set("language", p.Language)
	}
	return form
}

func statusPath(id ID, suffix string) string {
	p := "/api/v1/statuses/" + id.String()
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func (c *HTTPClient) Status(ctx context.Context, id ID) (*Status, error) {
	var out Status
	if err := c.get(ctx, statusPath(id, ""), "statuses.get", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PostStatus(ctx context.Context, p StatusParams) (*Status, error) {
	key := p.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	var out Status
	r := request{
		method:   http.MethodPost,
		path:     "/api/v1/statuses",
		endpoint: "statuses.create",
		form:     p.form(),
		idemKey:  key,
	}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStatus returns the deleted status with its source text.
func (c *HTTPClient) DeleteStatus(ctx context.Context, id ID) (*Status, error) {
	var out Status
	r := request{method: http.MethodDelete, path: statusPath(id, ""), endpoint: "statuses.delete"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Favourite(ctx context.Context, id ID) (*Status, error) {
	return c.statusAction(ctx, id, "favourite")
}

func (c *HTTPClient) Unfavourite(ctx context.Context, id ID) (*Status, error) {
	return c.statusAction(ctx, id, "unfavourite")
}

// Reblog returns the wrapper status whose Reblog field holds the original.
func (c *HTTPClient) Reblog(ctx context.Context, id ID) (*Status, error) {
	return c.statusAction(ctx, id, "reblog")
}

func (c *HTTPClient) Unreblog(ctx context.Context, id ID) (*Status, error) {
	return c.statusAction(ctx, id, "unreblog")
}

func (c *HTTPClient) statusAction(ctx context.Context, id ID, action string) (*Status, error) {
	var out Status
	if err := c.post(ctx, statusPath(id, action), "statuses."+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HomeTimeline returns the authenticated user's home feed, newest first.
func (c *HTTPClient) HomeTimeline(ctx context.Context, p Page) ([]*Status, error) {
	var out []*Status
	p.ExcludeReplies, p.ExcludeReblogs = false, false
	if err := c.get(ctx, "/api/v1/timelines/home", "timelines.home", p.values(MaxStatusLimit), &out); err != nil {
		return nil, err
	}
	return out, nil
}
