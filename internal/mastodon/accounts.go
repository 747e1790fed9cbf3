package mastodon

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Page carries the pagination and filter arguments shared by list endpoints.
// Zero values are left out of the query.
type Page struct {
	Limit          int
	SinceID        ID
	MaxID          ID
	MinID          ID
	ExcludeReplies bool
	ExcludeReblogs bool
}

// MaxStatusLimit is the largest page the status list endpoints return.
const MaxStatusLimit = 40

func (p Page) values(maxLimit int) url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(clamp(p.Limit, 1, maxLimit)))
	}
	if p.SinceID > 0 {
		q.Set("since_id", p.SinceID.String())
	}
	if p.MaxID > 0 {
		q.Set("max_id", p.MaxID.String())
	}
	if p.MinID > 0 {
		q.Set("min_id", p.MinID.String())
	}
	if p.ExcludeReplies {
		q.Set("exclude_replies", "true")
	}
	if p.ExcludeReblogs {
		q.Set("exclude_reblogs", "true")
	}
	return q
}

// FollowOptions are the optional arguments of a follow request.
type FollowOptions struct {
	Notify  bool
	Reblogs *bool
}

func accountPath(id ID, suffix string) string {
	p := "/api/v1/accounts/" + id.String()
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// VerifyCredentials returns the authenticated account including Source.
func (c *HTTPClient) VerifyCredentials(ctx context.Context) (*Account, error) {
	var out Account
	if err := c.get(ctx, "/api/v1/accounts/verify_credentials", "accounts.verify_credentials", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Account(ctx context.Context, id ID) (*Account, error) {
	var out Account
	if err := c.get(ctx, accountPath(id, ""), "accounts.get", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupAccount resolves a webfinger address (user or user@domain).
func (c *HTTPClient) LookupAccount(ctx context.Context, acct string) (*Account, error) {
	acct = strings.TrimPrefix(strings.TrimSpace(acct), "@")
	if acct == "" {
		return nil, errors.New("empty acct")
	}
	var out Account
	q := url.Values{"acct": {acct}}
	if err := c.get(ctx, "/api/v1/accounts/lookup", "accounts.lookup", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AccountStatuses(ctx context.Context, id ID, p Page) ([]*Status, error) {
	var out []*Status
	if err := c.get(ctx, accountPath(id, "statuses"), "accounts.statuses", p.values(MaxStatusLimit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AccountFollowers(ctx context.Context, id ID, p Page) ([]*Account, error) {
	var out []*Account
	if err := c.get(ctx, accountPath(id, "followers"), "accounts.followers", p.values(80), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AccountFollowing(ctx context.Context, id ID, p Page) ([]*Account, error) {
	var out []*Account
	if err := c.get(ctx, accountPath(id, "following"), "accounts.following", p.values(80), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Follow(ctx context.Context, id ID, opts FollowOptions) (*Relationship, error) {
	form := url.Values{}
	if opts.Notify {
		form.Set("notify", "true")
	}
	if opts.Reblogs != nil {
		form.Set("reblogs", strconv.FormatBool(*opts.Reblogs))
	}
	return c.relationship(ctx, id, "follow", form)
}

func (c *HTTPClient) Unfollow(ctx context.Context, id ID) (*Relationship, error) {
	return c.relationship(ctx, id, "unfollow", nil)
}

func (c *HTTPClient) Mute(ctx context.Context, id ID) (*Relationship, error) {
	return c.relationship(ctx, id, "mute", nil)
}

func (c *HTTPClient) Unmute(ctx context.Context, id ID) (*Relationship, error) {
	return c.relationship(ctx, id, "unmute", nil)
}

func (c *HTTPClient) Block(ctx context.Context, id ID) (*Relationship, error) {
	return c.relationship(ctx, id, "block", nil)
}

func (c *HTTPClient) Unblock(ctx context.Context, id ID) (*Relationship, error) {
	return c.relationship(ctx, id, "unblock", nil)
}

func (c *HTTPClient) relationship(ctx context.Context, id ID, action string, form url.Values) (*Relationship, error) {
	var out Relationship
	if err := c.post(ctx, accountPath(id, action), "accounts."+action, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
