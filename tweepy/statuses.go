package tweepy

import (
	"context"
	"strconv"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
)

// statusID rejects ids that cannot exist without asking the server.
func statusID(id int64) (mastodon.ID, error) {
	if id <= 0 {
		metrics.IncNotFound("status")
		return 0, &NotFoundError{Resource: "status", Key: formatID(id)}
	}
	return mastodon.ID(id), nil
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func (a *API) GetStatus(ctx context.Context, id int64, p StatusParams) (*Status, error) {
	a.unsupported("get_status", p.ignored())
	sid, err := statusID(id)
	if err != nil {
		return nil, err
	}
	st, err := a.target.Status(ctx, sid)
	if err != nil {
		return nil, notFound(err, "status", sid.String())
	}
	return a.conv.ConvertStatus(ctx, st, false)
}

// UpdateStatus posts text. Replies and media ids are passed on; everything
// else in p is logged as unsupported.
func (a *API) UpdateStatus(ctx context.Context, text string, p UpdateStatusParams) (*Status, error) {
	a.unsupported("update_status", p.ignored())
	st, err := a.target.PostStatus(ctx, p.statusParams(text))
	if err != nil {
		key := ""
		if p.InReplyToStatusID > 0 {
			key = formatID(p.InReplyToStatusID)
		}
		return nil, notFound(err, "status", key)
	}
	return a.conv.ConvertStatus(ctx, st, false)
}

func (a *API) DestroyStatus(ctx context.Context, id int64) (*Status, error) {
	return a.statusAction(ctx, id, a.target.DeleteStatus)
}

func (a *API) CreateFavorite(ctx context.Context, id int64) (*Status, error) {
	return a.statusAction(ctx, id, a.target.Favourite)
}

func (a *API) DestroyFavorite(ctx context.Context, id int64) (*Status, error) {
	return a.statusAction(ctx, id, a.target.Unfavourite)
}

// Retweet returns the new reblog; the original is in RetweetedStatus.
func (a *API) Retweet(ctx context.Context, id int64) (*Status, error) {
	return a.statusAction(ctx, id, a.target.Reblog)
}

func (a *API) Unretweet(ctx context.Context, id int64) (*Status, error) {
	return a.statusAction(ctx, id, a.target.Unreblog)
}

func (a *API) statusAction(ctx context.Context, id int64, call func(context.Context, mastodon.ID) (*mastodon.Status, error)) (*Status, error) {
	sid, err := statusID(id)
	if err != nil {
		return nil, err
	}
	st, err := call(ctx, sid)
	if err != nil {
		return nil, notFound(err, "status", sid.String())
	}
	return a.conv.ConvertStatus(ctx, st, false)
}
