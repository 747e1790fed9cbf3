package tweepy

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
)

// Fetcher is the read side of the Mastodon client.
type Fetcher interface {
	Lookup
	VerifyCredentials(ctx context.Context) (*mastodon.Account, error)
	LookupAccount(ctx context.Context, acct string) (*mastodon.Account, error)
	AccountFollowers(ctx context.Context, id mastodon.ID, p mastodon.Page) ([]*mastodon.Account, error)
	AccountFollowing(ctx context.Context, id mastodon.ID, p mastodon.Page) ([]*mastodon.Account, error)
	Status(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	HomeTimeline(ctx context.Context, p mastodon.Page) ([]*mastodon.Status, error)
}

// Mutator is the write side of the Mastodon client.
type Mutator interface {
	Follow(ctx context.Context, id mastodon.ID, opts mastodon.FollowOptions) (*mastodon.Relationship, error)
	Unfollow(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error)
	Mute(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error)
	Unmute(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error)
	Block(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error)
	Unblock(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error)
	PostStatus(ctx context.Context, p mastodon.StatusParams) (*mastodon.Status, error)
	DeleteStatus(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	Favourite(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	Unfavourite(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	Reblog(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	Unreblog(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	PostMedia(ctx context.Context, m mastodon.MediaUpload) (*mastodon.MediaAttachment, error)
}

// Target is everything the API calls on the Mastodon side.
type Target interface {
	Fetcher
	Mutator
}

var _ Target = (*mastodon.HTTPClient)(nil)

type options struct {
	target     Target
	logger     *log.Logger
	strict     bool
	clientOpts []mastodon.Option
}

type Option func(*options)

// WithTarget replaces the HTTP client, mainly for tests.
func WithTarget(t Target) Option { return func(o *options) { o.target = t } }

func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithStrictLookups makes a missing reply target fail the call.
func WithStrictLookups() Option { return func(o *options) { o.strict = true } }

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, mastodon.WithHTTPClient(hc)) }
}

func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, mastodon.WithRateLimit(rps, burst)) }
}

func WithRetry(maxAttempts int, baseBackoff time.Duration) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, mastodon.WithRetry(maxAttempts, baseBackoff)) }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, mastodon.WithUserAgent(ua)) }
}

// API answers Tweepy v1.1 calls from a Mastodon server. Every call is
// translated on the fly; nothing is cached between calls.
type API struct {
	auth   *OAuth1UserHandler
	target Target
	conv   *Translator
	logger *log.Logger
}

// NewAPI builds an API for the server and token held by auth.
func NewAPI(auth *OAuth1UserHandler, opts ...Option) (*API, error) {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.target == nil {
		if auth == nil {
			return nil, errors.New("tweepy: auth handler is required")
		}
		o.target = mastodon.NewHTTPClient(auth.APIBaseURL(), auth, o.clientOpts...)
	}
	return &API{
		auth:   auth,
		target: o.target,
		conv:   NewTranslator(o.target, o.logger, o.strict),
		logger: o.logger,
	}, nil
}

func (a *API) Auth() *OAuth1UserHandler { return a.auth }

func (a *API) Translator() *Translator { return a.conv }

func (a *API) unsupported(method string, params []string) {
	for _, p := range params {
		a.logger.Warn("parameter not supported", "method", method, "param", p)
		metrics.IncUnimplementedParam(method, p)
	}
}

// VerifyCredentials returns the authenticated user.
func (a *API) VerifyCredentials(ctx context.Context) (*User, error) {
	acct, err := a.target.VerifyCredentials(ctx)
	if err != nil {
		return nil, notFound(err, "user", "self")
	}
	return a.conv.ConvertUser(ctx, acct, UserModeVerifyCredentials)
}

// GetUser returns the user named by q. A query with neither an id nor a
// handle is NotFound without a server call.
func (a *API) GetUser(ctx context.Context, q UserQuery) (*User, error) {
	acct, err := a.resolveAccount(ctx, q)
	if err != nil {
		return nil, err
	}
	return a.conv.ConvertUser(ctx, acct, UserModeGetUser)
}

func (a *API) resolveAccount(ctx context.Context, q UserQuery) (*mastodon.Account, error) {
	if q.UserID > 0 {
		acct, err := a.target.Account(ctx, mastodon.ID(q.UserID))
		if err != nil {
			return nil, notFound(err, "user", formatID(q.UserID))
		}
		return acct, nil
	}
	if handle := normalizeHandle(q.ScreenName); handle != "" {
		acct, err := a.target.LookupAccount(ctx, handle)
		if err != nil {
			return nil, notFound(err, "user", handle)
		}
		return acct, nil
	}
	metrics.IncNotFound("user")
	return nil, &NotFoundError{Resource: "user"}
}

// resolveAccountID avoids the account fetch when the id is given. An empty
// query means the authenticated account.
func (a *API) resolveAccountID(ctx context.Context, q UserQuery) (mastodon.ID, error) {
	if q.UserID > 0 {
		return mastodon.ID(q.UserID), nil
	}
	if normalizeHandle(q.ScreenName) != "" {
		acct, err := a.resolveAccount(ctx, q)
		if err != nil {
			return 0, err
		}
		return acct.ID, nil
	}
	me, err := a.target.VerifyCredentials(ctx)
	if err != nil {
		return 0, notFound(err, "user", "self")
	}
	return me.ID, nil
}

func normalizeHandle(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

// HomeTimeline returns the home feed newest first. ExcludeReplies is applied
// after the fetch, so fewer than Count statuses may come back.
func (a *API) HomeTimeline(ctx context.Context, p TimelineParams) ([]*Status, error) {
	a.unsupported("home_timeline", p.ignored())
	raw, err := a.target.HomeTimeline(ctx, p.page())
	if err != nil {
		return nil, err
	}
	return a.convertStatuses(ctx, raw, p.ExcludeReplies)
}

// UserTimeline returns the statuses posted by one account.
func (a *API) UserTimeline(ctx context.Context, p UserTimelineParams) ([]*Status, error) {
	a.unsupported("user_timeline", p.ignored())
	id, err := a.resolveAccountID(ctx, p.UserQuery)
	if err != nil {
		return nil, err
	}
	raw, err := a.target.AccountStatuses(ctx, id, p.page())
	if err != nil {
		return nil, notFound(err, "user", id.String())
	}
	return a.convertStatuses(ctx, raw, false)
}

func (a *API) convertStatuses(ctx context.Context, raw []*mastodon.Status, excludeReplies bool) ([]*Status, error) {
	out := make([]*Status, 0, len(raw))
	for _, st := range raw {
		if st == nil || (excludeReplies && st.InReplyToID != nil) {
			continue
		}
		s, err := a.conv.ConvertStatus(ctx, st, false)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (a *API) convertUsers(ctx context.Context, raw []*mastodon.Account) ([]*User, error) {
	out := make([]*User, 0, len(raw))
	for _, acct := range raw {
		if acct == nil {
			continue
		}
		u, err := a.conv.ConvertUser(ctx, acct, UserModePlain)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
