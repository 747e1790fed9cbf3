package tweepy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

// fakeTarget is an in-memory Mastodon server.
type fakeTarget struct {
	me       mastodon.ID
	accounts map[mastodon.ID]*mastodon.Account
	statuses map[mastodon.ID]*mastodon.Status
	follows  map[mastodon.ID][]mastodon.ID // account -> followers
	nextID   mastodon.ID
	calls    []string
	posted   []mastodon.StatusParams
	uploads  []mastodon.MediaUpload
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		accounts: map[mastodon.ID]*mastodon.Account{},
		statuses: map[mastodon.ID]*mastodon.Status{},
		follows:  map[mastodon.ID][]mastodon.ID{},
		nextID:   200000000000000000,
	}
}

func notFoundErr(path string) error {
	return &mastodon.APIError{StatusCode: http.StatusNotFound, Method: http.MethodGet, Path: path, Message: "Record not found"}
}

func (f *fakeTarget) record(format string, args ...any) { f.calls = append(f.calls, fmt.Sprintf(format, args...)) }

func (f *fakeTarget) countCalls(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeTarget) addAccount(a *mastodon.Account) *mastodon.Account {
	f.accounts[a.ID] = a
	return a
}

func (f *fakeTarget) addStatus(s *mastodon.Status) *mastodon.Status {
	if acct, ok := f.accounts[s.Account.ID]; ok && s.Account.Username == "" {
		s.Account = *acct
	}
	f.statuses[s.ID] = s
	return s
}

func (f *fakeTarget) newStatusID() mastodon.ID {
	f.nextID++
	return f.nextID
}

func (f *fakeTarget) VerifyCredentials(ctx context.Context) (*mastodon.Account, error) {
	f.record("verify_credentials")
	a, ok := f.accounts[f.me]
	if !ok {
		return nil, notFoundErr("/api/v1/accounts/verify_credentials")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeTarget) Account(ctx context.Context, id mastodon.ID) (*mastodon.Account, error) {
	f.record("account %d", id)
	a, ok := f.accounts[id]
	if !ok {
		return nil, notFoundErr("/api/v1/accounts/" + id.String())
	}
	cp := *a
	cp.Source = nil
	return &cp, nil
}

func (f *fakeTarget) LookupAccount(ctx context.Context, acct string) (*mastodon.Account, error) {
	f.record("lookup %s", acct)
	for _, a := range f.accounts {
		if strings.EqualFold(a.Acct, acct) {
			cp := *a
			cp.Source = nil
			return &cp, nil
		}
	}
	return nil, notFoundErr("/api/v1/accounts/lookup")
}

func (f *fakeTarget) AccountStatuses(ctx context.Context, id mastodon.ID, p mastodon.Page) ([]*mastodon.Status, error) {
	f.record("account_statuses %d limit=%d", id, p.Limit)
	if _, ok := f.accounts[id]; !ok {
		return nil, notFoundErr("/api/v1/accounts/" + id.String() + "/statuses")
	}
	var out []*mastodon.Status
	for _, s := range f.statuses {
		if s.Account.ID != id {
			continue
		}
		if p.ExcludeReplies && s.InReplyToID != nil {
			continue
		}
		if p.ExcludeReblogs && s.Reblog != nil {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (f *fakeTarget) accountList(ids []mastodon.ID) []*mastodon.Account {
	out := make([]*mastodon.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeTarget) AccountFollowers(ctx context.Context, id mastodon.ID, p mastodon.Page) ([]*mastodon.Account, error) {
	f.record("followers %d", id)
	return f.accountList(f.follows[id]), nil
}

func (f *fakeTarget) AccountFollowing(ctx context.Context, id mastodon.ID, p mastodon.Page) ([]*mastodon.Account, error) {
	f.record("following %d", id)
	var ids []mastodon.ID
	for target, followers := range f.follows {
		for _, fl := range followers {
			if fl == id {
				ids = append(ids, target)
			}
		}
	}
	return f.accountList(ids), nil
}

func (f *fakeTarget) Status(ctx context.Context, id mastodon.ID) (*mastodon.Status, error) {
	f.record("status %d", id)
	s, ok := f.statuses[id]
	if !ok {
		return nil, notFoundErr("/api/v1/statuses/" + id.String())
	}
	cp := *s
	return &cp, nil
}

func (f *fakeTarget) HomeTimeline(ctx context.Context, p mastodon.Page) ([]*mastodon.Status, error) {
	f.record("home limit=%d since=%d max=%d", p.Limit, p.SinceID, p.MaxID)
	var out []*mastodon.Status
	for _, s := range f.statuses {
		if p.SinceID > 0 && s.ID <= p.SinceID {
			continue
		}
		if p.MaxID > 0 && s.ID >= p.MaxID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (f *fakeTarget) relationship(id mastodon.ID, action string, mutate func(*mastodon.Relationship)) (*mastodon.Relationship, error) {
	f.record("%s %d", action, id)
	a, ok := f.accounts[id]
	if !ok {
		return nil, notFoundErr("/api/v1/accounts/" + id.String() + "/" + action)
	}
	rel := &mastodon.Relationship{ID: a.ID}
	mutate(rel)
	if a.Locked && rel.Following {
		rel.Following, rel.Requested = false, true
	}
	return rel, nil
}

func (f *fakeTarget) Follow(ctx context.Context, id mastodon.ID, opts mastodon.FollowOptions) (*mastodon.Relationship, error) {
	return f.relationship(id, "follow", func(r *mastodon.Relationship) {
		r.Following, r.ShowingReblogs, r.Notifying = true, true, opts.Notify
	})
}

func (f *fakeTarget) Unfollow(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error) {
	return f.relationship(id, "unfollow", func(r *mastodon.Relationship) {})
}

func (f *fakeTarget) Mute(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error) {
	return f.relationship(id, "mute", func(r *mastodon.Relationship) { r.Muting = true })
}

func (f *fakeTarget) Unmute(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error) {
	return f.relationship(id, "unmute", func(r *mastodon.Relationship) {})
}

func (f *fakeTarget) Block(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error) {
	return f.relationship(id, "block", func(r *mastodon.Relationship) { r.Blocking = true })
}

func (f *fakeTarget) Unblock(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error) {
	return f.relationship(id, "unblock", func(r *mastodon.Relationship) {})
}

func (f *fakeTarget) PostStatus(ctx context.Context, p mastodon.StatusParams) (*mastodon.Status, error) {
	f.record("post_status")
	f.posted = append(f.posted, p)
	me := f.accounts[f.me]
	s := &mastodon.Status{
		ID:         f.newStatusID(),
		Account:    *me,
		Content:    "<p>" + p.Status + "</p>",
		Visibility: "public",
	}
	if p.InReplyToID > 0 {
		parent, ok := f.statuses[p.InReplyToID]
		if !ok {
			return nil, notFoundErr("/api/v1/statuses")
		}
		replyID, replyAcct := parent.ID, parent.Account.ID
		s.InReplyToID, s.InReplyToAccountID = &replyID, &replyAcct
	}
	for _, id := range p.MediaIDs {
		s.MediaAttachments = append(s.MediaAttachments, mastodon.MediaAttachment{ID: id, Type: "image"})
	}
	f.statuses[s.ID] = s
	cp := *s
	return &cp, nil
}

func (f *fakeTarget) DeleteStatus(ctx context.Context, id mastodon.ID) (*mastodon.Status, error) {
	f.record("delete_status %d", id)
	s, ok := f.statuses[id]
	if !ok {
		return nil, notFoundErr("/api/v1/statuses/" + id.String())
	}
	delete(f.statuses, id)
	cp := *s
	text := strings.TrimSuffix(strings.TrimPrefix(s.Content, "<p>"), "</p>")
	cp.Text = &text
	return &cp, nil
}

func (f *fakeTarget) statusAction(id mastodon.ID, action string, mutate func(*mastodon.Status)) (*mastodon.Status, error) {
	f.record("%s %d", action, id)
	s, ok := f.statuses[id]
	if !ok {
		return nil, notFoundErr("/api/v1/statuses/" + id.String() + "/" + action)
	}
	mutate(s)
	cp := *s
	return &cp, nil
}

func (f *fakeTarget) Favourite(ctx context.Context, id mastodon.ID) (*mastodon.Status, error) {
	return f.statusAction(id, "favourite", func(s *mastodon.Status) {
		if !s.Favourited {
			s.Favourited = true
			s.FavouritesCount++
		}
	})
}

func (f *fakeTarget) Unfavourite(ctx context.Context, id mastodon.ID) (*mastodon.Status, error) {
	return f.statusAction(id, "unfavourite", func(s *mastodon.Status) {
		if s.Favourited {
			s.Favourited = false
			s.FavouritesCount--
		}
	})
}

func (f *fakeTarget) Reblog(ctx context.Context, id mastodon.ID) (*mastodon.Status, error) {
	orig, err := f.statusAction(id, "reblog", func(s *mastodon.Status) {
		s.Reblogged = true
		s.ReblogsCount++
	})
	if err != nil {
		return nil, err
	}
	wrapper := &mastodon.Status{ID: f.newStatusID(), Account: *f.accounts[f.me], Reblog: orig, Reblogged: true}
	f.statuses[wrapper.ID] = wrapper
	cp := *wrapper
	return &cp, nil
}

func (f *fakeTarget) Unreblog(ctx context.Context, id mastodon.ID) (*mastodon.Status, error) {
	return f.statusAction(id, "unreblog", func(s *mastodon.Status) {
		s.Reblogged = false
	})
}

func (f *fakeTarget) PostMedia(ctx context.Context, m mastodon.MediaUpload) (*mastodon.MediaAttachment, error) {
	f.record("post_media %s", m.MIMEType)
	f.uploads = append(f.uploads, m)
	u := "https://files.example/media/original/1.png"
	return &mastodon.MediaAttachment{
		ID:   500,
		Type: "image",
		URL:  &u,
		Meta: &mastodon.MediaMeta{Original: &mastodon.MediaDimensions{Width: 640, Height: 480}},
	}, nil
}

func mustAccount(t *testing.T, raw string) *mastodon.Account {
	t.Helper()
	var a mastodon.Account
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("decoding account fixture: %v", err)
	}
	return &a
}

func mustStatus(t *testing.T, raw string) *mastodon.Status {
	t.Helper()
	var s mastodon.Status
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decoding status fixture: %v", err)
	}
	return &s
}

// keysOf returns the top-level JSON keys of v.
func keysOf(t *testing.T, v any) map[string]json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}
