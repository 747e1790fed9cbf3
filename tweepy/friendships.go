package tweepy

import (
	"context"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

type relationshipCall func(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error)

// CreateFriendship follows the user and returns it with the new relationship.
func (a *API) CreateFriendship(ctx context.Context, q UserQuery, p FriendshipParams) (*User, error) {
	return a.withRelationship(ctx, q, true, func(ctx context.Context, id mastodon.ID) (*mastodon.Relationship, error) {
		return a.target.Follow(ctx, id, mastodon.FollowOptions{Notify: p.Follow})
	})
}

func (a *API) DestroyFriendship(ctx context.Context, q UserQuery) (*User, error) {
	return a.withRelationship(ctx, q, true, a.target.Unfollow)
}

func (a *API) CreateMute(ctx context.Context, q UserQuery) (*User, error) {
	return a.withRelationship(ctx, q, false, a.target.Mute)
}

func (a *API) DestroyMute(ctx context.Context, q UserQuery) (*User, error) {
	return a.withRelationship(ctx, q, false, a.target.Unmute)
}

func (a *API) CreateBlock(ctx context.Context, q UserQuery) (*User, error) {
	return a.withRelationship(ctx, q, false, a.target.Block)
}

func (a *API) DestroyBlock(ctx context.Context, q UserQuery) (*User, error) {
	return a.withRelationship(ctx, q, false, a.target.Unblock)
}

func (a *API) withRelationship(ctx context.Context, q UserQuery, overlay bool, call relationshipCall) (*User, error) {
	u, err := a.GetUser(ctx, q)
	if err != nil {
		return nil, err
	}
	rel, err := call(ctx, mastodon.ID(u.ID))
	if err != nil {
		return nil, notFound(err, "user", u.IDStr)
	}
	if overlay && rel != nil {
		u.Following = rel.Following
		u.Notifications = rel.Notifying
		u.FollowRequestSent = rel.Requested
	}
	return u, nil
}

// GetFollowers lists accounts following the user, or the authenticated
// account when q is empty.
func (a *API) GetFollowers(ctx context.Context, q UserQuery, p CursorParams) ([]*User, error) {
	a.unsupported("get_followers", p.ignored())
	id, err := a.resolveAccountID(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := a.target.AccountFollowers(ctx, id, p.page())
	if err != nil {
		return nil, notFound(err, "user", id.String())
	}
	return a.convertUsers(ctx, raw)
}

// GetFriends lists accounts the user follows.
func (a *API) GetFriends(ctx context.Context, q UserQuery, p CursorParams) ([]*User, error) {
	a.unsupported("get_friends", p.ignored())
	id, err := a.resolveAccountID(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := a.target.AccountFollowing(ctx, id, p.page())
	if err != nil {
		return nil, notFound(err, "user", id.String())
	}
	return a.convertUsers(ctx, raw)
}
