package tweepy

import (
	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

const defaultTimelineCount = 20

// UserQuery identifies a user by id or by handle; the id wins when both are set.
type UserQuery struct {
	UserID     int64
	ScreenName string
}

// TimelineParams are the home_timeline arguments.
type TimelineParams struct {
	Count           int
	SinceID         int64
	MaxID           int64
	ExcludeReplies  bool
	TrimUser        bool
	IncludeEntities *bool
}

func (p TimelineParams) page() mastodon.Page {
	count := p.Count
	if count <= 0 {
		count = defaultTimelineCount
	}
	return mastodon.Page{Limit: count, SinceID: mastodon.ID(p.SinceID), MaxID: mastodon.ID(p.MaxID)}
}

func (p TimelineParams) ignored() []string {
	var out []string
	if p.TrimUser {
		out = append(out, "trim_user")
	}
	if p.IncludeEntities != nil {
		out = append(out, "include_entities")
	}
	return out
}

// UserTimelineParams are the user_timeline arguments. With no user set the
// authenticated account is used.
type UserTimelineParams struct {
	UserQuery
	Count          int
	SinceID        int64
	MaxID          int64
	ExcludeReplies bool
	IncludeRts     *bool
	TrimUser       bool
}

func (p UserTimelineParams) page() mastodon.Page {
	count := p.Count
	if count <= 0 {
		count = defaultTimelineCount
	}
	return mastodon.Page{
		Limit:          count,
		SinceID:        mastodon.ID(p.SinceID),
		MaxID:          mastodon.ID(p.MaxID),
		ExcludeReplies: p.ExcludeReplies,
		ExcludeReblogs: p.IncludeRts != nil && !*p.IncludeRts,
	}
}

func (p UserTimelineParams) ignored() []string {
	if p.TrimUser {
		return []string{"trim_user"}
	}
	return nil
}

// StatusParams are the get_status arguments. None has a Mastodon counterpart.
type StatusParams struct {
	TrimUser          bool
	IncludeMyRetweet  bool
	IncludeEntities   *bool
	IncludeExtAltText bool
	IncludeCardURI    bool
}

func (p StatusParams) ignored() []string {
	var out []string
	if p.TrimUser {
		out = append(out, "trim_user")
	}
	if p.IncludeMyRetweet {
		out = append(out, "include_my_retweet")
	}
	if p.IncludeEntities != nil {
		out = append(out, "include_entities")
	}
	if p.IncludeExtAltText {
		out = append(out, "include_ext_alt_text")
	}
	if p.IncludeCardURI {
		out = append(out, "include_card_uri")
	}
	return out
}

// UpdateStatusParams are the update_status arguments. Only the reply target
// and the media ids reach the server.
type UpdateStatusParams struct {
	InReplyToStatusID         int64
	MediaIDs                  []int64
	AutoPopulateReplyMetadata bool
	ExcludeReplyUserIDs       []int64
	AttachmentURL             string
	Lat                       *float64
	Long                      *float64
	PlaceID                   string
	DisplayCoordinates        bool
	TrimUser                  bool
	CardURI                   string
	PossiblySensitive         bool
	EnableDMCommands          bool
	FailDMCommands            bool
}

func (p UpdateStatusParams) ignored() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(p.AutoPopulateReplyMetadata, "auto_populate_reply_metadata")
	add(len(p.ExcludeReplyUserIDs) > 0, "exclude_reply_user_ids")
	add(p.AttachmentURL != "", "attachment_url")
	add(p.Lat != nil, "lat")
	add(p.Long != nil, "long")
	add(p.PlaceID != "", "place_id")
	add(p.DisplayCoordinates, "display_coordinates")
	add(p.TrimUser, "trim_user")
	add(p.CardURI != "", "card_uri")
	add(p.PossiblySensitive, "possibly_sensitive")
	add(p.EnableDMCommands, "enable_dmcommands")
	add(p.FailDMCommands, "fail_dmcommands")
	return out
}

func (p UpdateStatusParams) statusParams(text string) mastodon.StatusParams {
	sp := mastodon.StatusParams{Status: text, InReplyToID: mastodon.ID(p.InReplyToStatusID)}
	for _, id := range p.MediaIDs {
		sp.MediaIDs = append(sp.MediaIDs, mastodon.ID(id))
	}
	return sp
}

// MediaUploadParams are the media_upload arguments. AltText maps to the
// Mastodon description; the rest is accepted and ignored.
type MediaUploadParams struct {
	AltText          string
	MediaCategory    string
	AdditionalOwners []int64
	Chunked          bool
}

func (p MediaUploadParams) ignored() []string {
	var out []string
	if p.MediaCategory != "" {
		out = append(out, "media_category")
	}
	if len(p.AdditionalOwners) > 0 {
		out = append(out, "additional_owners")
	}
	if p.Chunked {
		out = append(out, "chunked")
	}
	return out
}

// FriendshipParams are the create_friendship arguments. Follow turns on
// notifications for the followed account's posts.
type FriendshipParams struct {
	Follow bool
}

// CursorParams are the get_followers / get_friends arguments.
type CursorParams struct {
	Count               int
	Cursor              int64
	SkipStatus          bool
	IncludeUserEntities *bool
}

func (p CursorParams) page() mastodon.Page {
	count := p.Count
	if count <= 0 {
		count = defaultTimelineCount
	}
	return mastodon.Page{Limit: count}
}

func (p CursorParams) ignored() []string {
	var out []string
	if p.Cursor != 0 && p.Cursor != -1 {
		out = append(out, "cursor")
	}
	if p.SkipStatus {
		out = append(out, "skip_status")
	}
	if p.IncludeUserEntities != nil {
		out = append(out, "include_user_entities")
	}
	return out
}
