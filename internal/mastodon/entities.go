package mastodon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a Mastodon snowflake. The API sends ids as JSON strings; numbers are
// accepted too so fixtures and older servers decode the same way.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id ID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("mastodon: invalid id %q: %w", s, err)
	}
	*id = ID(n)
	return nil
}

// ParseID parses a decimal id as typed on a command line.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("mastodon: invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

type Account struct {
	ID             ID              `json:"id"`
	Username       string          `json:"username"`
	Acct           string          `json:"acct"`
	DisplayName    string          `json:"display_name"`
	Locked         bool            `json:"locked"`
	Bot            bool            `json:"bot"`
	Discoverable   *bool           `json:"discoverable"`
	Group          bool            `json:"group"`
	CreatedAt      time.Time       `json:"created_at"`
	Note           string          `json:"note"`
	URL            string          `json:"url"`
	Avatar         string          `json:"avatar"`
	AvatarStatic   string          `json:"avatar_static"`
	Header         string          `json:"header"`
	HeaderStatic   string          `json:"header_static"`
	FollowersCount int             `json:"followers_count"`
	FollowingCount int             `json:"following_count"`
	StatusesCount  int             `json:"statuses_count"`
	LastStatusAt   *string         `json:"last_status_at"`
	Noindex        *bool           `json:"noindex,omitempty"`
	Source         *Source         `json:"source,omitempty"`
	Emojis         []Emoji         `json:"emojis"`
	Fields         []Field         `json:"fields"`
	Role           json.RawMessage `json:"role,omitempty"`
}

// Source is only present on the authenticated user's own account.
type Source struct {
	Privacy             string  `json:"privacy"`
	Sensitive           bool    `json:"sensitive"`
	Language            *string `json:"language"`
	Note                string  `json:"note"`
	Fields              []Field `json:"fields"`
	FollowRequestsCount int     `json:"follow_requests_count"`
}

// Field is a profile metadata entry. Value is HTML on public accounts and
// plain text inside Source.
type Field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	VerifiedAt *string `json:"verified_at"`
}

type Emoji struct {
	Shortcode       string `json:"shortcode"`
	URL             string `json:"url"`
	StaticURL       string `json:"static_url"`
	VisibleInPicker bool   `json:"visible_in_picker"`
}

type Application struct {
	Name    string  `json:"name"`
	Website *string `json:"website"`
}

type Mention struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	URL      string `json:"url"`
	Acct     string `json:"acct"`
}

type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Status struct {
	ID                 ID                `json:"id"`
	URI                string            `json:"uri"`
	URL                *string           `json:"url"`
	CreatedAt          time.Time         `json:"created_at"`
	Account            Account           `json:"account"`
	InReplyToID        *ID               `json:"in_reply_to_id"`
	InReplyToAccountID *ID               `json:"in_reply_to_account_id"`
	Reblog             *Status           `json:"reblog"`
	Content            string            `json:"content"`
	Text               *string           `json:"text,omitempty"`
	SpoilerText        string            `json:"spoiler_text"`
	Visibility         string            `json:"visibility"`
	Sensitive          bool              `json:"sensitive"`
	Language           *string           `json:"language"`
	RepliesCount       int               `json:"replies_count"`
	ReblogsCount       int               `json:"reblogs_count"`
	FavouritesCount    int               `json:"favourites_count"`
	EditedAt           *string           `json:"edited_at"`
	Favourited         bool              `json:"favourited"`
	Reblogged          bool              `json:"reblogged"`
	Muted              bool              `json:"muted"`
	Bookmarked         bool              `json:"bookmarked"`
	Pinned             bool              `json:"pinned,omitempty"`
	Application        *Application      `json:"application,omitempty"`
	MediaAttachments   []MediaAttachment `json:"media_attachments"`
	Mentions           []Mention         `json:"mentions"`
	Tags               []Tag             `json:"tags"`
	Emojis             []Emoji           `json:"emojis"`
	Card               json.RawMessage   `json:"card,omitempty"`
	Poll               json.RawMessage   `json:"poll,omitempty"`
	Filtered           json.RawMessage   `json:"filtered,omitempty"`
}

type MediaAttachment struct {
	ID          ID         `json:"id"`
	Type        string     `json:"type"`
	URL         *string    `json:"url"`
	PreviewURL  *string    `json:"preview_url"`
	RemoteURL   *string    `json:"remote_url"`
	Meta        *MediaMeta `json:"meta,omitempty"`
	Description *string    `json:"description"`
	Blurhash    *string    `json:"blurhash"`
}

type MediaMeta struct {
	Original *MediaDimensions `json:"original,omitempty"`
	Small    *MediaDimensions `json:"small,omitempty"`
}

type MediaDimensions struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Aspect float64 `json:"aspect,omitempty"`
}

type Relationship struct {
	ID                  ID     `json:"id"`
	Following           bool   `json:"following"`
	ShowingReblogs      bool   `json:"showing_reblogs"`
	Notifying           bool   `json:"notifying"`
	FollowedBy          bool   `json:"followed_by"`
	Blocking            bool   `json:"blocking"`
	BlockedBy           bool   `json:"blocked_by"`
	Muting              bool   `json:"muting"`
	MutingNotifications bool   `json:"muting_notifications"`
	Requested           bool   `json:"requested"`
	DomainBlocking      bool   `json:"domain_blocking"`
	Endorsed            bool   `json:"endorsed"`
	Note                string `json:"note"`
}
