package tweepy

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

// TwitterTimeLayout is the created_at format of the v1.1 API.
const TwitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// TwitterTime serializes as a v1.1 created_at string.
type TwitterTime struct{ time.Time }

func (t TwitterTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(TwitterTimeLayout))
}

func (t *TwitterTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	v, err := time.Parse(TwitterTimeLayout, s)
	if err != nil {
		v, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
	}
	t.Time = v
	return nil
}

// User is a Mastodon account in the shape of a v1.1 user object. The native
// account stays embedded, so its keys are serialized alongside the Twitter
// ones; where both define a key the Twitter value wins.
type User struct {
	mastodon.Account

	ID                             int64           `json:"id"`
	IDStr                          string          `json:"id_str"`
	Name                           string          `json:"name"`
	ScreenName                     string          `json:"screen_name"`
	Location                       string          `json:"location"`
	ProfileLocation                json.RawMessage `json:"profile_location,omitempty"`
	Description                    string          `json:"description"`
	URL                            *string         `json:"url"`
	Entities                       UserEntities    `json:"entities"`
	Protected                      bool            `json:"protected"`
	FollowersCount                 int             `json:"followers_count"`
	FriendsCount                   int             `json:"friends_count"`
	ListedCount                    int             `json:"listed_count"`
	CreatedAt                      TwitterTime     `json:"created_at"`
	FavouritesCount                int             `json:"favourites_count"`
	UTCOffset                      *int            `json:"utc_offset"`
	TimeZone                       *string         `json:"time_zone"`
	GeoEnabled                     bool            `json:"geo_enabled"`
	Verified                       bool            `json:"verified"`
	StatusesCount                  int             `json:"statuses_count"`
	Lang                           *string         `json:"lang"`
	Status                         *Status         `json:"status,omitempty"`
	ContributorsEnabled            bool            `json:"contributors_enabled"`
	IsTranslator                   bool            `json:"is_translator"`
	IsTranslationEnabled           bool            `json:"is_translation_enabled"`
	ProfileBackgroundColor         string          `json:"profile_background_color"`
	ProfileBackgroundImageURL      string          `json:"profile_background_image_url"`
	ProfileBackgroundImageURLHTTPS string          `json:"profile_background_image_url_https"`
	ProfileBackgroundTile          bool            `json:"profile_background_tile"`
	ProfileImageURL                string          `json:"profile_image_url"`
	ProfileImageURLHTTPS           string          `json:"profile_image_url_https"`
	ProfileLinkColor               string          `json:"profile_link_color"`
	ProfileSidebarBorderColor      string          `json:"profile_sidebar_border_color"`
	ProfileSidebarFillColor        string          `json:"profile_sidebar_fill_color"`
	ProfileTextColor               string          `json:"profile_text_color"`
	ProfileUseBackgroundImage      bool            `json:"profile_use_background_image"`
	HasExtendedProfile             bool            `json:"has_extended_profile"`
	DefaultProfile                 bool            `json:"default_profile"`
	DefaultProfileImage            bool            `json:"default_profile_image"`
	Following                      bool            `json:"following"`
	FollowRequestSent              bool            `json:"follow_request_sent"`
	Notifications                  bool            `json:"notifications"`
	TranslatorType                 *string         `json:"translator_type"`
	WithheldInCountries            []string        `json:"withheld_in_countries"`
	Suspended                      *bool           `json:"suspended,omitempty"`
	NeedsPhoneVerification         *bool           `json:"needs_phone_verification,omitempty"`
}

type UserEntities struct {
	Description URLEntities  `json:"description"`
	URL         *URLEntities `json:"url,omitempty"`
}

type URLEntities struct {
	URLs []URLEntity `json:"urls"`
}

type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
	Indices     []int  `json:"indices"`
}

// Status is a Mastodon status in the shape of a v1.1 tweet. User and Author
// point at the same record and are nil on embedded statuses.
type Status struct {
	mastodon.Status

	CreatedAt            TwitterTime    `json:"created_at"`
	ID                   int64          `json:"id"`
	IDStr                string         `json:"id_str"`
	Text                 string         `json:"text"`
	Truncated            bool           `json:"truncated"`
	Entities             StatusEntities `json:"entities"`
	Source               string         `json:"source"`
	SourceURL            *string        `json:"source_url"`
	InReplyToStatusID    *int64         `json:"in_reply_to_status_id"`
	InReplyToStatusIDStr *string        `json:"in_reply_to_status_id_str"`
	InReplyToUserID      *int64         `json:"in_reply_to_user_id"`
	InReplyToUserIDStr   *string        `json:"in_reply_to_user_id_str"`
	InReplyToScreenName  *string        `json:"in_reply_to_screen_name"`
	Author               *User          `json:"author,omitempty"`
	User                 *User          `json:"user,omitempty"`
	Geo                  any            `json:"geo"`
	Coordinates          any            `json:"coordinates"`
	Place                any            `json:"place"`
	Contributors         any            `json:"contributors"`
	RetweetedStatus      *Status        `json:"retweeted_status,omitempty"`
	IsQuoteStatus        bool           `json:"is_quote_status"`
	RetweetCount         int            `json:"retweet_count"`
	FavoriteCount        int            `json:"favorite_count"`
	Favorited            bool           `json:"favorited"`
	Retweeted            bool           `json:"retweeted"`
	PossiblySensitive    bool           `json:"possibly_sensitive"`
	Lang                 *string        `json:"lang"`
}

type StatusEntities struct {
	Hashtags     []Hashtag     `json:"hashtags"`
	Symbols      []Hashtag     `json:"symbols"`
	UserMentions []UserMention `json:"user_mentions"`
	URLs         []URLEntity   `json:"urls"`
	Media        []MediaEntity `json:"media,omitempty"`
}

type Hashtag struct {
	Text    string `json:"text"`
	Indices []int  `json:"indices"`
}

type UserMention struct {
	ID         int64  `json:"id"`
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
	Indices    []int  `json:"indices"`
}

type MediaEntity struct {
	ID            int64  `json:"id"`
	IDStr         string `json:"id_str"`
	MediaURL      string `json:"media_url"`
	MediaURLHTTPS string `json:"media_url_https"`
	URL           string `json:"url"`
	DisplayURL    string `json:"display_url"`
	ExpandedURL   string `json:"expanded_url"`
	Type          string `json:"type"`
	Indices       []int  `json:"indices"`
}

// Media is an uploaded attachment in the shape of an upload.twitter.com response.
type Media struct {
	mastodon.MediaAttachment

	MediaID          int64           `json:"media_id"`
	MediaIDString    string          `json:"media_id_string"`
	Size             int64           `json:"size"`
	ExpiresAfterSecs int             `json:"expires_after_secs"`
	Image            *MediaImage     `json:"image,omitempty"`
	Video            *MediaVideo     `json:"video,omitempty"`
	ProcessingInfo   *ProcessingInfo `json:"processing_info,omitempty"`
}

type MediaImage struct {
	ImageType string `json:"image_type"`
	W         int    `json:"w"`
	H         int    `json:"h"`
}

type MediaVideo struct {
	VideoType string `json:"video_type"`
}

type ProcessingInfo struct {
	State string `json:"state"`
}
