package tweepy

import (
	"testing"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

const (
	shuuji3ID     = 936436
	shuuji3Header = "https://files.mastodon.social/accounts/headers/000/936/436/original/4d6989a698953e80.jpg"
	shuuji3Avatar = "https://files.mastodon.social/accounts/avatars/000/936/436/original/4854d6cf9e12cb8f.png"
	elkStatusID   = 109801812845135807
	gargronID     = 1
	nprID         = 1201325
	bobID         = 42
	lockedID      = 77
	missingID     = 999999
)

// verify_credentials answer for shuuji3@mastodon.social.
const shuuji3JSON = `{
  "id": "936436",
  "username": "shuuji3",
  "acct": "shuuji3",
  "display_name": "TAKAHASHI Shuuji 🌈✨",
  "locked": false,
  "bot": false,
  "discoverable": false,
  "group": false,
  "created_at": "2019-10-08T00:00:00.000Z",
  "note": "<p>🧑🏻‍💻 software engineer / 🌟 like: opensource, technology, science, beautiful things, something fun, reasonable idea, &amp; fairness</p>",
  "url": "https://mastodon.social/@shuuji3",
  "avatar": "https://files.mastodon.social/accounts/avatars/000/936/436/original/4854d6cf9e12cb8f.png",
  "avatar_static": "https://files.mastodon.social/accounts/avatars/000/936/436/original/4854d6cf9e12cb8f.png",
  "header": "https://files.mastodon.social/accounts/headers/000/936/436/original/4d6989a698953e80.jpg",
  "header_static": "https://files.mastodon.social/accounts/headers/000/936/436/original/4d6989a698953e80.jpg",
  "followers_count": 18,
  "following_count": 33,
  "statuses_count": 73,
  "last_status_at": "2023-02-03",
  "noindex": false,
  "source": {
    "privacy": "public",
    "sensitive": false,
    "language": null,
    "note": "software engineer",
    "fields": [
      {"name": "Website", "value": "https://shuuji3.xyz", "verified_at": "2022-11-21T03:44:51.983+00:00"},
      {"name": "GitHub", "value": "https://github.com/shuuji3", "verified_at": "2022-12-19T17:22:50.150+00:00"}
    ],
    "follow_requests_count": 0
  },
  "emojis": [],
  "fields": [
    {"name": "Website", "value": "<a href=\"https://shuuji3.xyz\" target=\"_blank\" rel=\"nofollow noopener noreferrer me\"><span class=\"invisible\">https://</span><span class=\"\">shuuji3.xyz</span><span class=\"invisible\"></span></a>", "verified_at": "2022-11-21T03:44:51.983+00:00"},
    {"name": "GitHub", "value": "<a href=\"https://github.com/shuuji3\" target=\"_blank\" rel=\"nofollow noopener noreferrer me\"><span class=\"invisible\">https://</span><span class=\"\">github.com/shuuji3</span><span class=\"invisible\"></span></a>", "verified_at": "2022-12-19T17:22:50.150+00:00"}
  ],
  "role": {"id": -99, "name": "", "permissions": "65536", "color": "", "highlighted": false}
}`

// A self-reply posted from Elk. Numeric ids exercise the lenient decoder.
const elkStatusJSON = `{
  "id": 109801812845135807,
  "created_at": "2023-02-03T16:45:00.892Z",
  "in_reply_to_id": 109801363905285407,
  "in_reply_to_account_id": 936436,
  "sensitive": false,
  "spoiler_text": "",
  "visibility": "public",
  "language": "en",
  "uri": "https://mastodon.social/users/shuuji3/statuses/109801812845135807",
  "url": "https://mastodon.social/@shuuji3/109801812845135807",
  "replies_count": 0,
  "reblogs_count": 0,
  "favourites_count": 0,
  "edited_at": null,
  "favourited": false,
  "reblogged": false,
  "muted": false,
  "bookmarked": false,
  "pinned": false,
  "content": "<p>There&#39;s the previous attempt to implement a Tweepy-like library called &quot;pawopy&quot;. #python <a href=\"https://github.com/calmery/Pawopy\">github.com/calmery/Pawopy</a></p>",
  "reblog": null,
  "application": {"name": "Elk", "website": "https://elk.zone"},
  "account": {"id": "936436", "username": "shuuji3", "acct": "shuuji3", "display_name": "TAKAHASHI Shuuji 🌈✨", "created_at": "2019-10-08T00:00:00.000Z", "fields": []},
  "media_attachments": [],
  "mentions": [],
  "tags": [{"name": "python", "url": "https://mastodon.social/tags/python"}],
  "emojis": [],
  "card": null,
  "poll": null
}`

const gargronJSON = `{
  "id": "1",
  "username": "Gargron",
  "acct": "Gargron",
  "display_name": "Eugen Rochko",
  "locked": false,
  "created_at": "2016-03-16T00:00:00.000Z",
  "note": "<p>Founder, CEO and lead developer @Mastodon</p>",
  "url": "https://mastodon.social/@Gargron",
  "avatar": "https://files.mastodon.social/accounts/avatars/000/000/001/original/a.jpg",
  "avatar_static": "https://files.mastodon.social/accounts/avatars/000/000/001/original/a.jpg",
  "header": "https://files.mastodon.social/accounts/headers/000/000/001/original/h.jpg",
  "header_static": "https://files.mastodon.social/accounts/headers/000/000/001/original/h.jpg",
  "followers_count": 300000,
  "following_count": 500,
  "statuses_count": 70000,
  "emojis": [],
  "fields": [
    {"name": "Patreon", "value": "<a href=\"https://www.patreon.com/mastodon\" rel=\"me nofollow noopener noreferrer\" target=\"_blank\"><span class=\"invisible\">https://www.</span><span class=\"\">patreon.com/mastodon</span></a>", "verified_at": null}
  ]
}`

const nprJSON = `{
  "id": "1201325",
  "username": "NPR",
  "acct": "NPR@mstdn.social",
  "display_name": "NPR",
  "locked": false,
  "created_at": "2022-11-03T00:00:00.000Z",
  "note": "<p>News</p>",
  "url": "https://mstdn.social/@NPR",
  "avatar": "https://files.mastodon.social/cache/accounts/avatars/npr.png",
  "avatar_static": "https://files.mastodon.social/cache/accounts/avatars/npr.png",
  "header": "https://files.mastodon.social/cache/accounts/headers/npr.png",
  "header_static": "https://files.mastodon.social/cache/accounts/headers/npr.png",
  "followers_count": 100,
  "following_count": 1,
  "statuses_count": 0,
  "emojis": [],
  "fields": []
}`

func ptrID(id mastodon.ID) *mastodon.ID { return &id }

// newFixtureTarget builds a small server: shuuji3 is the authenticated user,
// Gargron has one status, bob replies to a deleted account and to Gargron.
func newFixtureTarget(t *testing.T) *fakeTarget {
	t.Helper()
	f := newFakeTarget()
	f.me = shuuji3ID
	f.addAccount(mustAccount(t, shuuji3JSON))
	f.addAccount(mustAccount(t, gargronJSON))
	f.addAccount(mustAccount(t, nprJSON))
	f.addAccount(&mastodon.Account{ID: bobID, Username: "bob", Acct: "bob@example.org", DisplayName: "Bob"})
	f.addAccount(&mastodon.Account{ID: lockedID, Username: "quiet", Acct: "quiet", Locked: true})

	f.addStatus(mustStatus(t, elkStatusJSON))
	f.addStatus(&mastodon.Status{ID: 100001, Account: mastodon.Account{ID: gargronID}, Content: "<p>Hello fediverse</p>"})
	f.addStatus(&mastodon.Status{
		ID:                 100002,
		Account:            mastodon.Account{ID: bobID},
		Content:            "<p>replying into the void</p>",
		InReplyToID:        ptrID(90),
		InReplyToAccountID: ptrID(missingID),
	})
	f.addStatus(&mastodon.Status{
		ID:                 100003,
		Account:            mastodon.Account{ID: bobID},
		Content:            "<p>nice work</p>",
		InReplyToID:        ptrID(100001),
		InReplyToAccountID: ptrID(gargronID),
	})
	f.follows[shuuji3ID] = []mastodon.ID{gargronID, bobID}
	f.follows[gargronID] = []mastodon.ID{shuuji3ID}
	return f
}

// Keys of a v1.1 user object as returned by get_user.
var twitterUserKeys = []string{
	"id", "id_str", "name", "screen_name", "location", "description", "url", "entities",
	"protected", "followers_count", "friends_count", "listed_count", "created_at",
	"favourites_count", "utc_offset", "time_zone", "geo_enabled", "verified", "statuses_count",
	"lang", "status", "contributors_enabled", "is_translator", "is_translation_enabled",
	"profile_background_color", "profile_background_image_url", "profile_background_image_url_https",
	"profile_background_tile", "profile_image_url", "profile_image_url_https", "profile_link_color",
	"profile_sidebar_border_color", "profile_sidebar_fill_color", "profile_text_color",
	"profile_use_background_image", "has_extended_profile", "default_profile",
	"default_profile_image", "following", "follow_request_sent", "notifications",
	"translator_type", "withheld_in_countries",
}

// Keys of a v1.1 tweet object.
var twitterStatusKeys = []string{
	"created_at", "id", "id_str", "text", "truncated", "entities", "source", "source_url",
	"in_reply_to_status_id", "in_reply_to_status_id_str", "in_reply_to_user_id",
	"in_reply_to_user_id_str", "in_reply_to_screen_name", "author", "user", "geo",
	"coordinates", "place", "contributors", "is_quote_status", "retweet_count",
	"favorite_count", "favorited", "retweeted", "lang",
}

var mastodonAccountKeys = []string{
	"username", "acct", "display_name", "locked", "bot", "note", "avatar", "avatar_static",
	"header", "header_static", "following_count", "fields", "emojis",
}
