package tweepy

import (
	"encoding/json"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

// Values for Twitter fields that have no Mastodon counterpart.
const (
	defaultContributorsEnabled       = false
	defaultDefaultProfile            = true
	defaultDefaultProfileImage       = false
	defaultFavouritesCount           = 0
	defaultGeoEnabled                = false
	defaultIsTranslationEnabled      = false
	defaultIsTranslator              = false
	defaultListedCount               = 0
	defaultLocation                  = ""
	defaultNeedsPhoneVerification    = false
	defaultNotifications             = false
	defaultFollowing                 = false
	defaultFollowRequestSent         = false
	defaultProfileBackgroundColor    = "F5F8FA"
	defaultProfileBackgroundTile     = false
	defaultProfileLinkColor          = "1DA1F2"
	defaultProfileSidebarBorderColor = "C0DEED"
	defaultProfileSidebarFillColor   = "DDEEF6"
	defaultProfileTextColor          = "333333"
	defaultProfileUseBackgroundImage = true
	defaultSuspended                 = false
	defaultTranslatorType            = "none"
	defaultVerified                  = false

	defaultTruncated     = false
	defaultIsQuoteStatus = false

	// DefaultMediaExpiresAfterSecs is what upload.twitter.com reports for a fresh upload.
	DefaultMediaExpiresAfterSecs = 86400
)

var nullJSON = json.RawMessage("null")

// newUser returns a record carrying the native account and every fabricated default.
func newUser(acct mastodon.Account) *User {
	return &User{
		Account:                   acct,
		Location:                  defaultLocation,
		Entities:                  UserEntities{Description: URLEntities{URLs: []URLEntity{}}},
		ListedCount:               defaultListedCount,
		FavouritesCount:           defaultFavouritesCount,
		GeoEnabled:                defaultGeoEnabled,
		Verified:                  defaultVerified,
		ContributorsEnabled:       defaultContributorsEnabled,
		IsTranslator:              defaultIsTranslator,
		IsTranslationEnabled:      defaultIsTranslationEnabled,
		ProfileBackgroundColor:    defaultProfileBackgroundColor,
		ProfileBackgroundTile:     defaultProfileBackgroundTile,
		ProfileLinkColor:          defaultProfileLinkColor,
		ProfileSidebarBorderColor: defaultProfileSidebarBorderColor,
		ProfileSidebarFillColor:   defaultProfileSidebarFillColor,
		ProfileTextColor:          defaultProfileTextColor,
		ProfileUseBackgroundImage: defaultProfileUseBackgroundImage,
		DefaultProfile:            defaultDefaultProfile,
		DefaultProfileImage:       defaultDefaultProfileImage,
		Following:                 defaultFollowing,
		FollowRequestSent:         defaultFollowRequestSent,
		Notifications:             defaultNotifications,
		WithheldInCountries:       []string{},
	}
}

func newStatus(st mastodon.Status) *Status {
	return &Status{
		Status:        st,
		Truncated:     defaultTruncated,
		IsQuoteStatus: defaultIsQuoteStatus,
	}
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
