package tweepy

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
)

// UserMode selects which optional keys a translated user carries.
type UserMode int

const (
	// UserModePlain is used for status authors and list results.
	UserModePlain UserMode = iota
	// UserModeVerifyCredentials reads Source and adds the self-only keys.
	UserModeVerifyCredentials
	// UserModeGetUser adds profile_location.
	UserModeGetUser
)

func (m UserMode) String() string {
	switch m {
	case UserModeVerifyCredentials:
		return "verify_credentials"
	case UserModeGetUser:
		return "get_user"
	default:
		return "plain"
	}
}

// Lookup is the part of the Mastodon client the translator calls on its own.
type Lookup interface {
	Account(ctx context.Context, id mastodon.ID) (*mastodon.Account, error)
	AccountStatuses(ctx context.Context, id mastodon.ID, p mastodon.Page) ([]*mastodon.Status, error)
}

// Translator builds Twitter-shaped records from native ones. Each user costs
// one latest-status call; each reply may cost one account call.
type Translator struct {
	lookup Lookup
	logger *log.Logger
	strict bool
}

// NewTranslator returns a Translator. With strict set, a reply target that no
// longer exists fails the translation instead of leaving the screen name null.
func NewTranslator(lookup Lookup, logger *log.Logger, strict bool) *Translator {
	if logger == nil {
		logger = log.Default()
	}
	return &Translator{lookup: lookup, logger: logger, strict: strict}
}

// ConvertUser translates an account. The input is copied, never modified.
func (t *Translator) ConvertUser(ctx context.Context, acct *mastodon.Account, mode UserMode) (*User, error) {
	if acct == nil {
		return nil, errors.New("tweepy: nil account")
	}
	u := newUser(*acct)
	u.ID = int64(acct.ID)
	u.IDStr = acct.ID.String()
	u.ScreenName = acct.Acct
	if u.ScreenName == "" {
		u.ScreenName = acct.Username
	}
	u.Name = acct.DisplayName
	u.Description = acct.Note
	u.Protected = acct.Locked
	u.FollowersCount = acct.FollowersCount
	u.FriendsCount = acct.FollowingCount
	u.StatusesCount = acct.StatusesCount
	u.CreatedAt = TwitterTime{acct.CreatedAt}
	u.ProfileImageURL = acct.AvatarStatic
	u.ProfileImageURLHTTPS = acct.AvatarStatic
	u.ProfileBackgroundImageURL = acct.HeaderStatic
	u.ProfileBackgroundImageURLHTTPS = acct.HeaderStatic
	u.HasExtendedProfile = len(acct.Fields) > 0

	u.URL = profileURL(acct, mode)
	if u.URL != nil {
		u.Entities.URL = &URLEntities{URLs: []URLEntity{urlEntity(*u.URL)}}
	}

	switch mode {
	case UserModeVerifyCredentials:
		if acct.Source != nil {
			u.Lang = acct.Source.Language
			u.FollowRequestSent = acct.Source.FollowRequestsCount > 0
		}
		u.TranslatorType = stringPtr(defaultTranslatorType)
		u.Suspended = boolPtr(defaultSuspended)
		u.NeedsPhoneVerification = boolPtr(defaultNeedsPhoneVerification)
	case UserModeGetUser:
		u.ProfileLocation = nullJSON
		u.TranslatorType = stringPtr(defaultTranslatorType)
	}

	latest, err := t.lookup.AccountStatuses(ctx, acct.ID, mastodon.Page{Limit: 1})
	if err != nil {
		return nil, notFound(err, "user", acct.ID.String())
	}
	if len(latest) > 0 && latest[0] != nil {
		st, err := t.ConvertStatus(ctx, latest[0], true)
		if err != nil {
			return nil, err
		}
		u.Status = st
	}
	metrics.IncTranslation("user")
	return u, nil
}

// ConvertStatus translates a status. Embedded statuses get no author, which
// keeps user -> status -> user from recursing.
func (t *Translator) ConvertStatus(ctx context.Context, st *mastodon.Status, embedded bool) (*Status, error) {
	if st == nil {
		return nil, errors.New("tweepy: nil status")
	}
	s := newStatus(*st)
	s.ID = int64(st.ID)
	s.IDStr = st.ID.String()
	s.CreatedAt = TwitterTime{st.CreatedAt}
	s.Text = st.Content
	s.Lang = st.Language
	s.FavoriteCount = st.FavouritesCount
	s.RetweetCount = st.ReblogsCount
	s.Favorited = st.Favourited
	s.Retweeted = st.Reblogged
	s.PossiblySensitive = st.Sensitive
	s.Source, s.SourceURL = renderSource(st.Application, embedded)
	s.Entities = statusEntities(st)

	if st.InReplyToID != nil {
		id := int64(*st.InReplyToID)
		s.InReplyToStatusID = &id
		s.InReplyToStatusIDStr = stringPtr(st.InReplyToID.String())
	}
	if st.InReplyToAccountID != nil {
		id := int64(*st.InReplyToAccountID)
		s.InReplyToUserID = &id
		s.InReplyToUserIDStr = stringPtr(st.InReplyToAccountID.String())
		name, err := t.replyScreenName(ctx, st)
		if err != nil {
			return nil, err
		}
		s.InReplyToScreenName = name
	}

	if !embedded {
		author, err := t.ConvertUser(ctx, &st.Account, UserModePlain)
		if err != nil {
			return nil, err
		}
		s.User = author
		s.Author = author
	}
	if st.Reblog != nil {
		rt, err := t.ConvertStatus(ctx, st.Reblog, embedded)
		if err != nil {
			return nil, err
		}
		s.RetweetedStatus = rt
	}
	metrics.IncTranslation("status")
	return s, nil
}

// replyScreenName resolves the handle of the account being replied to. The
// author and the mention list are checked before asking the server.
func (t *Translator) replyScreenName(ctx context.Context, st *mastodon.Status) (*string, error) {
	target := *st.InReplyToAccountID
	if target == st.Account.ID && st.Account.Acct != "" {
		return stringPtr(st.Account.Acct), nil
	}
	for _, m := range st.Mentions {
		if m.ID == target && m.Acct != "" {
			return stringPtr(m.Acct), nil
		}
	}
	acct, err := t.lookup.Account(ctx, target)
	if err != nil {
		if errors.Is(err, mastodon.ErrNotFound) && !t.strict {
			metrics.IncNotFound("reply_target")
			t.logger.Warn("reply target not found", "status", st.ID.String(), "account", target.String())
			return nil, nil
		}
		return nil, notFound(err, "user", target.String())
	}
	return stringPtr(acct.Acct), nil
}

// ConvertMedia translates an upload answer. size and mimeType describe the
// bytes that were sent.
func (t *Translator) ConvertMedia(att *mastodon.MediaAttachment, size int64, mimeType string) (*Media, error) {
	if att == nil {
		return nil, errors.New("tweepy: nil media attachment")
	}
	m := &Media{
		MediaAttachment:  *att,
		MediaID:          int64(att.ID),
		MediaIDString:    att.ID.String(),
		Size:             size,
		ExpiresAfterSecs: DefaultMediaExpiresAfterSecs,
	}
	switch att.Type {
	case "video", "gifv", "audio":
		m.Video = &MediaVideo{VideoType: mimeType}
	default:
		img := &MediaImage{ImageType: mimeType}
		if att.Meta != nil && att.Meta.Original != nil {
			img.W, img.H = att.Meta.Original.Width, att.Meta.Original.Height
		}
		m.Image = img
	}
	if att.URL == nil || *att.URL == "" {
		m.ProcessingInfo = &ProcessingInfo{State: "pending"}
	}
	metrics.IncTranslation("media")
	return m, nil
}

// notFound turns a server 404 into a NotFoundError; anything else is returned unchanged.
func notFound(err error, resource, key string) error {
	if !errors.Is(err, mastodon.ErrNotFound) {
		return err
	}
	metrics.IncNotFound(resource)
	return &NotFoundError{Resource: resource, Key: key, Err: err}
}

// profileURL picks the first profile field. Source holds plain text; public
// fields hold an HTML anchor.
func profileURL(acct *mastodon.Account, mode UserMode) *string {
	if mode == UserModeVerifyCredentials && acct.Source != nil && len(acct.Source.Fields) > 0 {
		if v := strings.TrimSpace(acct.Source.Fields[0].Value); v != "" {
			return &v
		}
	}
	if len(acct.Fields) == 0 {
		return nil
	}
	return hrefOf(acct.Fields[0].Value)
}

func hrefOf(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return &value
	}
	if href, ok := doc.Find("a[href]").First().Attr("href"); ok && href != "" {
		return &href
	}
	if text := strings.TrimSpace(doc.Text()); text != "" {
		return &text
	}
	return nil
}

func urlEntity(u string) URLEntity {
	display := u
	if p, err := url.Parse(u); err == nil && p.Host != "" {
		display = p.Host + strings.TrimSuffix(p.RequestURI(), "/")
	}
	return URLEntity{URL: u, ExpandedURL: u, DisplayURL: display, Indices: []int{0, utf8.RuneCountInString(u)}}
}

// renderSource follows v1.1: embedded tweets carry the client as an anchor,
// top-level ones as name plus source_url.
func renderSource(app *mastodon.Application, embedded bool) (string, *string) {
	if app == nil {
		return "", nil
	}
	if !embedded {
		return app.Name, app.Website
	}
	if app.Website == nil || *app.Website == "" {
		return html.EscapeString(app.Name), nil
	}
	return fmt.Sprintf(`<a href="%s" rel="nofollow">%s</a>`, html.EscapeString(*app.Website), html.EscapeString(app.Name)), nil
}

func statusEntities(st *mastodon.Status) StatusEntities {
	e := StatusEntities{
		Hashtags:     make([]Hashtag, 0, len(st.Tags)),
		Symbols:      []Hashtag{},
		UserMentions: make([]UserMention, 0, len(st.Mentions)),
		URLs:         []URLEntity{},
	}
	text := plainText(st.Content)
	for _, tag := range st.Tags {
		e.Hashtags = append(e.Hashtags, Hashtag{Text: tag.Name, Indices: indices(text, "#"+tag.Name)})
	}
	for _, m := range st.Mentions {
		e.UserMentions = append(e.UserMentions, UserMention{
			ID:         int64(m.ID),
			IDStr:      m.ID.String(),
			ScreenName: m.Acct,
			Name:       m.Username,
			Indices:    indices(text, "@"+m.Username),
		})
	}
	for _, a := range st.MediaAttachments {
		link := deref(a.URL)
		e.Media = append(e.Media, MediaEntity{
			ID:            int64(a.ID),
			IDStr:         a.ID.String(),
			MediaURL:      link,
			MediaURLHTTPS: link,
			URL:           deref(st.URL),
			DisplayURL:    deref(a.PreviewURL),
			ExpandedURL:   link,
			Type:          mediaType(a.Type),
			Indices:       []int{0, 0},
		})
	}
	return e
}

func mediaType(t string) string {
	switch t {
	case "gifv":
		return "animated_gif"
	case "video", "audio":
		return "video"
	default:
		return "photo"
	}
}

func plainText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	return doc.Text()
}

// indices returns the rune offsets of needle in text, case-insensitively.
// Matching is done on lowered runes since lowering can change byte length.
func indices(text, needle string) []int {
	t, n := lowerRunes(text), lowerRunes(needle)
	for i := 0; len(n) > 0 && i+len(n) <= len(t); i++ {
		if slices.Equal(t[i:i+len(n)], n) {
			return []int{i, i + len(n)}
		}
	}
	return []int{0, 0}
}

func lowerRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

