package tweepy

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/shuuji3/tweepy-mastodon/internal/mastodon"
)

// OAuth1UserHandler keeps the Tweepy constructor shape on top of Mastodon's
// OAuth 2 bearer tokens. The consumer key and secret are the Mastodon client
// id and secret. Mastodon has no access token secret, so it is never stored.
type OAuth1UserHandler struct {
	consumerKey    string
	consumerSecret string
	apiBaseURL     string

	mu          sync.RWMutex
	accessToken string
}

// NewOAuth1UserHandler fails with ErrMissingBaseURL when apiBaseURL is empty.
// Bare hosts such as "mastodon.social" are accepted. The access token
// secret has no Mastodon counterpart and is ignored.
func NewOAuth1UserHandler(consumerKey, consumerSecret, accessToken, _, apiBaseURL string) (*OAuth1UserHandler, error) {
	base := mastodon.NormalizeBaseURL(apiBaseURL)
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	return &OAuth1UserHandler{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		accessToken:    strings.TrimSpace(accessToken),
		apiBaseURL:     base,
	}, nil
}

func (h *OAuth1UserHandler) ClientID() string     { return h.consumerKey }
func (h *OAuth1UserHandler) ClientSecret() string { return h.consumerSecret }
func (h *OAuth1UserHandler) APIBaseURL() string   { return h.apiBaseURL }

// AccessToken implements mastodon.TokenProvider.
func (h *OAuth1UserHandler) AccessToken() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.accessToken, nil
}

// AccessTokenSecret is always empty.
func (h *OAuth1UserHandler) AccessTokenSecret() string { return "" }

// SetAccessToken replaces the token; secret is ignored.
func (h *OAuth1UserHandler) SetAccessToken(key, _ string) {
	h.mu.Lock()
	h.accessToken = strings.TrimSpace(key)
	h.mu.Unlock()
}

func (h *OAuth1UserHandler) app(redirectURI string) mastodon.OAuthApp {
	return mastodon.OAuthApp{
		BaseURL:      h.apiBaseURL,
		ClientID:     h.consumerKey,
		ClientSecret: h.consumerSecret,
		RedirectURI:  redirectURI,
	}
}

// GetAuthorizationURL returns the page where the user grants access. An empty
// redirectURI makes the server show the code for manual entry.
func (h *OAuth1UserHandler) GetAuthorizationURL(redirectURI string) string {
	return h.app(redirectURI).AuthorizationURL("")
}

// GetAccessToken exchanges the code shown after authorization (the verifier in
// OAuth 1 terms), stores the token and returns it with an empty secret.
func (h *OAuth1UserHandler) GetAccessToken(ctx context.Context, verifier, redirectURI string, hc *http.Client) (string, string, error) {
	tok, err := h.app(redirectURI).ExchangeCode(ctx, hc, verifier)
	if err != nil {
		return "", "", err
	}
	h.SetAccessToken(tok, "")
	return tok, "", nil
}
