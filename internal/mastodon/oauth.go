package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OOBRedirectURI makes the server display the authorization code instead of redirecting.
const OOBRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

var DefaultScopes = []string{"read", "write", "follow"}

// OAuthApp is a registered application used for the authorization-code grant.
type OAuthApp struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

func (a OAuthApp) redirect() string {
	if a.RedirectURI == "" {
		return OOBRedirectURI
	}
	return a.RedirectURI
}

func (a OAuthApp) scope() string {
	if len(a.Scopes) == 0 {
		return strings.Join(DefaultScopes, " ")
	}
	return strings.Join(a.Scopes, " ")
}

// AuthorizationURL is the page the user opens to grant access.
func (a OAuthApp) AuthorizationURL(state string) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {a.ClientID},
		"redirect_uri":  {a.redirect()},
		"scope":         {a.scope()},
	}
	if state != "" {
		q.Set("state", state)
	}
	return NormalizeBaseURL(a.BaseURL) + "/oauth/authorize?" + q.Encode()
}

type oauthTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeCode trades an authorization code for an access token.
func (a OAuthApp) ExchangeCode(ctx context.Context, hc *http.Client, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", errors.New("empty authorization code")
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", strings.TrimSpace(code))
	form.Set("client_id", a.ClientID)
	form.Set("client_secret", a.ClientSecret)
	form.Set("redirect_uri", a.redirect())
	form.Set("scope", a.scope())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, NormalizeBaseURL(a.BaseURL)+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating oauth token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchanging oauth code: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading oauth token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newAPIError(http.MethodPost, "/oauth/token", resp.StatusCode, data)
	}
	var tr oauthTokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return "", fmt.Errorf("parsing oauth token response: %w", err)
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", errors.New("oauth token response missing access token")
	}
	return strings.TrimSpace(tr.AccessToken), nil
}
