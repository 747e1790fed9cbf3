package tweepy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOAuth1UserHandlerRequiresBaseURL(t *testing.T) {
	_, err := NewOAuth1UserHandler("ck", "cs", "at", "ats", "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingBaseURL))
}

func TestOAuth1UserHandlerDropsSecret(t *testing.T) {
	h, err := NewOAuth1UserHandler("ck", "cs", " at ", "ats", "mastodon.social/")
	require.NoError(t, err)
	assert.Equal(t, "https://mastodon.social", h.APIBaseURL())
	assert.Equal(t, "ck", h.ClientID())
	assert.Equal(t, "cs", h.ClientSecret())
	tok, err := h.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "at", tok)
	assert.Empty(t, h.AccessTokenSecret())

	h.SetAccessToken("new-token", "ignored")
	tok, _ = h.AccessToken()
	assert.Equal(t, "new-token", tok)
	assert.Empty(t, h.AccessTokenSecret())
}

func TestGetAuthorizationURL(t *testing.T) {
	h, err := NewOAuth1UserHandler("ck", "cs", "", "", "https://mastodon.social")
	require.NoError(t, err)
	u, err := url.Parse(h.GetAuthorizationURL(""))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", u.Path)
	assert.Equal(t, "ck", u.Query().Get("client_id"))
	assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", u.Query().Get("redirect_uri"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestGetAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseForm()) {
			return
		}
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "ck", r.PostForm.Get("client_id"))
		assert.Equal(t, "https://app.example/cb", r.PostForm.Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","scope":"read write follow"}`))
	}))
	defer ts.Close()

	h, err := NewOAuth1UserHandler("ck", "cs", "", "", ts.URL)
	require.NoError(t, err)
	tok, secret, err := h.GetAccessToken(context.Background(), "the-code", "https://app.example/cb", ts.Client())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Empty(t, secret)
	stored, _ := h.AccessToken()
	assert.Equal(t, "fresh", stored)
}

func TestGetAccessTokenRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer ts.Close()

	h, err := NewOAuth1UserHandler("ck", "cs", "old", "", ts.URL)
	require.NoError(t, err)
	_, _, err = h.GetAccessToken(context.Background(), "bad", "", ts.Client())
	require.Error(t, err)
	stored, _ := h.AccessToken()
	assert.Equal(t, "old", stored)
}
