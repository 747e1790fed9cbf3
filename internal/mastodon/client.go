package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/shuuji3/tweepy-mastodon/internal/metrics"
)

const defaultUserAgent = "tweepydon/1.0"

// ErrNotFound matches any APIError carrying HTTP 404.
var ErrNotFound = errors.New("mastodon: not found")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mastodon api %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("mastodon api %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
	}
	return &APIError{StatusCode: status, Method: method, Path: path, Message: msg}
}

// TokenProvider supplies the bearer token for API authentication.
type TokenProvider interface {
	AccessToken() (string, error)
}

// StaticToken is a TokenProvider for a fixed token.
type StaticToken string

func (t StaticToken) AccessToken() (string, error) { return string(t), nil }

// HTTPClient is a bearer-token client for the Mastodon REST API.
type HTTPClient struct {
	baseURL     string
	tokens      TokenProvider
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	userAgent   string
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithRetry sets how often 429 and 5xx answers are retried.
func WithRetry(maxAttempts int, baseBackoff time.Duration) Option {
	return func(c *HTTPClient) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if baseBackoff > 0 {
			c.baseBackoff = baseBackoff
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func NewHTTPClient(baseURL string, tokens TokenProvider, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:     NormalizeBaseURL(baseURL),
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("MASTODON_API_MAX_ATTEMPTS", 3),
		baseBackoff: time.Duration(getEnvInt("MASTODON_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
		userAgent:   defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NormalizeBaseURL trims trailing slashes and adds https:// to bare hosts.
func NormalizeBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return s
}

func (c *HTTPClient) BaseURL() string { return c.baseURL }

type request struct {
	method   string
	path     string
	endpoint string // metrics label
	query    url.Values
	form     url.Values
	body     []byte
	ctype    string
	idemKey  string
}

func (c *HTTPClient) auth(req *http.Request) error {
	if c.tokens != nil {
		tok, err := c.tokens.AccessToken()
		if err != nil {
			return fmt.Errorf("reading access token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return nil
}

func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	var body io.Reader
	ctype := r.ctype
	switch {
	case r.body != nil:
		body = bytes.NewReader(r.body)
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		ctype = "application/x-www-form-urlencoded"
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", r.endpoint, err)
	}
	if err := c.auth(req); err != nil {
		return err
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	if r.idemKey != "" {
		req.Header.Set("Idempotency-Key", r.idemKey)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.doWithRetry(ctx, r.endpoint, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	metrics.ObserveAPIRequest(r.endpoint, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", r.endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(r.method, r.path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", r.endpoint, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path, endpoint string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, endpoint: endpoint, query: query}, out)
}

func (c *HTTPClient) post(ctx context.Context, path, endpoint string, form url.Values, out any) error {
	if form == nil {
		form = url.Values{}
	}
	return c.do(ctx, request{method: http.MethodPost, path: path, endpoint: endpoint, form: form}, out)
}

// doWithRetry retries 429 and 5xx answers and transport errors. Retry-After
// wins over the exponential schedule. The last answer is returned as is.
func (c *HTTPClient) doWithRetry(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseBackoff
	bo.RandomizationFactor = 0.2
	bo.Multiplier = 2
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()

	attempts := c.maxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		areq := req.Clone(ctx)
		if req.GetBody != nil {
			b, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			areq.Body = b
		}
		resp, err := c.httpClient.Do(areq)
		wait := bo.NextBackOff()
		if err == nil {
			retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
			if !retryable || attempt == attempts {
				return resp, nil
			}
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = d
			}
			_ = resp.Body.Close()
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt == attempts {
				break
			}
		}
		metrics.IncAPIRetry(endpoint)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
