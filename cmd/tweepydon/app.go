package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shuuji3/tweepy-mastodon/internal/cmdlog"
	"github.com/shuuji3/tweepy-mastodon/internal/config"
	"github.com/shuuji3/tweepy-mastodon/internal/engage"
	"github.com/shuuji3/tweepy-mastodon/internal/logging"
	"github.com/shuuji3/tweepy-mastodon/internal/store"
	"github.com/shuuji3/tweepy-mastodon/tweepy"
)

// app carries what the commands share. Config, API and journal are opened
// lazily so that init and auth work without credentials.
type app struct {
	cfgPath string
	asJSON  bool
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time

	// extra API options, used by tests to point at a fake server
	apiOpts []tweepy.Option

	cfg    *config.Config
	logger *log.Logger
	auth   *tweepy.OAuth1UserHandler
	api    *tweepy.API
	db     *store.DB
}

func newApp(out, errOut io.Writer) *app {
	return &app{cfgPath: "./tweepydon.yaml", out: out, errOut: errOut, now: time.Now}
}

func (a *app) config() (config.Config, error) {
	if a.cfg != nil {
		return *a.cfg, nil
	}
	cfg, err := config.Load(a.cfgPath)
	if os.IsNotExist(err) {
		cfg = defaultsFromEnv()
	} else if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", a.cfgPath, err)
	}
	a.cfg = &cfg
	a.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, a.errOut)
	logging.SetDefault(a.logger)
	return cfg, nil
}

// defaultsFromEnv is the configuration used when no file exists: defaults
// with the MASTODON_* variables taking precedence.
func defaultsFromEnv() config.Config {
	cfg := config.Default()
	base := cfg.Credentials.APIBaseURL
	cfg.Credentials.APIBaseURL = ""
	cfg.ResolveEnv()
	if cfg.Credentials.APIBaseURL == "" {
		cfg.Credentials.APIBaseURL = base
	}
	return cfg
}

func (a *app) authHandler() (*tweepy.OAuth1UserHandler, error) {
	if a.auth != nil {
		return a.auth, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	c := cfg.Credentials
	a.auth, err = tweepy.NewOAuth1UserHandler(c.ClientID, c.ClientSecret, c.AccessToken, "", c.APIBaseURL)
	return a.auth, err
}

func (a *app) client() (*tweepy.API, error) {
	if a.api != nil {
		return a.api, nil
	}
	auth, err := a.authHandler()
	if err != nil {
		return nil, err
	}
	cfg := *a.cfg
	if tok, _ := auth.AccessToken(); tok == "" {
		a.logger.Warn("no access token configured; run `tweepydon auth url` first")
	}
	opts := []tweepy.Option{
		tweepy.WithLogger(a.logger),
		tweepy.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout()}),
		tweepy.WithRateLimit(cfg.Client.RPS, cfg.Client.Burst),
		tweepy.WithRetry(cfg.Client.MaxAttempts, cfg.Client.BaseBackoff()),
		tweepy.WithUserAgent(cfg.Client.UserAgent),
	}
	if cfg.Translation.StrictLookups {
		opts = append(opts, tweepy.WithStrictLookups())
	}
	a.api, err = tweepy.NewAPI(auth, append(opts, a.apiOpts...)...)
	return a.api, err
}

func (a *app) journal() (*store.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	a.db, err = store.Open(cfg.Storage.DBPath)
	return a.db, err
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

// run wraps a command body with cmdlog once the config (and so the logger)
// is in place.
func (a *app) run(name string, f func(ctx context.Context) error) error {
	if _, err := a.config(); err != nil {
		return err
	}
	return cmdlog.Run(name, func() error { return f(context.Background()) })
}

// mutate runs f inside the engagement budget and journals it on success.
func (a *app) mutate(ctx context.Context, kind, target string, f func() error) error {
	db, err := a.journal()
	if err != nil {
		return err
	}
	return engage.Do(ctx, db, a.cfg.Engagement, kind, target, a.now(), f)
}

// parseUser reads a numeric id or a handle such as "@npr@mstdn.social".
func parseUser(arg string) tweepy.UserQuery {
	arg = strings.TrimSpace(arg)
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return tweepy.UserQuery{UserID: id}
	}
	return tweepy.UserQuery{ScreenName: strings.TrimPrefix(arg, "@")}
}

func parseStatusID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("status id %q is not a number", arg)
	}
	return id, nil
}
