package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tweepydon configuration model.
// It captures the Mastodon credentials, client tuning, and engagement limits.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Client      ClientConfig      `yaml:"client"`
	Translation TranslationConfig `yaml:"translation"`
	Engagement  EngagementConfig  `yaml:"engagement"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type CredentialsConfig struct {
	// Registered application. If empty, read MASTODON_CLIENT_ID / MASTODON_CLIENT_SECRET
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	// User token. If empty, read MASTODON_ACCESS_TOKEN
	AccessToken string `yaml:"accessToken"`
	// e.g. "mastodon.social" or "https://mastodon.social". If empty, read MASTODON_API_BASE_URL
	APIBaseURL string `yaml:"apiBaseUrl"`
}

type ClientConfig struct {
	RPS            float64 `yaml:"rps"`
	Burst          int     `yaml:"burst"`
	MaxAttempts    int     `yaml:"maxAttempts"`
	BaseBackoffMs  int     `yaml:"baseBackoffMs"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	UserAgent      string  `yaml:"userAgent"`
}

func (c ClientConfig) BaseBackoff() time.Duration {
	return time.Duration(c.BaseBackoffMs) * time.Millisecond
}

func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type TranslationConfig struct {
	// Fail calls whose reply target cannot be looked up instead of nulling the screen name
	StrictLookups bool `yaml:"strictLookups"`
}

type EngagementConfig struct {
	// Max mutating actions per hour and per day
	MaxPerHour int `yaml:"maxPerHour"`
	MaxPerDay  int `yaml:"maxPerDay"`
	// Quiet hours (UTC) during which nothing is posted or followed
	QuietHours []int `yaml:"quietHours"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Credentials: CredentialsConfig{APIBaseURL: "https://mastodon.social"},
		Client: ClientConfig{
			RPS:            1,
			Burst:          10,
			MaxAttempts:    3,
			BaseBackoffMs:  500,
			TimeoutSeconds: 30,
			UserAgent:      "tweepydon/0.1",
		},
		Engagement: EngagementConfig{MaxPerHour: 6, MaxPerDay: 40, QuietHours: []int{0, 1, 2, 3, 4, 5}},
		Storage:    StorageConfig{DBPath: "./tweepydon.db"},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
		Metrics:    MetricsConfig{Addr: ":9090"},
	}
}

// ResolveEnv fills in credential fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.ClientID == "" {
		c.Credentials.ClientID = os.Getenv("MASTODON_CLIENT_ID")
	}
	if c.Credentials.ClientSecret == "" {
		c.Credentials.ClientSecret = os.Getenv("MASTODON_CLIENT_SECRET")
	}
	if c.Credentials.AccessToken == "" {
		c.Credentials.AccessToken = os.Getenv("MASTODON_ACCESS_TOKEN")
	}
	if c.Credentials.APIBaseURL == "" {
		c.Credentials.APIBaseURL = os.Getenv("MASTODON_API_BASE_URL")
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Credentials.APIBaseURL) == "" {
		return errors.New("credentials.apiBaseUrl is required")
	}
	if c.Client.RPS < 0 || c.Client.Burst < 0 || c.Client.MaxAttempts < 0 {
		return errors.New("client limits must not be negative")
	}
	if c.Engagement.MaxPerHour < 0 || c.Engagement.MaxPerDay < 0 {
		return errors.New("engagement limits must not be negative")
	}
	for _, h := range c.Engagement.QuietHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("engagement.quietHours: %d is not an hour of the day", h)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
