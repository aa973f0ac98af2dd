package portaransas

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/portaransas/chat"
)

// SiteConfig holds the server configuration. Site identity (name, phone,
// nav) lives in the content snapshot, not here.
type SiteConfig struct {
	Env string `yaml:"env"` // "dev" enables console logging
	URL string `yaml:"url"` // canonical base URL (default "http://localhost:3000")

	Addr         string `yaml:"addr"`     // listen address (default ":3000")
	DatabasePath string `yaml:"database"` // leads SQLite path (default "data/leads.db")
	ContentDir   string `yaml:"content_dir"`

	AnalyticsEnabled      bool          `yaml:"analytics"`
	AnalyticsDatabasePath string        `yaml:"analytics_database"` // default "data/analytics.db"
	AnalyticsRetention    time.Duration `yaml:"analytics_retention"`

	AdminPassword string `yaml:"admin_password"` // admin is disabled when empty
	SessionSecret string `yaml:"session_secret"` // required with AdminPassword
	CookieSecure  bool   `yaml:"cookie_secure"`

	OpenAIKey     string `yaml:"openai_api_key"` // chat is disabled when empty
	ChatModel     string `yaml:"chat_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	MetricsEnabled bool `yaml:"metrics"`

	LeadRateLimit int `yaml:"lead_rate_limit"` // submissions per IP per hour (default 5)
	ChatRateLimit int `yaml:"chat_rate_limit"` // messages per IP per minute (default 10)
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() SiteConfig {
	cfg := SiteConfig{AnalyticsEnabled: true, MetricsEnabled: true}
	cfg.setDefaults()
	return cfg
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/leads.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365 * 24 * time.Hour
	}
	if c.ChatModel == "" {
		c.ChatModel = chat.DefaultModel
	}
	if c.LeadRateLimit == 0 {
		c.LeadRateLimit = 5
	}
	if c.ChatRateLimit == 0 {
		c.ChatRateLimit = 10
	}
}

// Validate reports configuration that cannot be served.
func (c SiteConfig) Validate() error {
	if c.AdminPassword != "" && c.SessionSecret == "" {
		return errors.New("portaransas: SessionSecret is required when AdminPassword is set")
	}
	if c.AdminPassword != "" && len(c.SessionSecret) < 16 {
		return errors.New("portaransas: SessionSecret must be at least 16 bytes")
	}
	return nil
}

// LoadConfig reads an optional YAML file and applies environment overrides.
// An empty path skips the file.
func LoadConfig(path string) (SiteConfig, error) {
	cfg := SiteConfig{AnalyticsEnabled: true, MetricsEnabled: true}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("portaransas: open config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("portaransas: parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PA_ENV", &c.Env)
	str("PA_URL", &c.URL)
	str("PA_ADDR", &c.Addr)
	str("PA_DATABASE", &c.DatabasePath)
	str("PA_ANALYTICS_DATABASE", &c.AnalyticsDatabasePath)
	str("PA_CONTENT_DIR", &c.ContentDir)
	str("PA_ADMIN_PASSWORD", &c.AdminPassword)
	str("PA_SESSION_SECRET", &c.SessionSecret)
	str("OPENAI_API_KEY", &c.OpenAIKey)
	str("PA_CHAT_MODEL", &c.ChatModel)

	for key, dst := range map[string]*bool{
		"PA_ANALYTICS":     &c.AnalyticsEnabled,
		"PA_METRICS":       &c.MetricsEnabled,
		"PA_COOKIE_SECURE": &c.CookieSecure,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("portaransas: %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir serves files from dir under /public/ ahead of the
// embedded assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithCompleter sets the chat provider, overriding the OpenAI key.
func WithCompleter(c chat.Completer) Option {
	return func(a *App) {
		a.completer = c
	}
}

// WithoutStorage runs the app with no databases: lead capture, analytics
// and admin are unavailable. Used by static export.
func WithoutStorage() Option {
	return func(a *App) {
		a.noStorage = true
	}
}
