package quillpress

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eringen/quillpress/views"
)

// SiteConfig holds all configuration for a quillpress site. LoadConfig fills
// it from the environment; programs embedding the App may also build it by
// hand, in which case New applies the same defaults.
type SiteConfig struct {
	Name        string `env:"SITE_NAME" envDefault:"Blog"`
	URL         string `env:"SITE_URL" envDefault:"http://localhost:3000"`
	Description string `env:"SITE_DESCRIPTION"`
	Author      string `env:"SITE_AUTHOR"`

	Addr string `env:"ADDR" envDefault:":3000"`

	DatabaseURL       string `env:"DATABASE_URL" envDefault:"data/quillpress.db"`
	DatabaseAuthToken string `env:"DATABASE_AUTH_TOKEN"`
	RedisURL          string `env:"REDIS_URL"`

	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	CookieSecure      bool          `env:"COOKIE_SECURE"`
	SessionTimeout    time.Duration `env:"SESSION_TIMEOUT" envDefault:"168h"`
	LoginAttempts     int           `env:"LOGIN_ATTEMPTS" envDefault:"5"`

	ArticleCacheTTL time.Duration `env:"ARTICLE_CACHE_TTL" envDefault:"5m"`
	MaxUploadSize   int64         `env:"MAX_UPLOAD_SIZE" envDefault:"26214400"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadConfig reads configuration from the environment after loading any of
// the given dotenv files that exist. Variables already set in the
// environment win over dotenv values.
func LoadConfig(dotenvFiles ...string) (SiteConfig, error) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return SiteConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/quillpress.db"
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = 7 * 24 * time.Hour
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 25 << 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate checks the settings needed to open the store.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"))
	}
	if c.SessionTimeout < 0 {
		errs = append(errs, errors.New("SESSION_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// StoreConfig returns the store settings.
func (c SiteConfig) StoreConfig() StoreConfig {
	return StoreConfig{
		URL:               c.DatabaseURL,
		AuthToken:         c.DatabaseAuthToken,
		AdminPassword:     c.AdminPassword,
		AdminPasswordHash: c.AdminPasswordHash,
	}
}

// Site returns the settings templates render.
func (c SiteConfig) Site() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses an already opened Store instead of opening one from
// DatabaseURL. The App does not close it.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithRedis shares the article cache through the given client instead of
// dialing RedisURL.
func WithRedis(client *redis.Client) Option {
	return func(a *App) {
		a.redis = client
	}
}
