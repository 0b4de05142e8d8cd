package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/logging"
)

// Config holds runtime settings for the bot.
type Config struct {
	BaseURL        string
	Identity       string
	Password       string
	AuthCollection string

	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	SessionTimeout  time.Duration

	HealthAddr string
	LogFormat  string
	Debug      bool

	KeySalt         string
	ButtonNamespace string

	ImageLogo     string
	ImageQuestion string
	ImageSad      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8090"
	c.AuthCollection = "/api/admins"
	c.RefreshInterval = 30 * time.Minute
	c.RequestTimeout = 10 * time.Second
	c.SessionTimeout = 30 * time.Second
	c.HealthAddr = "127.0.0.1:50052"
	c.LogFormat = logging.FormatJSON
	c.KeySalt = "knaughts"
	c.ButtonNamespace = "knaughts"
}

// Validate reports settings the bot cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q is not absolute", c.BaseURL))
	}
	if c.Identity == "" {
		errs = append(errs, errors.New("identity is required"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, errors.New("session timeout must be positive"))
	}
	if c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatText {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.ButtonNamespace == "" {
		errs = append(errs, errors.New("button namespace is required"))
	}

	return errors.Join(errs...)
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment, JSON (if present) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
