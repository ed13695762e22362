package client

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups the environment-driven client settings. Values are taken
// from variables with the prefix "INSTIWISE_". Example:
// INSTIWISE_BASE_URL=https://api.example.edu INSTIWISE_HTTP_TIMEOUT=10s .
type Config struct {
	BaseURL           string        `envconfig:"BASE_URL"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	SessionPath       string        `envconfig:"SESSION_PATH" default:""`
	SessionPassphrase string        `envconfig:"SESSION_PASSPHRASE" default:""`
	ReminderLead      time.Duration `envconfig:"REMINDER_LEAD" default:"30m"`
}

// LoadConfig populates Config from environment variables (prefix INSTIWISE_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("INSTIWISE", &c)
}

// NewFromEnv builds a Client from environment configuration. Explicit
// options are applied after the environment-derived ones and win.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("INSTIWISE_BASE_URL is required")
	}

	all := []Option{
		WithHTTPTimeout(cfg.HTTPTimeout),
		WithReminderLead(cfg.ReminderLead),
	}
	if cfg.SessionPath != "" {
		all = append(all, WithSessionPath(cfg.SessionPath))
	}
	if cfg.SessionPassphrase != "" {
		all = append(all, WithSessionPassphrase(cfg.SessionPassphrase))
	}
	all = append(all, opts...)

	return New(cfg.BaseURL, all...), nil
}
