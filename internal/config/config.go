package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`
	Workers  int     `yaml:"workers"` // polling workers
}

type ChannelConfig struct {
	// ID of the broadcast channel. Zero means no channel is configured and
	// the scheduled refresh only commits state.
	ID int64 `yaml:"id"`
}

type FeedConfig struct {
	URL                 string `yaml:"url"`
	PollIntervalMinutes int    `yaml:"poll_interval_minutes"`
	InitialDelaySeconds int    `yaml:"initial_delay_seconds"`
}

type BrandingConfig struct {
	LogoURL string `yaml:"logo_url"`
}

type DeliveryConfig struct {
	// Pace is the minimum gap between consecutive product messages,
	// keeping broadcasts under the messaging platform's rate limits.
	Pace time.Duration `yaml:"pace"`
}

type StateConfig struct {
	Path         string `yaml:"path"`
	TaxonomyPath string `yaml:"taxonomy_path"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the metrics endpoint
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Channel  ChannelConfig  `yaml:"channel"`
	Feed     FeedConfig     `yaml:"feed"`
	Branding BrandingConfig `yaml:"branding"`
	Delivery DeliveryConfig `yaml:"delivery"`
	State    StateConfig    `yaml:"state"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Env override so the token can stay out of the yaml file.
	if tok := os.Getenv("BOT_TOKEN"); tok != "" {
		cfg.Bot.Token = tok
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Feed.PollIntervalMinutes <= 0 {
		cfg.Feed.PollIntervalMinutes = 25
	}
	if cfg.Feed.InitialDelaySeconds <= 0 {
		cfg.Feed.InitialDelaySeconds = 10
	}
	if cfg.Delivery.Pace <= 0 {
		cfg.Delivery.Pace = time.Second
	}
	if cfg.State.Path == "" {
		cfg.State.Path = "data/state.json"
	}
	if cfg.State.TaxonomyPath == "" {
		cfg.State.TaxonomyPath = "data/taxonomy.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// Minimal validation. Only the token is fatal, and only outside dev mode:
	// dev runs without credentials get the noop bot adapter instead. A missing
	// feed url is a per-operation condition reported to the admin/requester at
	// call time.
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required (yaml or BOT_TOKEN env)")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollIntervalMinutes) * time.Minute
}

func (c *Config) InitialDelay() time.Duration {
	return time.Duration(c.Feed.InitialDelaySeconds) * time.Second
}
