// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"telegram-announce-bot/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode"` // polling | webhook (future)
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // polling workers
}

type AdminsConfig struct {
	SuperAdminIDs []int64 `yaml:"super_admin_ids"`
	AdminIDs      []int64 `yaml:"admin_ids"`
}

type DestinationConfig struct {
	Key  string `yaml:"key"`
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type DestinationsConfig struct {
	Groups   []DestinationConfig `yaml:"groups"`
	Channels []DestinationConfig `yaml:"channels"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL        string        `yaml:"url"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	SessionTTL time.Duration `yaml:"session_ttl"` // expiry for abandoned flows
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type OpsConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Admins       AdminsConfig       `yaml:"admins"`
	Destinations DestinationsConfig `yaml:"destinations"`
	Log          LogConfig          `yaml:"log"`
	Redis        RedisConfig        `yaml:"redis"`
	Database     DatabaseConfig     `yaml:"database"`
	Ops          OpsConfig          `yaml:"ops"`

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

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.SessionTTL <= 0 {
		cfg.Redis.SessionTTL = 15 * time.Minute
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 9090
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	// The tool is unusable with nobody authorized; refuse to start.
	if len(c.Admins.SuperAdminIDs) == 0 {
		return errors.New("admins.super_admin_ids must list at least one user")
	}

	seen := map[string]struct{}{}
	check := func(section string, ds []DestinationConfig) error {
		for _, d := range ds {
			if d.Key == "" {
				return fmt.Errorf("destinations.%s: key is required", section)
			}
			if d.ID == 0 {
				return fmt.Errorf("destinations.%s[%s]: id is required", section, d.Key)
			}
			if d.Name == "" {
				return fmt.Errorf("destinations.%s[%s]: name is required", section, d.Key)
			}
			if _, dup := seen[section+":"+d.Key]; dup {
				return fmt.Errorf("destinations.%s[%s]: duplicate key", section, d.Key)
			}
			seen[section+":"+d.Key] = struct{}{}
		}
		return nil
	}
	if err := check("groups", c.Destinations.Groups); err != nil {
		return err
	}
	return check("channels", c.Destinations.Channels)
}

// AdminRegistry builds the immutable authorization registry.
func (c *Config) AdminRegistry() *model.AdminRegistry {
	return model.NewAdminRegistry(c.Admins.SuperAdminIDs, c.Admins.AdminIDs)
}

// DestinationRegistry builds the immutable destination registry in
// configuration order.
func (c *Config) DestinationRegistry() *model.DestinationRegistry {
	conv := func(ds []DestinationConfig) []model.Destination {
		out := make([]model.Destination, 0, len(ds))
		for _, d := range ds {
			out = append(out, model.Destination{Key: d.Key, ChatID: d.ID, Name: d.Name})
		}
		return out
	}
	return model.NewDestinationRegistry(conv(c.Destinations.Groups), conv(c.Destinations.Channels))
}
