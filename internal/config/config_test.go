//go:build !integration

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"telegram-announce-bot/internal/config"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
bot:
  token: "12345:TEST"
admins:
  super_admin_ids: [100]
  admin_ids: [200, 201]
destinations:
  groups:
    - key: group1
      id: -1001
      name: Main Group
  channels:
    - key: channel1
      id: -2001
      name: News Channel
`

func TestLoadConfig(t *testing.T) {
	t.Run("valid config with defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig(writeConfig(t, validYAML), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Bot.Workers != 8 {
			t.Errorf("workers = %d, want default 8", cfg.Bot.Workers)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("log defaults = %s/%s", cfg.Log.Level, cfg.Log.Format)
		}
		if cfg.Redis.SessionTTL != 15*time.Minute {
			t.Errorf("session ttl = %s, want default 15m", cfg.Redis.SessionTTL)
		}
		if cfg.Ops.Port != 9090 {
			t.Errorf("ops port = %d, want default 9090", cfg.Ops.Port)
		}
		if cfg.Runtime.Dev {
			t.Error("dev flag should be off")
		}
	})

	t.Run("registries reflect the config", func(t *testing.T) {
		cfg, err := config.LoadConfig(writeConfig(t, validYAML), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		admins := cfg.AdminRegistry()
		if !admins.IsAuthorized(100) || !admins.IsAuthorized(201) || admins.IsAuthorized(999) {
			t.Error("admin registry does not match config")
		}

		reg := cfg.DestinationRegistry()
		if reg.Len() != 2 {
			t.Fatalf("destinations = %d, want 2", reg.Len())
		}
		dst, err := reg.Resolve("channel_channel1")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if dst.ChatID != -2001 || dst.Name != "News Channel" {
			t.Errorf("destination = %+v", dst)
		}
	})

	t.Run("dev flag is carried", func(t *testing.T) {
		cfg, err := config.LoadConfig(writeConfig(t, validYAML), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Runtime.Dev {
			t.Error("dev flag lost")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			yaml string
			want string
		}{
			{
				"missing token",
				`
admins:
  super_admin_ids: [100]
`,
				"bot.token",
			},
			{
				"nobody authorized",
				`
bot:
  token: "12345:TEST"
`,
				"super_admin_ids",
			},
			{
				"destination without id",
				`
bot:
  token: "12345:TEST"
admins:
  super_admin_ids: [100]
destinations:
  groups:
    - key: group1
      name: Main Group
`,
				"id is required",
			},
			{
				"duplicate destination key",
				`
bot:
  token: "12345:TEST"
admins:
  super_admin_ids: [100]
destinations:
  groups:
    - key: group1
      id: -1001
      name: Main Group
    - key: group1
      id: -1002
      name: Other Group
`,
				"duplicate key",
			},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := config.LoadConfig(writeConfig(t, tc.yaml), false)
				if err == nil {
					t.Fatal("expected an error")
				}
				if !strings.Contains(err.Error(), tc.want) {
					t.Errorf("err = %v, want mention of %q", err, tc.want)
				}
			})
		}
	})
}
