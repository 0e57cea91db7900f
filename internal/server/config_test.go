package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/holdem/internal/game"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 6*time.Second, cfg.RevealDelay())
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigParsesHCL(t *testing.T) {
	path := writeConfigFile(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  reveal_delay_seconds = 2
  seed                 = 42
}

lobby {
  start_chips = 500
  rounds      = 10
  small_blind = 10
  big_blind   = 20
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	require.NotNil(t, cfg.Game)
	assert.Equal(t, 2*time.Second, cfg.RevealDelay())
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, game.Settings{StartChips: 500, Rounds: 10, SmallBlind: 10, BigBlind: 20}, cfg.LobbySettings())
}

func TestLoadConfigFillsPartialFile(t *testing.T) {
	path := writeConfigFile(t, `
server {
  port = 9999
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 6*time.Second, cfg.RevealDelay())
	assert.Equal(t, game.Settings{StartChips: 1000, SmallBlind: 5, BigBlind: 10}, cfg.LobbySettings())
}

func TestLoadConfigRejectsMalformedHCL(t *testing.T) {
	path := writeConfigFile(t, `server { port = `)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative reveal delay", func(c *Config) { c.Game.RevealDelaySeconds = -1 }, true},
		{"instant reveal", func(c *Config) { c.Game.RevealDelaySeconds = 0 }, false},
		{"zero start chips", func(c *Config) { c.Lobby.StartChips = 0 }, true},
		{"negative blind", func(c *Config) { c.Lobby.SmallBlind = -5 }, true},
		{"oversized rounds", func(c *Config) { c.Lobby.Rounds = 100000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
