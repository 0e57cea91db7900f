package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cardtable/holdem/internal/game"
)

// Config is the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   *GameSettings  `hcl:"game,block"`
	Lobby  *LobbyDefaults `hcl:"lobby,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings tunes game pacing
type GameSettings struct {
	RevealDelaySeconds int   `hcl:"reveal_delay_seconds,optional"`
	Seed               int64 `hcl:"seed,optional"`
}

// LobbyDefaults are the settings applied when a client creates a lobby
// without specifying a value, or with one that is not a number
type LobbyDefaults struct {
	StartChips int `hcl:"start_chips,optional"`
	Rounds     int `hcl:"rounds,optional"`
	SmallBlind int `hcl:"small_blind,optional"`
	BigBlind   int `hcl:"big_blind,optional"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: &GameSettings{
			RevealDelaySeconds: int(DefaultRevealDelay / time.Second),
		},
		Lobby: &LobbyDefaults{
			StartChips: defaultStartChips,
			Rounds:     defaultRounds,
			SmallBlind: defaultSmallBlind,
			BigBlind:   defaultBigBlind,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Game == nil {
		config.Game = &GameSettings{}
	}
	if config.Game.RevealDelaySeconds == 0 {
		config.Game.RevealDelaySeconds = int(DefaultRevealDelay / time.Second)
	}
	if config.Lobby == nil {
		config.Lobby = &LobbyDefaults{}
	}
	if config.Lobby.StartChips == 0 {
		config.Lobby.StartChips = defaultStartChips
	}
	if config.Lobby.SmallBlind == 0 {
		config.Lobby.SmallBlind = defaultSmallBlind
	}
	if config.Lobby.BigBlind == 0 {
		config.Lobby.BigBlind = defaultBigBlind
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game != nil && c.Game.RevealDelaySeconds < 0 {
		return fmt.Errorf("reveal delay must not be negative")
	}
	if c.Lobby != nil {
		if c.Lobby.StartChips < 1 || c.Lobby.StartChips > maxStartChips {
			return fmt.Errorf("invalid default start chips: %d", c.Lobby.StartChips)
		}
		if c.Lobby.Rounds < 0 || c.Lobby.Rounds > maxRounds {
			return fmt.Errorf("invalid default rounds: %d", c.Lobby.Rounds)
		}
		if c.Lobby.SmallBlind < 0 || c.Lobby.BigBlind < 0 ||
			c.Lobby.SmallBlind > maxBlind || c.Lobby.BigBlind > maxBlind {
			return fmt.Errorf("invalid default blinds: %d/%d", c.Lobby.SmallBlind, c.Lobby.BigBlind)
		}
	}
	return nil
}

// ListenAddress returns the host:port the server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RevealDelay returns the configured reveal delay as a duration
func (c *Config) RevealDelay() time.Duration {
	if c.Game == nil {
		return DefaultRevealDelay
	}
	return time.Duration(c.Game.RevealDelaySeconds) * time.Second
}

// LobbySettings returns the configured lobby defaults as engine settings
func (c *Config) LobbySettings() game.Settings {
	if c.Lobby == nil {
		return game.Settings{
			StartChips: defaultStartChips,
			Rounds:     defaultRounds,
			SmallBlind: defaultSmallBlind,
			BigBlind:   defaultBigBlind,
		}
	}
	return game.Settings{
		StartChips: c.Lobby.StartChips,
		Rounds:     c.Lobby.Rounds,
		SmallBlind: c.Lobby.SmallBlind,
		BigBlind:   c.Lobby.BigBlind,
	}
}
