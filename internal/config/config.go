// Package config loads YAML-backed configuration for the pacd server and
// client binaries.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the game session server.
type Server struct {
	// Network — rendezvous listener clients dial to register.
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Levels
	LevelDir string `yaml:"level_dir"`

	// Admission
	MaxGames   int `yaml:"max_games"`
	QueueLimit int `yaml:"queue_limit"` // 0 = unbounded FIFO

	// Timeouts
	AcceptPollInterval time.Duration `yaml:"accept_poll_interval"` // dispatcher accept-deadline granularity
	RegistrationRead   time.Duration `yaml:"registration_read_timeout"`
	WorkerBackoff      time.Duration `yaml:"worker_backoff"` // §4.6 100ms back-off

	// Leaderboard
	LeaderboardPath  string        `yaml:"leaderboard_path"`
	LeaderboardTopN  int           `yaml:"leaderboard_top_n"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)

	// Metrics
	MetricsAddress string `yaml:"metrics_address"` // empty = disabled
}

// DefaultServer returns a Server config with sensible defaults, matching
// spec.md's stated constants (100ms back-off, 5-entry leaderboard).
func DefaultServer() Server {
	return Server{
		BindAddress:        "0.0.0.0",
		Port:               7171,
		LevelDir:           "levels",
		MaxGames:           4,
		QueueLimit:         0,
		AcceptPollInterval: 100 * time.Millisecond,
		RegistrationRead:   5 * time.Second,
		WorkerBackoff:      100 * time.Millisecond,
		LeaderboardPath:    "topPlayers.txt",
		LeaderboardTopN:    5,
		LogLevel:           "info",
		MetricsAddress:     "127.0.0.1:9191",
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Client holds configuration for the terminal client.
type Client struct {
	ServerAddress string        `yaml:"server_address"`
	CommandsFile  string        `yaml:"commands_file"` // empty = interactive keyboard input
	LogLevel      string        `yaml:"log_level"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
}

// DefaultClient returns a Client config with sensible defaults.
func DefaultClient() Client {
	return Client{
		ServerAddress: "127.0.0.1:7171",
		LogLevel:      "info",
		DialTimeout:   5 * time.Second,
	}
}

// LoadClient loads client config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
