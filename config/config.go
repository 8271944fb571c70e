package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the local, per-device rulebook configuration. The goal
// thresholds live here rather than in the journal.
type Config struct {
	User     UserConfig    `json:"user" yaml:"user"`
	Journal  JournalConfig `json:"journal" yaml:"journal"`
	Goals    GoalsConfig   `json:"goals" yaml:"goals"`
	Logging  LoggingConfig `json:"logging" yaml:"logging"`
	Server   ServerConfig  `json:"server" yaml:"server"`
	Timezone string        `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name, empty for local
}

// UserConfig remembers which profile the CLI acts for.
type UserConfig struct {
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// JournalConfig locates the SQLite journal.
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// GoalsConfig holds the weekly goal and lifetime target, both in account
// currency.
type GoalsConfig struct {
	WeeklyGoal     float64 `json:"weekly_goal" yaml:"weekly_goal"`
	LifetimeTarget float64 `json:"lifetime_target" yaml:"lifetime_target"`
}

// LoggingConfig controls the zerolog console logger.
type LoggingConfig struct {
	Level   string `json:"level" yaml:"level"` // debug|info|warn|error
	NoColor bool   `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// ServerConfig configures the live dashboard feed.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	if err := validGoal(c.Goals.WeeklyGoal); err != nil {
		return fmt.Errorf("goals.weekly_goal %w", err)
	}
	if err := validGoal(c.Goals.LifetimeTarget); err != nil {
		return fmt.Errorf("goals.lifetime_target %w", err)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug|info|warn|error")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// SetGoals replaces both goal thresholds after validating them.
func (c *Config) SetGoals(weekly, lifetime float64) error {
	if err := validGoal(weekly); err != nil {
		return fmt.Errorf("weekly goal %w", err)
	}
	if err := validGoal(lifetime); err != nil {
		return fmt.Errorf("lifetime target %w", err)
	}
	c.Goals.WeeklyGoal = weekly
	c.Goals.LifetimeTarget = lifetime
	return nil
}

// Location resolves Timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func validGoal(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Journal: JournalConfig{
			DBPath: "./rulebook.sqlite",
		},
		Goals: GoalsConfig{
			WeeklyGoal:     5000,
			LifetimeTarget: 100000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
