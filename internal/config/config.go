// Package config loads and saves the DeckOps TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/DeckOps/internal/ygo/enrich"
	"github.com/ramonehamilton/DeckOps/internal/ygo/tips"
)

// Config represents the application configuration.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Tips       tips.Thresholds  `toml:"tips"`
	Roles      RolesConfig      `toml:"roles"`
	Lookup     LookupConfig     `toml:"lookup"`
	Storage    StorageConfig    `toml:"storage"`
	API        APIConfig        `toml:"api"`
	App        AppConfig        `toml:"app"`
}

// SimulationConfig contains simulation defaults.
type SimulationConfig struct {
	DrawCount int    `toml:"draw_count"` // Cards per opening hand
	Runs      int    `toml:"runs"`       // Hands per simulation
	MaxRuns   int    `toml:"max_runs"`   // Upper bound on requested runs
	Seed      uint64 `toml:"seed"`       // 0 = random
}

// RolesConfig holds the role and category inference rules, in priority order.
type RolesConfig struct {
	Rules      []enrich.RoleRule     `toml:"rules"`
	Categories []enrich.CategoryRule `toml:"categories"`
}

// LookupConfig contains card catalog client settings.
type LookupConfig struct {
	BaseURL        string `toml:"base_url"`
	Timeout        string `toml:"timeout"`         // e.g. "15s"
	RateLimit      string `toml:"rate_limit"`      // Minimum spacing between requests, e.g. "100ms"
	MaxRetries     int    `toml:"max_retries"`     // Retries on network errors, 429 and 5xx
	StaleThreshold string `toml:"stale_threshold"` // Cached card age before refresh, e.g. "168h"
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path        string `toml:"path"` // SQLite file; empty = ~/.deckops/deckops.db
	AutoMigrate bool   `toml:"auto_migrate"`
}

// APIConfig contains REST server settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			DrawCount: 5,
			Runs:      1000,
			MaxRuns:   10000,
		},
		Tips: tips.DefaultThresholds(),
		Roles: RolesConfig{
			Rules:      enrich.DefaultRoleRules(),
			Categories: enrich.DefaultCategoryRules(),
		},
		Lookup: LookupConfig{
			BaseURL:        "https://db.ygoprodeck.com/api/v7",
			Timeout:        "15s",
			RateLimit:      "100ms",
			MaxRetries:     3,
			StaleThreshold: "168h",
		},
		Storage: StorageConfig{
			AutoMigrate: true,
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
	}
}

// Dir returns the DeckOps home directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".deckops")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

// DefaultPath returns the path of the default configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from path, or the default path when empty.
// A missing file yields the default config. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Rule lists in the file replace the defaults rather than extend them.
	config.Roles = RolesConfig{}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if config.Roles.Rules == nil {
		config.Roles.Rules = enrich.DefaultRoleRules()
	}
	if config.Roles.Categories == nil {
		config.Roles.Categories = enrich.DefaultCategoryRules()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Save writes the configuration to path, or the default path when empty.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.MaxRuns < 1 {
		return fmt.Errorf("max runs must be positive: %d", s.MaxRuns)
	}
	if s.Runs < 1 || s.Runs > s.MaxRuns {
		return fmt.Errorf("runs must be between 1 and %d: %d", s.MaxRuns, s.Runs)
	}
	if s.DrawCount < 1 {
		return fmt.Errorf("draw count must be positive: %d", s.DrawCount)
	}

	for name, value := range map[string]string{
		"timeout":         c.Lookup.Timeout,
		"rate limit":      c.Lookup.RateLimit,
		"stale threshold": c.Lookup.StaleThreshold,
	} {
		if d, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid lookup %s %q: %w", name, value, err)
		} else if d < 0 {
			return fmt.Errorf("lookup %s cannot be negative: %s", name, value)
		}
	}

	if c.Lookup.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.Lookup.MaxRetries)
	}

	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}

	for i, r := range c.Roles.Rules {
		if !r.Role.Valid() {
			return fmt.Errorf("role rule %d: unknown role %q", i, r.Role)
		}
	}
	for i, r := range c.Roles.Categories {
		if !r.Category.Valid() {
			return fmt.Errorf("category rule %d: unknown category %q", i, r.Category)
		}
	}

	return nil
}

// LookupTimeout returns the catalog request timeout.
func (c *Config) LookupTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Lookup.Timeout)
	return d
}

// LookupRateLimit returns the minimum spacing between catalog requests.
func (c *Config) LookupRateLimit() time.Duration {
	d, _ := time.ParseDuration(c.Lookup.RateLimit)
	return d
}

// StaleThreshold returns how long cached cards stay fresh.
func (c *Config) StaleThreshold() time.Duration {
	d, _ := time.ParseDuration(c.Lookup.StaleThreshold)
	return d
}

// DatabasePath returns the configured database path, or ~/.deckops/deckops.db.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "deckops.db"), nil
}
