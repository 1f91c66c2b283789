// Package config loads reqboard settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment overrides.
const (
	EnvEndpoint = "REQBOARD_ENDPOINT"
	EnvProject  = "REQBOARD_PROJECT"
)

// Defaults.
const (
	DefaultPageSize      = 10
	DefaultTablePageSize = 5
	DefaultDebounce      = 500 * time.Millisecond
	DefaultView          = "table"
)

var (
	// ErrNoEndpoint indicates no GraphQL endpoint was configured anywhere.
	ErrNoEndpoint = errors.New("no endpoint configured")
	// ErrInvalidView indicates an unknown view mode name.
	ErrInvalidView = errors.New("invalid view mode")
)

// Duration wraps time.Duration so it can be written as "500ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds every user-tunable setting.
type Config struct {
	Endpoint     string   `toml:"endpoint"`        // GraphQL endpoint URL
	Project      string   `toml:"project"`         // Project ID; empty shows the project picker
	PageSize     int      `toml:"page_size"`       // Server window size
	TablePage    int      `toml:"table_page_size"` // Rows per client-side table page
	View         string   `toml:"view"`            // Initial view: table, grid or board
	Debounce     Duration `toml:"debounce"`        // Windowed-page fetch debounce
	WebURL       string   `toml:"web_url"`         // Base URL of the web app for "open in browser"
	TokenCommand string   `toml:"token_command"`   // Command printing an API token
	LogFile      string   `toml:"log_file"`        // Log destination; empty discards logs
	Debug        bool     `toml:"debug"`           // Debug-level logging

	// Refetch the shadow copy after every confirmed move instead of leaving
	// it stale until the next page fetch.
	RefreshShadowAfterMove bool `toml:"refresh_shadow_after_move"`
}

// Default returns a config populated with defaults.
func Default() Config {
	return Config{
		PageSize:  DefaultPageSize,
		TablePage: DefaultTablePageSize,
		View:      DefaultView,
		Debounce:  Duration{DefaultDebounce},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/reqboard/config.toml, falling back to
// ~/.config/reqboard/config.toml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reqboard", "config.toml"), nil
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvProject); v != "" {
		cfg.Project = v
	}

	return cfg, nil
}

// Validate checks the merged settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return ErrNoEndpoint
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be greater than zero, got %d", c.PageSize)
	}
	if c.TablePage < 0 {
		return fmt.Errorf("table_page_size must not be negative, got %d", c.TablePage)
	}
	if c.Debounce.Duration < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	switch c.View {
	case "table", "grid", "board":
	default:
		return fmt.Errorf("%w: %q (want table, grid or board)", ErrInvalidView, c.View)
	}
	return nil
}
