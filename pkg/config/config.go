// Package config loads engine configuration from a TOML file.
//
// Every field has a working default, so a missing config file is not an
// error: callers get [Default] and CLI flags layer on top. A present but
// malformed file is an error - silently ignoring a file the user wrote
// would hide typos.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full engine configuration.
type Config struct {
	Layout   Layout   `toml:"layout"`
	Analysis Analysis `toml:"analysis"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
}

// Layout holds the spacing constants for the layered layout engine.
type Layout struct {
	NodeSpacingX  float64 `toml:"node_spacing_x"`
	LayerSpacingY float64 `toml:"layer_spacing_y"`
}

// Analysis bounds and defaults for the analyzers.
type Analysis struct {
	// MaxPathLength caps simple-path enumeration. Zero means twice the
	// node count of the analyzed graph.
	MaxPathLength int `toml:"max_path_length"`
	// Weight selects the critical-path attribute: "duration" or "cost".
	Weight string `toml:"weight"`
}

// Cache selects the result cache backend.
type Cache struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty means the user cache dir.
	Dir string `toml:"dir"`
	// RedisAddr is the redis backend's host:port.
	RedisAddr string `toml:"redis_addr"`
}

// Store selects the graph store backend.
type Store struct {
	// Backend is "memory" or "mongo".
	Backend string `toml:"backend"`
	// URI is the mongo connection string.
	URI string `toml:"uri"`
	// Database is the mongo database name.
	Database string `toml:"database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout: Layout{
			NodeSpacingX:  170,
			LayerSpacingY: 120,
		},
		Analysis: Analysis{
			Weight: "duration",
		},
		Cache: Cache{
			Backend: "file",
		},
		Store: Store{
			Backend:  "memory",
			URI:      "mongodb://localhost:27017",
			Database: "procscope",
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads and decodes a TOML config file. Fields absent from the file
// keep their [Default] values.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, otherwise returns [Default].
// A present but unreadable or malformed file is still an error.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPath returns the conventional config file location
// (~/.config/procscope/config.toml on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "procscope", "config.toml"), nil
}
