package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout.NodeSpacingX != 170 {
		t.Errorf("NodeSpacingX = %v, want 170", cfg.Layout.NodeSpacingX)
	}
	if cfg.Layout.LayerSpacingY != 120 {
		t.Errorf("LayerSpacingY = %v, want 120", cfg.Layout.LayerSpacingY)
	}
	if cfg.Analysis.Weight != "duration" {
		t.Errorf("Weight = %q, want duration", cfg.Analysis.Weight)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[layout]
node_spacing_x = 200
layer_spacing_y = 90

[analysis]
weight = "cost"
max_path_length = 50

[cache]
backend = "redis"
redis_addr = "localhost:6380"

[store]
backend = "mongo"
uri = "mongodb://db:27017"
database = "workflows"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Layout.NodeSpacingX != 200 {
		t.Errorf("NodeSpacingX = %v, want 200", cfg.Layout.NodeSpacingX)
	}
	if cfg.Analysis.Weight != "cost" {
		t.Errorf("Weight = %q, want cost", cfg.Analysis.Weight)
	}
	if cfg.Analysis.MaxPathLength != 50 {
		t.Errorf("MaxPathLength = %v, want 50", cfg.Analysis.MaxPathLength)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "localhost:6380" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Store.Database != "workflows" {
		t.Errorf("Database = %q, want workflows", cfg.Store.Database)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[analysis]
weight = "cost"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Analysis.Weight != "cost" {
		t.Errorf("Weight = %q, want cost", cfg.Analysis.Weight)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Layout.NodeSpacingX != 170 {
		t.Errorf("NodeSpacingX = %v, want default 170", cfg.Layout.NodeSpacingX)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want default memory", cfg.Store.Backend)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("[layout\nbroken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() with malformed file should return error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Empty path returns defaults.
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault(\"\") error = %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}

	// Missing file returns defaults.
	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault(missing) error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}

	// Present but malformed file is an error.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Error("LoadOrDefault() with malformed file should return error")
	}
}
