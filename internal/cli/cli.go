// Package cli implements the procscope command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/procscope/procscope/pkg/buildinfo"
	"github.com/procscope/procscope/pkg/cache"
	"github.com/procscope/procscope/pkg/config"
	"github.com/procscope/procscope/pkg/pipeline"
	"github.com/procscope/procscope/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "procscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag value. Empty means the default
	// location (~/.config/procscope/config.toml).
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "procscope",
		Short:        "Procscope analyzes and lays out business process graphs",
		Long:         `Procscope is a CLI tool for analyzing business process graphs: it computes layered layouts, enumerates execution paths, finds bottlenecks, and extracts the critical path.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ~/.config/procscope/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.pathsCommand())
	root.AddCommand(c.bottlenecksCommand())
	root.AddCommand(c.criticalCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.gatewaysCommand())
	root.AddCommand(c.kpiCommand())
	root.AddCommand(c.resourcesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the config file named by --config, falling back to the
// default location and then to built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	return config.LoadOrDefault(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the loaded configuration.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ca, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(st, ca, nil, c.Logger), nil
}

// newLocalRunner creates a runner for file-based commands: an empty
// in-memory store plus the configured cache.
func (c *CLI) newLocalRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ca, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store.NewMemoryStore(), ca, nil, c.Logger), nil
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store.Backend == "mongo" {
		return store.NewMongoStore(ctx, cfg.Store.URI, cfg.Store.Database)
	}
	return store.NewMemoryStore(), nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/procscope/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// optionsFromConfig seeds pipeline options from the configuration file.
// Command flags override these values when set.
func optionsFromConfig(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		NodeSpacingX:  cfg.Layout.NodeSpacingX,
		LayerSpacingY: cfg.Layout.LayerSpacingY,
		Weight:        cfg.Analysis.Weight,
		MaxPathLength: cfg.Analysis.MaxPathLength,
	}
}
