package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/leafspan/pkg/buildinfo"
	"github.com/matzehuels/leafspan/pkg/cache"
	"github.com/matzehuels/leafspan/pkg/config"
	"github.com/matzehuels/leafspan/pkg/pipeline"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "leafspan"
)

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

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Leafspan finds spanning trees with many leaves",
		Long:         `Leafspan is a CLI tool for building undirected graphs and finding spanning trees that maximize the number of leaves.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/leafspan/config.toml)")

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.leavesCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its solver toggles.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	solver.SetUseFixedSeed(cfg.Solver.FixedSeed, cfg.Solver.Seed)
	solver.SetUseParallel(cfg.Solver.Parallel)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Backend == config.BackendRedis || c.Config.Cache.Backend == config.BackendMongo {
		keyer = cache.NewScopedKeyer(nil, "cli:")
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the configured cache backend. A shared backend that cannot
// be reached is logged and replaced by no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}

	switch cfg.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			c.Logger.Warn("mongo cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return mc, nil
	}

	dir, err := c.Config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// solveOptions returns pipeline options seeded from the config file.
func (c *CLI) solveOptions() pipeline.Options {
	s := c.Config.Solver
	return pipeline.Options{
		Strategy:   s.Strategy,
		Iterations: s.Iterations,
		FixedSeed:  s.FixedSeed,
		Seed:       s.Seed,
		Parallel:   s.Parallel,
		Workers:    s.Workers,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath strips the extension from input, for naming derived files.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// writeArtifacts writes each rendered format next to base and returns the
// paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		f = strings.ToLower(f)
		path := base + "." + f
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
