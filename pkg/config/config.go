// Package config loads leafspan settings from a TOML file.
//
// The file is looked up in this order:
//
//  1. The path given with --config (must exist)
//  2. $XDG_CONFIG_HOME/leafspan/config.toml
//  3. ~/.config/leafspan/config.toml
//
// A missing default file is not an error; built-in defaults are used.
//
// Example file:
//
//	[solver]
//	strategy = "randomized"
//	iterations = 5000
//	fixed_seed = true
//	seed = 7
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/leafspan/pkg/cache"
	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/solver"
)

const appName = "leafspan"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the full settings file.
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// SolverConfig holds defaults for solve commands.
type SolverConfig struct {
	Strategy   string `toml:"strategy"`
	Iterations int    `toml:"iterations"`
	FixedSeed  bool   `toml:"fixed_seed"`
	Seed       uint64 `toml:"seed"`
	Parallel   bool   `toml:"parallel"`
	Workers    int    `toml:"workers"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	TTL     Duration `toml:"ttl"`

	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`

	RedisAddr   string `toml:"redis_addr"`
	RedisDB     int    `toml:"redis_db"`
	RedisPrefix string `toml:"redis_prefix"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures "leafspan serve".
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	MaxVertices  int      `toml:"max_vertices"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	Timeout      Duration `toml:"timeout"`
}

// Duration is a time.Duration read from a TOML string such as "90s".
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

// Default returns the built-in settings.
func Default() Config {
	d := solver.Defaults()
	return Config{
		Solver: SolverConfig{
			Strategy:   string(solver.StrategyExhaustive),
			Iterations: solver.DefaultIterations,
			FixedSeed:  d.UseFixedSeed,
			Seed:       d.Seed,
			Parallel:   d.UseParallel,
		},
		Cache: CacheConfig{
			Backend:       BackendFile,
			TTL:           Duration{cache.DefaultTTL},
			RedisAddr:     "localhost:6379",
			RedisPrefix:   appName + ":",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxVertices:  2000,
			MaxBodyBytes: 4 << 20,
			Timeout:      Duration{60 * time.Second},
		},
	}
}

// Load reads the config file at path, or the default location when path is
// empty. Values missing from the file keep their defaults.
//
// Returns NOT_FOUND if an explicit path does not exist and INVALID_FORMAT if
// the file is not valid TOML.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
			}
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	if _, err := solver.ParseStrategy(c.Solver.Strategy); err != nil {
		return err
	}
	if err := errors.ValidateIterations(c.Solver.Iterations); err != nil {
		return err
	}
	if c.Solver.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "solver.workers must be non-negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown cache backend %q (want file, redis, mongo or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "cache.ttl must be non-negative")
	}
	if c.Server.MaxVertices < 0 || c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "server limits must be non-negative")
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/leafspan/config.toml).
func DefaultPath() (string, error) {
	dir, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// CacheDir returns the file cache directory: the configured one, or the XDG
// cache location (~/.cache/leafspan/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
