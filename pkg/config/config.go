// Package config loads turnoutpaths settings from a TOML file.
//
// The file is optional. Every field has a default, and command-line flags
// override whatever the file sets:
//
//	[paths]
//	angle_tolerance = 5.0
//	connect_distance = 0.1
//	max_groups = 1000
//	enabled = true
//	prefer_saved = false
//	ignore_no_combine = false
//	endpoint_conflicts = false
//
//	[cache]
//	backend = "file"        # file, none, redis or mongo
//	ttl = "720h"
//	redis_url = "redis://localhost:6379/0"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "turnoutpaths"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// AppName names the config and cache directories.
const AppName = "turnoutpaths"

// Cache backends.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Duration is a time.Duration written as a string such as "24h".
type Duration struct{ time.Duration }

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

// Paths configures generation.
type Paths struct {
	AngleTolerance    float64 `toml:"angle_tolerance"`
	ConnectDistance   float64 `toml:"connect_distance"`
	MaxGroups         int     `toml:"max_groups"`
	Enabled           bool    `toml:"enabled"`
	PreferSaved       bool    `toml:"prefer_saved"`
	IgnoreNoCombine   bool    `toml:"ignore_no_combine"`
	EndpointConflicts bool    `toml:"endpoint_conflicts"`
}

// Cache configures the table cache.
type Cache struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir"`
	RedisURL      string   `toml:"redis_url"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Config is the whole configuration file.
type Config struct {
	Paths  Paths  `toml:"paths"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			AngleTolerance:  paths.DefaultAngleTolerance,
			ConnectDistance: paths.DefaultConnectDistance,
			MaxGroups:       paths.DefaultMaxGroups,
			Enabled:         true,
		},
		Cache: Cache{
			Backend:       BackendFile,
			TTL:           Duration{30 * 24 * time.Hour},
			MongoDatabase: AppName,
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/turnoutpaths/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads path on top of the defaults. A missing file is not an error
// unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data on top of base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend settings.
func (c Config) Validate() error {
	if c.Paths.AngleTolerance <= 0 || c.Paths.AngleTolerance >= 180 {
		return errors.New(errors.ErrCodeInvalidConfig, "angle_tolerance must be in (0, 180), got %v", c.Paths.AngleTolerance)
	}
	if c.Paths.ConnectDistance <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "connect_distance must be positive, got %v", c.Paths.ConnectDistance)
	}
	if c.Paths.MaxGroups <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_groups must be positive, got %d", c.Paths.MaxGroups)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		return errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss")
	case BackendMongo:
		return errors.ValidateURL(c.Cache.MongoURI, "mongodb", "mongodb+srv")
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Options returns the engine options described by the configuration.
func (c Config) Options(logger *log.Logger) paths.Options {
	return paths.Options{
		AngleTolerance:    c.Paths.AngleTolerance,
		ConnectDistance:   c.Paths.ConnectDistance,
		MaxGroups:         c.Paths.MaxGroups,
		IgnoreNoCombine:   c.Paths.IgnoreNoCombine,
		EndpointConflicts: c.Paths.EndpointConflicts,
		Logger:            logger,
	}
}

// Settings returns the turnout settings described by the configuration.
func (c Config) Settings(logger *log.Logger) turnout.Settings {
	return turnout.Settings{
		Options:           c.Options(logger),
		DisableGeneration: !c.Paths.Enabled,
		PreferSavedTable:  c.Paths.PreferSaved,
	}
}
