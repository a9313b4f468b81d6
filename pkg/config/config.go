// Package config loads relgraph settings from a TOML file.
//
// A file only needs the keys it changes; everything else keeps the value from
// [Default]:
//
//	[input]
//	max_size = 10485760
//	encoding = "windows-1252"
//
//	[layout]
//	direction = "LR"
//	passes = 12
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":9090"
//	store = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	session_ttl = "30m"
//
// Unknown keys are rejected so that typos do not pass silently.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	relerrors "github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/session"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// AppName names the configuration and cache directories.
const AppName = "relgraph"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Session stores.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full set of settings.
type Config struct {
	Input  InputConfig    `toml:"input"`
	Layout layout.Options `toml:"layout"`
	Cache  CacheConfig    `toml:"cache"`
	Server ServerConfig   `toml:"server"`
}

// InputConfig controls document loading.
type InputConfig struct {
	// MaxSize limits input documents in bytes; a negative value disables the check.
	MaxSize  int64  `toml:"max_size"`
	Encoding string `toml:"encoding"`
}

// Options converts the section to loader options.
func (c InputConfig) Options() xmldoc.Options {
	return xmldoc.Options{MaxSize: c.MaxSize, Encoding: c.Encoding}
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	// Prefix namespaces every key, for caches shared between deployments.
	Prefix string `toml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	MaxSessions   int      `toml:"max_sessions"`
	SessionTTL    Duration `toml:"session_ttl"`
	Store         string   `toml:"store"`
	SessionDir    string   `toml:"session_dir"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "1h").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Input: InputConfig{
			MaxSize:  xmldoc.DefaultMaxSize,
			Encoding: xmldoc.DefaultEncoding,
		},
		Layout: layout.DefaultOptions(),
		Cache: CacheConfig{
			Backend: CacheFile,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			MaxSessions:   session.DefaultMaxSessions,
			SessionTTL:    Duration(session.DefaultTTL),
			Store:         StoreMemory,
			MongoDatabase: session.DefaultMongoDatabase,
		},
	}
}

// Load decodes the TOML file at path over [Default] and validates the
// result. An empty path or a file that does not exist yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, relerrors.Wrap(relerrors.ErrCodeInvalidOption, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return base, relerrors.New(relerrors.ErrCodeInvalidOption, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Input.Encoding != "" {
		if err := xmldoc.ValidateEncoding(c.Input.Encoding); err != nil {
			return err
		}
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return relerrors.New(relerrors.ErrCodeInvalidOption, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return relerrors.New(relerrors.ErrCodeInvalidOption, "cache.redis_addr is required for the redis backend")
	}
	switch c.Server.Store {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Server.MongoURI == "" {
			return relerrors.New(relerrors.ErrCodeInvalidOption, "server.mongo_uri is required for the mongo store")
		}
	default:
		return relerrors.New(relerrors.ErrCodeInvalidOption, "unknown session store %q (want memory, file or mongo)", c.Server.Store)
	}
	if c.Server.MaxSessions < 0 || c.Server.SessionTTL < 0 {
		return relerrors.New(relerrors.ErrCodeInvalidOption, "server limits must not be negative")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// DefaultPath returns $XDG_CONFIG_HOME/relgraph/config.toml, falling back
// to ~/.config.
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

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/relgraph or ~/.cache/relgraph.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// SessionDir returns the file session store directory: server.session_dir
// when set, otherwise a sessions directory below the cache directory.
func (c Config) SessionDir() (string, error) {
	if c.Server.SessionDir != "" {
		return c.Server.SessionDir, nil
	}
	dir, err := c.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}
