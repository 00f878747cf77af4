// Package config loads nodecanvas settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/nodecanvas/config.toml (falling back to
// ~/.config/nodecanvas/config.toml). A missing file yields [Default]. After
// the file is read, NODECANVAS_* environment variables override individual
// settings:
//
//	NODECANVAS_STORAGE      storage.backend
//	NODECANVAS_STORAGE_DIR  storage.dir
//	NODECANVAS_REDIS_ADDR   storage.redis_addr
//	NODECANVAS_MONGO_URI    storage.mongo_uri
//	NODECANVAS_SQLITE_PATH  storage.sqlite_path
//	NODECANVAS_ADDR         server.addr
//
// Example file:
//
//	[canvas]
//	snap = 10
//	group_buffer = 10
//	frame_interval = "16ms"
//
//	[storage]
//	backend = "multi"
//	backends = ["file", "sqlite"]
//
//	[server]
//	addr = ":8080"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

const appName = "nodecanvas"

// Storage backends.
const (
	BackendFile   = "file"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMulti  = "multi"
)

var backends = []string{BackendFile, BackendNull, BackendRedis, BackendMongo, BackendSQLite, BackendMulti}

// Config holds nodecanvas configuration.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
}

// CanvasConfig controls movement and node defaults.
type CanvasConfig struct {
	Snap          float64  `toml:"snap"` // grid size, 0 disables snapping
	GroupBuffer   float64  `toml:"group_buffer"`
	FrameInterval Duration `toml:"frame_interval"`
	NodeWidth     float64  `toml:"node_width"`
	NodeHeight    float64  `toml:"node_height"`
}

// StorageConfig selects and configures the diagram sink.
type StorageConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	RedisPrefix     string   `toml:"redis_prefix"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
	SQLitePath      string   `toml:"sqlite_path"`
	Backends        []string `toml:"backends"` // members of a multi backend
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("16ms").
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			GroupBuffer:   10,
			FrameInterval: Duration{16 * time.Millisecond},
			NodeWidth:     200,
			NodeHeight:    100,
		},
		Storage: StorageConfig{
			Backend:         BackendFile,
			Dir:             filepath.Join(dataDir(), "diagrams"),
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "diagrams",
			SQLitePath:      filepath.Join(dataDir(), appName+".db"),
			Backends:        []string{BackendFile, BackendSQLite},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Dir returns the nodecanvas config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

func dataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, appName)
}

// Load reads the config at path ("" selects [Path]), applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path ("" selects [Path]), creating the directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ApplyEnv overrides settings from NODECANVAS_* environment variables.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		"NODECANVAS_STORAGE":     &c.Storage.Backend,
		"NODECANVAS_STORAGE_DIR": &c.Storage.Dir,
		"NODECANVAS_REDIS_ADDR":  &c.Storage.RedisAddr,
		"NODECANVAS_MONGO_URI":   &c.Storage.MongoURI,
		"NODECANVAS_SQLITE_PATH": &c.Storage.SQLitePath,
		"NODECANVAS_ADDR":        &c.Server.Addr,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	switch {
	case c.Canvas.Snap < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "canvas.snap must not be negative")
	case c.Canvas.GroupBuffer < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "canvas.group_buffer must not be negative")
	case c.Canvas.FrameInterval.Duration <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "canvas.frame_interval must be positive")
	case c.Canvas.NodeWidth < 0 || c.Canvas.NodeHeight < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "canvas node size must not be negative")
	}
	if err := validBackend(c.Storage.Backend); err != nil {
		return err
	}
	if c.Storage.Backend == BackendMulti {
		if len(c.Storage.Backends) == 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.backends is empty")
		}
		for _, b := range c.Storage.Backends {
			if b == BackendMulti {
				return errors.New(errors.ErrCodeInvalidConfig, "storage.backends cannot nest multi")
			}
			if err := validBackend(b); err != nil {
				return err
			}
		}
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is empty")
	}
	return nil
}

func validBackend(b string) error {
	if !slices.Contains(backends, b) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q (want one of %v)", b, backends)
	}
	return nil
}
