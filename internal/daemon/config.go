// Package daemon holds curio's runtime configuration: TOML file, .env file
// and CURIO_* environment overrides, in that order of precedence.
package daemon

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ─── Config Types ───────────────────────────────────────────────────────────

// Config is the full curio configuration (~/.curio/config.toml).
type Config struct {
	API      APIConfig      `toml:"api"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Progress ProgressConfig `toml:"progress"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects the progress backend.
type StorageConfig struct {
	Backend string `toml:"backend"` // sqlite | redis | memory
	Dir     string `toml:"dir"`     // sqlite data directory
}

// RedisConfig is used when Storage.Backend is "redis".
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// ProgressConfig tunes the progression engine and sessions.
type ProgressConfig struct {
	Timezone   string `toml:"timezone"`    // IANA name or "Local"
	SessionTTL string `toml:"session_ttl"` // Go duration
}

// LogConfig configures zap.
type LogConfig struct {
	Mode  string `toml:"mode"` // dev | prod
	Level string `toml:"level"`
}

// MetricsConfig toggles /metrics.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7749,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Dir:     HomeDir(),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			Key:  "curio:progress",
		},
		Progress: ProgressConfig{
			Timezone:   "Local",
			SessionTTL: "2h",
		},
		Log: LogConfig{
			Mode:  "prod",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// ─── Paths ──────────────────────────────────────────────────────────────────

// HomeDir returns $CURIO_HOME or ~/.curio.
func HomeDir() string {
	if h := os.Getenv("CURIO_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".curio"
	}
	return filepath.Join(home, ".curio")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(HomeDir(), "config.toml")
}

// ─── Loading ────────────────────────────────────────────────────────────────

// Load reads path (a missing file yields defaults), then applies .env and
// CURIO_* overrides, then validates.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overlays CURIO_* variables.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("CURIO_API_HOST", &cfg.API.Host)
	if err := num("CURIO_API_PORT", &cfg.API.Port); err != nil {
		return err
	}
	str("CURIO_STORAGE_BACKEND", &cfg.Storage.Backend)
	str("CURIO_STORAGE_DIR", &cfg.Storage.Dir)
	str("CURIO_REDIS_ADDR", &cfg.Redis.Addr)
	str("CURIO_REDIS_PASSWORD", &cfg.Redis.Password)
	if err := num("CURIO_REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}
	str("CURIO_REDIS_KEY", &cfg.Redis.Key)
	str("CURIO_TIMEZONE", &cfg.Progress.Timezone)
	str("CURIO_SESSION_TTL", &cfg.Progress.SessionTTL)
	str("CURIO_LOG_MODE", &cfg.Log.Mode)
	str("CURIO_LOG_LEVEL", &cfg.Log.Level)

	if v := strings.TrimSpace(getenv("CURIO_METRICS_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CURIO_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (want sqlite, redis or memory)", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Dir == "" {
		return errors.New("storage.dir is required for the sqlite backend")
	}
	if c.Storage.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr is required for the redis backend")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port: %d out of range", c.API.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	return nil
}

// ─── Derived Values ─────────────────────────────────────────────────────────

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return net.JoinHostPort(c.API.Host, strconv.Itoa(c.API.Port))
}

// Location resolves the streak time zone.
func (c Config) Location() (*time.Location, error) {
	switch c.Progress.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Progress.Timezone)
	if err != nil {
		return nil, fmt.Errorf("progress.timezone: %w", err)
	}
	return loc, nil
}

// SessionTTL parses Progress.SessionTTL; empty means the 2h default.
func (c Config) SessionTTL() (time.Duration, error) {
	if c.Progress.SessionTTL == "" {
		return 2 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.Progress.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("progress.session_ttl: %w", err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("progress.session_ttl: must be at least 1s, got %s", d)
	}
	return d, nil
}

// Encode renders the configuration as TOML with secrets masked.
func (c Config) Encode() (string, error) {
	if c.Redis.Password != "" {
		c.Redis.Password = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteDefault writes DefaultConfig to path unless the file exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(DefaultConfig()); err != nil {
		return false, err
	}
	return true, nil
}
