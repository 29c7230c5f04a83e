package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("CURIO_HOME", "/tmp/curio-home")
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 7749 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 7749)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendSQLite)
	}
	if cfg.Storage.Dir != "/tmp/curio-home" {
		t.Errorf("Storage.Dir = %q, want CURIO_HOME", cfg.Storage.Dir)
	}
	if cfg.Redis.Key != "curio:progress" {
		t.Errorf("Redis.Key = %q", cfg.Redis.Key)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:7749" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CURIO_HOME", "/srv/curio")
	if got := ConfigPath(); got != filepath.Join("/srv/curio", "config.toml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[api]
port = 9000

[storage]
backend = "memory"

[progress]
timezone = "UTC"
session_ttl = "30m"

[log]
mode = "dev"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CURIO_API_HOST", "0.0.0.0")
	t.Setenv("CURIO_METRICS_ENABLED", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 9000 || cfg.API.Host != "0.0.0.0" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Metrics.Enabled {
		t.Error("CURIO_METRICS_ENABLED=false should disable metrics")
	}
	if cfg.Log.Mode != "dev" || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v, want dev mode with default level", cfg.Log)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
	ttl, _ := cfg.SessionTTL()
	if ttl != 30*time.Minute {
		t.Errorf("SessionTTL() = %v, want 30m", ttl)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CURIO_HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 7749 {
		t.Errorf("API.Port = %d, want default", cfg.API.Port)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[api\nport = "), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CURIO_API_PORT":        "8080",
		"CURIO_STORAGE_BACKEND": "redis",
		"CURIO_REDIS_ADDR":      "cache:6379",
		"CURIO_REDIS_DB":        "3",
		"CURIO_REDIS_PASSWORD":  "hunter2",
		"CURIO_SESSION_TTL":     "45m",
		"CURIO_LOG_LEVEL":       " debug ",
	}
	cfg := DefaultConfig()
	if err := applyEnv(&cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	if cfg.API.Port != 8080 || cfg.Storage.Backend != BackendRedis || cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want trimmed %q", cfg.Log.Level, "debug")
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"CURIO_API_PORT", "eighty"},
		{"CURIO_REDIS_DB", "x"},
		{"CURIO_METRICS_ENABLED", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			err := applyEnv(&cfg, func(k string) string {
				if k == tt.key {
					return tt.val
				}
				return ""
			})
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("applyEnv(%s=%s) error = %v", tt.key, tt.val, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, false},
		{"sqlite without dir", func(c *Config) { c.Storage.Dir = "" }, false},
		{"redis without addr", func(c *Config) { c.Storage.Backend = BackendRedis; c.Redis.Addr = "" }, false},
		{"port zero", func(c *Config) { c.API.Port = 0 }, false},
		{"port too high", func(c *Config) { c.API.Port = 70000 }, false},
		{"bad timezone", func(c *Config) { c.Progress.Timezone = "Mars/Olympus" }, false},
		{"utc", func(c *Config) { c.Progress.Timezone = "UTC" }, true},
		{"bad ttl", func(c *Config) { c.Progress.SessionTTL = "soon" }, false},
		{"negative ttl", func(c *Config) { c.Progress.SessionTTL = "-1m" }, false},
		{"tiny ttl", func(c *Config) { c.Progress.SessionTTL = "3ns" }, false},
		{"empty ttl", func(c *Config) { c.Progress.SessionTTL = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestEncode_MasksPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redis.Password = "hunter2"

	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Error("Encode() leaked the redis password")
	}
	if !strings.Contains(out, "[storage]") {
		t.Errorf("Encode() output missing sections:\n%s", out)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Error("Encode() must not mutate the receiver")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	created, err := WriteDefault(path)
	if err != nil || !created {
		t.Fatalf("WriteDefault() = %v, %v", created, err)
	}
	created, err = WriteDefault(path)
	if err != nil || created {
		t.Errorf("second WriteDefault() = %v, %v; want false, nil", created, err)
	}

	t.Setenv("CURIO_HOME", t.TempDir())
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written default) error: %v", err)
	}
	if cfg.API.Port != 7749 {
		t.Errorf("round-tripped port = %d", cfg.API.Port)
	}
}
