package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/storage"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		HTTP:        HTTPConfig{Addr: ":3000", CORSOrigins: "http://localhost:5173"},
		Storage:     StorageConfig{Driver: storage.DriverMemory, Path: "data/games", TTL: 24 * time.Hour},
		Matchmaking: MatchmakingConfig{Interval: time.Second},
		Log:         LogConfig{Level: "info"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHESS_HTTP_ADDR", ":8080")
	t.Setenv("CHESS_STORAGE_DRIVER", "redis")
	t.Setenv("CHESS_STORAGE_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("CHESS_MATCHMAKING_INTERVAL", "250ms")
	t.Setenv("CHESS_LOG_PRETTY", "true")

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Storage.Driver != storage.DriverRedis || !cfg.Log.Pretty {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Matchmaking.Interval != 250*time.Millisecond {
		t.Errorf("interval = %s", cfg.Matchmaking.Interval)
	}
	opts := cfg.StorageOptions()
	if opts.RedisURL != "redis://localhost:6379/1" || opts.TTL != 24*time.Hour {
		t.Errorf("storage options = %+v", opts)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.yaml")
	content := "storage:\n  driver: sqlite\n  dsn: games.db\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := NewViper()
	v.Set("http.addr", ":9000")
	cfg, err := Load(v, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != storage.DriverSQLite || cfg.Storage.DSN != "games.db" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("explicit value lost: %s", cfg.HTTP.Addr)
	}

	if _, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTP:        HTTPConfig{Addr: ":3000"},
			Storage:     StorageConfig{Driver: storage.DriverMemory},
			Matchmaking: MatchmakingConfig{Interval: time.Second},
			Log:         LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"badger without path runs in memory", func(c *Config) { c.Storage.Driver = storage.DriverBadger }, true},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, false},
		{"sqlite without dsn", func(c *Config) { c.Storage.Driver = storage.DriverSQLite }, false},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = storage.DriverPostgres }, false},
		{"redis without url", func(c *Config) { c.Storage.Driver = storage.DriverRedis }, false},
		{"no addr", func(c *Config) { c.HTTP.Addr = "" }, false},
		{"zero interval", func(c *Config) { c.Matchmaking.Interval = 0 }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, ok want %v", err, tt.ok)
			}
		})
	}

	cfg := valid()
	cfg.Storage.Driver = "mongo"
	if err := cfg.Validate(); !errors.Is(err, storage.ErrUnknownDriver) {
		t.Errorf("unknown driver error = %v", err)
	}
}
