// Package config loads server settings from defaults, an optional config
// file, a .env file, CHESS_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/benbeisheim/chess-backend/internal/storage"
)

const EnvPrefix = "CHESS"

type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Matchmaking MatchmakingConfig `mapstructure:"matchmaking"`
	Log         LogConfig         `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string `mapstructure:"cors_origins"`
}

type StorageConfig struct {
	Driver   string        `mapstructure:"driver"`
	Path     string        `mapstructure:"path"`
	DSN      string        `mapstructure:"dsn"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MatchmakingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// NewViper returns a viper instance with every key defaulted and bound to
// its CHESS_ environment variable, e.g. storage.redis_url to
// CHESS_STORAGE_REDIS_URL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.cors_origins", "http://localhost:5173")
	v.SetDefault("storage.driver", storage.DriverMemory)
	v.SetDefault("storage.path", "data/games")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.ttl", "24h")
	v.SetDefault("matchmaking.interval", "1s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env (if present) and configFile (if set) into v and decodes
// the result. Flags should already be bound to v.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if !slices.Contains(storage.Drivers, c.Storage.Driver) {
		return fmt.Errorf("storage.driver %q: %w", c.Storage.Driver, storage.ErrUnknownDriver)
	}
	switch c.Storage.Driver {
	case storage.DriverSQLite, storage.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", c.Storage.Driver)
		}
	case storage.DriverRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis driver")
		}
	}
	if c.Storage.TTL < 0 {
		return errors.New("storage.ttl must not be negative")
	}
	if c.Matchmaking.Interval <= 0 {
		return errors.New("matchmaking.interval must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:   c.Storage.Driver,
		Path:     c.Storage.Path,
		DSN:      c.Storage.DSN,
		RedisURL: c.Storage.RedisURL,
		TTL:      c.Storage.TTL,
	}
}
