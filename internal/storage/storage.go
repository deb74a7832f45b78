// Package storage persists game records. The backend is picked at startup
// from Options.Driver.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var (
	ErrNotFound      = errors.New("game record not found")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Drivers lists every supported Options.Driver value.
var Drivers = []string{DriverMemory, DriverBadger, DriverSQLite, DriverPostgres, DriverRedis}

type Repository interface {
	Save(ctx context.Context, rec model.GameRecord) error
	Load(ctx context.Context, id string) (model.GameRecord, error)
	List(ctx context.Context) ([]model.GameRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

type Options struct {
	Driver string
	// Path is the badger directory. Empty runs badger in memory.
	Path string
	// DSN is the sqlite file or postgres connection string.
	DSN      string
	RedisURL string
	// TTL expires redis records; zero keeps them forever.
	TTL time.Duration
}

func Open(ctx context.Context, opts Options) (Repository, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverBadger:
		return OpenBadger(opts.Path)
	case DriverSQLite, DriverPostgres:
		return OpenSQL(opts.Driver, opts.DSN)
	case DriverRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.TTL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}

func gameKey(id string) string {
	return "game:" + id
}
