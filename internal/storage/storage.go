// Package storage defines the persistence port of the planning store and
// opens the backend selected in the configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/emilianohg/waypoint/internal/config"
	"github.com/emilianohg/waypoint/internal/storage/file"
	"github.com/emilianohg/waypoint/internal/storage/memory"
	"github.com/emilianohg/waypoint/internal/storage/postgres"
	"github.com/emilianohg/waypoint/internal/storage/redis"
	"github.com/emilianohg/waypoint/internal/storage/sqlite"
)

// Backend loads and saves the whole planning document. Load returns nil
// data when nothing has been stored yet.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// KeyValue is implemented by backends that keep the document as one value
// under a key. An unreadable value in such a store reads as an empty
// document instead of failing.
type KeyValue interface {
	Backend
	Key() string
}

// IsKeyValue reports whether b is a key/value backend.
func IsKeyValue(b Backend) bool {
	_, ok := b.(KeyValue)
	return ok
}

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case config.BackendFile:
		b, err = unwrap(file.New(cfg.DocumentPath))
	case config.BackendSQLite:
		b, err = unwrap(sqlite.Open(cfg.SQLitePath, cfg.DocumentKey))
	case config.BackendRedis:
		b, err = unwrap(redis.Open(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.DocumentKey,
		}))
	case config.BackendPostgres:
		b, err = unwrap(postgres.Open(ctx, cfg.PostgresDSN, cfg.DocumentKey))
	case config.BackendMemory:
		b = memory.New(cfg.DocumentKey)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return b, nil
}

// unwrap keeps a typed nil pointer from escaping as a non-nil Backend.
func unwrap[T Backend](b T, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Describe returns a short human-readable location for b.
func Describe(b Backend) string {
	switch v := b.(type) {
	case *file.Backend:
		return "file " + v.Path()
	case *sqlite.Backend:
		return "sqlite key " + v.Key()
	case *redis.Backend:
		return "redis key " + v.Key()
	case *postgres.Backend:
		return "postgres key " + v.Key()
	case KeyValue:
		return "key " + v.Key()
	default:
		return fmt.Sprintf("%T", b)
	}
}
