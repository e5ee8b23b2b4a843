// Package postgres stores the planning document as a JSONB row.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS waypoint_documents (
		key TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type Backend struct {
	pool *pgxpool.Pool
	key  string
}

// Open connects to dsn and creates the documents table if needed.
func Open(ctx context.Context, dsn, key string) (*Backend, error) {
	if key == "" {
		return nil, fmt.Errorf("empty document key")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Backend{pool: pool, key: key}, nil
}

func (b *Backend) Key() string {
	return b.key
}

func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := b.pool.QueryRow(ctx,
		`SELECT body::text FROM waypoint_documents WHERE key = $1`, b.key,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", b.key, err)
	}
	return []byte(body), nil
}

func (b *Backend) Save(ctx context.Context, data []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO waypoint_documents (key, body) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, b.key, string(data))
	if err != nil {
		return fmt.Errorf("save %q: %w", b.key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}
