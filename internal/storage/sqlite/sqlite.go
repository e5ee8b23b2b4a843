// Package sqlite stores the planning document as one row of the documents
// table, keyed by the configured document key.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emilianohg/waypoint/internal/db"
	"github.com/emilianohg/waypoint/internal/repository"
)

type Backend struct {
	conn *sql.DB
	repo *repository.DocumentRepo
	key  string
}

// Open opens the database at path and applies pending schema migrations.
func Open(path, key string) (*Backend, error) {
	if key == "" {
		return nil, fmt.Errorf("empty document key")
	}
	conn, err := db.OpenAndMigrate(path)
	if err != nil {
		return nil, err
	}
	return &Backend{
		conn: conn,
		repo: repository.NewDocumentRepo(conn),
		key:  key,
	}, nil
}

func (b *Backend) Key() string {
	return b.key
}

func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	data, err := b.repo.Get(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", b.key, err)
	}
	return data, nil
}

func (b *Backend) Save(ctx context.Context, data []byte) error {
	if err := b.repo.Put(ctx, b.key, data); err != nil {
		return fmt.Errorf("save %q: %w", b.key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.conn.Close()
}
