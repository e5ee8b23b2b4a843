package repository

import (
	"context"
	"database/sql"
	"time"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Get returns the body stored under key, or nil if there is none.
func (r *DocumentRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE key = ?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Put replaces the body stored under key.
func (r *DocumentRepo) Put(ctx context.Context, key string, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (key, body) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`, key, string(body))
	return err
}

func (r *DocumentRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE key = ?", key)
	return err
}

type DocumentInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

func (r *DocumentRepo) List(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, LENGTH(body), updated_at
		FROM documents
		ORDER BY key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []DocumentInfo
	for rows.Next() {
		var d DocumentInfo
		if err := rows.Scan(&d.Key, &d.Size, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
