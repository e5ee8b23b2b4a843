// Package memory keeps the planning document in process memory.
package memory

import (
	"context"
	"sync"
)

type Backend struct {
	mu    sync.Mutex
	key   string
	data  []byte
	saves int

	// LoadErr and SaveErr, when set, are returned instead of touching the
	// stored value.
	LoadErr error
	SaveErr error
}

func New(key string) *Backend {
	return &Backend{key: key}
}

// NewWithData returns a backend pre-loaded with data.
func NewWithData(key string, data []byte) *Backend {
	return &Backend{key: key, data: append([]byte(nil), data...)}
}

func (b *Backend) Key() string {
	return b.key
}

func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	if b.data == nil {
		return nil, nil
	}
	return append([]byte(nil), b.data...), nil
}

func (b *Backend) Save(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.data = append([]byte(nil), data...)
	b.saves++
	return nil
}

// Bytes returns a copy of the stored value.
func (b *Backend) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Saves reports how many successful saves have happened.
func (b *Backend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *Backend) Close() error {
	return nil
}
