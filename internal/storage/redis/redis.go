// Package redis stores the planning document as a single string value.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type Backend struct {
	client *goredis.Client
	key    string
}

// Open connects and pings the server so a bad address fails at startup.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	if opts.Key == "" {
		return nil, fmt.Errorf("empty document key")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return &Backend{client: client, key: opts.Key}, nil
}

func (b *Backend) Key() string {
	return b.key
}

func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", b.key, err)
	}
	return data, nil
}

func (b *Backend) Save(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", b.key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}
