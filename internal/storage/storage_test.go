package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emilianohg/waypoint/internal/config"
)

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		cfg      config.Config
		keyValue bool
		describe string
	}{
		{
			name:     "file",
			cfg:      config.Config{Backend: config.BackendFile, DocumentPath: filepath.Join(dir, "p.json")},
			keyValue: false,
			describe: "file ",
		},
		{
			name:     "sqlite",
			cfg:      config.Config{Backend: config.BackendSQLite, SQLitePath: filepath.Join(dir, "w.sqlite"), DocumentKey: "plans"},
			keyValue: true,
			describe: "sqlite key plans",
		},
		{
			name:     "memory",
			cfg:      config.Config{Backend: config.BackendMemory, DocumentKey: "plans"},
			keyValue: true,
			describe: "key plans",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, &tt.cfg)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer b.Close()

			if got := IsKeyValue(b); got != tt.keyValue {
				t.Errorf("IsKeyValue: got %v, want %v", got, tt.keyValue)
			}
			if got := Describe(b); !strings.HasPrefix(got, tt.describe) {
				t.Errorf("Describe: got %q, want prefix %q", got, tt.describe)
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{Backend: "tape"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
