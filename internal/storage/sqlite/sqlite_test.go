package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "waypoint.sqlite")

	b, err := Open(path, "plans")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	data, err := b.Load(ctx)
	if err != nil || data != nil {
		t.Fatalf("empty database: got %q, %v", data, err)
	}

	if err := b.Save(ctx, []byte(`{"projects":[]}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// reopening runs migrations again and sees the saved value
	b, err = Open(path, "plans")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer b.Close()

	data, err = b.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != `{"projects":[]}` {
		t.Errorf("Load: got %q", data)
	}
}

func TestOpenEmptyKey(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "x.sqlite"), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}
