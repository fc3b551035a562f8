package kv

import (
	"context"
	"path/filepath"
	"testing"

	"photo-triage/internal/library"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := library.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openStore(t)
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("missing key should report not present")
	}
}

func TestSetThenGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if err := s.Set(ctx, "@photo_sort_trash", `["a","b"]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "@photo_sort_trash")
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if v != `["a","b"]` {
		t.Fatalf("got %q", v)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if err := s.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _, _ := s.Get(ctx, "k")
	if v != "two" {
		t.Fatalf("got %q; want the latest value", v)
	}
}
