// Package trash is the staging store for photos marked for deletion: an
// ordered, persisted set that survives restarts and is destructively applied
// to the library only after explicit confirmation.
package trash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"photo-triage/internal/archive"
	"photo-triage/internal/library"
)

// StorageKey is the fixed key the identifier list is persisted under. The
// value is a JSON array of asset id strings.
const StorageKey = "@photo_sort_trash"

// Storage is the key-value persistence the store writes through to. The kv
// package implements it.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Confirmer presents the mandatory two-choice destructive confirmation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// DeleteError wraps a failed bulk delete. The staged set is preserved for
// retry when it occurs.
type DeleteError struct {
	Err error
}

func (e *DeleteError) Error() string { return fmt.Sprintf("delete photos: %v", e.Err) }
func (e *DeleteError) Unwrap() error { return e.Err }

var (
	// ErrNothingStaged means CommitDelete was called with an empty set.
	ErrNothingStaged = errors.New("nothing staged for deletion")
	// ErrCancelled means the user declined the confirmation. No delete call
	// was issued and the staged set is untouched.
	ErrCancelled = errors.New("delete cancelled")
)

// Options tunes the store.
type Options struct {
	// ArchiveDir, when non-empty, makes CommitDelete zip the staged photos
	// there before the permanent delete. An archive failure aborts the
	// delete with the staged set intact.
	ArchiveDir string
}

type write struct {
	payload string
	ack     chan struct{}
}

// Store holds the staged assets. Reads and mutations must happen on the
// single owner (the UI update loop); persistence runs on a single writer
// goroutine so writes land in program order and a later Clear can never be
// overtaken by an earlier in-flight Append.
type Store struct {
	storage Storage
	lib     library.Library
	opts    Options

	mu     sync.Mutex
	assets []library.Asset

	writes chan write
	closed chan struct{}
}

// New builds a store and starts its writer. Call Close to drain pending
// writes on shutdown.
func New(storage Storage, lib library.Library, opts Options) *Store {
	s := &Store{
		storage: storage,
		lib:     lib,
		opts:    opts,
		writes:  make(chan write, 16),
		closed:  make(chan struct{}),
	}
	go s.writer()
	return s
}

// writer applies persistence writes in order. Write failures are swallowed:
// the store trades durability for simplicity, and the worst case is a trash
// list that resets on the next run.
func (s *Store) writer() {
	defer close(s.closed)
	for w := range s.writes {
		_ = s.storage.Set(context.Background(), StorageKey, w.payload)
		if w.ack != nil {
			close(w.ack)
		}
	}
}

// Initialize loads the persisted identifier list and resolves each id back
// to an asset. Stale identifiers are dropped silently; a failed read is
// treated as an empty list. It never fails.
func (s *Store) Initialize(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil || !ok || raw == "" {
		return
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return
	}
	var assets []library.Asset
	for _, id := range ids {
		info, err := s.lib.GetAssetInfo(ctx, id, library.AssetInfoOptions{})
		if err != nil {
			continue
		}
		assets = append(assets, info.Asset)
	}
	s.mu.Lock()
	s.assets = assets
	s.mu.Unlock()
}

// Append stages an asset and immediately persists the full identifier list.
// Duplicates are allowed; the set is push-only.
func (s *Store) Append(ctx context.Context, a library.Asset) {
	s.mu.Lock()
	s.assets = append(s.assets, a)
	payload := s.marshalLocked()
	s.mu.Unlock()
	s.enqueue(payload, nil)
}

// Clear empties the set and persists an empty list.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.assets = nil
	payload := s.marshalLocked()
	s.mu.Unlock()
	s.enqueue(payload, nil)
}

// CommitDelete permanently deletes every staged asset from the library. It
// refuses to run without the confirmation gate: a declined prompt returns
// ErrCancelled with no delete call issued. On success the set is cleared;
// on failure it is preserved for retry and a *DeleteError is returned.
func (s *Store) CommitDelete(ctx context.Context, confirm Confirmer) error {
	staged := s.Assets()
	if len(staged) == 0 {
		return ErrNothingStaged
	}

	prompt := fmt.Sprintf("Permanently delete %d photo(s)? This cannot be undone.", len(staged))
	ok, err := confirm.Confirm(ctx, prompt)
	if err != nil {
		return &DeleteError{Err: err}
	}
	if !ok {
		return ErrCancelled
	}

	if s.opts.ArchiveDir != "" {
		if err := s.archiveStaged(ctx, staged); err != nil {
			return &DeleteError{Err: err}
		}
	}

	if err := s.lib.DeleteAssets(ctx, staged); err != nil {
		return &DeleteError{Err: err}
	}
	s.Clear(ctx)
	return nil
}

// archiveStaged zips the staged photos that still resolve to local files.
// Assets whose files are already gone contribute nothing to back up.
func (s *Store) archiveStaged(ctx context.Context, staged []library.Asset) error {
	var entries []archive.Entry
	for _, a := range staged {
		info, err := s.lib.GetAssetInfo(ctx, a.ID, library.AssetInfoOptions{})
		if err != nil || info.LocalURI == "" {
			continue
		}
		entries = append(entries, archive.Entry{
			Path: strings.TrimPrefix(info.LocalURI, "file://"),
			Name: a.Filename,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	_, err := archive.WritePhotos(s.opts.ArchiveDir, entries)
	return err
}

// Assets returns a snapshot of the staged assets in discard order.
func (s *Store) Assets() []library.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]library.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Len returns the number of staged assets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// TotalSize returns the combined byte size of the staged assets.
func (s *Store) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, a := range s.assets {
		total += a.Size
	}
	return total
}

// Flush blocks until every write enqueued so far has been applied.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	payload := s.marshalLocked()
	s.mu.Unlock()
	ack := make(chan struct{})
	s.enqueue(payload, ack)
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer.
func (s *Store) Close() {
	close(s.writes)
	<-s.closed
}

func (s *Store) marshalLocked() string {
	ids := make([]string, len(s.assets))
	for i, a := range s.assets {
		ids[i] = a.ID
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func (s *Store) enqueue(payload string, ack chan struct{}) {
	s.writes <- write{payload: payload, ack: ack}
}
