// Package triage owns the candidate queue and cursor for one loaded date
// range. The queue is fixed once loaded; committed swipe outcomes only ever
// advance the cursor.
package triage

import (
	"context"
	"fmt"

	"photo-triage/internal/library"
)

// DefaultLimit caps how many candidates one load may return.
const DefaultLimit = 200

// LoadError wraps a failed candidate query. The queue is left unchanged
// when it occurs; the UI surfaces it dismissibly.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load photos: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Stager receives discarded assets. The trash store implements it.
type Stager interface {
	Append(ctx context.Context, a library.Asset)
}

// Session is single-owner state: it must only be mutated from the UI update
// loop. Fetch is safe to call from a background command; its result is
// applied back on the owner via Apply.
type Session struct {
	lib   library.Library
	stage Stager
	limit int

	queue   []library.Asset
	cursor  int
	loadSeq uint64
}

// NewSession builds a session over lib, staging discards into stage. A
// non-positive limit falls back to DefaultLimit.
func NewSession(lib library.Library, stage Stager, limit int) *Session {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Session{lib: lib, stage: stage, limit: limit}
}

// BeginLoad reserves a sequence number for a new load. Stale completions
// (an earlier, slower load finishing after a later one) are rejected by
// Apply, so the most recently requested load always wins.
func (s *Session) BeginLoad() uint64 {
	s.loadSeq++
	return s.loadSeq
}

// Fetch queries candidates for the filter: creation time descending, capped
// at the session limit. It does not touch the queue; pass the result to
// Apply. Query failures come back as *LoadError.
func (s *Session) Fetch(ctx context.Context, f DateFilter) ([]library.Asset, error) {
	after, before := f.Range()
	assets, err := s.lib.QueryAssets(ctx, library.Filter{
		CreatedAfter:  after,
		CreatedBefore: before,
	}, s.limit)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return assets, nil
}

// Apply installs a fetched queue if seq is still the most recent load,
// resetting the cursor. It reports whether the result was accepted.
func (s *Session) Apply(seq uint64, assets []library.Asset) bool {
	if seq != s.loadSeq {
		return false
	}
	s.queue = assets
	s.cursor = 0
	return true
}

// Current returns the asset under the cursor, or false when the queue is
// empty or fully triaged.
func (s *Session) Current() (library.Asset, bool) {
	if s.cursor >= len(s.queue) {
		return library.Asset{}, false
	}
	return s.queue[s.cursor], true
}

// CommitKeep advances past the current asset.
func (s *Session) CommitKeep() {
	if s.cursor < len(s.queue) {
		s.cursor++
	}
}

// CommitDiscard stages the current asset for deletion, then advances. It is
// a no-op in the terminal state.
func (s *Session) CommitDiscard(ctx context.Context) {
	a, ok := s.Current()
	if !ok {
		return
	}
	s.stage.Append(ctx, a)
	s.cursor++
}

// Len returns the queue length.
func (s *Session) Len() int { return len(s.queue) }

// Cursor returns the current cursor position, 0 <= cursor <= Len.
func (s *Session) Cursor() int { return s.cursor }

// Done reports the terminal "all triaged" state for a non-empty queue.
func (s *Session) Done() bool { return len(s.queue) > 0 && s.cursor >= len(s.queue) }
