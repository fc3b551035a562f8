package library

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// DeleteAssets permanently removes the given assets: the backing file first,
// then the index row. Work is spread over a worker pool. Any per-asset
// failure makes the whole call return a non-nil error; callers must assume
// none of the batch is reliably gone and keep their staged state.
func (l *SQLite) DeleteAssets(ctx context.Context, assets []Asset) error {
	if len(assets) == 0 {
		return nil
	}
	n := l.Concurrency
	if n < 1 {
		n = 1
	}

	jobs := make(chan Asset)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []error

	worker := func() {
		defer wg.Done()
		for a := range jobs {
			var err error
			select {
			case <-ctx.Done():
				err = ctx.Err()
			default:
				err = l.deleteOne(a)
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("delete %s: %w", a.Filename, err))
				mu.Unlock()
			}
		}
	}

	wg.Add(n)
	for i := 0; i < n; i++ {
		go worker()
	}
	go func() {
		defer close(jobs)
		for _, a := range assets {
			select {
			case <-ctx.Done():
				return
			case jobs <- a:
			}
		}
	}()
	wg.Wait()

	return combineErrors(failures)
}

func (l *SQLite) deleteOne(a Asset) error {
	if l.DryRun {
		// simulate success without deleting
		return nil
	}
	path := l.assetPath(a)
	if path == "" {
		// already gone from the index; nothing to do
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return l.removeRow(a.ID)
}
