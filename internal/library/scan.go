package library

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ScanOptions defines indexing behavior.
type ScanOptions struct {
	Concurrency int      // workers for stat + image header decode
	MaxDepth    int      // -1 unlimited; 0 means only root
	Excludes    []string // glob patterns matched against full path and base name
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Scan walks the library root, indexing every image file it finds. Ids are
// stable across rescans (keyed by path). Returns the indexed assets and a
// merged error for paths that could not be read.
func (l *SQLite) Scan(ctx context.Context, opts ScanOptions) ([]Asset, error) {
	out, errCh := l.ScanStream(ctx, opts)
	var assets []Asset
	for a := range out {
		assets = append(assets, a)
	}
	return assets, <-errCh
}

// ScanStream performs the same walk but emits each asset on the returned
// channel as soon as it is indexed. When done the channel is closed and a
// single merged error (possibly nil) is sent on errCh.
func (l *SQLite) ScanStream(ctx context.Context, opts ScanOptions) (<-chan Asset, <-chan error) {
	out := make(chan Asset)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		if opts.Concurrency <= 0 {
			opts.Concurrency = runtime.NumCPU()
			if opts.Concurrency < 1 {
				opts.Concurrency = 1
			}
		}

		var mu sync.Mutex
		var walkErrs []error
		addErr := func(err error) {
			mu.Lock()
			walkErrs = append(walkErrs, err)
			mu.Unlock()
		}

		jobs := make(chan string)
		var wg sync.WaitGroup
		worker := func() {
			defer wg.Done()
			for path := range jobs {
				a, err := l.indexFile(path)
				if err != nil {
					addErr(err)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- a:
				}
			}
		}
		wg.Add(opts.Concurrency)
		for i := 0; i < opts.Concurrency; i++ {
			go worker()
		}

		rootDepth := depthOf(l.Root)
		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				addErr(fmt.Errorf("walk error at %s: %w", path, err))
				return nil // continue
			}
			if d.IsDir() && excluded(path, opts.Excludes) {
				return filepath.SkipDir
			}
			if opts.MaxDepth >= 0 && depthOf(path)-rootDepth > opts.MaxDepth {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if d.Type()&os.ModeSymlink != 0 {
					return filepath.SkipDir
				}
				return nil
			}
			if !imageExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if excluded(path, opts.Excludes) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- path:
			}
			return nil
		}

		go func() {
			_ = filepath.WalkDir(l.Root, walkFn)
			close(jobs)
		}()
		wg.Wait()
		errCh <- combineErrors(walkErrs)
		close(errCh)
	}()
	return out, errCh
}

// indexFile stats and header-decodes one image file, then upserts it into
// the index. Creation time is the file modification time.
func (l *SQLite) indexFile(path string) (Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, fmt.Errorf("stat %s: %w", path, err)
	}
	width, height := imageDims(path)
	return l.upsert(path, info.ModTime(), info.Size(), width, height, uuid.NewString)
}

// imageDims reads just the image header. Undecodable files still get
// indexed with zero dimensions; they may be valid images in a format the
// header decoder does not know.
func imageDims(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func depthOf(p string) int {
	clean := filepath.Clean(p)
	if clean == string(os.PathSeparator) {
		return 0
	}
	depth := 0
	for {
		parent := filepath.Dir(clean)
		if parent == clean {
			break
		}
		depth++
		clean = parent
	}
	return depth
}

func excluded(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	base := filepath.Base(p)
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if ok, _ := filepath.Match(pat, p); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, e := range errs {
		if e == nil {
			continue
		}
		b.WriteString("\n - ")
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
