// Package archive writes staged photos to a zip file before they are
// permanently deleted, as an optional safety net.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one file to include in the archive. Name is the in-archive file
// name; duplicates are deduplicated with a numeric suffix.
type Entry struct {
	Path string
	Name string
}

// WritePhotos zips the given files into destDir and returns the archive
// path. The archive name carries a timestamp so repeated deletes never
// overwrite an earlier backup.
func WritePhotos(destDir string, entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", errors.New("nothing to archive")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir archive dir: %w", err)
	}
	name := fmt.Sprintf("photo-trash-%s.zip", time.Now().Format("20060102-150405"))
	dest := nextAvailable(filepath.Join(destDir, name))

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if err := addFile(zw, e, seen); err != nil {
			zw.Close()
			_ = os.Remove(dest) // cleanup partial file
			return "", fmt.Errorf("archive %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	return dest, nil
}

func addFile(zw *zip.Writer, e Entry, seen map[string]int) error {
	info, err := os.Stat(e.Path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = uniqueName(e.Name, seen)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	rf, err := os.Open(e.Path)
	if err != nil {
		return err
	}
	defer rf.Close()
	_, err = io.Copy(w, rf)
	return err
}

func uniqueName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}

func nextAvailable(p string) string {
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return p
	}
	dir := filepath.Dir(p)
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	for i := 1; i < 10000; i++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s-%d%s", name, i, ext))
		if _, err := os.Stat(cand); errors.Is(err, fs.ErrNotExist) {
			return cand
		}
	}
	return p
}
