package library

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func setMTime(t *testing.T, path string, at time.Time) {
	t.Helper()
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func newLibrary(t *testing.T, root string) *SQLite {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	lib, err := New(db, root)
	if err != nil {
		t.Fatalf("new library: %v", err)
	}
	lib.Concurrency = 2
	return lib
}

func TestScanIndexesImages(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), 4, 6)
	writePNG(t, filepath.Join(root, "sub", "b.jpg"), 2, 2)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lib := newLibrary(t, root)
	assets, err := lib.Scan(context.Background(), ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	for _, a := range assets {
		if a.ID == "" {
			t.Fatalf("asset without id: %+v", a)
		}
		if a.Filename == "a.png" && (a.Width != 4 || a.Height != 6) {
			t.Fatalf("dimensions not indexed: %+v", a)
		}
	}
}

func TestScanKeepsStableIDs(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), 1, 1)

	lib := newLibrary(t, root)
	ctx := context.Background()
	first, err := lib.Scan(ctx, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	second, err := lib.Scan(ctx, ScanOptions{})
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Fatalf("id changed across rescans: %s vs %s", first[0].ID, second[0].ID)
	}
	if n, _ := lib.Count(ctx); n != 1 {
		t.Fatalf("rescan must not duplicate rows, count=%d", n)
	}
}

func TestScanRespectsExcludes(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "keep", "a.png"), 1, 1)
	writePNG(t, filepath.Join(root, "skip", "b.png"), 1, 1)

	lib := newLibrary(t, root)
	assets, err := lib.Scan(context.Background(), ScanOptions{Excludes: []string{"skip"}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(assets) != 1 || assets[0].Filename != "a.png" {
		t.Fatalf("exclude not honored: %v", assets)
	}
}

func TestQueryAssetsFilterOrderLimit(t *testing.T) {
	root := t.TempDir()
	times := []time.Time{
		time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local),
		time.Date(2024, 6, 2, 10, 0, 0, 0, time.Local),
		time.Date(2024, 6, 3, 10, 0, 0, 0, time.Local),
		time.Date(2023, 1, 1, 10, 0, 0, 0, time.Local),
	}
	names := []string{"one.png", "two.png", "three.png", "old.png"}
	for i, n := range names {
		p := filepath.Join(root, n)
		writePNG(t, p, 1, 1)
		setMTime(t, p, times[i])
	}

	lib := newLibrary(t, root)
	ctx := context.Background()
	if _, err := lib.Scan(ctx, ScanOptions{}); err != nil {
		t.Fatalf("scan: %v", err)
	}

	f := Filter{
		CreatedAfter:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		CreatedBefore: time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local),
	}
	got, err := lib.QueryAssets(ctx, f, 200)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 assets in 2024, got %d", len(got))
	}
	// creation time descending
	if got[0].Filename != "three.png" || got[2].Filename != "one.png" {
		t.Fatalf("wrong order: %s, %s, %s", got[0].Filename, got[1].Filename, got[2].Filename)
	}

	capped, err := lib.QueryAssets(ctx, f, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(capped) != 2 {
		t.Fatalf("limit not honored, got %d", len(capped))
	}

	// Same inputs, same output.
	again, err := lib.QueryAssets(ctx, f, 200)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i := range got {
		if again[i].ID != got[i].ID {
			t.Fatalf("query is not deterministic")
		}
	}
}

func TestGetAssetInfo(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.png")
	writePNG(t, p, 1, 1)

	lib := newLibrary(t, root)
	ctx := context.Background()
	assets, err := lib.Scan(ctx, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	info, err := lib.GetAssetInfo(ctx, assets[0].ID, AssetInfoOptions{})
	if err != nil {
		t.Fatalf("get asset info: %v", err)
	}
	if info.LocalURI != "file://"+p {
		t.Fatalf("local uri = %q", info.LocalURI)
	}

	if _, err := lib.GetAssetInfo(ctx, "nope", AssetInfoOptions{}); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("unknown id should be ErrAssetNotFound, got %v", err)
	}

	// Index rows for files removed behind our back are stale.
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := lib.GetAssetInfo(ctx, assets[0].ID, AssetInfoOptions{}); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("stale row should be ErrAssetNotFound, got %v", err)
	}
}

func TestDeleteAssetsRemovesFilesAndRows(t *testing.T) {
	root := t.TempDir()
	pa := filepath.Join(root, "a.png")
	pb := filepath.Join(root, "b.png")
	writePNG(t, pa, 1, 1)
	writePNG(t, pb, 1, 1)

	lib := newLibrary(t, root)
	ctx := context.Background()
	assets, err := lib.Scan(ctx, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if err := lib.DeleteAssets(ctx, assets); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, p := range []string{pa, pb} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s should be gone", p)
		}
	}
	if n, _ := lib.Count(ctx); n != 0 {
		t.Fatalf("rows should be gone, count=%d", n)
	}
}

func TestDeleteAssetsDryRun(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.png")
	writePNG(t, p, 1, 1)

	lib := newLibrary(t, root)
	lib.DryRun = true
	ctx := context.Background()
	assets, err := lib.Scan(ctx, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := lib.DeleteAssets(ctx, assets); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("dry-run must not delete: %v", err)
	}
}

func TestBundlePathsGetOpaqueURIs(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "My.photoslibrary", "originals", "a.png")
	writePNG(t, p, 1, 1)

	lib := newLibrary(t, root)
	assets, err := lib.Scan(context.Background(), ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if assets[0].URI != SchemePH+assets[0].ID {
		t.Fatalf("bundle asset should have an opaque uri, got %q", assets[0].URI)
	}
}
