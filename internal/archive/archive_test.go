package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWritePhotos(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "a.jpg")
	b := filepath.Join(src, "b.jpg")
	writeFile(t, a, "aaaa")
	writeFile(t, b, "bb")

	dest, err := WritePhotos(t.TempDir(), []Entry{
		{Path: a, Name: "a.jpg"},
		{Path: b, Name: "b.jpg"},
	})
	if err != nil {
		t.Fatalf("write photos: %v", err)
	}

	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()
	if len(r.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(r.File))
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["a.jpg"] || !names["b.jpg"] {
		t.Fatalf("unexpected entry names: %v", names)
	}
}

func TestWritePhotosDeduplicatesNames(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "one.jpg")
	b := filepath.Join(src, "two.jpg")
	writeFile(t, a, "1")
	writeFile(t, b, "2")

	dest, err := WritePhotos(t.TempDir(), []Entry{
		{Path: a, Name: "img.jpg"},
		{Path: b, Name: "img.jpg"},
	})
	if err != nil {
		t.Fatalf("write photos: %v", err)
	}
	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["img.jpg"] || !names["img-1.jpg"] {
		t.Fatalf("duplicate names not deduplicated: %v", names)
	}
}

func TestWritePhotosMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	_, err := WritePhotos(dir, []Entry{{Path: filepath.Join(dir, "gone.jpg"), Name: "gone.jpg"}})
	if err == nil {
		t.Fatalf("expected an error for a missing source file")
	}
	// No partial archive may be left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".zip" {
			t.Fatalf("partial archive left behind: %s", e.Name())
		}
	}
}

func TestWritePhotosEmptyInput(t *testing.T) {
	if _, err := WritePhotos(t.TempDir(), nil); err == nil {
		t.Fatalf("expected an error for empty input")
	}
}
