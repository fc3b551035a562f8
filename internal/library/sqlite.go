package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the production Library: photo files on disk under Root, indexed
// in a SQLite database shared with the key-value store.
type SQLite struct {
	db   *sql.DB
	Root string

	// Concurrency bounds the workers used by Scan and DeleteAssets.
	Concurrency int
	// DryRun makes DeleteAssets simulate success without touching disk.
	DryRun bool
}

// Open opens (creating if needed) the SQLite database at path and enables
// WAL mode for better concurrency.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	return db, nil
}

// New wraps an open database as a photo library rooted at root and creates
// the assets table if missing.
func New(db *sql.DB, root string) (*SQLite, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		creation_time INTEGER NOT NULL,
		size INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assets_creation ON assets(creation_time);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create assets table: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return &SQLite{db: db, Root: abs}, nil
}

// CheckPermission reports whether the library root can be read. A denied
// root yields ErrPermissionDenied; other failures are returned as-is.
func (l *SQLite) CheckPermission() error {
	f, err := os.Open(l.Root)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermissionDenied
		}
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && os.IsPermission(err) {
		return ErrPermissionDenied
	}
	return nil
}

// RequestPermission re-probes access. There is no interactive grant on a
// filesystem library; the user fixes permissions out of band and retries.
func (l *SQLite) RequestPermission() error {
	return l.CheckPermission()
}

func (l *SQLite) QueryAssets(ctx context.Context, f Filter, limit int) ([]Asset, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, path, creation_time, size, width, height FROM assets
		 WHERE creation_time >= ? AND creation_time <= ?
		 ORDER BY creation_time DESC, id ASC LIMIT ?`,
		f.CreatedAfter.Unix(), f.CreatedBefore.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *SQLite) GetAssetInfo(ctx context.Context, id string, opts AssetInfoOptions) (AssetInfo, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, path, creation_time, size, width, height FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return AssetInfo{}, ErrAssetNotFound
	}
	if err != nil {
		return AssetInfo{}, fmt.Errorf("get asset %s: %w", id, err)
	}
	path := l.assetPath(a)
	if _, err := os.Stat(path); err != nil {
		// The index is stale; the file is gone.
		return AssetInfo{}, ErrAssetNotFound
	}
	return AssetInfo{Asset: a, LocalURI: "file://" + path}, nil
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanAsset(s scannable) (Asset, error) {
	var a Asset
	var path string
	var created int64
	if err := s.Scan(&a.ID, &path, &created, &a.Size, &a.Width, &a.Height); err != nil {
		return Asset{}, err
	}
	a.Filename = filepath.Base(path)
	a.CreationTime = time.Unix(created, 0)
	a.URI = publicURI(a.ID, path)
	return a, nil
}

// publicURI hides paths inside photo-library bundles behind the opaque
// ph:// scheme; everything else is a plain file URI.
func publicURI(id, path string) string {
	if strings.Contains(path, ".photoslibrary"+string(os.PathSeparator)) {
		return SchemePH + id
	}
	return "file://" + path
}

// assetPath returns the on-disk path for an asset by reading it back from
// the index; the public URI may be opaque.
func (l *SQLite) assetPath(a Asset) string {
	var path string
	err := l.db.QueryRow(`SELECT path FROM assets WHERE id = ?`, a.ID).Scan(&path)
	if err != nil {
		return ""
	}
	return path
}

func (l *SQLite) idForPath(path string) (string, bool) {
	var id string
	err := l.db.QueryRow(`SELECT id FROM assets WHERE path = ?`, path).Scan(&id)
	if err != nil {
		return "", false
	}
	return id, true
}

func (l *SQLite) upsert(path string, created time.Time, size int64, width, height int, newID func() string) (Asset, error) {
	id, ok := l.idForPath(path)
	if !ok {
		id = newID()
	}
	_, err := l.db.Exec(
		`INSERT INTO assets (id, path, creation_time, size, width, height)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET creation_time=excluded.creation_time,
			size=excluded.size, width=excluded.width, height=excluded.height`,
		id, path, created.Unix(), size, width, height)
	if err != nil {
		return Asset{}, fmt.Errorf("index %s: %w", path, err)
	}
	return Asset{
		ID:           id,
		URI:          publicURI(id, path),
		Filename:     filepath.Base(path),
		CreationTime: created,
		Size:         size,
		Width:        width,
		Height:       height,
	}, nil
}

func (l *SQLite) removeRow(id string) error {
	_, err := l.db.Exec(`DELETE FROM assets WHERE id = ?`, id)
	return err
}

// Count returns the number of indexed assets.
func (l *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n)
	return n, err
}
