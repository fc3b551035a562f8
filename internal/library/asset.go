package library

import (
	"context"
	"errors"
	"time"
)

// Opaque URI schemes for assets that live inside a photo-library bundle
// rather than at a plain filesystem path. Callers cannot render these
// directly; they must be resolved to a local URI first.
const (
	SchemePH            = "ph://"
	SchemeAssetsLibrary = "assets-library://"
)

// Asset is one photo known to the library. Assets are owned by the library
// and immutable from the caller's perspective; triage only references them.
type Asset struct {
	ID           string    `json:"id"`
	URI          string    `json:"uri"`
	Filename     string    `json:"filename"`
	CreationTime time.Time `json:"creationTime"`
	Size         int64     `json:"size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

// AssetInfo is the detailed lookup result for a single asset. LocalURI, when
// non-empty, is directly renderable (a file:// URI).
type AssetInfo struct {
	Asset
	LocalURI string `json:"localUri"`
}

// AssetInfoOptions controls GetAssetInfo behavior. AllowNetwork permits the
// library to fetch a remote original to produce a local URI.
type AssetInfoOptions struct {
	AllowNetwork bool
}

// Filter bounds a query by creation time. Both bounds are inclusive.
type Filter struct {
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// Library is the media-library contract consumed by the triage, trash and
// resolver packages. The SQLite-backed implementation in this package is the
// production one; tests substitute fakes.
type Library interface {
	// QueryAssets returns up to limit assets matching the filter, sorted by
	// creation time descending. The ordering is deterministic for identical
	// library contents.
	QueryAssets(ctx context.Context, f Filter, limit int) ([]Asset, error)

	// GetAssetInfo looks up a single asset by id. Unknown ids return
	// ErrAssetNotFound.
	GetAssetInfo(ctx context.Context, id string, opts AssetInfoOptions) (AssetInfo, error)

	// DeleteAssets permanently removes the given assets from the library.
	// Any per-asset failure makes the whole call fail; callers must treat
	// the batch as not deleted.
	DeleteAssets(ctx context.Context, assets []Asset) error
}

var (
	// ErrPermissionDenied means the library root is not readable by this
	// process.
	ErrPermissionDenied = errors.New("library access denied")

	// ErrAssetNotFound means an id has no backing asset, typically because
	// the file was removed outside this tool.
	ErrAssetNotFound = errors.New("asset not found")
)
