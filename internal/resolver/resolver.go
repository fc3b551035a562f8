// Package resolver turns platform-opaque asset references into URIs that can
// be rendered directly. Plain file and remote URIs pass through untouched;
// ph:// and assets-library:// references require a library lookup.
package resolver

import (
	"context"
	"strings"

	"photo-triage/internal/library"
)

// Resolver resolves asset URIs against a media library. Resolution is
// best-effort: lookup failures fall back to the raw URI rather than erroring,
// so callers always get something to attempt to render.
type Resolver struct {
	lib    library.Library
	source AssetSource
}

// New builds a resolver for the running platform.
func New(lib library.Library) *Resolver {
	return &Resolver{lib: lib, source: hostSource()}
}

// NewWithSource is for tests and for forcing a platform variant.
func NewWithSource(lib library.Library, src AssetSource) *Resolver {
	return &Resolver{lib: lib, source: src}
}

// Resolve returns a renderable URI for the asset. It must be called again
// whenever the asset identity changes; results are not cached across assets.
func (r *Resolver) Resolve(ctx context.Context, a library.Asset) string {
	uri := a.URI
	if !opaque(uri) {
		return uri
	}
	info, err := r.lib.GetAssetInfo(ctx, a.ID, library.AssetInfoOptions{AllowNetwork: true})
	if err != nil || info.LocalURI == "" {
		// Fall back to the raw reference; the caller may still be able to
		// do something with it.
		return uri
	}
	return r.source.FixupLocalURI(info.LocalURI)
}

func opaque(uri string) bool {
	return strings.HasPrefix(uri, library.SchemePH) ||
		strings.HasPrefix(uri, library.SchemeAssetsLibrary)
}
