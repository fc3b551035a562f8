package resolver

import (
	"runtime"
	"strings"
)

// AssetSource is the per-platform fix-up applied to resolved local URIs.
// Callers never branch on the platform; they hold whichever variant
// hostSource picked.
type AssetSource interface {
	FixupLocalURI(uri string) string
}

// DarwinSource handles Apple photo libraries, which append a #fragment
// (the in-bundle resource identifier) to local URIs. The fragment is not
// part of the file path and must be stripped before rendering.
type DarwinSource struct{}

func (DarwinSource) FixupLocalURI(uri string) string {
	if i := strings.Index(uri, "#"); i >= 0 {
		return uri[:i]
	}
	return uri
}

// GenericSource leaves local URIs untouched.
type GenericSource struct{}

func (GenericSource) FixupLocalURI(uri string) string { return uri }

func hostSource() AssetSource {
	if runtime.GOOS == "darwin" {
		return DarwinSource{}
	}
	return GenericSource{}
}
