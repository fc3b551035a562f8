package resolver

import (
	"context"
	"errors"
	"testing"

	"photo-triage/internal/library"
)

type fakeLibrary struct {
	infos   map[string]library.AssetInfo
	infoErr error
	lookups []string
}

func (f *fakeLibrary) QueryAssets(ctx context.Context, flt library.Filter, limit int) ([]library.Asset, error) {
	return nil, nil
}

func (f *fakeLibrary) GetAssetInfo(ctx context.Context, id string, opts library.AssetInfoOptions) (library.AssetInfo, error) {
	f.lookups = append(f.lookups, id)
	if f.infoErr != nil {
		return library.AssetInfo{}, f.infoErr
	}
	info, ok := f.infos[id]
	if !ok {
		return library.AssetInfo{}, library.ErrAssetNotFound
	}
	return info, nil
}

func (f *fakeLibrary) DeleteAssets(ctx context.Context, assets []library.Asset) error {
	return nil
}

func TestPlainURIPassesThroughWithoutLookup(t *testing.T) {
	lib := &fakeLibrary{}
	r := NewWithSource(lib, GenericSource{})
	a := library.Asset{ID: "a", URI: "file:///photos/cat.jpg"}
	if got := r.Resolve(context.Background(), a); got != a.URI {
		t.Fatalf("got %q; want the raw URI", got)
	}
	if len(lib.lookups) != 0 {
		t.Fatalf("plain URIs must not trigger a lookup")
	}
}

func TestOpaqueURIResolvesToLocal(t *testing.T) {
	lib := &fakeLibrary{infos: map[string]library.AssetInfo{
		"a": {LocalURI: "file:///photos/cat.jpg"},
	}}
	r := NewWithSource(lib, GenericSource{})
	a := library.Asset{ID: "a", URI: library.SchemePH + "a"}
	if got := r.Resolve(context.Background(), a); got != "file:///photos/cat.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestAssetsLibrarySchemeIsOpaque(t *testing.T) {
	lib := &fakeLibrary{infos: map[string]library.AssetInfo{
		"a": {LocalURI: "file:///photos/dog.jpg"},
	}}
	r := NewWithSource(lib, GenericSource{})
	a := library.Asset{ID: "a", URI: library.SchemeAssetsLibrary + "a"}
	if got := r.Resolve(context.Background(), a); got != "file:///photos/dog.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestLookupFailureFallsBackToRawURI(t *testing.T) {
	lib := &fakeLibrary{infoErr: errors.New("library offline")}
	r := NewWithSource(lib, GenericSource{})
	a := library.Asset{ID: "a", URI: library.SchemePH + "a"}
	if got := r.Resolve(context.Background(), a); got != a.URI {
		t.Fatalf("lookup failure must fall back to the raw URI, got %q", got)
	}
}

func TestEmptyLocalURIFallsBack(t *testing.T) {
	lib := &fakeLibrary{infos: map[string]library.AssetInfo{"a": {}}}
	r := NewWithSource(lib, GenericSource{})
	a := library.Asset{ID: "a", URI: library.SchemePH + "a"}
	if got := r.Resolve(context.Background(), a); got != a.URI {
		t.Fatalf("missing local URI must fall back, got %q", got)
	}
}

func TestDarwinSourceStripsFragment(t *testing.T) {
	lib := &fakeLibrary{infos: map[string]library.AssetInfo{
		"a": {LocalURI: "file:///photos/cat.jpg#L0/001"},
	}}
	r := NewWithSource(lib, DarwinSource{})
	a := library.Asset{ID: "a", URI: library.SchemePH + "a"}
	if got := r.Resolve(context.Background(), a); got != "file:///photos/cat.jpg" {
		t.Fatalf("fragment should be stripped, got %q", got)
	}
}

func TestGenericSourceKeepsFragment(t *testing.T) {
	lib := &fakeLibrary{infos: map[string]library.AssetInfo{
		"a": {LocalURI: "file:///photos/cat.jpg#frag"},
	}}
	r := NewWithSource(lib, GenericSource{})
	a := library.Asset{ID: "a", URI: library.SchemePH + "a"}
	if got := r.Resolve(context.Background(), a); got != "file:///photos/cat.jpg#frag" {
		t.Fatalf("generic source must not touch the URI, got %q", got)
	}
}

func TestResolveIsPerAsset(t *testing.T) {
	lib := &fakeLibrary{infos: map[string]library.AssetInfo{
		"a": {LocalURI: "file:///photos/a.jpg"},
		"b": {LocalURI: "file:///photos/b.jpg"},
	}}
	r := NewWithSource(lib, GenericSource{})
	ctx := context.Background()
	r.Resolve(ctx, library.Asset{ID: "a", URI: library.SchemePH + "a"})
	r.Resolve(ctx, library.Asset{ID: "b", URI: library.SchemePH + "b"})
	if len(lib.lookups) != 2 || lib.lookups[1] != "b" {
		t.Fatalf("each asset identity must be resolved afresh: %v", lib.lookups)
	}
}
