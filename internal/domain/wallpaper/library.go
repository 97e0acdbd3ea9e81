package wallpaper

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Asset describes one wallpaper available to the desktop, built-in or
// imported.
type Asset struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Note        string    `json:"note,omitempty"`
	MediaKind   MediaKind `json:"media_kind"`
	PrimaryPath string    `json:"primary_path"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Featured    bool      `json:"featured"`
	BuiltIn     bool      `json:"built_in"`
}

// Collection is a user-curated named group of wallpaper asset ids.
type Collection struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	AssetIDs []string `json:"asset_ids"`
}

// Library is the merged view of the built-in catalog and imported assets,
// plus the user's collections. It is a value type; mutation goes through the
// returned copies.
type Library struct {
	Assets      []Asset      `json:"assets"`
	Collections []Collection `json:"collections"`
}

// DefaultLibrary returns a library holding only the built-in catalog.
func DefaultLibrary() Library {
	return Library{Assets: BuiltinAssets()}
}

// Merge overlays imported assets and collections onto the built-in catalog.
// Imported assets never shadow built-in ids.
func Merge(imported []Asset, collections []Collection) Library {
	lib := DefaultLibrary()
	seen := make(map[string]struct{}, len(lib.Assets))
	for _, asset := range lib.Assets {
		seen[asset.ID] = struct{}{}
	}
	for _, asset := range imported {
		if _, dup := seen[asset.ID]; dup {
			continue
		}
		asset.BuiltIn = false
		lib.Assets = append(lib.Assets, asset)
		seen[asset.ID] = struct{}{}
	}
	lib.Collections = append(lib.Collections, collections...)
	return lib
}

// Source is a resolved wallpaper ready for rendering.
type Source struct {
	AssetID     string    `json:"asset_id"`
	MediaKind   MediaKind `json:"media_kind"`
	PrimaryPath string    `json:"primary_path"`
	PosterPath  string    `json:"poster_path,omitempty"`
}

// Lookup finds an asset by id across built-in and imported entries.
func (l Library) Lookup(id string) (Asset, bool) {
	for _, asset := range l.Assets {
		if asset.ID == id {
			return asset, true
		}
	}
	return Asset{}, false
}

// Resolve maps a configuration to its renderable source. Built-in legacy ids
// are accepted through canonicalization.
func (l Library) Resolve(c Config) (Source, bool) {
	id := c.Selection.ID
	if c.Selection.Kind == SelectionBuiltin {
		id = CanonicalID(id)
	}
	asset, ok := l.Lookup(id)
	if !ok {
		return Source{}, false
	}
	if c.Selection.Kind == SelectionBuiltin && !asset.BuiltIn {
		return Source{}, false
	}
	if c.Selection.Kind == SelectionImported && asset.BuiltIn {
		return Source{}, false
	}
	return Source{
		AssetID:     asset.ID,
		MediaKind:   asset.MediaKind,
		PrimaryPath: asset.PrimaryPath,
		PosterPath:  asset.PosterPath,
	}, true
}

// Featured returns the featured assets in stable id order.
func (l Library) Featured() []Asset {
	var out []Asset
	for _, asset := range l.Assets {
		if asset.Featured {
			out = append(out, asset)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolver caches configuration lookups against a fixed library snapshot.
// Rebuild it whenever the library changes.
type Resolver struct {
	lib   Library
	cache *lru.Cache[Config, Source]
}

// NewResolver builds a caching resolver over the given library.
func NewResolver(lib Library, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New[Config, Source](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{lib: lib, cache: cache}, nil
}

// Resolve returns the renderable source for a configuration, serving repeats
// from the cache.
func (r *Resolver) Resolve(c Config) (Source, bool) {
	c = c.Canonicalize()
	if src, ok := r.cache.Get(c); ok {
		return src, true
	}
	src, ok := r.lib.Resolve(c)
	if ok {
		r.cache.Add(c, src)
	}
	return src, ok
}
