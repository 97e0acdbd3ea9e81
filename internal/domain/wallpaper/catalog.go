package wallpaper

import (
	"fmt"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

const defaultBuiltinID = "cloud-bands"

// builtinCatalogTOML is the shipped wallpaper catalog. The hosting shell is
// responsible for making the referenced asset paths servable.
const builtinCatalogTOML = `
schema_version = 1

[[wallpapers]]
wallpaper_id = "cloud-bands"
display_name = "Cloud Bands"
note = "Layered cloud gradient"
media_kind = "static-image"
primary_path = "wallpapers/cloud-bands.webp"
featured = true

[[wallpapers]]
wallpaper_id = "sunset-lake"
display_name = "Sunset Lake"
note = "Warm dusk over still water"
media_kind = "static-image"
primary_path = "wallpapers/sunset-lake.webp"
featured = true

[[wallpapers]]
wallpaper_id = "teal-terrain"
display_name = "Teal Terrain"
note = "Low-poly rolling hills"
media_kind = "static-image"
primary_path = "wallpapers/teal-terrain.webp"
featured = false

[[wallpapers]]
wallpaper_id = "aurora-flow"
display_name = "Aurora Flow"
note = "Slow aurora ribbon loop"
media_kind = "animated-image"
primary_path = "wallpapers/aurora-flow.webp"
poster_path = "wallpapers/aurora-flow-poster.webp"
featured = true

[[wallpapers]]
wallpaper_id = "midnight-drift"
display_name = "Midnight Drift"
note = "Starfield drift loop"
media_kind = "video"
primary_path = "wallpapers/midnight-drift.webm"
poster_path = "wallpapers/midnight-drift-poster.webp"
featured = false
`

// legacy built-in ids that were renamed; resolved during canonicalization.
var legacyBuiltinIDs = map[string]string{
	"clouds":  "cloud-bands",
	"sunset":  "sunset-lake",
	"terrain": "teal-terrain",
}

type catalogFile struct {
	SchemaVersion int            `toml:"schema_version"`
	Wallpapers    []catalogEntry `toml:"wallpapers"`
}

type catalogEntry struct {
	WallpaperID string  `toml:"wallpaper_id"`
	DisplayName string  `toml:"display_name"`
	Note        string  `toml:"note"`
	MediaKind   string  `toml:"media_kind"`
	PrimaryPath string  `toml:"primary_path"`
	PosterPath  *string `toml:"poster_path"`
	Featured    bool    `toml:"featured"`
}

var (
	builtinOnce   sync.Once
	builtinAssets []Asset
)

// ParseCatalog parses a TOML wallpaper catalog into assets.
func ParseCatalog(raw []byte) ([]Asset, error) {
	var file catalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse wallpaper catalog: %w", err)
	}
	if file.SchemaVersion != 1 {
		return nil, fmt.Errorf("wallpaper catalog schema mismatch: expected 1 found %d", file.SchemaVersion)
	}
	assets := make([]Asset, 0, len(file.Wallpapers))
	for _, entry := range file.Wallpapers {
		kind := MediaKind(entry.MediaKind)
		switch kind {
		case MediaStaticImage, MediaAnimatedImage, MediaVideo:
		default:
			return nil, fmt.Errorf("wallpaper %q: unknown media kind %q", entry.WallpaperID, entry.MediaKind)
		}
		poster := ""
		if entry.PosterPath != nil {
			poster = *entry.PosterPath
		}
		assets = append(assets, Asset{
			ID:          entry.WallpaperID,
			DisplayName: entry.DisplayName,
			Note:        entry.Note,
			MediaKind:   kind,
			PrimaryPath: entry.PrimaryPath,
			PosterPath:  poster,
			Featured:    entry.Featured,
			BuiltIn:     true,
		})
	}
	return assets, nil
}

// BuiltinAssets returns the parsed built-in wallpaper catalog.
func BuiltinAssets() []Asset {
	builtinOnce.Do(func() {
		assets, err := ParseCatalog([]byte(builtinCatalogTOML))
		if err != nil {
			// The embedded catalog is validated by tests; a parse failure here
			// is a programming error.
			panic(err)
		}
		builtinAssets = assets
	})
	out := make([]Asset, len(builtinAssets))
	copy(out, builtinAssets)
	return out
}

// BuiltinByID looks up a built-in asset by canonical id.
func BuiltinByID(id string) (Asset, bool) {
	for _, asset := range BuiltinAssets() {
		if asset.ID == id {
			return asset, true
		}
	}
	return Asset{}, false
}

// CanonicalID maps legacy built-in wallpaper ids to their current ids.
func CanonicalID(id string) string {
	if canonical, ok := legacyBuiltinIDs[id]; ok {
		return canonical
	}
	return id
}
