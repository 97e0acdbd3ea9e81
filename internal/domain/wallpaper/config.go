package wallpaper

import (
	"errors"
	"fmt"
)

// MediaKind classifies a wallpaper asset's media type.
type MediaKind string

const (
	MediaStaticImage   MediaKind = "static-image"
	MediaAnimatedImage MediaKind = "animated-image"
	MediaVideo         MediaKind = "video"
)

// Animated reports whether the media kind plays over time.
func (k MediaKind) Animated() bool {
	return k == MediaAnimatedImage || k == MediaVideo
}

// DisplayMode controls how the selected wallpaper covers the desktop.
type DisplayMode string

const (
	ModeFill    DisplayMode = "fill"
	ModeFit     DisplayMode = "fit"
	ModeStretch DisplayMode = "stretch"
	ModeTile    DisplayMode = "tile"
	ModeCenter  DisplayMode = "center"
)

// SelectionKind distinguishes built-in catalog wallpapers from imported assets.
type SelectionKind string

const (
	SelectionBuiltin  SelectionKind = "builtin"
	SelectionImported SelectionKind = "imported"
)

// Selection identifies the chosen wallpaper asset.
type Selection struct {
	Kind SelectionKind `json:"kind"`
	// ID is a catalog wallpaper id for builtin selections, or a managed asset
	// id for imported selections.
	ID string `json:"id"`
}

// Config is the committed desktop wallpaper configuration. It is independent
// of the theme; changing one never implies a change to the other.
type Config struct {
	Selection   Selection   `json:"selection"`
	DisplayMode DisplayMode `json:"display_mode"`
}

// DefaultConfig returns the default built-in wallpaper configuration.
func DefaultConfig() Config {
	return Config{
		Selection:   Selection{Kind: SelectionBuiltin, ID: defaultBuiltinID},
		DisplayMode: ModeFill,
	}
}

// ErrAssetNotFound indicates the selection does not resolve in the library.
var ErrAssetNotFound = errors.New("wallpaper asset not found")

// Canonicalize rewrites legacy built-in wallpaper ids to their canonical form.
func (c Config) Canonicalize() Config {
	if c.Selection.Kind == SelectionBuiltin {
		c.Selection.ID = CanonicalID(c.Selection.ID)
	}
	if c.DisplayMode == "" {
		c.DisplayMode = ModeFill
	}
	return c
}

// Validate canonicalizes the configuration and checks it against the library.
// Tile mode is rejected for animated media.
func Validate(c Config, lib Library) (Config, error) {
	c = c.Canonicalize()
	src, ok := lib.Resolve(c)
	if !ok {
		return Config{}, fmt.Errorf("invalid wallpaper configuration: %w", ErrAssetNotFound)
	}
	if c.DisplayMode == ModeTile && src.MediaKind.Animated() {
		return Config{}, fmt.Errorf("invalid wallpaper configuration: tile mode is unsupported for animated wallpapers")
	}
	return c, nil
}
