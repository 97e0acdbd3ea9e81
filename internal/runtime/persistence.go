package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/host"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// State store keys. The versioned suffixes change only when the stored
// shape changes incompatibly.
const (
	KeyLayout          = "retrodesk.layout.v1"
	KeyTheme           = "system.desktop_theme.v2"
	KeyLegacyTheme     = "retrodesk.theme.v1"
	KeyWallpaper       = "system.desktop_wallpaper.v1"
	KeyTerminalHistory = "retrodesk.terminal_history.v1"
	KeyAppPolicy       = "system.app_policy.v1"
)

// Persistence reads and writes runtime state through a host state store.
// Corrupt payloads degrade to defaults instead of failing boot.
type Persistence struct {
	store host.StateStore
}

// NewPersistence wraps a state store.
func NewPersistence(store host.StateStore) *Persistence {
	return &Persistence{store: store}
}

// SaveLayout persists a layout snapshot inside a versioned envelope.
func (p *Persistence) SaveLayout(ctx context.Context, snap desktop.Snapshot) error {
	payload, err := desktop.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	raw, err := host.WrapEnvelope(desktop.SnapshotSchemaVersion, payload)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, KeyLayout, raw)
}

// LoadLayout reads the persisted layout snapshot. Returns ok=false when no
// snapshot exists or the stored payload cannot be decoded.
func (p *Persistence) LoadLayout(ctx context.Context) (desktop.Snapshot, bool, error) {
	raw, err := p.store.Get(ctx, KeyLayout)
	if errors.Is(err, host.ErrKeyNotFound) {
		return desktop.Snapshot{}, false, nil
	}
	if err != nil {
		return desktop.Snapshot{}, false, fmt.Errorf("load layout: %w", err)
	}
	env, err := host.UnwrapEnvelope(raw)
	if err != nil {
		return desktop.Snapshot{}, false, nil
	}
	snap, err := desktop.DecodeSnapshot(env.Payload)
	if err != nil {
		return desktop.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// SaveTheme persists the desktop theme.
func (p *Persistence) SaveTheme(ctx context.Context, theme desktop.Theme) error {
	return p.saveJSON(ctx, KeyTheme, theme)
}

// legacyTheme is the v1 payload that still embedded the wallpaper choice.
type legacyTheme struct {
	Skin          desktop.Skin `json:"skin"`
	WallpaperID   string       `json:"wallpaper_id"`
	HighContrast  bool         `json:"high_contrast"`
	ReducedMotion bool         `json:"reduced_motion"`
	AudioEnabled  bool         `json:"audio_enabled"`
}

// LoadTheme reads the persisted theme. When only the legacy v1 key exists,
// the theme is split from its embedded wallpaper id and both halves are
// returned; the second result carries the migrated wallpaper config.
func (p *Persistence) LoadTheme(ctx context.Context) (desktop.Theme, *wallpaper.Config, bool) {
	var theme desktop.Theme
	if ok := p.loadJSON(ctx, KeyTheme, &theme); ok {
		return theme, nil, true
	}

	var legacy legacyTheme
	if ok := p.loadJSON(ctx, KeyLegacyTheme, &legacy); !ok {
		return desktop.DefaultTheme(), nil, false
	}
	migrated := desktop.Theme{
		Skin:          legacy.Skin,
		HighContrast:  legacy.HighContrast,
		ReducedMotion: legacy.ReducedMotion,
		AudioEnabled:  legacy.AudioEnabled,
	}
	if migrated.Skin == "" {
		migrated.Skin = desktop.SkinModernAdaptive
	}
	var cfg *wallpaper.Config
	if legacy.WallpaperID != "" {
		migratedCfg := wallpaper.Config{
			Selection: wallpaper.Selection{
				Kind: wallpaper.SelectionBuiltin,
				ID:   wallpaper.CanonicalID(legacy.WallpaperID),
			},
			DisplayMode: wallpaper.ModeFill,
		}
		cfg = &migratedCfg
	}
	return migrated, cfg, true
}

// SaveWallpaper persists the committed wallpaper config.
func (p *Persistence) SaveWallpaper(ctx context.Context, cfg wallpaper.Config) error {
	return p.saveJSON(ctx, KeyWallpaper, cfg)
}

// LoadWallpaper reads the persisted wallpaper config.
func (p *Persistence) LoadWallpaper(ctx context.Context) (wallpaper.Config, bool) {
	var cfg wallpaper.Config
	if ok := p.loadJSON(ctx, KeyWallpaper, &cfg); !ok {
		return wallpaper.Config{}, false
	}
	return cfg.Canonicalize(), true
}

// SaveTerminalHistory persists the terminal command history.
func (p *Persistence) SaveTerminalHistory(ctx context.Context, history []string) error {
	return p.saveJSON(ctx, KeyTerminalHistory, history)
}

// LoadTerminalHistory reads persisted terminal history.
func (p *Persistence) LoadTerminalHistory(ctx context.Context) ([]string, bool) {
	var history []string
	if ok := p.loadJSON(ctx, KeyTerminalHistory, &history); !ok {
		return nil, false
	}
	return history, true
}

// SavePolicy persists the capability policy overlay.
func (p *Persistence) SavePolicy(ctx context.Context, overlay map[string][]types.Capability) error {
	return p.saveJSON(ctx, KeyAppPolicy, overlay)
}

// LoadPolicy reads the persisted capability policy overlay.
func (p *Persistence) LoadPolicy(ctx context.Context) (map[string][]types.Capability, bool) {
	var overlay map[string][]types.Capability
	if ok := p.loadJSON(ctx, KeyAppPolicy, &overlay); !ok {
		return nil, false
	}
	return overlay, true
}

// SaveConfigValue persists an app config value under its namespace.
func (p *Persistence) SaveConfigValue(ctx context.Context, namespace, key string, value []byte) error {
	return p.store.Set(ctx, "config."+namespace+"."+key, value)
}

// LoadConfigValue reads an app config value.
func (p *Persistence) LoadConfigValue(ctx context.Context, namespace, key string) ([]byte, error) {
	return p.store.Get(ctx, "config."+namespace+"."+key)
}

func (p *Persistence) saveJSON(ctx context.Context, key string, value any) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return p.store.Set(ctx, key, raw)
}

// loadJSON reads and decodes a key. Missing keys and corrupt payloads both
// report false; callers fall back to defaults either way.
func (p *Persistence) loadJSON(ctx context.Context, key string, out any) bool {
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		return false
	}
	return sonic.Unmarshal(raw, out) == nil
}
