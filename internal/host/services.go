package host

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bytedance/sonic"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
)

// ErrKeyNotFound is returned by StateStore.Get for absent keys.
var ErrKeyNotFound = errors.New("state key not found")

// StateStore persists namespaced payloads across restarts. Implementations
// must tolerate concurrent calls.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Notifier surfaces user-visible notifications on the embedding platform.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// WallpaperAssets stores imported wallpaper media and serves the merged
// asset library.
type WallpaperAssets interface {
	Library(ctx context.Context) (wallpaper.Library, error)
	Import(ctx context.Context, req wallpaper.ImportRequest) (wallpaper.Asset, error)
	UpdateMetadata(ctx context.Context, assetID string, patch wallpaper.MetadataPatch) error
	DeleteAsset(ctx context.Context, assetID string) error
	CreateCollection(ctx context.Context, displayName string) (wallpaper.Collection, error)
	RenameCollection(ctx context.Context, collectionID, displayName string) error
	DeleteCollection(ctx context.Context, collectionID string) error
}

// URLOpener opens URLs in the platform browser. Implementations decide
// which schemes they accept.
type URLOpener interface {
	OpenURL(ctx context.Context, url string) error
}

// SoundPlayer plays named shell sound cues.
type SoundPlayer interface {
	Play(ctx context.Context, sound string) error
}

// StateEnvelope wraps persisted payloads with versioning metadata so stores
// can migrate old shapes on read.
type StateEnvelope struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAtUnixMS int64           `json:"saved_at_unix_ms"`
	Payload       json.RawMessage `json:"payload"`
}

// WrapEnvelope serializes payload inside a versioned envelope.
func WrapEnvelope(schemaVersion int, payload []byte) ([]byte, error) {
	return sonic.Marshal(StateEnvelope{
		SchemaVersion: schemaVersion,
		SavedAtUnixMS: time.Now().UnixMilli(),
		Payload:       payload,
	})
}

// UnwrapEnvelope parses a stored envelope. Raw legacy payloads that never
// had an envelope come back with schema version zero.
func UnwrapEnvelope(raw []byte) (StateEnvelope, error) {
	var env StateEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil || env.Payload == nil {
		return StateEnvelope{SchemaVersion: 0, Payload: raw}, nil
	}
	return env, nil
}
