package desktop

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// SnapshotSchemaVersion is the current persisted layout schema.
const SnapshotSchemaVersion = 2

// Snapshot is the serializable desktop layout persisted for restore.
type Snapshot struct {
	SchemaVersion    int                        `json:"schema_version"`
	Preferences      Preferences                `json:"preferences"`
	Windows          []WindowRecord             `json:"windows"`
	LastExplorerPath string                     `json:"last_explorer_path,omitempty"`
	LastNotepadSlug  string                     `json:"last_notepad_slug,omitempty"`
	TerminalHistory  []string                   `json:"terminal_history"`
	AppSharedState   map[string]json.RawMessage `json:"app_shared_state,omitempty"`
}

// Snapshot captures the persistable portion of the state. Theme and
// wallpaper are persisted under their own keys and are excluded here.
func (s *State) Snapshot() Snapshot {
	windows := make([]WindowRecord, len(s.Windows))
	copy(windows, s.Windows)
	history := make([]string, len(s.TerminalHistory))
	copy(history, s.TerminalHistory)
	shared := make(map[string]json.RawMessage, len(s.AppSharedState))
	for k, v := range s.AppSharedState {
		shared[k] = v
	}
	return Snapshot{
		SchemaVersion:    SnapshotSchemaVersion,
		Preferences:      s.Preferences,
		Windows:          windows,
		LastExplorerPath: s.LastExplorerPath,
		LastNotepadSlug:  s.LastNotepadSlug,
		TerminalHistory:  history,
		AppSharedState:   shared,
	}
}

// FromSnapshot rebuilds runtime state from a persisted snapshot. The next
// window id is recomputed from the restored window list.
func FromSnapshot(snap Snapshot) *State {
	st := NewState()
	st.Preferences = snap.Preferences
	st.Windows = snap.Windows
	st.LastExplorerPath = snap.LastExplorerPath
	st.LastNotepadSlug = snap.LastNotepadSlug
	st.TerminalHistory = snap.TerminalHistory
	if snap.AppSharedState != nil {
		st.AppSharedState = snap.AppSharedState
	}
	var maxID uint64
	for i := range st.Windows {
		if uint64(st.Windows[i].ID) > maxID {
			maxID = uint64(st.Windows[i].ID)
		}
	}
	st.NextWindowID = maxID + 1
	return st
}

// legacyThemePayload is the v1 theme shape that still embedded the wallpaper
// selection.
type legacyThemePayload struct {
	Skin          Skin   `json:"skin"`
	WallpaperID   string `json:"wallpaper_id"`
	HighContrast  bool   `json:"high_contrast"`
	ReducedMotion bool   `json:"reduced_motion"`
	AudioEnabled  bool   `json:"audio_enabled"`
}

type legacySnapshotV1 struct {
	SchemaVersion    int                        `json:"schema_version"`
	Theme            legacyThemePayload         `json:"theme"`
	Preferences      Preferences                `json:"preferences"`
	Windows          []WindowRecord             `json:"windows"`
	LastExplorerPath string                     `json:"last_explorer_path,omitempty"`
	LastNotepadSlug  string                     `json:"last_notepad_slug,omitempty"`
	TerminalHistory  []string                   `json:"terminal_history"`
	AppSharedState   map[string]json.RawMessage `json:"app_shared_state,omitempty"`
}

type snapshotProbe struct {
	SchemaVersion int `json:"schema_version"`
}

// DecodeSnapshot parses a persisted layout payload, migrating legacy schema
// versions forward. Unknown future versions are rejected.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var probe snapshotProbe
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("decode layout snapshot: %w", err)
	}

	switch probe.SchemaVersion {
	case 0, SnapshotSchemaVersion:
		var snap Snapshot
		if err := sonic.Unmarshal(raw, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode layout snapshot: %w", err)
		}
		snap.SchemaVersion = SnapshotSchemaVersion
		return snap, nil
	case 1:
		var legacy legacySnapshotV1
		if err := sonic.Unmarshal(raw, &legacy); err != nil {
			return Snapshot{}, fmt.Errorf("decode v1 layout snapshot: %w", err)
		}
		return Snapshot{
			SchemaVersion:    SnapshotSchemaVersion,
			Preferences:      legacy.Preferences,
			Windows:          legacy.Windows,
			LastExplorerPath: legacy.LastExplorerPath,
			LastNotepadSlug:  legacy.LastNotepadSlug,
			TerminalHistory:  legacy.TerminalHistory,
			AppSharedState:   legacy.AppSharedState,
		}, nil
	default:
		return Snapshot{}, fmt.Errorf("layout snapshot schema %d is newer than %d", probe.SchemaVersion, SnapshotSchemaVersion)
	}
}

// EncodeSnapshot serializes a snapshot for persistence.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	raw, err := sonic.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode layout snapshot: %w", err)
	}
	return raw, nil
}
