package desktop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	st := NewState()
	st.Windows = []WindowRecord{
		{ID: 3, AppID: "system.explorer", Title: "Explorer", Rect: DefaultRect(), Flags: DefaultWindowFlags(), Focused: true},
		{ID: 7, AppID: "system.notepad", Title: "Notes", Rect: DefaultRect(), Flags: DefaultWindowFlags()},
	}
	st.TerminalHistory = []string{"ls", "cat readme.txt"}
	st.LastExplorerPath = "/Projects"

	raw, err := EncodeSnapshot(st.Snapshot())
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(raw)
	require.NoError(t, err)

	restored := FromSnapshot(decoded)
	assert.Equal(t, st.Windows, restored.Windows)
	assert.Equal(t, st.TerminalHistory, restored.TerminalHistory)
	assert.Equal(t, "/Projects", restored.LastExplorerPath)
}

func TestFromSnapshotRecomputesNextWindowID(t *testing.T) {
	restored := FromSnapshot(Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Preferences:   DefaultPreferences(),
		Windows: []WindowRecord{
			{ID: 2, AppID: "system.explorer"},
			{ID: 9, AppID: "system.terminal"},
		},
	})
	assert.Equal(t, uint64(10), restored.NextWindowID)

	empty := FromSnapshot(Snapshot{SchemaVersion: SnapshotSchemaVersion, Preferences: DefaultPreferences()})
	assert.Equal(t, uint64(1), empty.NextWindowID)
}

func TestDecodeSnapshotMigratesV1(t *testing.T) {
	raw := []byte(`{
		"schema_version": 1,
		"theme": {"skin": "classic-xp", "wallpaper_id": "clouds", "audio_enabled": true},
		"preferences": {"restore_on_boot": true, "max_restore_windows": 5, "terminal_history_enabled": true},
		"windows": [{"id": 4, "app_id": "system.notepad", "title": "Notes", "rect": {"x": 10, "y": 10, "w": 400, "h": 300}, "z_index": 1, "is_focused": true, "minimized": false, "maximized": false, "suspended": false, "flags": {"resizable": true, "minimizable": true, "maximizable": true}}],
		"terminal_history": ["ls"]
	}`)

	snap, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSchemaVersion, snap.SchemaVersion)
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, WindowID(4), snap.Windows[0].ID)
	assert.Equal(t, []string{"ls"}, snap.TerminalHistory)
}

func TestDecodeSnapshotRejectsFutureSchema(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"schema_version": 99}`))
	assert.Error(t, err)
}

func TestDecodeSnapshotRejectsMalformedPayload(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"schema_version": `))
	assert.Error(t, err)
}
