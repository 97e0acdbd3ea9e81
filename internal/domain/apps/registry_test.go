package apps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

func TestBuiltinRegistryContainsCoreApps(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	for _, id := range []string{
		"system.calculator", "system.explorer", "system.notepad",
		"system.paint", "system.terminal", "system.settings", "system.dialup",
	} {
		_, ok := registry.Descriptor(id)
		assert.True(t, ok, "missing builtin app %s", id)
	}
}

func TestBuiltinRegistryPrivilegeAndInstanceFlags(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	settings, _ := registry.Descriptor("system.settings")
	assert.True(t, settings.Privileged)
	assert.True(t, settings.SingleInstance)

	explorer, _ := registry.Descriptor("system.explorer")
	assert.False(t, explorer.Privileged)
	assert.False(t, explorer.SingleInstance)

	terminal, _ := registry.Descriptor("system.terminal")
	assert.True(t, terminal.SingleInstance)
	assert.Equal(t, types.SuspendNever, terminal.SuspendPolicy)
	assert.Equal(t, types.SuspendOnMinimize, explorer.SuspendPolicy)
}

func TestRegisterRejectsDuplicatesAndInvalidIDs(t *testing.T) {
	registry := NewRegistry()
	descriptor := types.AppDescriptor{AppID: "vendor.notes", DisplayName: "Notes"}

	require.NoError(t, registry.Register(descriptor))
	assert.Error(t, registry.Register(descriptor))
	assert.Error(t, registry.Register(types.AppDescriptor{AppID: "NotValid", DisplayName: "X"}))
}

func TestLauncherAndDesktopFiltering(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	launcher := registry.LauncherApps()
	assert.NotEmpty(t, launcher)
	for _, d := range launcher {
		assert.True(t, d.ShowInLauncher)
	}

	desktopIcons := registry.DesktopIconApps()
	for _, d := range desktopIcons {
		assert.True(t, d.ShowOnDesktop)
	}
	ids := make([]string, len(desktopIcons))
	for i, d := range desktopIcons {
		ids[i] = d.AppID
	}
	assert.NotContains(t, ids, "system.settings", "settings is launcher-only")
}

func TestPinnedTaskbarOrderIsStable(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	pinned := registry.PinnedTaskbarApps()
	require.Len(t, pinned, 4)
	assert.Equal(t, "system.explorer", pinned[0].AppID)
	assert.Equal(t, "system.terminal", pinned[1].AppID)
}

func TestSearchMatchesFuzzyQueries(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	results := registry.Search("calc")
	require.NotEmpty(t, results)
	assert.Equal(t, "system.calculator", results[0].AppID)

	assert.Empty(t, registry.Search("zzzzzz"))
	assert.Equal(t, registry.LauncherApps(), registry.Search(""))
}

func TestCanonicalAppIDMapsLegacyNames(t *testing.T) {
	canonical, ok := CanonicalAppID("Calculator")
	require.True(t, ok)
	assert.Equal(t, "system.calculator", canonical)

	same, ok := CanonicalAppID("system.terminal")
	require.True(t, ok)
	assert.Equal(t, "system.terminal", same)

	_, ok = CanonicalAppID("Minesweeper")
	assert.False(t, ok)
}

func TestRegistryCanonicalAppIDRequiresRegistration(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	canonical, ok := registry.CanonicalAppID("Notepad")
	require.True(t, ok)
	assert.Equal(t, "system.notepad", canonical)

	require.NoError(t, registry.Register(types.AppDescriptor{
		AppID:       "acme.paint",
		DisplayName: "Acme Paint",
		IconID:      "paint",
	}))
	canonical, ok = registry.CanonicalAppID("acme.paint")
	require.True(t, ok)
	assert.Equal(t, "acme.paint", canonical)

	_, ok = registry.CanonicalAppID("acme.missing")
	assert.False(t, ok)
}

func TestDefaultOpenRequestScalesWithViewport(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	viewport := desktop.Rect{X: 0, Y: 0, W: 1600, H: 1000}
	explorerReq, ok := registry.DefaultOpenRequest("system.explorer", &viewport)
	require.True(t, ok)
	require.NotNil(t, explorerReq.Rect)
	assert.GreaterOrEqual(t, explorerReq.Rect.W, 620)
	assert.GreaterOrEqual(t, explorerReq.Rect.H, 420)
	assert.LessOrEqual(t, explorerReq.Rect.W, int(1600*0.92))
	assert.LessOrEqual(t, explorerReq.Rect.H, int(1000*0.92))

	calcReq, ok := registry.DefaultOpenRequest("system.calculator", &viewport)
	require.True(t, ok)
	assert.Less(t, calcReq.Rect.W, explorerReq.Rect.W, "calculator opens more compact than explorer")

	_, ok = registry.DefaultOpenRequest("ghost.app", &viewport)
	assert.False(t, ok)
}

func TestDefaultOpenRequestHonorsMinimumSizes(t *testing.T) {
	registry, err := NewBuiltinRegistry()
	require.NoError(t, err)

	tiny := desktop.Rect{X: 0, Y: 0, W: 300, H: 200}
	req, ok := registry.DefaultOpenRequest("system.explorer", &tiny)
	require.True(t, ok)
	assert.GreaterOrEqual(t, req.Rect.W, 620, "preferred minimum wins over viewport ratio")
	assert.GreaterOrEqual(t, req.Rect.H, 420)
}

func TestParseManifestValidation(t *testing.T) {
	valid := []byte(`
app_id = "vendor.sketch"
display_name = "Sketch"
capabilities = ["window", "state"]
suspend_policy = "on-minimize"
show_in_launcher = true

[window_defaults]
width = 500
height = 400
`)
	m, err := ParseManifest(valid)
	require.NoError(t, err)
	d := m.Descriptor()
	assert.Equal(t, "vendor.sketch", d.AppID)
	assert.Equal(t, "Sketch", d.DesktopLabel, "desktop label falls back to display name")
	assert.Equal(t, "bundle:vendor.sketch", d.MountRef)
	assert.False(t, d.Privileged, "manifest apps are never privileged")
	assert.True(t, d.HasCapability(types.CapState))

	cases := map[string]string{
		"bad id":         "app_id = \"Nope\"\ndisplay_name = \"X\"",
		"no name":        "app_id = \"vendor.x\"\ndisplay_name = \" \"",
		"bad capability": "app_id = \"vendor.x\"\ndisplay_name = \"X\"\ncapabilities = [\"root\"]",
		"bad policy":     "app_id = \"vendor.x\"\ndisplay_name = \"X\"\nsuspend_policy = \"sometimes\"",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifestDir(t *testing.T) {
	dir := t.TempDir()
	good := `
app_id = "vendor.music"
display_name = "Music"
capabilities = ["window"]
show_in_launcher = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "music.toml"), []byte(good), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte(`app_id = "Bad`), 0o644))

	registry := NewRegistry()
	loaded, err := LoadManifestDir(registry, dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, loaded, "invalid manifests are skipped, not fatal")
	_, ok := registry.Descriptor("vendor.music")
	assert.True(t, ok)
}

func TestLoadManifestDirMissingDirectory(t *testing.T) {
	registry := NewRegistry()
	loaded, err := LoadManifestDir(registry, filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, loaded)
}
