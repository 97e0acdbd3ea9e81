package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/apps"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	registry, err := apps.NewBuiltinRegistry()
	require.NoError(t, err)
	return NewGate(registry)
}

func TestAllowManifestDeclaredCapability(t *testing.T) {
	g := newGate(t)
	st := desktop.NewState()

	assert.True(t, g.Allow(st, "system.explorer", types.CapWindow))
	assert.True(t, g.Allow(st, "system.explorer", types.CapIPC))
	assert.False(t, g.Allow(st, "system.explorer", types.CapTheme))
}

func TestAllowDeniesUnknownApps(t *testing.T) {
	g := newGate(t)
	assert.False(t, g.Allow(desktop.NewState(), "ghost.app", types.CapWindow))
}

func TestAllowPrivilegedBypass(t *testing.T) {
	g := newGate(t)
	st := desktop.NewState()

	// Settings declares neither ipc nor external-url but is privileged.
	assert.True(t, g.Allow(st, "system.settings", types.CapIPC))
	assert.True(t, g.Allow(st, "system.settings", types.CapExternalURL))
}

func TestAllowOverlayGrantsAreAdditive(t *testing.T) {
	g := newGate(t)
	st := desktop.NewState()
	require.False(t, g.Allow(st, "system.dialup", types.CapNotifications))

	st.PolicyOverlay = map[string][]types.Capability{
		"system.dialup": {types.CapNotifications},
	}
	assert.True(t, g.Allow(st, "system.dialup", types.CapNotifications))
	assert.True(t, g.Allow(st, "system.dialup", types.CapWindow), "manifest capabilities survive overlay")
}

func TestOverlayFromGrantsDropsUnknownCapabilities(t *testing.T) {
	overlay := OverlayFromGrants(map[string][]string{
		"system.dialup": {"notifications", "root", "theme"},
	})
	require.Contains(t, overlay, "system.dialup")
	assert.Equal(t, []types.Capability{types.CapNotifications, types.CapTheme}, overlay["system.dialup"])

	assert.Nil(t, OverlayFromGrants(nil))
	assert.Nil(t, OverlayFromGrants(map[string][]string{"a.b": {"bogus"}}))
}
