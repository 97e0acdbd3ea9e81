package desktop_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/apps"
	"github.com/retrodesk/desktopd/internal/domain/policy"
	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

func newReducer(t *testing.T) *desktop.Reducer {
	t.Helper()
	registry, err := apps.NewBuiltinRegistry()
	require.NoError(t, err)
	return desktop.NewReducer(registry, policy.NewGate(registry))
}

func openApp(t *testing.T, r *desktop.Reducer, st *desktop.State, in *desktop.Interaction, appID string) desktop.WindowID {
	t.Helper()
	_, err := r.Reduce(st, in, desktop.OpenWindow{Request: desktop.NewOpenWindowRequest(appID)})
	require.NoError(t, err)
	return st.Windows[len(st.Windows)-1].ID
}

func hasLifecycle(effects []desktop.Effect, id desktop.WindowID, event desktop.Lifecycle) bool {
	for _, e := range effects {
		if d, ok := e.(desktop.EffectDispatchLifecycle); ok && d.WindowID == id && d.Event == event {
			return true
		}
	}
	return false
}

func countPersistLayout(effects []desktop.Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(desktop.EffectPersistLayout); ok {
			n++
		}
	}
	return n
}

func TestOpenWindowFocusesNewWindowAndUpdatesStack(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	first := openApp(t, r, st, in, "system.explorer")
	second := openApp(t, r, st, in, "system.notepad")

	focused, ok := st.FocusedWindowID()
	require.True(t, ok)
	assert.Equal(t, second, focused)
	require.Len(t, st.Windows, 2)
	assert.Equal(t, first, st.Windows[0].ID)
	assert.Equal(t, second, st.Windows[1].ID)
	assert.Equal(t, 2, st.Windows[1].ZIndex)
}

func TestWindowIDsAreMonotonicFromOne(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	first := openApp(t, r, st, in, "system.explorer")
	second := openApp(t, r, st, in, "system.explorer")
	assert.Equal(t, desktop.WindowID(1), first)
	assert.Equal(t, desktop.WindowID(2), second)

	_, err := r.Reduce(st, in, desktop.CloseWindow{WindowID: first})
	require.NoError(t, err)
	third := openApp(t, r, st, in, "system.explorer")
	assert.Equal(t, desktop.WindowID(3), third, "ids are never reused")
}

func TestOpenWindowCascadesAndClampsToViewport(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	viewport := desktop.Rect{X: 0, Y: 0, W: 800, H: 600}

	req := desktop.NewOpenWindowRequest("system.explorer")
	req.Viewport = &viewport
	_, err := r.Reduce(st, in, desktop.OpenWindow{Request: req})
	require.NoError(t, err)

	rect := st.Windows[0].Rect
	assert.GreaterOrEqual(t, rect.X, viewport.X+10)
	assert.GreaterOrEqual(t, rect.Y, viewport.Y+10)
	assert.LessOrEqual(t, rect.W, viewport.W-20)
	assert.LessOrEqual(t, rect.H, viewport.H-20)
	assert.LessOrEqual(t, rect.X+rect.W, viewport.X+viewport.W-10)
	assert.LessOrEqual(t, rect.Y+rect.H, viewport.Y+viewport.H-10)
}

func TestOpenWindowUnknownAppFails(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	_, err := r.Reduce(st, in, desktop.OpenWindow{Request: desktop.NewOpenWindowRequest("system.unknown")})
	assert.ErrorIs(t, err, desktop.ErrAppNotRegistered)
	assert.Empty(t, st.Windows)
}

func TestTaskbarToggleMinimizesIfFocusedAndRestoresIfMinimized(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.ToggleTaskbarWindow{WindowID: win})
	require.NoError(t, err)
	record, _ := st.Window(win)
	assert.True(t, record.Minimized)
	assert.False(t, record.Focused)

	_, err = r.Reduce(st, in, desktop.ToggleTaskbarWindow{WindowID: win})
	require.NoError(t, err)
	record, _ = st.Window(win)
	assert.False(t, record.Minimized)
	assert.True(t, record.Focused)
}

func TestTaskbarToggleRestorePreservesFocusEffects(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.MinimizeWindow{WindowID: win})
	require.NoError(t, err)

	effects, err := r.Reduce(st, in, desktop.ToggleTaskbarWindow{WindowID: win})
	require.NoError(t, err)
	assert.Contains(t, effects, desktop.EffectFocusWindowInput{WindowID: win})
	assert.Equal(t, 1, countPersistLayout(effects))
}

func TestActivateAppReusesExistingSingleInstanceWindow(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	first, err := r.Reduce(st, in, desktop.ActivateApp{AppID: "system.terminal"})
	require.NoError(t, err)
	require.Len(t, st.Windows, 1)
	winID := st.Windows[0].ID
	assert.Equal(t, 1, countPersistLayout(first))

	effects, err := r.Reduce(st, in, desktop.ActivateApp{AppID: "system.terminal"})
	require.NoError(t, err)
	assert.Len(t, st.Windows, 1)
	assert.Equal(t, winID, st.Windows[0].ID)
	assert.Empty(t, effects)
}

func TestActivateAppRestoresMinimizedSingleInstance(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	_, err := r.Reduce(st, in, desktop.ActivateApp{AppID: "system.terminal"})
	require.NoError(t, err)
	win := st.Windows[0].ID
	_, err = r.Reduce(st, in, desktop.MinimizeWindow{WindowID: win})
	require.NoError(t, err)

	effects, err := r.Reduce(st, in, desktop.ActivateApp{AppID: "system.terminal"})
	require.NoError(t, err)
	record, _ := st.Window(win)
	assert.False(t, record.Minimized)
	assert.True(t, record.Focused)
	assert.True(t, hasLifecycle(effects, win, desktop.LifecycleRestored))
}

func TestActivateAppOpensNewWindowForMultiInstanceApps(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	_, err := r.Reduce(st, in, desktop.ActivateApp{AppID: "system.explorer"})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.ActivateApp{AppID: "system.explorer"})
	require.NoError(t, err)

	assert.Len(t, st.Windows, 2)
	for _, w := range st.Windows {
		assert.Equal(t, "system.explorer", w.AppID)
	}
}

func TestActivateUnknownAppFails(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	_, err := r.Reduce(st, in, desktop.ActivateApp{AppID: "ghost.app"})
	assert.ErrorIs(t, err, desktop.ErrAppNotRegistered)
}

func TestFocusingAlreadyFocusedTopWindowIsNoopForStackOrder(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	openApp(t, r, st, in, "system.explorer")
	second := openApp(t, r, st, in, "system.calculator")
	before := make([]desktop.WindowRecord, len(st.Windows))
	copy(before, st.Windows)

	effects, err := r.Reduce(st, in, desktop.FocusWindow{WindowID: second})
	require.NoError(t, err)
	assert.Equal(t, before, st.Windows)
	focused, _ := st.FocusedWindowID()
	assert.Equal(t, second, focused)
	assert.Contains(t, effects, desktop.EffectFocusWindowInput{WindowID: second})
}

func TestFocusTransferAfterMinimize(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	first := openApp(t, r, st, in, "system.explorer")
	second := openApp(t, r, st, in, "system.notepad")

	effects, err := r.Reduce(st, in, desktop.MinimizeWindow{WindowID: second})
	require.NoError(t, err)

	focused, ok := st.FocusedWindowID()
	require.True(t, ok, "top non-minimized window takes focus")
	assert.Equal(t, first, focused)
	assert.True(t, hasLifecycle(effects, second, desktop.LifecycleMinimized))
	assert.True(t, hasLifecycle(effects, second, desktop.LifecycleBlurred))
	assert.True(t, hasLifecycle(effects, first, desktop.LifecycleFocused))
}

func TestMinimizedWindowNeverHoldsFocus(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.MinimizeWindow{WindowID: win})
	require.NoError(t, err)
	_, ok := st.FocusedWindowID()
	assert.False(t, ok)
}

func TestMovingWindowUpdatesRectDuringDragAndPersistsOnEnd(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.terminal")
	original, _ := st.Window(win)
	origRect := original.Rect

	_, err := r.Reduce(st, in, desktop.BeginMove{WindowID: win, Pointer: desktop.PointerPosition{X: 10, Y: 10}})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.UpdateMove{Pointer: desktop.PointerPosition{X: 35, Y: 50}})
	require.NoError(t, err)

	moved, _ := st.Window(win)
	assert.Equal(t, origRect.X+25, moved.Rect.X)
	assert.Equal(t, origRect.Y+40, moved.Rect.Y)

	effects, err := r.Reduce(st, in, desktop.EndMove{})
	require.NoError(t, err)
	assert.Contains(t, effects, desktop.EffectPersistLayout{})
	assert.Nil(t, in.Dragging)
}

func TestEndMoveWithViewportSnapsWindowToLeftHalf(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	viewport := desktop.Rect{X: 0, Y: 0, W: 1000, H: 700}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.BeginMove{WindowID: win, Pointer: desktop.PointerPosition{}})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.UpdateMove{Pointer: desktop.PointerPosition{X: -35, Y: 80}})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.EndMoveWithViewport{Viewport: viewport})
	require.NoError(t, err)

	record, _ := st.Window(win)
	assert.Equal(t, desktop.Rect{X: 0, Y: 0, W: 500, H: 700}, record.Rect)
	assert.False(t, record.Maximized)
	assert.NotNil(t, record.RestoreRect)
}

func TestEndMoveWithViewportSnapsWindowToTopMaximize(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	viewport := desktop.Rect{X: 0, Y: 0, W: 1200, H: 760}
	win := openApp(t, r, st, in, "system.terminal")

	_, err := r.Reduce(st, in, desktop.BeginMove{WindowID: win, Pointer: desktop.PointerPosition{}})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.UpdateMove{Pointer: desktop.PointerPosition{X: 150, Y: -40}})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.EndMoveWithViewport{Viewport: viewport})
	require.NoError(t, err)

	record, _ := st.Window(win)
	assert.Equal(t, viewport, record.Rect)
	assert.True(t, record.Maximized)
	assert.NotNil(t, record.RestoreRect)
}

func TestResizeRespectsMinimumAndViewport(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	viewport := desktop.Rect{X: 0, Y: 0, W: 1280, H: 760}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.BeginResize{
		WindowID: win,
		Edge:     desktop.EdgeSouthEast,
		Pointer:  desktop.PointerPosition{},
		Viewport: viewport,
	})
	require.NoError(t, err)
	_, err = r.Reduce(st, in, desktop.UpdateResize{Pointer: desktop.PointerPosition{X: -5000, Y: -5000}})
	require.NoError(t, err)

	record, _ := st.Window(win)
	assert.Equal(t, desktop.MinWindowWidth, record.Rect.W)
	assert.Equal(t, desktop.MinWindowHeight, record.Rect.H)

	effects, err := r.Reduce(st, in, desktop.EndResize{})
	require.NoError(t, err)
	assert.Contains(t, effects, desktop.EffectPersistLayout{})
	assert.Nil(t, in.Resizing)
}

func TestMaximizeAndRestoreRoundTrip(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	viewport := desktop.Rect{X: 0, Y: 0, W: 1280, H: 760}
	win := openApp(t, r, st, in, "system.explorer")
	before, _ := st.Window(win)
	beforeRect := before.Rect

	_, err := r.Reduce(st, in, desktop.MaximizeWindow{WindowID: win, Viewport: viewport})
	require.NoError(t, err)
	record, _ := st.Window(win)
	assert.True(t, record.Maximized)
	assert.Equal(t, viewport, record.Rect)

	effects, err := r.Reduce(st, in, desktop.RestoreWindow{WindowID: win})
	require.NoError(t, err)
	record, _ = st.Window(win)
	assert.False(t, record.Maximized)
	assert.Equal(t, beforeRect, record.Rect)
	assert.True(t, hasLifecycle(effects, win, desktop.LifecycleRestored))
}

func TestCloseFlowEmitsClosingThenClosed(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	openApp(t, r, st, in, "system.explorer")
	second := openApp(t, r, st, in, "system.notepad")

	effects, err := r.Reduce(st, in, desktop.CloseWindow{WindowID: second})
	require.NoError(t, err)

	closingIdx, closedIdx := -1, -1
	for i, e := range effects {
		if d, ok := e.(desktop.EffectDispatchLifecycle); ok && d.WindowID == second {
			switch d.Event {
			case desktop.LifecycleClosing:
				closingIdx = i
			case desktop.LifecycleClosed:
				closedIdx = i
			}
		}
	}
	require.GreaterOrEqual(t, closingIdx, 0)
	require.Greater(t, closedIdx, closingIdx)

	_, exists := st.Window(second)
	assert.False(t, exists)
	_, ok := st.FocusedWindowID()
	assert.True(t, ok)
}

func TestCloseWindowIsIdempotent(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.CloseWindow{WindowID: win})
	require.NoError(t, err)
	effects, err := r.Reduce(st, in, desktop.CloseWindow{WindowID: win})
	require.NoError(t, err)
	assert.Empty(t, effects)
}

func TestMinimizeAppliesSuspendPolicy(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	explorer := openApp(t, r, st, in, "system.explorer")
	terminal := openApp(t, r, st, in, "system.terminal")

	explorerEffects, err := r.Reduce(st, in, desktop.MinimizeWindow{WindowID: explorer})
	require.NoError(t, err)
	record, _ := st.Window(explorer)
	assert.True(t, record.Suspended)
	assert.True(t, hasLifecycle(explorerEffects, explorer, desktop.LifecycleSuspended))

	terminalEffects, err := r.Reduce(st, in, desktop.MinimizeWindow{WindowID: terminal})
	require.NoError(t, err)
	record, _ = st.Window(terminal)
	assert.False(t, record.Suspended)
	assert.False(t, hasLifecycle(terminalEffects, terminal, desktop.LifecycleSuspended))
}

func TestSuspendAndResumeAreIdempotent(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")

	effects, err := r.Reduce(st, in, desktop.SuspendWindow{WindowID: win})
	require.NoError(t, err)
	assert.True(t, hasLifecycle(effects, win, desktop.LifecycleSuspended))

	effects, err = r.Reduce(st, in, desktop.SuspendWindow{WindowID: win})
	require.NoError(t, err)
	assert.Empty(t, effects)

	effects, err = r.Reduce(st, in, desktop.ResumeWindow{WindowID: win})
	require.NoError(t, err)
	assert.True(t, hasLifecycle(effects, win, desktop.LifecycleResumed))

	effects, err = r.Reduce(st, in, desktop.ResumeWindow{WindowID: win})
	require.NoError(t, err)
	assert.Empty(t, effects)
}

func TestRestoreResumesSuspendedWindow(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")

	_, err := r.Reduce(st, in, desktop.MinimizeWindow{WindowID: win})
	require.NoError(t, err)
	effects, err := r.Reduce(st, in, desktop.RestoreWindow{WindowID: win})
	require.NoError(t, err)

	record, _ := st.Window(win)
	assert.False(t, record.Suspended)
	assert.True(t, hasLifecycle(effects, win, desktop.LifecycleResumed))
}

func TestSetHighContrastUpdatesThemeAndPersists(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	effects, err := r.Reduce(st, in, desktop.SetHighContrast{Enabled: true})
	require.NoError(t, err)
	assert.True(t, st.Theme.HighContrast)
	assert.Equal(t, []desktop.Effect{desktop.EffectPersistTheme{}}, effects)
}

func TestSetSkinUpdatesThemeAndPersists(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	effects, err := r.Reduce(st, in, desktop.SetSkin{Skin: desktop.SkinClassic95})
	require.NoError(t, err)
	assert.Equal(t, desktop.SkinClassic95, st.Theme.Skin)
	assert.Equal(t, []desktop.Effect{desktop.EffectPersistTheme{}}, effects)
}

func TestPreviewAndApplyWallpaperAreIndependentOfTheme(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	next := wallpaper.Config{
		Selection:   wallpaper.Selection{Kind: wallpaper.SelectionBuiltin, ID: "sunset-lake"},
		DisplayMode: wallpaper.ModeFit,
	}

	effects, err := r.Reduce(st, in, desktop.PreviewWallpaper{Config: next})
	require.NoError(t, err)
	assert.Empty(t, effects)
	require.NotNil(t, st.WallpaperPreview)
	assert.Equal(t, next, *st.WallpaperPreview)
	assert.Equal(t, desktop.SkinModernAdaptive, st.Theme.Skin)

	effects, err = r.Reduce(st, in, desktop.ApplyWallpaperPreview{})
	require.NoError(t, err)
	assert.Equal(t, next, st.Wallpaper)
	assert.Nil(t, st.WallpaperPreview)
	assert.Equal(t, []desktop.Effect{desktop.EffectPersistWallpaper{}}, effects)
	assert.Equal(t, desktop.SkinModernAdaptive, st.Theme.Skin)
}

func TestHydrateWallpaperRequestsLibraryReloadForUnknownSelection(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	effects, err := r.Reduce(st, in, desktop.HydrateWallpaper{Config: wallpaper.Config{
		Selection:   wallpaper.Selection{Kind: wallpaper.SelectionImported, ID: "user-beach"},
		DisplayMode: wallpaper.ModeFill,
	}})
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.IsType(t, desktop.EffectLoadWallpaperLibrary{}, effects[0])
	assert.Equal(t, "user-beach", st.Wallpaper.Selection.ID)

	effects, err = r.Reduce(st, in, desktop.HydrateWallpaper{Config: wallpaper.DefaultConfig()})
	require.NoError(t, err)
	assert.Empty(t, effects)
}

func TestTileModeRejectsAnimatedWallpapers(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	_, err := r.Reduce(st, in, desktop.SetCurrentWallpaper{Config: wallpaper.Config{
		Selection:   wallpaper.Selection{Kind: wallpaper.SelectionBuiltin, ID: "aurora-flow"},
		DisplayMode: wallpaper.ModeTile,
	}})
	require.Error(t, err)
	assert.Equal(t, wallpaper.DefaultConfig(), st.Wallpaper)
}

func TestHandleAppCommandPersistStateUpdatesWindowRecordAndPersists(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")
	payload := json.RawMessage(`{"cwd":"/Projects"}`)

	effects, err := r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command:  desktop.CmdPersistState{State: payload},
	})
	require.NoError(t, err)

	record, _ := st.Window(win)
	assert.JSONEq(t, string(payload), string(record.AppState))
	assert.Contains(t, effects, desktop.EffectPersistLayout{})
}

func TestHandleAppCommandSetWindowTitle(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.notepad")

	effects, err := r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command:  desktop.CmdSetWindowTitle{Title: "Notes - roadmap"},
	})
	require.NoError(t, err)
	record, _ := st.Window(win)
	assert.Equal(t, "Notes - roadmap", record.Title)
	assert.Contains(t, effects, desktop.EffectPersistLayout{})
}

func TestHandleAppCommandDeniedLeavesStateUnchanged(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	// The dial-up app declares only the window capability.
	win := openApp(t, r, st, in, "system.dialup")
	before := st.Theme

	effects, err := r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command:  desktop.CmdSetDesktopHighContrast{Enabled: true},
	})
	require.NoError(t, err)
	assert.Equal(t, before, st.Theme)
	require.Len(t, effects, 1)
	notice, ok := effects[0].(desktop.EffectNotify)
	require.True(t, ok)
	assert.Equal(t, "Permission denied", notice.Title)
}

func TestPolicyOverlayGrantsAdditionalCapabilities(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.dialup")

	_, err := r.Reduce(st, in, desktop.HydratePolicy{
		Overlay: map[string][]types.Capability{"system.dialup": {types.CapTheme}},
	})
	require.NoError(t, err)

	_, err = r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command:  desktop.CmdSetDesktopHighContrast{Enabled: true},
	})
	require.NoError(t, err)
	assert.True(t, st.Theme.HighContrast)
}

func TestPrivilegedAppBypassesCapabilityChecks(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.settings")

	effects, err := r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command:  desktop.CmdOpenExternalURL{URL: "https://example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []desktop.Effect{desktop.EffectOpenExternalURL{URL: "https://example.com"}}, effects)
}

func TestAppBusCommandsEmitEffects(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	win := openApp(t, r, st, in, "system.explorer")
	payload := json.RawMessage(`{"path":"/Projects/demo"}`)

	subEffects, err := r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command:  desktop.CmdSubscribe{Topic: "app.system-explorer.refresh.v1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []desktop.Effect{desktop.EffectSubscribeWindowTopic{
		WindowID: win,
		Topic:    "app.system-explorer.refresh.v1",
	}}, subEffects)

	pubEffects, err := r.Reduce(st, in, desktop.HandleAppCommand{
		WindowID: win,
		Command: desktop.CmdPublishEvent{
			Topic:   "app.system-explorer.refresh.v1",
			Payload: payload,
		},
	})
	require.NoError(t, err)
	require.Len(t, pubEffects, 1)
	pub, ok := pubEffects[0].(desktop.EffectPublishTopicEvent)
	require.True(t, ok)
	assert.Equal(t, win, pub.SourceWindowID)
	assert.Equal(t, "app.system-explorer.refresh.v1", pub.Topic)
}

func TestPushTerminalHistoryHonorsPreferenceAndCap(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	for i := 0; i < 150; i++ {
		_, err := r.Reduce(st, in, desktop.PushTerminalHistory{Command: "echo hello"})
		require.NoError(t, err)
	}
	assert.Len(t, st.TerminalHistory, 100)

	effects, err := r.Reduce(st, in, desktop.PushTerminalHistory{Command: "   "})
	require.NoError(t, err)
	assert.Empty(t, effects)

	st.Preferences.TerminalHistoryEnabled = false
	effects, err = r.Reduce(st, in, desktop.PushTerminalHistory{Command: "ls"})
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Len(t, st.TerminalHistory, 100)
}

func TestSetSharedAppStateKeysByAppAndKey(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	_, err := r.Reduce(st, in, desktop.SetSharedAppState{
		AppID: "system.explorer",
		Key:   " recent ",
		State: json.RawMessage(`["/Projects"]`),
	})
	require.NoError(t, err)
	assert.Contains(t, st.AppSharedState, "system.explorer:recent")
}

func TestHydrateSnapshotCapsRestoredWindows(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	var windows []desktop.WindowRecord
	for i := 1; i <= 8; i++ {
		windows = append(windows, desktop.WindowRecord{
			ID:     desktop.WindowID(i),
			AppID:  "system.explorer",
			Title:  "Explorer",
			IconID: "folder",
			Rect:   desktop.DefaultRect(),
			Flags:  desktop.DefaultWindowFlags(),
		})
	}
	snap := desktop.Snapshot{
		SchemaVersion: desktop.SnapshotSchemaVersion,
		Preferences:   desktop.DefaultPreferences(),
		Windows:       windows,
	}

	effects, err := r.Reduce(st, in, desktop.HydrateSnapshot{Snapshot: snap})
	require.NoError(t, err)
	assert.Len(t, st.Windows, 5)
	for _, w := range st.Windows {
		assert.True(t, hasLifecycle(effects, w.ID, desktop.LifecycleMounted))
	}
	focused, ok := st.FocusedWindowID()
	require.True(t, ok)
	assert.True(t, hasLifecycle(effects, focused, desktop.LifecycleFocused))
}

func TestHydrateSnapshotCanonicalizesLegacyAppIDs(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	snap := desktop.Snapshot{
		SchemaVersion: desktop.SnapshotSchemaVersion,
		Preferences:   desktop.DefaultPreferences(),
		Windows: []desktop.WindowRecord{
			{
				ID:      1,
				AppID:   "Calculator",
				Title:   "Calculator",
				Rect:    desktop.DefaultRect(),
				Flags:   desktop.DefaultWindowFlags(),
				Focused: true,
			},
			{
				ID:    2,
				AppID: "acme.defunct",
				Title: "Defunct",
				Rect:  desktop.DefaultRect(),
				Flags: desktop.DefaultWindowFlags(),
			},
		},
	}

	_, err := r.Reduce(st, in, desktop.HydrateSnapshot{Snapshot: snap})
	require.NoError(t, err)
	require.Len(t, st.Windows, 1)
	assert.Equal(t, "system.calculator", st.Windows[0].AppID)
}

func TestHydrateSnapshotPreservesThemeAndWallpaper(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	st.Theme.Skin = desktop.SkinClassicXP
	st.Wallpaper = wallpaper.Config{
		Selection:   wallpaper.Selection{Kind: wallpaper.SelectionBuiltin, ID: "sunset-lake"},
		DisplayMode: wallpaper.ModeFit,
	}

	_, err := r.Reduce(st, in, desktop.HydrateSnapshot{Snapshot: desktop.Snapshot{
		SchemaVersion: desktop.SnapshotSchemaVersion,
		Preferences:   desktop.DefaultPreferences(),
	}})
	require.NoError(t, err)
	assert.Equal(t, desktop.SkinClassicXP, st.Theme.Skin)
	assert.Equal(t, "sunset-lake", st.Wallpaper.Selection.ID)
}

func TestEffectFailedSurfacesNotice(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}

	effects, err := r.Reduce(st, in, desktop.EffectFailed{Effect: "persist_layout", Reason: "store offline"})
	require.NoError(t, err)
	require.Len(t, effects, 1)
	notice, ok := effects[0].(desktop.EffectNotify)
	require.True(t, ok)
	assert.Contains(t, notice.Body, "persist_layout")
}

func TestApplyDeepLinkEmitsParseEffect(t *testing.T) {
	r := newReducer(t)
	st := desktop.NewState()
	in := &desktop.Interaction{}
	link := desktop.DeepLink{Open: []desktop.DeepLinkTarget{{Kind: desktop.DeepLinkNote, Value: "roadmap"}}}

	effects, err := r.Reduce(st, in, desktop.ApplyDeepLink{DeepLink: link})
	require.NoError(t, err)
	assert.Equal(t, []desktop.Effect{desktop.EffectParseAndOpenDeepLink{DeepLink: link}}, effects)
}

func TestOpenRequestFromDeepLinkTargets(t *testing.T) {
	note := desktop.OpenRequestFromDeepLink(desktop.DeepLinkTarget{Kind: desktop.DeepLinkNote, Value: "roadmap"})
	assert.Equal(t, "system.notepad", note.AppID)
	assert.Equal(t, "notes:roadmap", note.PersistKey)

	project := desktop.OpenRequestFromDeepLink(desktop.DeepLinkTarget{Kind: desktop.DeepLinkProject, Value: "demo"})
	assert.Equal(t, "system.explorer", project.AppID)
	assert.Equal(t, "projects:demo", project.PersistKey)

	app := desktop.OpenRequestFromDeepLink(desktop.DeepLinkTarget{Kind: desktop.DeepLinkApp, Value: "system.terminal"})
	assert.Equal(t, "system.terminal", app.AppID)
}
