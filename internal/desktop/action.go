package desktop

import (
	"encoding/json"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// Action is the closed set of inputs accepted by the reducer. Every state
// transition flows through exactly one Action.
type Action interface {
	isAction()
}

// ActivateApp launches an app from a launcher surface. Single-instance apps
// focus or restore an existing window instead of opening a second one.
type ActivateApp struct {
	AppID    string
	Viewport *Rect
}

// OpenWindow opens a new window from an explicit request.
type OpenWindow struct {
	Request OpenWindowRequest
}

// CloseWindow closes a window. Closing is never vetoable.
type CloseWindow struct {
	WindowID WindowID
}

// FocusWindow focuses and raises a window.
type FocusWindow struct {
	WindowID WindowID
}

// MinimizeWindow minimizes a window, applying the app's suspend policy.
type MinimizeWindow struct {
	WindowID WindowID
}

// MaximizeWindow maximizes a window into the given viewport.
type MaximizeWindow struct {
	WindowID WindowID
	Viewport Rect
}

// RestoreWindow restores a minimized or maximized window.
type RestoreWindow struct {
	WindowID WindowID
}

// ToggleTaskbarWindow applies taskbar button behavior: restore when
// minimized, minimize when focused, focus otherwise.
type ToggleTaskbarWindow struct {
	WindowID WindowID
}

// ToggleStartMenu flips the start menu open state.
type ToggleStartMenu struct{}

// CloseStartMenu closes the start menu if open.
type CloseStartMenu struct{}

// BeginMove starts a window drag.
type BeginMove struct {
	WindowID WindowID
	Pointer  PointerPosition
}

// UpdateMove advances an in-progress window drag.
type UpdateMove struct {
	Pointer PointerPosition
}

// EndMove finishes the active drag without edge snapping.
type EndMove struct{}

// EndMoveWithViewport finishes the active drag and applies viewport-edge
// snapping.
type EndMoveWithViewport struct {
	Viewport Rect
}

// BeginResize starts a window resize.
type BeginResize struct {
	WindowID WindowID
	Edge     ResizeEdge
	Pointer  PointerPosition
	Viewport Rect
}

// UpdateResize advances an in-progress window resize.
type UpdateResize struct {
	Pointer PointerPosition
}

// EndResize finishes the active resize.
type EndResize struct{}

// SuspendWindow suspends a window instance. Suspending an already suspended
// window is a no-op.
type SuspendWindow struct {
	WindowID WindowID
}

// ResumeWindow resumes a suspended window instance.
type ResumeWindow struct {
	WindowID WindowID
}

// HandleAppCommand routes an app-originated command through the capability
// gate before applying it.
type HandleAppCommand struct {
	WindowID WindowID
	Command  AppCommand
}

// SetSkin switches the active desktop skin preset.
type SetSkin struct {
	Skin Skin
}

// SetCurrentWallpaper commits a wallpaper configuration.
type SetCurrentWallpaper struct {
	Config wallpaper.Config
}

// PreviewWallpaper starts previewing a wallpaper configuration.
type PreviewWallpaper struct {
	Config wallpaper.Config
}

// ApplyWallpaperPreview commits the active preview, if any.
type ApplyWallpaperPreview struct{}

// ClearWallpaperPreview discards the active preview.
type ClearWallpaperPreview struct{}

// HydrateTheme replaces theme state during boot hydration.
type HydrateTheme struct {
	Theme Theme
}

// HydrateWallpaper replaces wallpaper state during boot hydration.
type HydrateWallpaper struct {
	Config wallpaper.Config
}

// WallpaperLibraryLoaded replaces the wallpaper library after a host load.
type WallpaperLibraryLoaded struct {
	Library wallpaper.Library
}

// SetHighContrast toggles high-contrast rendering.
type SetHighContrast struct {
	Enabled bool
}

// SetReducedMotion toggles reduced-motion rendering.
type SetReducedMotion struct {
	Enabled bool
}

// SetAudioEnabled toggles desktop sound effects.
type SetAudioEnabled struct {
	Enabled bool
}

// PushTerminalHistory appends a command to terminal history, subject to
// preferences and the history cap.
type PushTerminalHistory struct {
	Command string
}

// SetAppState replaces the app-specific state payload for a window.
type SetAppState struct {
	WindowID WindowID
	AppState json.RawMessage
}

// SetSharedAppState replaces the shared payload stored under
// "<app_id>:<key>".
type SetSharedAppState struct {
	AppID string
	Key   string
	State json.RawMessage
}

// HydrateSnapshot restores layout state from a persisted snapshot.
type HydrateSnapshot struct {
	Snapshot Snapshot
}

// HydratePolicy replaces the runtime capability policy overlay.
type HydratePolicy struct {
	Overlay map[string][]types.Capability
}

// ApplyDeepLink forwards URL-derived open instructions to the shell.
type ApplyDeepLink struct {
	DeepLink DeepLink
}

// EffectFailed reports an asynchronous effect execution failure back into
// the action loop.
type EffectFailed struct {
	Effect string
	Reason string
}

func (ActivateApp) isAction()            {}
func (OpenWindow) isAction()             {}
func (CloseWindow) isAction()            {}
func (FocusWindow) isAction()            {}
func (MinimizeWindow) isAction()         {}
func (MaximizeWindow) isAction()         {}
func (RestoreWindow) isAction()          {}
func (ToggleTaskbarWindow) isAction()    {}
func (ToggleStartMenu) isAction()        {}
func (CloseStartMenu) isAction()         {}
func (BeginMove) isAction()              {}
func (UpdateMove) isAction()             {}
func (EndMove) isAction()                {}
func (EndMoveWithViewport) isAction()    {}
func (BeginResize) isAction()            {}
func (UpdateResize) isAction()           {}
func (EndResize) isAction()              {}
func (SuspendWindow) isAction()          {}
func (ResumeWindow) isAction()           {}
func (HandleAppCommand) isAction()       {}
func (SetSkin) isAction()                {}
func (SetCurrentWallpaper) isAction()    {}
func (PreviewWallpaper) isAction()       {}
func (ApplyWallpaperPreview) isAction()  {}
func (ClearWallpaperPreview) isAction()  {}
func (HydrateTheme) isAction()           {}
func (HydrateWallpaper) isAction()       {}
func (WallpaperLibraryLoaded) isAction() {}
func (SetHighContrast) isAction()        {}
func (SetReducedMotion) isAction()       {}
func (SetAudioEnabled) isAction()        {}
func (PushTerminalHistory) isAction()    {}
func (SetAppState) isAction()            {}
func (SetSharedAppState) isAction()      {}
func (HydrateSnapshot) isAction()        {}
func (HydratePolicy) isAction()          {}
func (ApplyDeepLink) isAction()          {}
func (EffectFailed) isAction()           {}
