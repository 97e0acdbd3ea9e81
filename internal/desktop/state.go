package desktop

import (
	"encoding/json"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// WindowID is a monotonic runtime identifier for an open window. Ids start
// at 1 and are never reused within a session.
type WindowID uint64

// Lifecycle is a lifecycle signal token delivered to managed app instances.
type Lifecycle string

const (
	LifecycleMounted   Lifecycle = "mounted"
	LifecycleFocused   Lifecycle = "focused"
	LifecycleBlurred   Lifecycle = "blurred"
	LifecycleMinimized Lifecycle = "minimized"
	LifecycleRestored  Lifecycle = "restored"
	LifecycleSuspended Lifecycle = "suspended"
	LifecycleResumed   Lifecycle = "resumed"
	LifecycleClosing   Lifecycle = "closing"
	LifecycleClosed    Lifecycle = "closed"
)

// Skin is the visual preset rendered by the shell root.
type Skin string

const (
	SkinModernAdaptive Skin = "modern-adaptive"
	SkinClassicXP      Skin = "classic-xp"
	SkinClassic95      Skin = "classic-95"
)

// ParseSkin resolves a skin id, reporting whether it is known.
func ParseSkin(id string) (Skin, bool) {
	switch Skin(id) {
	case SkinModernAdaptive, SkinClassicXP, SkinClassic95:
		return Skin(id), true
	default:
		return "", false
	}
}

// Theme holds user-facing appearance preferences. Wallpaper configuration is
// tracked separately and never changes with the theme.
type Theme struct {
	Skin          Skin `json:"skin"`
	HighContrast  bool `json:"high_contrast"`
	ReducedMotion bool `json:"reduced_motion"`
	AudioEnabled  bool `json:"audio_enabled"`
}

// DefaultTheme returns the boot theme.
func DefaultTheme() Theme {
	return Theme{Skin: SkinModernAdaptive}
}

// Preferences controls restore behavior and feature toggles.
type Preferences struct {
	RestoreOnBoot          bool `json:"restore_on_boot"`
	MaxRestoreWindows      int  `json:"max_restore_windows"`
	TerminalHistoryEnabled bool `json:"terminal_history_enabled"`
}

// DefaultPreferences returns runtime preference defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		RestoreOnBoot:          true,
		MaxRestoreWindows:      5,
		TerminalHistoryEnabled: true,
	}
}

// WindowFlags controls which shell interactions a window allows.
type WindowFlags struct {
	Resizable   bool      `json:"resizable"`
	Minimizable bool      `json:"minimizable"`
	Maximizable bool      `json:"maximizable"`
	ModalParent *WindowID `json:"modal_parent,omitempty"`
}

// DefaultWindowFlags returns flags for a normal managed window.
func DefaultWindowFlags() WindowFlags {
	return WindowFlags{Resizable: true, Minimizable: true, Maximizable: true}
}

// WindowRecord is the runtime record for one open window.
type WindowRecord struct {
	ID            WindowID        `json:"id"`
	AppID         string          `json:"app_id"`
	Title         string          `json:"title"`
	IconID        string          `json:"icon_id"`
	Rect          Rect            `json:"rect"`
	RestoreRect   *Rect           `json:"restore_rect,omitempty"`
	ZIndex        int             `json:"z_index"`
	Focused       bool            `json:"is_focused"`
	Minimized     bool            `json:"minimized"`
	Maximized     bool            `json:"maximized"`
	Suspended     bool            `json:"suspended"`
	Flags         WindowFlags     `json:"flags"`
	PersistKey    string          `json:"persist_key,omitempty"`
	AppState      json.RawMessage `json:"app_state,omitempty"`
	LaunchParams  json.RawMessage `json:"launch_params,omitempty"`
	LastLifecycle Lifecycle       `json:"last_lifecycle_event,omitempty"`
}

// OpenWindowRequest describes a window to open.
type OpenWindowRequest struct {
	AppID        string          `json:"app_id"`
	Title        string          `json:"title,omitempty"`
	IconID       string          `json:"icon_id,omitempty"`
	Rect         *Rect           `json:"rect,omitempty"`
	Viewport     *Rect           `json:"viewport,omitempty"`
	PersistKey   string          `json:"persist_key,omitempty"`
	LaunchParams json.RawMessage `json:"launch_params,omitempty"`
	AppState     json.RawMessage `json:"app_state,omitempty"`
	Flags        WindowFlags     `json:"flags"`
}

// NewOpenWindowRequest returns a request with default flags for appID.
func NewOpenWindowRequest(appID string) OpenWindowRequest {
	return OpenWindowRequest{AppID: appID, Flags: DefaultWindowFlags()}
}

// State is the root runtime state owned by the reducer loop.
type State struct {
	NextWindowID     uint64                        `json:"next_window_id"`
	Windows          []WindowRecord                `json:"windows"`
	StartMenuOpen    bool                          `json:"start_menu_open"`
	ActiveModal      *WindowID                     `json:"active_modal,omitempty"`
	Theme            Theme                         `json:"theme"`
	Wallpaper        wallpaper.Config              `json:"wallpaper"`
	WallpaperPreview *wallpaper.Config             `json:"wallpaper_preview,omitempty"`
	Library          wallpaper.Library             `json:"wallpaper_library"`
	Preferences      Preferences                   `json:"preferences"`
	LastExplorerPath string                        `json:"last_explorer_path,omitempty"`
	LastNotepadSlug  string                        `json:"last_notepad_slug,omitempty"`
	TerminalHistory  []string                      `json:"terminal_history"`
	AppSharedState   map[string]json.RawMessage    `json:"app_shared_state"`
	PolicyOverlay    map[string][]types.Capability `json:"policy_overlay,omitempty"`
}

// NewState returns the boot-time default state.
func NewState() *State {
	return &State{
		NextWindowID:   1,
		Theme:          DefaultTheme(),
		Wallpaper:      wallpaper.DefaultConfig(),
		Library:        wallpaper.DefaultLibrary(),
		Preferences:    DefaultPreferences(),
		AppSharedState: make(map[string]json.RawMessage),
	}
}

// FocusedWindowID returns the focused window id, if any.
func (s *State) FocusedWindowID() (WindowID, bool) {
	for i := range s.Windows {
		if s.Windows[i].Focused {
			return s.Windows[i].ID, true
		}
	}
	return 0, false
}

// Window returns a pointer into the window slice for id.
func (s *State) Window(id WindowID) (*WindowRecord, bool) {
	for i := range s.Windows {
		if s.Windows[i].ID == id {
			return &s.Windows[i], true
		}
	}
	return nil, false
}

func (s *State) windowIndex(id WindowID) int {
	for i := range s.Windows {
		if s.Windows[i].ID == id {
			return i
		}
	}
	return -1
}

// DragSession tracks an active window drag.
type DragSession struct {
	WindowID     WindowID
	PointerStart PointerPosition
	RectStart    Rect
}

// ResizeSession tracks an active window resize.
type ResizeSession struct {
	WindowID     WindowID
	Edge         ResizeEdge
	PointerStart PointerPosition
	RectStart    Rect
	Viewport     Rect
}

// Interaction is transient pointer interaction state. It is never persisted.
type Interaction struct {
	Dragging *DragSession
	Resizing *ResizeSession
}
