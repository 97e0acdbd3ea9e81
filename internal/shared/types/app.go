package types

// Capability is a named permission an app must declare (or be granted through a
// policy overlay) before the runtime accepts a gated command from it.
type Capability string

const (
	CapWindow        Capability = "window"
	CapState         Capability = "state"
	CapConfig        Capability = "config"
	CapTheme         Capability = "theme"
	CapWallpaper     Capability = "wallpaper"
	CapNotifications Capability = "notifications"
	CapIPC           Capability = "ipc"
	CapExternalURL   Capability = "external-url"
	CapCommands      Capability = "commands"
)

// Valid reports whether c is a known capability scope.
func (c Capability) Valid() bool {
	switch c {
	case CapWindow, CapState, CapConfig, CapTheme, CapWallpaper,
		CapNotifications, CapIPC, CapExternalURL, CapCommands:
		return true
	}
	return false
}

// SuspendPolicy controls whether the window manager suspends an app instance.
type SuspendPolicy string

const (
	// SuspendOnMinimize suspends the app while its window is minimized.
	SuspendOnMinimize SuspendPolicy = "on-minimize"
	// SuspendNever keeps the app running regardless of window state.
	SuspendNever SuspendPolicy = "never"
)

// WindowDefaults holds the preferred initial window size for an app.
type WindowDefaults struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// AppDescriptor describes how an application appears in launcher surfaces and
// how the runtime instantiates and polices it.
type AppDescriptor struct {
	// AppID is the canonical dotted identifier, stable across restarts.
	AppID string `json:"app_id"`
	// DisplayName is shown in launcher menus and window chrome.
	DisplayName string `json:"display_name"`
	// DesktopLabel is the label under the desktop icon; defaults to DisplayName.
	DesktopLabel string `json:"desktop_label,omitempty"`
	// IconID is the stable icon identifier used by shell renderers.
	IconID string `json:"icon_id"`
	// MountRef names the component the hosting shell mounts into the window.
	MountRef string `json:"mount_ref"`
	// Capabilities are the manifest-declared capability scopes.
	Capabilities []Capability `json:"capabilities"`
	// Privileged apps bypass per-capability checks for allowlisted operations.
	Privileged bool `json:"privileged"`
	// SingleInstance apps are focused/restored instead of opened twice.
	SingleInstance bool `json:"single_instance"`
	// SuspendPolicy is the default suspend policy for windows of this app.
	SuspendPolicy SuspendPolicy `json:"suspend_policy"`
	// ShowInLauncher lists the app in start menu and launcher surfaces.
	ShowInLauncher bool `json:"show_in_launcher"`
	// ShowOnDesktop renders the app as a desktop icon.
	ShowOnDesktop bool `json:"show_on_desktop"`
	// WindowDefaults is the preferred initial geometry for new windows.
	WindowDefaults WindowDefaults `json:"window_defaults"`
}

// HasCapability reports whether the descriptor declares cap.
func (d AppDescriptor) HasCapability(cap Capability) bool {
	for _, c := range d.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
