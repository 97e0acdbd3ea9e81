package apps

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/retrodesk/desktopd/internal/shared/types"
)

// builtinManifestsTOML describes the system apps shipped with the shell.
const builtinManifestsTOML = `
[[apps]]
app_id = "system.calculator"
display_name = "Calculator"
icon_id = "calculator"
capabilities = ["window", "state"]
single_instance = true
suspend_policy = "on-minimize"
show_in_launcher = true
show_on_desktop = true
window_defaults = { width = 320, height = 440 }

[[apps]]
app_id = "system.explorer"
display_name = "Explorer"
icon_id = "folder"
capabilities = ["window", "state", "ipc"]
single_instance = false
suspend_policy = "on-minimize"
show_in_launcher = true
show_on_desktop = true
window_defaults = { width = 620, height = 420 }

[[apps]]
app_id = "system.notepad"
display_name = "Notepad"
desktop_label = "Notes"
icon_id = "notepad"
capabilities = ["window", "state"]
single_instance = false
suspend_policy = "on-minimize"
show_in_launcher = true
show_on_desktop = true
window_defaults = { width = 520, height = 400 }

[[apps]]
app_id = "system.paint"
display_name = "Paint"
icon_id = "paint"
capabilities = ["window", "state"]
single_instance = false
suspend_policy = "on-minimize"
show_in_launcher = true
show_on_desktop = false
window_defaults = { width = 620, height = 420 }

[[apps]]
app_id = "system.terminal"
display_name = "Terminal"
icon_id = "terminal"
capabilities = ["window", "state", "config", "commands"]
single_instance = true
suspend_policy = "never"
show_in_launcher = true
show_on_desktop = true
window_defaults = { width = 560, height = 380 }

[[apps]]
app_id = "system.settings"
display_name = "System Settings"
desktop_label = "Settings"
icon_id = "settings"
capabilities = ["window", "state", "config", "theme", "wallpaper", "notifications"]
single_instance = true
suspend_policy = "never"
show_in_launcher = true
show_on_desktop = false
window_defaults = { width = 640, height = 460 }

[[apps]]
app_id = "system.dialup"
display_name = "Dial-up"
desktop_label = "Connect"
icon_id = "modem"
capabilities = ["window"]
single_instance = false
suspend_policy = "on-minimize"
show_in_launcher = true
show_on_desktop = false
window_defaults = { width = 420, height = 300 }
`

// privilegedBuiltinAppIDs names apps that bypass per-capability checks.
var privilegedBuiltinAppIDs = []string{"system.settings"}

// legacyAppIDs maps pre-namespacing persisted app ids to canonical ids.
var legacyAppIDs = map[string]string{
	"Calculator": "system.calculator",
	"Explorer":   "system.explorer",
	"Notepad":    "system.notepad",
	"Paint":      "system.paint",
	"Terminal":   "system.terminal",
	"Settings":   "system.settings",
	"Dialup":     "system.dialup",
}

// pinnedTaskbarAppIDs are always shown on the taskbar, in display order.
var pinnedTaskbarAppIDs = []string{
	"system.explorer",
	"system.terminal",
	"system.notepad",
	"system.calculator",
}

type builtinManifestFile struct {
	Apps []Manifest `toml:"apps"`
}

func builtinDescriptors() ([]types.AppDescriptor, error) {
	var file builtinManifestFile
	if err := toml.Unmarshal([]byte(builtinManifestsTOML), &file); err != nil {
		return nil, fmt.Errorf("parse builtin app manifests: %w", err)
	}
	descriptors := make([]types.AppDescriptor, 0, len(file.Apps))
	for _, m := range file.Apps {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		d := m.Descriptor()
		d.MountRef = "builtin:" + d.AppID
		for _, privileged := range privilegedBuiltinAppIDs {
			if privileged == d.AppID {
				d.Privileged = true
			}
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// CanonicalAppID resolves canonical and legacy serialized app ids. Legacy
// bare names come from pre-namespacing layout snapshots.
func CanonicalAppID(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if ValidAppID(trimmed) {
		return trimmed, true
	}
	if canonical, ok := legacyAppIDs[trimmed]; ok {
		return canonical, true
	}
	return "", false
}
