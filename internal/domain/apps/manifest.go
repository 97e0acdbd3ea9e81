package apps

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/retrodesk/desktopd/internal/shared/types"
)

// appIDPattern matches canonical dotted app ids such as "system.terminal".
var appIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(\.[a-z0-9][a-z0-9-]*)+$`)

// ValidAppID reports whether raw is a canonical app identifier.
func ValidAppID(raw string) bool {
	return appIDPattern.MatchString(raw)
}

// Manifest is the on-disk TOML description of one installable app.
type Manifest struct {
	AppID          string               `toml:"app_id"`
	DisplayName    string               `toml:"display_name"`
	DesktopLabel   string               `toml:"desktop_label"`
	IconID         string               `toml:"icon_id"`
	MountRef       string               `toml:"mount_ref"`
	Capabilities   []string             `toml:"capabilities"`
	SingleInstance bool                 `toml:"single_instance"`
	SuspendPolicy  string               `toml:"suspend_policy"`
	ShowInLauncher bool                 `toml:"show_in_launcher"`
	ShowOnDesktop  bool                 `toml:"show_on_desktop"`
	WindowDefaults types.WindowDefaults `toml:"window_defaults"`
}

// ParseManifest decodes and validates a single app manifest.
func ParseManifest(raw []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse app manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks manifest invariants before registration.
func (m Manifest) Validate() error {
	if !ValidAppID(m.AppID) {
		return fmt.Errorf("app manifest: invalid app id %q", m.AppID)
	}
	if strings.TrimSpace(m.DisplayName) == "" {
		return fmt.Errorf("app manifest %s: display name is required", m.AppID)
	}
	for _, raw := range m.Capabilities {
		if !types.Capability(raw).Valid() {
			return fmt.Errorf("app manifest %s: unknown capability %q", m.AppID, raw)
		}
	}
	switch types.SuspendPolicy(m.SuspendPolicy) {
	case types.SuspendOnMinimize, types.SuspendNever, "":
	default:
		return fmt.Errorf("app manifest %s: unknown suspend policy %q", m.AppID, m.SuspendPolicy)
	}
	if m.WindowDefaults.Width < 0 || m.WindowDefaults.Height < 0 {
		return fmt.Errorf("app manifest %s: negative window defaults", m.AppID)
	}
	return nil
}

// Descriptor converts the manifest into a runtime descriptor. Manifest apps
// are never privileged; privilege comes only from shell policy.
func (m Manifest) Descriptor() types.AppDescriptor {
	caps := make([]types.Capability, 0, len(m.Capabilities))
	for _, raw := range m.Capabilities {
		caps = append(caps, types.Capability(raw))
	}
	policy := types.SuspendPolicy(m.SuspendPolicy)
	if policy == "" {
		policy = types.SuspendOnMinimize
	}
	label := m.DesktopLabel
	if label == "" {
		label = m.DisplayName
	}
	iconID := m.IconID
	if iconID == "" {
		iconID = "window"
	}
	mountRef := m.MountRef
	if mountRef == "" {
		mountRef = "bundle:" + m.AppID
	}
	return types.AppDescriptor{
		AppID:          m.AppID,
		DisplayName:    m.DisplayName,
		DesktopLabel:   label,
		IconID:         iconID,
		MountRef:       mountRef,
		Capabilities:   caps,
		SingleInstance: m.SingleInstance,
		SuspendPolicy:  policy,
		ShowInLauncher: m.ShowInLauncher,
		ShowOnDesktop:  m.ShowOnDesktop,
		WindowDefaults: m.WindowDefaults,
	}
}
