package apps

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// Registry holds the known applications. It implements the catalog interface
// consumed by the reducer.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]types.AppDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]types.AppDescriptor)}
}

// NewBuiltinRegistry returns a registry seeded with the system apps.
func NewBuiltinRegistry() (*Registry, error) {
	descriptors, err := builtinDescriptors()
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a descriptor. Duplicate app ids are rejected.
func (r *Registry) Register(d types.AppDescriptor) error {
	if !ValidAppID(d.AppID) {
		return fmt.Errorf("register app: invalid app id %q", d.AppID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[d.AppID]; exists {
		return fmt.Errorf("register app: duplicate app id %q", d.AppID)
	}
	r.byID[d.AppID] = d
	r.order = append(r.order, d.AppID)
	return nil
}

// Descriptor returns the descriptor for a canonical app id.
func (r *Registry) Descriptor(appID string) (types.AppDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[appID]
	return d, ok
}

// CanonicalAppID resolves a serialized app id against the registry,
// accepting legacy bare names from pre-namespacing snapshots. It reports
// false when the canonical id is not registered.
func (r *Registry) CanonicalAppID(raw string) (string, bool) {
	canonical, ok := CanonicalAppID(raw)
	if !ok {
		canonical = strings.TrimSpace(raw)
	}
	if _, registered := r.Descriptor(canonical); !registered {
		return "", false
	}
	return canonical, true
}

// All returns every registered descriptor in registration order.
func (r *Registry) All() []types.AppDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.AppDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// LauncherApps returns descriptors listed in launcher menus.
func (r *Registry) LauncherApps() []types.AppDescriptor {
	var out []types.AppDescriptor
	for _, d := range r.All() {
		if d.ShowInLauncher {
			out = append(out, d)
		}
	}
	return out
}

// DesktopIconApps returns descriptors rendered as desktop icons.
func (r *Registry) DesktopIconApps() []types.AppDescriptor {
	var out []types.AppDescriptor
	for _, d := range r.All() {
		if d.ShowOnDesktop {
			out = append(out, d)
		}
	}
	return out
}

// PinnedTaskbarApps returns the pinned taskbar descriptors in display order.
func (r *Registry) PinnedTaskbarApps() []types.AppDescriptor {
	var out []types.AppDescriptor
	for _, id := range pinnedTaskbarAppIDs {
		if d, ok := r.Descriptor(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// Search fuzzy-matches launcher apps by display name and app id, best
// matches first.
func (r *Registry) Search(query string) []types.AppDescriptor {
	apps := r.LauncherApps()
	if query == "" {
		return apps
	}
	haystack := make([]string, len(apps))
	for i, d := range apps {
		haystack[i] = d.DisplayName + " " + d.AppID
	}
	matches := fuzzy.Find(query, haystack)
	out := make([]types.AppDescriptor, 0, len(matches))
	for _, m := range matches {
		out = append(out, apps[m.Index])
	}
	return out
}

// DefaultOpenRequest builds the open request used when an app is activated
// without explicit geometry. The default rectangle adapts to the viewport
// while honoring the app's preferred minimum size.
func (r *Registry) DefaultOpenRequest(appID string, viewport *desktop.Rect) (desktop.OpenWindowRequest, bool) {
	d, ok := r.Descriptor(appID)
	if !ok {
		return desktop.OpenWindowRequest{}, false
	}
	req := desktop.NewOpenWindowRequest(appID)
	rect := defaultRectFor(d, viewport)
	req.Rect = &rect
	req.Viewport = viewport
	return req, true
}

// sizeRatios are per-app viewport fractions for default window sizing.
type sizeRatios struct {
	maxW, maxH         float64
	defaultW, defaultH float64
}

var appSizeRatios = map[string]sizeRatios{
	"system.explorer":   {0.92, 0.92, 0.80, 0.78},
	"system.notepad":    {0.88, 0.88, 0.74, 0.74},
	"system.terminal":   {0.88, 0.86, 0.74, 0.70},
	"system.settings":   {0.92, 0.92, 0.82, 0.82},
	"system.calculator": {0.78, 0.86, 0.56, 0.74},
	"system.paint":      {0.92, 0.92, 0.78, 0.78},
	"system.dialup":     {0.66, 0.68, 0.48, 0.50},
}

func defaultRectFor(d types.AppDescriptor, viewport *desktop.Rect) desktop.Rect {
	vp := desktop.DefaultViewport()
	if viewport != nil {
		vp = *viewport
	}

	ratios, ok := appSizeRatios[d.AppID]
	if !ok {
		ratios = sizeRatios{0.80, 0.80, 0.70, 0.70}
	}
	minW := d.WindowDefaults.Width
	if minW <= 0 {
		minW = desktop.DefaultWindowWidth
	}
	minH := d.WindowDefaults.Height
	if minH <= 0 {
		minH = desktop.DefaultWindowHeight
	}

	maxW := int(float64(vp.W) * ratios.maxW)
	maxH := int(float64(vp.H) * ratios.maxH)
	w := clamp(int(float64(vp.W)*ratios.defaultW), minW, max(maxW, minW))
	h := clamp(int(float64(vp.H)*ratios.defaultH), minH, max(maxH, minH))
	x := vp.X + max((vp.W-w)/2, 10)
	y := vp.Y + max((vp.H-h)/2, 10)
	return desktop.Rect{X: x, Y: y, W: w, H: h}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
