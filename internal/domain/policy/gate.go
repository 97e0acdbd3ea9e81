// Package policy implements the capability gate that decides whether an app
// may exercise a gated shell command.
package policy

import (
	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// Catalog is the descriptor lookup the gate needs.
type Catalog interface {
	Descriptor(appID string) (types.AppDescriptor, bool)
}

// Gate checks app capabilities against manifest declarations and the runtime
// policy overlay. Overlay grants only ever add capabilities; they never
// revoke manifest-declared ones.
type Gate struct {
	catalog Catalog
}

// NewGate builds a gate over the given catalog.
func NewGate(catalog Catalog) *Gate {
	return &Gate{catalog: catalog}
}

// Allow reports whether appID may exercise capability. Privileged apps pass
// every check. Unknown apps are always denied.
func (g *Gate) Allow(st *desktop.State, appID string, capability types.Capability) bool {
	d, ok := g.catalog.Descriptor(appID)
	if !ok {
		return false
	}
	if d.Privileged {
		return true
	}
	if d.HasCapability(capability) {
		return true
	}
	for _, granted := range st.PolicyOverlay[appID] {
		if granted == capability {
			return true
		}
	}
	return false
}

// OverlayFromGrants normalizes a persisted grant list into the state overlay
// shape, dropping unknown capability names.
func OverlayFromGrants(grants map[string][]string) map[string][]types.Capability {
	if len(grants) == 0 {
		return nil
	}
	overlay := make(map[string][]types.Capability, len(grants))
	for appID, caps := range grants {
		for _, raw := range caps {
			c := types.Capability(raw)
			if !c.Valid() {
				continue
			}
			overlay[appID] = append(overlay[appID], c)
		}
	}
	if len(overlay) == 0 {
		return nil
	}
	return overlay
}
