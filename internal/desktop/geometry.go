package desktop

// Window geometry limits enforced by the reducer.
const (
	MinWindowWidth      = 220
	MinWindowHeight     = 140
	DefaultWindowWidth  = 720
	DefaultWindowHeight = 500

	// SnapEdgeThreshold is the pointer distance in pixels that triggers
	// viewport-edge snapping at the end of a drag.
	SnapEdgeThreshold = 24
)

// Rect is a window rectangle in desktop viewport coordinates.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DefaultRect is the geometry used when an open request carries none.
func DefaultRect() Rect {
	return Rect{X: 48, Y: 48, W: DefaultWindowWidth, H: DefaultWindowHeight}
}

// DefaultViewport is assumed when no viewport hint is supplied.
func DefaultViewport() Rect {
	return Rect{X: 0, Y: 0, W: 1280, H: 760}
}

// Offset returns the rectangle shifted by dx/dy.
func (r Rect) Offset(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ClampedMin returns the rectangle with minimum dimensions enforced.
func (r Rect) ClampedMin(minW, minH int) Rect {
	if r.W < minW {
		r.W = minW
	}
	if r.H < minH {
		r.H = minH
	}
	return r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampRectToViewport keeps a window rectangle inside the viewport with a
// small inset so the chrome stays reachable.
func clampRectToViewport(rect, viewport Rect) Rect {
	minW := min(MinWindowWidth, max(viewport.W, MinWindowWidth))
	minH := min(MinWindowHeight, max(viewport.H, MinWindowHeight))
	maxW := max(viewport.W-20, minW)
	maxH := max(viewport.H-20, minH)
	w := clampInt(rect.W, minW, maxW)
	h := clampInt(rect.H, minH, maxH)
	maxX := max(viewport.X+viewport.W-w-10, viewport.X+10)
	maxY := max(viewport.Y+viewport.H-h-10, viewport.Y+10)
	x := clampInt(rect.X, viewport.X+10, maxX)
	y := clampInt(rect.Y, viewport.Y+10, maxY)
	return Rect{X: x, Y: y, W: w, H: h}
}

// PointerPosition is a pointer location in viewport space.
type PointerPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ResizeEdge names the edge or corner being dragged during a resize.
type ResizeEdge string

const (
	EdgeNorth     ResizeEdge = "n"
	EdgeSouth     ResizeEdge = "s"
	EdgeEast      ResizeEdge = "e"
	EdgeWest      ResizeEdge = "w"
	EdgeNorthEast ResizeEdge = "ne"
	EdgeNorthWest ResizeEdge = "nw"
	EdgeSouthEast ResizeEdge = "se"
	EdgeSouthWest ResizeEdge = "sw"
)

// ResizeRect applies a pointer delta to a starting rectangle for the given
// edge or corner.
func ResizeRect(start Rect, edge ResizeEdge, dx, dy int) Rect {
	out := start
	switch edge {
	case EdgeEast:
		out.W = start.W + dx
	case EdgeWest:
		out.X = start.X + dx
		out.W = start.W - dx
	case EdgeSouth:
		out.H = start.H + dy
	case EdgeNorth:
		out.Y = start.Y + dy
		out.H = start.H - dy
	case EdgeNorthEast:
		out.Y = start.Y + dy
		out.H = start.H - dy
		out.W = start.W + dx
	case EdgeNorthWest:
		out.X = start.X + dx
		out.Y = start.Y + dy
		out.W = start.W - dx
		out.H = start.H - dy
	case EdgeSouthEast:
		out.W = start.W + dx
		out.H = start.H + dy
	case EdgeSouthWest:
		out.X = start.X + dx
		out.W = start.W - dx
		out.H = start.H + dy
	}
	return out
}
