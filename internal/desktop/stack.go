package desktop

// raiseAndFocus focuses window id and moves it to the top of the stack.
// Returns false when the window does not exist.
func raiseAndFocus(s *State, id WindowID) bool {
	idx := s.windowIndex(id)
	if idx < 0 {
		return false
	}

	if idx == len(s.Windows)-1 && s.Windows[idx].Focused && !s.Windows[idx].Minimized {
		return true
	}

	for i := range s.Windows {
		s.Windows[i].Focused = false
	}
	win := s.Windows[idx]
	win.Focused = true
	win.Minimized = false
	win.Suspended = false
	s.Windows = append(s.Windows[:idx], s.Windows[idx+1:]...)
	s.Windows = append(s.Windows, win)
	NormalizeStack(s)
	return true
}

// NormalizeStack re-derives z-index ordering and focus invariants. Minimized
// windows never hold focus; when nothing is focused, the topmost
// non-minimized window takes it.
func NormalizeStack(s *State) {
	hasFocused := false
	for i := range s.Windows {
		win := &s.Windows[i]
		win.ZIndex = i + 1
		if win.Minimized {
			win.Focused = false
		}
		if win.Focused {
			if hasFocused {
				win.Focused = false
			} else {
				hasFocused = true
			}
		}
	}

	if !hasFocused {
		for i := len(s.Windows) - 1; i >= 0; i-- {
			if !s.Windows[i].Minimized {
				s.Windows[i].Focused = true
				break
			}
		}
	}
}

// SnapToViewportEdge applies edge snapping for a just-dropped window. Dropping
// near the top maximizes; dropping near the left or right edge snaps the
// window to that half. Returns whether a snap was applied.
func SnapToViewportEdge(s *State, id WindowID, viewport Rect) bool {
	win, ok := s.Window(id)
	if !ok || win.Minimized {
		return false
	}

	nearLeft := win.Rect.X <= viewport.X+SnapEdgeThreshold
	nearRight := win.Rect.X+win.Rect.W >= viewport.X+viewport.W-SnapEdgeThreshold
	nearTop := win.Rect.Y <= viewport.Y+SnapEdgeThreshold

	if nearTop && win.Flags.Maximizable {
		if !win.Maximized {
			restore := win.Rect
			win.RestoreRect = &restore
		}
		win.Rect = viewport.ClampedMin(MinWindowWidth, MinWindowHeight)
		win.Maximized = true
		win.Minimized = false
		win.Suspended = false
		return true
	}

	if (!nearLeft && !nearRight) || !win.Flags.Resizable {
		return false
	}

	halfWidth := max(viewport.W/2, MinWindowWidth)
	snapped := Rect{
		X: viewport.X,
		Y: viewport.Y,
		W: halfWidth,
		H: max(viewport.H, MinWindowHeight),
	}
	if nearRight {
		snapped.X = viewport.X + viewport.W - halfWidth
	}

	restore := win.Rect
	win.RestoreRect = &restore
	win.Rect = snapped
	win.Maximized = false
	win.Minimized = false
	win.Suspended = false
	return true
}
