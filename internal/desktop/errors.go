package desktop

import "errors"

var (
	// ErrWindowNotFound indicates an action referenced a window id that is
	// not present in the current state.
	ErrWindowNotFound = errors.New("window not found")

	// ErrAppNotRegistered indicates an activation referenced an unknown
	// application id.
	ErrAppNotRegistered = errors.New("application not registered")

	// ErrInvalidGeometry indicates a geometry payload that cannot be applied.
	ErrInvalidGeometry = errors.New("invalid window geometry")
)
