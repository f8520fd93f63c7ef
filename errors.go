package accesskit

import "errors"

var (
	// ErrSaveInFlight is returned by Save while an earlier save has not
	// completed. Exactly one update is in flight per session.
	ErrSaveInFlight = errors.New("save already in flight")

	// ErrNotEditing is returned for operations that require the session to
	// have finished loading and not yet closed.
	ErrNotEditing = errors.New("session is not editing")

	// ErrSessionClosed is returned for operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")
)
