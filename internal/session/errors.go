package session

import "errors"

// Session errors.
var (
	// ErrNotIdle indicates an operation that is only allowed while Idle.
	ErrNotIdle = errors.New("session: not idle")

	// ErrNoStore indicates a file operation on a controller without storage.
	ErrNoStore = errors.New("session: no storage configured")

	// ErrNoHotkey indicates a missing start or stop chord.
	ErrNoHotkey = errors.New("session: start and stop hotkeys are required")
)
