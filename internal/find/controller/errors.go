package controller

import "errors"

// Errors returned by controller operations. Each is also reported to the
// user through the UI before being returned.
var (
	// ErrNotActive is returned by commands that need an active find session.
	ErrNotActive = errors.New("find mode is not active")
	// ErrNoEditor is returned when no editor is attached.
	ErrNoEditor = errors.New("no active editor")
)
