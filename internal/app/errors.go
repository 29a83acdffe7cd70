// Package app wires the find engine into runnable hosts: a headless editor
// for scripts and tests, file loading, and batch replace across files.
package app

import "errors"

var (
	// ErrBinaryFile rejects files that contain NUL bytes or do not decode.
	ErrBinaryFile = errors.New("file looks binary")

	ErrNoPattern = errors.New("batch: no file pattern")
	ErrNoQuery   = errors.New("batch: empty query")
)

// FileError reports a document load or save that failed.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }
