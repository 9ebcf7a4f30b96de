package smokefile

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a block width that does not evenly divide the
	// grid width. It is returned before any file is touched.
	ErrConfiguration = errors.New("smokefile: block width does not divide grid width")

	// ErrNotInitialised is returned by Writer and Reader methods called
	// before a successful init, or after a stop or a failed call.
	ErrNotInitialised = errors.New("smokefile: not initialised")

	// ErrGridSize reports a grid whose length is not gridWidth^3.
	ErrGridSize = errors.New("smokefile: grid size mismatch")

	// ErrInvalidHeader reports a file header whose fields disagree with each other.
	ErrInvalidHeader = errors.New("smokefile: invalid file header")

	// ErrInvalidFrame reports a frame header flagging a block that does not exist.
	ErrInvalidFrame = errors.New("smokefile: invalid frame header")
)

// IOError wraps a failure to open, read or write a recording.
type IOError struct {
	Op   string // "open", "create", "read", "write", "close"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("smokefile: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("smokefile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
