package parser

import (
	"errors"
	"fmt"
)

// Reason classifies a load failure.
type Reason int

const (
	FileNotFound Reason = iota + 1
	Malformed
)

func (r Reason) String() string {
	switch r {
	case FileNotFound:
		return "file not found"
	case Malformed:
		return "malformed input"
	default:
		return "load failed"
	}
}

var (
	ErrFileNotFound = errors.New("file not found")
	ErrMalformed    = errors.New("malformed input")
)

// LoadError is returned by Load. It is terminal for the current run: callers
// stop processing and show the message.
type LoadError struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's reason.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrFileNotFound:
		return e.Reason == FileNotFound
	case ErrMalformed:
		return e.Reason == Malformed
	}
	return false
}
