package common

import (
	"errors"
	"fmt"
)

// Error kinds shared by the builder, the tree model and the search engine.
// Callers match them with errors.Is; the underlying cause stays wrapped
// alongside the kind.
var (
	ErrNotFound    = errors.New("not found")
	ErrIo          = errors.New("i/o error")
	ErrInvalidPath = errors.New("invalid path")
	ErrBadPattern  = errors.New("bad pattern")
	ErrStripPrefix = errors.New("path is not under strip prefix")
	ErrMaxDepth    = errors.New("maximum directory depth exceeded")
	ErrInvalidTree = errors.New("invalid tree")
)

// WrapKind tags cause with one of the error kinds above and records the
// operation and path that failed. Both kind and cause remain visible to
// errors.Is and errors.As.
func WrapKind(kind error, op, path string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s %q", kind, op, path)
	}
	return fmt.Errorf("%w: %s %q: %w", kind, op, path, cause)
}

// InvalidPath reports a path that could not be canonicalized.
func InvalidPath(path, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidPath, path, reason)
}
