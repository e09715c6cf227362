package storage

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound reports a missing file or directory. Callers recover by
	// falling back to defaults; it is never surfaced to the user.
	ErrNotFound = errors.New("not found")
	// ErrPermission reports a write that the guard refused.
	ErrPermission = errors.New("write permission denied")
)

// IsNotFound reports whether err means the target does not exist,
// regardless of which layer produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

func wrapNotFound(op, name string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, op, name)
	}
	return fmt.Errorf("%s %s: %w", op, name, err)
}
