package nest

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIterable is returned by Add when values cannot be walked as a sequence.
	ErrNotIterable = errors.New("values are not iterable")
	// ErrMissingKey means an update item has no entry for its level's name.
	ErrMissingKey = errors.New("missing key")
	// ErrKeyClash means a strict-mode merge would overwrite an existing key.
	ErrKeyClash = errors.New("key clash")
	// ErrNotMapping means an update item is not a string-keyed mapping.
	ErrNotMapping = errors.New("value is not a mapping")
	// ErrTemplate means a template item could not be rendered.
	ErrTemplate = errors.New("template substitution failed")
)

// LevelError wraps a failure raised while expanding a level during iteration.
// Index is the position of the offending item, or -1 when the level's
// values themselves could not be produced.
type LevelError struct {
	Level string
	Index int
	Err   error
}

func (e *LevelError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("level %q: %v", e.Level, e.Err)
	}
	return fmt.Sprintf("level %q item %d: %v", e.Level, e.Index, e.Err)
}

func (e *LevelError) Unwrap() error { return e.Err }
