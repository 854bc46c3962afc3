package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks a lock, read or parse failure that may succeed on retry.
	// It does not escape the store.
	ErrTransient = errors.New("transient storage failure")

	// ErrUnavailable is returned by Update when the document could not be
	// read within the retry budget. Saving in that state would overwrite the
	// real document with an empty one.
	ErrUnavailable = errors.New("storage unavailable")
)

// StorageFatalError is returned when a write exhausts its retries.
type StorageFatalError struct {
	Op       string
	Path     string
	Attempts int
	Err      error
}

func (e *StorageFatalError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Op, e.Path, e.Attempts, e.Err)
}

func (e *StorageFatalError) Unwrap() error {
	return e.Err
}
