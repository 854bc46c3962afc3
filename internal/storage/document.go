package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy bounds how often a document operation is attempted. The wait
// before attempt n+1 is BaseDelay*n.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxRetries < 1 {
		return 1
	}
	return p.MaxRetries
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

type loadStatus int

const (
	docFound loadStatus = iota
	docMissing
	docDegraded
)

// document is a single JSON file of type T guarded by an advisory lock.
// mu serializes whole load-modify-save sequences within the process;
// the flock only covers the raw I/O of one read or write.
type document[T any] struct {
	mu       sync.RWMutex
	path     string
	lockPath string
	policy   RetryPolicy
	log      zerolog.Logger
}

func newDocument[T any](path string, policy RetryPolicy, log zerolog.Logger) *document[T] {
	return &document[T]{
		path:     path,
		lockPath: path + ".lock",
		policy:   policy,
		log:      log.With().Str("document", filepath.Base(path)).Logger(),
	}
}

// load reads the document, retrying transient failures. A missing or empty
// file is docMissing. Exhausted retries give docDegraded and a zero value.
// Callers hold mu.
func (d *document[T]) load() (*T, loadStatus) {
	var lastErr error
	for attempt := 1; attempt <= d.policy.attempts(); attempt++ {
		v, found, err := d.readOnce()
		if err == nil {
			if !found {
				return new(T), docMissing
			}
			return v, docFound
		}
		lastErr = err
		d.log.Debug().Err(err).Int("attempt", attempt).Msg("Read attempt failed")
		if attempt < d.policy.attempts() {
			time.Sleep(d.policy.backoff(attempt))
		}
	}

	d.log.Warn().Err(lastErr).Int("attempts", d.policy.attempts()).Msg("Document unreadable, serving empty value")
	return new(T), docDegraded
}

func (d *document[T]) readOnce() (*T, bool, error) {
	if _, err := os.Stat(d.path); errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	lock, err := tryLock(d.lockPath, false)
	if err != nil {
		return nil, false, err
	}
	defer lock.release()

	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read: %v", ErrTransient, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, false, fmt.Errorf("%w: parse: %v", ErrTransient, err)
	}
	return v, true, nil
}

// save replaces the document with v, retrying transient failures. On
// exhaustion it returns a *StorageFatalError. Callers hold mu.
func (d *document[T]) save(v *T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	data = append(data, '\n')

	var lastErr error
	for attempt := 1; attempt <= d.policy.attempts(); attempt++ {
		if lastErr = d.writeOnce(data); lastErr == nil {
			return nil
		}
		d.log.Debug().Err(lastErr).Int("attempt", attempt).Msg("Write attempt failed")
		if attempt < d.policy.attempts() {
			time.Sleep(d.policy.backoff(attempt))
		}
	}

	return &StorageFatalError{Op: "save", Path: d.path, Attempts: d.policy.attempts(), Err: lastErr}
}

// writeOnce writes to a temporary file in the same directory, syncs it and
// renames it over the document while holding the exclusive lock.
func (d *document[T]) writeOnce(data []byte) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock, err := tryLock(d.lockPath, true)
	if err != nil {
		return err
	}
	defer lock.release()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
