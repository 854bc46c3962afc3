package storage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an advisory flock held on a sidecar lock file. The document
// itself is replaced by rename on every save, so the lock cannot live on
// the document's own inode.
type fileLock struct {
	file *os.File
}

// tryLock takes a shared or exclusive lock without blocking. Contention is
// reported as ErrTransient so the caller's retry loop handles backoff.
func tryLock(path string, exclusive bool) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open lock file: %v", ErrTransient, err)
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if err := unix.Flock(int(file.Fd()), how|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: flock %s: %v", ErrTransient, path, err)
	}
	return &fileLock{file: file}, nil
}

func (l *fileLock) release() {
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
}
