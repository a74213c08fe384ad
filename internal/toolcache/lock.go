package toolcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute
)

// ErrLockExists is returned while another process populates the same entry.
var ErrLockExists = errors.New("tool cache lock exists: another setup step may be in progress")

// Lock represents a tool cache entry lock.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock attempts to acquire an exclusive lock file called name in dir.
// Uses O_CREATE|O_EXCL for atomic lock creation; a lock older than
// StaleLockThreshold is taken over.
func AcquireLock(ctx context.Context, dir, name string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, name)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		// Lock exists - check if it's stale
		if isStale, _ := isLockStale(lockPath); !isStale {
			return nil, ErrLockExists
		}

		// Remove stale lock and retry once
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	// Write lock metadata (PID and timestamp)
	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	return &Lock{
		path: lockPath,
		file: file,
	}, nil
}

// Release releases the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

// isLockStale checks if a lock file is older than the stale lock threshold.
func isLockStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}

	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
