// Package runlock provides a best-effort pidfile guard against overlapping
// scheduler invocations. Transitions are idempotent, so overlap is safe and
// the lock only avoids redundant provider calls; it is advisory, not a
// correctness requirement.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// staleAfter is the age past which a leftover lock file is presumed to
// belong to a crashed run and is broken.
const staleAfter = 30 * time.Minute

// ErrHeld is returned when another invocation holds the lock.
var ErrHeld = errors.New("another scheduler run holds the lock")

// Lock is a held pidfile lock. Release it when the run finishes.
type Lock struct {
	path string
}

// Acquire takes the pidfile lock at path. A fresh lock file held by another
// process returns ErrHeld; a stale one is broken and re-acquired once.
func Acquire(path string) (*Lock, error) {
	lock, err := tryAcquire(path)
	if err == nil || !errors.Is(err, ErrHeld) {
		return lock, err
	}

	info, statErr := os.Stat(path)
	if statErr != nil || time.Since(info.ModTime()) < staleAfter {
		return nil, err
	}

	// Stale lock from a crashed run: break it and try once more.
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("break stale lock %s: %w", path, rmErr)
	}
	return tryAcquire(path)
}

func tryAcquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (lock file %s)", ErrHeld, path)
		}
		return nil, fmt.Errorf("create lock file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write lock file %s: %w", path, err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file %s: %w", l.path, err)
	}
	return nil
}
