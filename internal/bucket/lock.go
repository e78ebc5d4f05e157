package bucket

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/wordex/internal/errors"
)

// lockFileName is the lock file under the output directory.
const lockFileName = ".wordex.lock"

// DirLock serializes publication into one output directory across
// processes. Buckets and the catalog have a single writer at a time;
// concurrent runs against the same directory are refused, not queued.
type DirLock struct {
	flock  *flock.Flock
	locked bool
}

// NewDirLock creates a lock for the given output directory.
func NewDirLock(dir string) *DirLock {
	return &DirLock{flock: flock.New(filepath.Join(dir, lockFileName))}
}

// TryLock acquires the lock without blocking. A directory already locked
// by another process is an ErrCodeOutputLocked error.
func (l *DirLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0o755); err != nil {
		return errors.New(errors.ErrCodeBucketWrite,
			fmt.Sprintf("creating output directory: %v", err), err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return errors.New(errors.ErrCodeOutputLocked,
			fmt.Sprintf("locking output directory: %v", err), err)
	}
	if !acquired {
		return errors.New(errors.ErrCodeOutputLocked,
			fmt.Sprintf("output directory is locked by another process (%s)", l.flock.Path()), nil)
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked DirLock.
func (l *DirLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	return l.flock.Unlock()
}
