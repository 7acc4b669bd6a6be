// Package runlock ensures a single batch run writes to an output directory
// at a time.
package runlock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"whisperwiz/internal/fileutil"
)

// FileName is the lock file created inside the output directory.
const FileName = ".whisperwiz.lock"

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("output directory is in use by another run")

// Lock is a held output directory lock.
type Lock struct {
	dir  string
	lock *flock.Flock
}

// Acquire takes the lock for outputDir without blocking, creating the
// directory when needed.
func Acquire(outputDir string) (*Lock, error) {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}
	fl := flock.New(fileutil.NormalizePath(filepath.Join(outputDir, FileName)))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, outputDir)
	}
	return &Lock{dir: outputDir, lock: fl}, nil
}

// Dir returns the locked output directory.
func (l *Lock) Dir() string {
	return l.dir
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.lock.Path()
}

// Release unlocks. It is safe to call on a nil Lock and more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
