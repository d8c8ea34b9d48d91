package persistence

import (
	"fmt"
	"os"
)

// Lock is an advisory exclusive lock on "<profile>.lock".
type Lock struct {
	file *os.File
}

// LockPath returns the lock file path for a profile path.
func LockPath(profilePath string) string {
	return profilePath + ".lock"
}

// Acquire takes the lock for profilePath without blocking. It returns
// ErrLocked if another process holds it.
func Acquire(profilePath string) (*Lock, error) {
	f, err := os.OpenFile(LockPath(profilePath), os.O_RDWR|os.O_CREATE, FileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Lock{file: f}, nil
}

// Release drops the lock. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}
