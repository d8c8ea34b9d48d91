//go:build !unix

package persistence

import "os"

// lockFile is a no-op where flock is unavailable; the lock file still
// marks the profile as in use.
func lockFile(file *os.File) error {
	return nil
}

func unlockFile(file *os.File) error {
	return nil
}
