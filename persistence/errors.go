package persistence

import "errors"

// Load errors.
var (
	// ErrNotFound indicates no profile has been stored yet.
	ErrNotFound = errors.New("profile not found")

	// ErrPassphraseRequired indicates the profile is encrypted but no passphrase was configured.
	ErrPassphraseRequired = errors.New("profile is encrypted but no passphrase was given")

	// ErrDecrypt indicates the passphrase is wrong or the sealed profile is corrupted.
	ErrDecrypt = errors.New("profile decryption failed")

	// ErrUnsupportedVersion indicates a sealed profile written by an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported profile encryption version")
)

// Lock errors.
var (
	// ErrLocked indicates another process already holds the profile.
	ErrLocked = errors.New("profile is locked by another process")
)
