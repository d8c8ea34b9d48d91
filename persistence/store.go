package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/opd-ai/echobot/limits"
	"github.com/sirupsen/logrus"
)

// FileMode is the permission used for the profile file.
const FileMode = 0o600

// Store reads and writes the identity blob at a fixed path.
type Store struct {
	mu     sync.Mutex
	path   string
	cipher *Cipher
}

// New creates a Store for path. An empty passphrase disables encryption.
func New(path string, passphrase []byte) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("profile path cannot be empty")
	}
	s := &Store{path: path}
	if len(passphrase) > 0 {
		c, err := NewCipher(passphrase)
		if err != nil {
			return nil, err
		}
		s.cipher = c
	}
	return s, nil
}

// Path returns the profile file path.
func (s *Store) Path() string {
	return s.path
}

// Encrypted reports whether saves are sealed.
func (s *Store) Encrypted() bool {
	return s.cipher != nil
}

// Load reads the blob. It returns ErrNotFound if the file does not exist.
// A plaintext profile is accepted even when a passphrase is configured; it
// is sealed on the next Save.
func (s *Store) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat profile: %w", err)
	}
	if err := limits.ValidateProfileSize(info.Size()); err != nil {
		return nil, fmt.Errorf("profile %s: %w", s.path, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	if !IsSealed(data) {
		if s.cipher != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Load",
				"path":     s.path,
			}).Warn("Profile is not encrypted, it will be sealed on next save")
		}
		return data, nil
	}
	if s.cipher == nil {
		return nil, ErrPassphraseRequired
	}
	return s.cipher.Open(data)
}

// Save overwrites the profile with blob. The previous content is replaced
// only once the new content is fully on disk.
func (s *Store) Save(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := blob
	if s.cipher != nil {
		sealed, err := s.cipher.Seal(blob)
		if err != nil {
			return fmt.Errorf("failed to seal profile: %w", err)
		}
		data = sealed
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes data to a temporary file in the target directory,
// syncs it, and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(FileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set temp file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	committed = true
	return nil
}
