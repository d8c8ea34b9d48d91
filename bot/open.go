package bot

import (
	"errors"
	"fmt"

	"github.com/opd-ai/echobot/engine"
	"github.com/opd-ai/echobot/persistence"
	"github.com/sirupsen/logrus"
)

// Store loads and saves the identity blob.
type Store interface {
	Load() ([]byte, error)
	Save(blob []byte) error
}

// Engines is the pair of engines sharing one identity.
type Engines struct {
	Session *engine.Session
	Media   *engine.Media
	// Fresh is true when no profile existed and a new identity was created.
	Fresh bool
}

// Open restores the identity from store, or creates a new one if store holds
// none. A profile that exists but cannot be read is fatal: starting fresh
// would overwrite it on the next save.
func Open(store Store, opts engine.Options) (*Engines, error) {
	logger := logrus.WithField("component", "bot")

	blob, err := store.Load()
	fresh := false
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		fresh = true
		blob = nil
		logger.Info("No profile found, creating a new identity")
	case err != nil:
		return nil, fmt.Errorf("%w: load profile: %w", ErrFatalInit, err)
	default:
		logger.WithField("bytes", len(blob)).Info("Loaded profile")
	}

	sess, err := engine.NewSession(opts, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFatalInit, err)
	}
	med, err := engine.NewMedia(sess)
	if err != nil {
		sess.Kill()
		return nil, fmt.Errorf("%w: %w", ErrFatalInit, err)
	}

	return &Engines{Session: sess, Media: med, Fresh: fresh}, nil
}
