package friends

import (
	"encoding/hex"
	"time"

	"github.com/opd-ai/echobot/clock"
	"github.com/opd-ai/echobot/metrics"
	"github.com/opd-ai/echobot/session"
	"github.com/sirupsen/logrus"
)

const (
	// SweepInterval is how often inactive friends are pruned.
	SweepInterval = 1800 * time.Second
	// InactivityThreshold is how long a friend may stay unseen before removal.
	InactivityThreshold = 2629743 * time.Second
)

// Persister writes the current identity to disk.
type Persister interface {
	Persist() error
}

// Policy accepts friend requests and prunes inactive friends. Its methods
// must be called from the session loop.
type Policy struct {
	engine    session.Engine
	persister Persister
	tp        clock.TimeProvider
	threshold time.Duration
	metrics   *metrics.Metrics
}

// Option configures a Policy.
type Option func(*Policy)

// WithTimeProvider sets the clock used by Sweep.
func WithTimeProvider(tp clock.TimeProvider) Option {
	return func(p *Policy) {
		p.tp = tp
	}
}

// WithInactivityThreshold overrides InactivityThreshold.
func WithInactivityThreshold(d time.Duration) Option {
	return func(p *Policy) {
		p.threshold = d
	}
}

// WithMetrics records request and prune counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Policy) {
		p.metrics = m
	}
}

// NewPolicy creates a Policy acting on engine and persisting through persister.
func NewPolicy(engine session.Engine, persister Persister, opts ...Option) *Policy {
	p := &Policy{
		engine:    engine,
		persister: persister,
		threshold: InactivityThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tp = clock.OrDefault(p.tp)
	return p
}

// OnRequest accepts the request and persists the identity on success.
// A failed accept is logged and otherwise ignored.
func (p *Policy) OnRequest(req session.FriendRequest) {
	logger := logrus.WithFields(logrus.Fields{
		"function":   "OnRequest",
		"public_key": hex.EncodeToString(req.PublicKey[:]),
	})

	friendID, err := p.engine.AcceptFriend(req.PublicKey)
	p.metrics.FriendRequest(err)
	if err != nil {
		logger.WithError(err).Warn("Could not add friend")
		return
	}
	logger.WithField("friend_id", friendID).Info("Added to our friend list")

	p.persist(logger)
}

// Sweep removes every friend last seen more than the inactivity threshold
// ago and then persists the identity, whether or not anything changed.
// It returns the number of friends removed.
func (p *Policy) Sweep() int {
	logger := logrus.WithField("function", "Sweep")
	now := p.tp.Now()

	ids := p.engine.FriendIDs()
	removed := 0
	for _, id := range ids {
		lastSeen, err := p.engine.LastSeen(id)
		if err != nil {
			logger.WithError(err).WithField("friend_id", id).Warn("Could not get last online time for friend")
			continue
		}
		if now.Sub(lastSeen) <= p.threshold {
			continue
		}
		if err := p.engine.DeleteFriend(id); err != nil {
			logger.WithError(err).WithField("friend_id", id).Warn("Could not remove inactive friend")
			continue
		}
		removed++
		logger.WithFields(logrus.Fields{
			"friend_id": id,
			"last_seen": lastSeen,
		}).Info("Removed inactive friend")
	}

	p.metrics.FriendsPruned(removed)
	p.metrics.Friends(len(ids) - removed)
	logger.WithFields(logrus.Fields{
		"friends": len(ids),
		"removed": removed,
	}).Debug("Sweep complete")

	p.persist(logger)
	return removed
}

func (p *Policy) persist(logger *logrus.Entry) {
	if p.persister == nil {
		return
	}
	if err := p.persister.Persist(); err != nil {
		logger.WithError(err).Error("Could not save profile")
	}
}
