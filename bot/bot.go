package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/echobot/clock"
	"github.com/opd-ai/echobot/commands"
	"github.com/opd-ai/echobot/friends"
	"github.com/opd-ai/echobot/media"
	"github.com/opd-ai/echobot/metrics"
	"github.com/opd-ai/echobot/relay"
	"github.com/opd-ai/echobot/scheduler"
	"github.com/opd-ai/echobot/session"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Config holds the bot's behaviour settings.
type Config struct {
	Name          string
	StatusMessage string
	Nodes         []session.Node
	Version       string
	InfoLines     []string

	AudioKbps uint32
	VideoKbps uint32

	SweepInterval       time.Duration
	InactivityThreshold time.Duration
	// Fresh makes Run persist the identity before bootstrapping.
	Fresh bool
}

// Bot owns one identity and both engines bound to it.
type Bot struct {
	cfg     Config
	session session.Engine
	media   media.Engine
	store   Store
	tp      clock.TimeProvider
	metrics *metrics.Metrics
	logger  *logrus.Entry

	startedAt  time.Time
	policy     *friends.Policy
	dispatcher *commands.Dispatcher
	relay      *relay.Relay

	teardown sync.Once
}

// Option configures a Bot.
type Option func(*Bot)

// WithTimeProvider sets the clock for uptime, sweeps and hooks.
func WithTimeProvider(tp clock.TimeProvider) Option {
	return func(b *Bot) {
		b.tp = tp
	}
}

// WithMetrics records bot activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// New wires the handlers of both engines. The bot takes ownership of the
// engines and releases them at the end of Run.
func New(s session.Engine, m media.Engine, store Store, cfg Config, opts ...Option) *Bot {
	if cfg.AudioKbps == 0 {
		cfg.AudioKbps = commands.AudioBitRate
	}
	if cfg.VideoKbps == 0 {
		cfg.VideoKbps = commands.VideoBitRate
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = friends.SweepInterval
	}
	if cfg.InactivityThreshold <= 0 {
		cfg.InactivityThreshold = friends.InactivityThreshold
	}

	b := &Bot{
		cfg:     cfg,
		session: s,
		media:   m,
		store:   store,
		logger:  logrus.WithField("component", "bot"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.tp = clock.OrDefault(b.tp)
	b.startedAt = b.tp.Now()

	b.policy = friends.NewPolicy(s, b,
		friends.WithTimeProvider(b.tp),
		friends.WithInactivityThreshold(cfg.InactivityThreshold),
		friends.WithMetrics(b.metrics),
	)
	b.dispatcher = commands.NewDispatcher(s, m, commands.Config{
		Version:   cfg.Version,
		InfoLines: cfg.InfoLines,
		StartedAt: b.startedAt,
		AudioKbps: cfg.AudioKbps,
		VideoKbps: cfg.VideoKbps,
	}, commands.WithTimeProvider(b.tp), commands.WithMetrics(b.metrics))
	b.relay = relay.New(m,
		relay.WithBitRates(cfg.AudioKbps, cfg.VideoKbps),
		relay.WithMetrics(b.metrics),
	)

	s.SetHandler(b.handleSession)
	m.SetHandler(b.relay.Handle)
	return b
}

// StartedAt returns when the bot was created.
func (b *Bot) StartedAt() time.Time {
	return b.startedAt
}

// Persist writes the session's current identity to the store.
func (b *Bot) Persist() error {
	err := b.store.Save(b.session.Savedata())
	b.metrics.ProfileSaved(err)
	return err
}

func (b *Bot) handleSession(ev session.Event) {
	switch e := ev.(type) {
	case session.ConnectionChanged:
		if e.Status == session.ConnectionNone {
			b.logger.Warn("Lost connection to the tox network")
			return
		}
		b.logger.WithField("transport", e.Status.String()).Info("Connected to the tox network")
	case session.FriendRequest:
		b.policy.OnRequest(e)
	case session.FriendMessage:
		b.dispatcher.HandleMessage(e)
	case session.FileRequest:
		b.dispatcher.HandleFile(e)
	}
}

// Bootstrap tries every configured node once, in order. It fails only if
// none succeeded.
func (b *Bot) Bootstrap() error {
	var errs error
	ok := 0
	for _, node := range b.cfg.Nodes {
		if err := b.session.Bootstrap(node); err != nil {
			b.logger.WithFields(logrus.Fields{
				"node":  node.String(),
				"error": err.Error(),
			}).Warn("Could not bootstrap")
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", node, err))
			continue
		}
		ok++
	}

	if ok == 0 {
		if errs == nil {
			return fmt.Errorf("%w: %w: node list is empty", ErrFatalInit, ErrNoBootstrap)
		}
		return fmt.Errorf("%w: %w: %w", ErrFatalInit, ErrNoBootstrap, errs)
	}
	b.logger.WithFields(logrus.Fields{
		"succeeded": ok,
		"failed":    len(multierr.Errors(errs)),
	}).Info("Bootstrapped")
	return nil
}

// setup persists a fresh identity, publishes the profile and bootstraps.
func (b *Bot) setup() error {
	if b.cfg.Fresh {
		if err := b.Persist(); err != nil {
			b.logger.WithError(err).Error("Could not save new profile")
		}
	}

	if err := b.session.SetProfile(b.cfg.Name, b.cfg.StatusMessage); err != nil {
		b.logger.WithError(err).Warn("Could not set profile")
	}
	b.logger.WithField("tox_id", b.session.Address()).Info("Tox ID")

	return b.Bootstrap()
}

// Run bootstraps, then drives the session and media loops until ctx is
// cancelled. Both engines are released before Run returns, including when
// bootstrapping fails.
func (b *Bot) Run(ctx context.Context) error {
	defer b.Shutdown()

	if err := b.setup(); err != nil {
		return err
	}

	sessionLoop := scheduler.NewLoop("session", b.session,
		scheduler.WithTimeProvider(b.tp),
		scheduler.WithIterationObserver(func() { b.metrics.Iteration("session") }),
	)
	sessionLoop.Every("sweep", b.cfg.SweepInterval, func() { b.policy.Sweep() })

	mediaLoop := scheduler.NewLoop("media", b.media,
		scheduler.WithTimeProvider(b.tp),
		scheduler.WithIterationObserver(func() { b.metrics.Iteration("media") }),
	)

	return scheduler.Run(ctx, sessionLoop, mediaLoop)
}

// Shutdown saves the profile and releases the media engine, then the
// session engine. It must only be called once no loop is running; later
// calls do nothing.
func (b *Bot) Shutdown() {
	b.teardown.Do(func() {
		if err := b.Persist(); err != nil {
			b.logger.WithError(err).Error("Could not save profile")
		}
		b.media.Kill()
		b.session.Kill()
		b.logger.Info("Shut down")
	})
}
