package scheduler

import (
	"context"
	"time"

	"github.com/opd-ai/echobot/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultMinInterval bounds how fast a loop spins when an engine advises a
// zero or negative interval.
const DefaultMinInterval = time.Millisecond

// Iterator is an engine that is driven by repeated Iterate calls.
type Iterator interface {
	Iterate()
	IterationInterval() time.Duration
}

type hook struct {
	name  string
	every time.Duration
	fn    func()
	last  time.Time
	ran   bool
}

// Loop drives one Iterator until its context is cancelled.
type Loop struct {
	name        string
	it          Iterator
	hooks       []*hook
	tp          clock.TimeProvider
	minInterval time.Duration
	observer    func()
}

// Option configures a Loop.
type Option func(*Loop)

// WithTimeProvider sets the clock used to decide when hooks are due.
func WithTimeProvider(tp clock.TimeProvider) Option {
	return func(l *Loop) {
		l.tp = tp
	}
}

// WithMinInterval sets the lower bound on the sleep between iterations.
func WithMinInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.minInterval = d
	}
}

// WithIterationObserver registers fn to run after every iteration.
func WithIterationObserver(fn func()) Option {
	return func(l *Loop) {
		l.observer = fn
	}
}

// NewLoop creates a loop named name around it.
func NewLoop(name string, it Iterator, opts ...Option) *Loop {
	l := &Loop{
		name:        name,
		it:          it,
		minInterval: DefaultMinInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tp = clock.OrDefault(l.tp)
	return l
}

// Name returns the loop name.
func (l *Loop) Name() string {
	return l.name
}

// Every registers fn to run after an iteration whenever at least every has
// passed since its previous run. The first run happens after the first
// iteration. Hooks run on the loop goroutine in registration order.
func (l *Loop) Every(name string, every time.Duration, fn func()) {
	l.hooks = append(l.hooks, &hook{name: name, every: every, fn: fn})
}

// Run iterates until ctx is cancelled. It always returns nil once stopped.
func (l *Loop) Run(ctx context.Context) error {
	logger := logrus.WithField("component", l.name)
	logger.Info("Starting loop")

	for ctx.Err() == nil {
		l.it.Iterate()
		l.runDueHooks()
		if l.observer != nil {
			l.observer()
		}

		if !sleep(ctx, l.interval()) {
			break
		}
	}

	logger.Info("Shut down loop")
	return nil
}

func (l *Loop) interval() time.Duration {
	d := l.it.IterationInterval()
	if d < l.minInterval {
		return l.minInterval
	}
	return d
}

func (l *Loop) runDueHooks() {
	for _, h := range l.hooks {
		now := l.tp.Now()
		if h.ran && now.Sub(h.last) < h.every {
			continue
		}
		h.ran = true
		h.last = now

		logrus.WithFields(logrus.Fields{
			"component": l.name,
			"hook":      h.name,
		}).Debug("Running periodic hook")
		h.fn()
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Run starts every loop on its own goroutine and waits for all of them to
// stop. Loops share nothing but ctx.
func Run(ctx context.Context, loops ...*Loop) error {
	var g errgroup.Group
	for _, l := range loops {
		g.Go(func() error {
			return l.Run(ctx)
		})
	}
	return g.Wait()
}
