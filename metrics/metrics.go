// Package metrics exposes the bot's Prometheus counters.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "echobot"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Frame kind label values.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

// Metrics holds the bot counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	friendRequests *prometheus.CounterVec
	friendsPruned  prometheus.Counter
	messagesEchoed prometheus.Counter
	commands       *prometheus.CounterVec
	callsAnswered  *prometheus.CounterVec
	callsPlaced    *prometheus.CounterVec
	framesRelayed  *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec
	profileSaves   *prometheus.CounterVec
	iterations     *prometheus.CounterVec
	friends        prometheus.Gauge
}

// New creates the counters and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		friendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "friend_requests_total",
			Help:      "Friend requests handled, by result.",
		}, []string{"result"}),
		friendsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "friends_pruned_total",
			Help:      "Friends removed for inactivity.",
		}),
		messagesEchoed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_echoed_total",
			Help:      "Messages echoed back to the sender.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by name.",
		}, []string{"command"}),
		callsAnswered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_answered_total",
			Help:      "Incoming calls answered, by result.",
		}, []string{"result"}),
		callsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_placed_total",
			Help:      "Outgoing calls placed on request, by result.",
		}, []string{"result"}),
		framesRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_relayed_total",
			Help:      "Media frames sent back to the caller, by kind.",
		}, []string{"kind"}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Media frames not relayed, by kind.",
		}, []string{"kind"}),
		profileSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_saves_total",
			Help:      "Profile writes, by result.",
		}, []string{"result"}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_iterations_total",
			Help:      "Engine iterations, by loop.",
		}, []string{"loop"}),
		friends: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "friends",
			Help:      "Friends in the friend list after the last sweep.",
		}),
	}

	m.registry.MustRegister(
		m.friendRequests,
		m.friendsPruned,
		m.messagesEchoed,
		m.commands,
		m.callsAnswered,
		m.callsPlaced,
		m.framesRelayed,
		m.framesDropped,
		m.profileSaves,
		m.iterations,
		m.friends,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// FriendRequest records one handled friend request.
func (m *Metrics) FriendRequest(err error) {
	if m == nil {
		return
	}
	m.friendRequests.WithLabelValues(result(err)).Inc()
}

// FriendsPruned records n removed friends.
func (m *Metrics) FriendsPruned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.friendsPruned.Add(float64(n))
}

// Friends sets the current friend count.
func (m *Metrics) Friends(n int) {
	if m == nil {
		return
	}
	m.friends.Set(float64(n))
}

// MessageEchoed records one echoed message.
func (m *Metrics) MessageEchoed() {
	if m == nil {
		return
	}
	m.messagesEchoed.Inc()
}

// Command records one handled command.
func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

// CallAnswered records one answer attempt.
func (m *Metrics) CallAnswered(err error) {
	if m == nil {
		return
	}
	m.callsAnswered.WithLabelValues(result(err)).Inc()
}

// CallPlaced records one outgoing call attempt.
func (m *Metrics) CallPlaced(err error) {
	if m == nil {
		return
	}
	m.callsPlaced.WithLabelValues(result(err)).Inc()
}

// FrameRelayed records one relayed frame of kind.
func (m *Metrics) FrameRelayed(kind string) {
	if m == nil {
		return
	}
	m.framesRelayed.WithLabelValues(kind).Inc()
}

// FrameDropped records one dropped frame of kind.
func (m *Metrics) FrameDropped(kind string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(kind).Inc()
}

// ProfileSaved records one profile write.
func (m *Metrics) ProfileSaved(err error) {
	if m == nil {
		return
	}
	m.profileSaves.WithLabelValues(result(err)).Inc()
}

// Iteration records one engine iteration of loop.
func (m *Metrics) Iteration(loop string) {
	if m == nil {
		return
	}
	m.iterations.WithLabelValues(loop).Inc()
}
