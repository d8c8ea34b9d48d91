package commands

import (
	"fmt"
	"time"

	"github.com/opd-ai/echobot/clock"
	"github.com/opd-ai/echobot/limits"
	"github.com/opd-ai/echobot/metrics"
	"github.com/opd-ai/echobot/session"
	"github.com/opd-ai/echobot/version"
	"github.com/sirupsen/logrus"
)

// Command names.
const (
	CmdInfo        = "!info"
	CmdCallMe      = "!callme"
	CmdVideoCallMe = "!videocallme"
)

// Default call bit rates in kbit/s.
const (
	AudioBitRate = 48
	VideoBitRate = 5000
)

const (
	// HelpText is sent after every echoed message.
	HelpText = "EchoBot commands:\n" +
		"!info: Show stats.\n" +
		"!callme: Launch an audio call.\n" +
		"!videocallme: Launch a video call."

	// FileRefusal is sent when a file transfer is cancelled.
	FileRefusal = "Sorry, I don't support file transfers."
)

// DefaultInfoLines are sent by !info after the uptime, version and friend
// count lines.
var DefaultInfoLines = []string{
	"Source: https://github.com/alexbakker/EchoBot",
	"Friends are removed after 1 month of inactivity",
	"If you're experiencing issues, contact alexbakker in #tox at Libera Chat",
}

// Caller places outgoing calls. It is satisfied by media.Engine.
type Caller interface {
	Call(friendID uint32, audioKbps, videoKbps uint32) error
}

// Config holds the dispatcher's fixed text and start time.
type Config struct {
	// Version is sent verbatim as the second !info line.
	Version   string
	InfoLines []string
	StartedAt time.Time
	AudioKbps uint32
	VideoKbps uint32
}

// Dispatcher handles friend messages and file offers. Its methods must be
// called from the session loop.
type Dispatcher struct {
	session session.Engine
	caller  Caller
	cfg     Config
	tp      clock.TimeProvider
	metrics *metrics.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeProvider sets the clock used for uptime.
func WithTimeProvider(tp clock.TimeProvider) Option {
	return func(d *Dispatcher) {
		d.tp = tp
	}
}

// WithMetrics records commands and echoes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a Dispatcher. Zero bit rates in cfg fall back to
// AudioBitRate and VideoBitRate. An empty Version or InfoLines falls back to
// version.String() and DefaultInfoLines.
func NewDispatcher(s session.Engine, caller Caller, cfg Config, opts ...Option) *Dispatcher {
	if cfg.AudioKbps == 0 {
		cfg.AudioKbps = AudioBitRate
	}
	if cfg.VideoKbps == 0 {
		cfg.VideoKbps = VideoBitRate
	}
	if cfg.Version == "" {
		cfg.Version = version.String()
	}
	if len(cfg.InfoLines) == 0 {
		cfg.InfoLines = DefaultInfoLines
	}
	d := &Dispatcher{
		session: s,
		caller:  caller,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.tp = clock.OrDefault(d.tp)
	if d.cfg.StartedAt.IsZero() {
		d.cfg.StartedAt = d.tp.Now()
	}
	return d
}

// HandleMessage answers one friend message.
func (d *Dispatcher) HandleMessage(msg session.FriendMessage) {
	switch msg.Text {
	case CmdInfo:
		d.metrics.Command(CmdInfo)
		d.info(msg.FriendID)
	case CmdCallMe:
		d.metrics.Command(CmdCallMe)
		d.call(msg.FriendID, d.cfg.AudioKbps, 0)
	case CmdVideoCallMe:
		d.metrics.Command(CmdVideoCallMe)
		d.call(msg.FriendID, d.cfg.AudioKbps, d.cfg.VideoKbps)
	default:
		d.echo(msg)
	}
}

// HandleFile refuses a file transfer. Avatar transfers are left alone.
func (d *Dispatcher) HandleFile(req session.FileRequest) {
	if req.Kind == session.FileKindAvatar {
		return
	}

	if err := d.session.CancelFile(req.FriendID, req.FileID); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "HandleFile",
			"friend_id": req.FriendID,
			"file_id":   req.FileID,
			"error":     err.Error(),
		}).Warn("Could not cancel file transfer")
	}
	d.send(req.FriendID, session.Message{Type: session.MessageNormal, Text: FileRefusal})
}

func (d *Dispatcher) info(friendID uint32) {
	ids := d.session.FriendIDs()
	online := 0
	for _, id := range ids {
		if d.session.ConnectionStatus(id) != session.ConnectionNone {
			online++
		}
	}

	lines := make([]string, 0, 3+len(d.cfg.InfoLines))
	lines = append(lines,
		"Uptime: "+FormatUptime(d.tp.Since(d.cfg.StartedAt)),
		d.cfg.Version,
		fmt.Sprintf("Friends: %d (%d online)", len(ids), online),
	)
	lines = append(lines, d.cfg.InfoLines...)

	for _, line := range lines {
		d.send(friendID, session.Message{Type: session.MessageNormal, Text: line})
	}
}

func (d *Dispatcher) call(friendID uint32, audioKbps, videoKbps uint32) {
	err := d.caller.Call(friendID, audioKbps, videoKbps)
	d.metrics.CallPlaced(err)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "call",
			"friend_id":  friendID,
			"audio_kbps": audioKbps,
			"video_kbps": videoKbps,
			"error":      err.Error(),
		}).Warn("Could not call friend")
	}
}

func (d *Dispatcher) echo(msg session.FriendMessage) {
	d.metrics.MessageEchoed()
	d.send(msg.FriendID, session.Message{Type: msg.Type, Text: msg.Text})
	d.send(msg.FriendID, session.Message{Type: session.MessageNormal, Text: HelpText})
}

func (d *Dispatcher) send(friendID uint32, msg session.Message) {
	logger := logrus.WithFields(logrus.Fields{
		"function":  "send",
		"friend_id": friendID,
	})
	if err := limits.ValidatePlaintextMessage(msg.Text); err != nil {
		logger.WithError(err).Warn("Skipping message")
		return
	}
	if err := d.session.SendMessage(friendID, msg); err != nil {
		logger.WithError(err).Warn("Could not send message")
	}
}

// FormatUptime renders d as "<days>d <hours>h <minutes>m".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := uint64(d / time.Second)
	days := secs / 86400
	hours := (secs / 3600) % 24
	minutes := (secs % 3600) / 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
