package relay

import (
	"github.com/opd-ai/echobot/limits"
	"github.com/opd-ai/echobot/media"
	"github.com/opd-ai/echobot/metrics"
	"github.com/sirupsen/logrus"
)

// Default bit rates in kbit/s.
const (
	AudioBitRate = 48
	VideoBitRate = 5000
)

// Relay handles media events. Its methods must be called from the media loop.
type Relay struct {
	engine    media.Engine
	audioKbps uint32
	videoKbps uint32
	metrics   *metrics.Metrics
}

// Option configures a Relay.
type Option func(*Relay)

// WithBitRates overrides the answer and send bit rates.
func WithBitRates(audioKbps, videoKbps uint32) Option {
	return func(r *Relay) {
		r.audioKbps = audioKbps
		r.videoKbps = videoKbps
	}
}

// WithMetrics records answers and relayed frames.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

// New creates a Relay sending through engine.
func New(engine media.Engine, opts ...Option) *Relay {
	r := &Relay{
		engine:    engine,
		audioKbps: AudioBitRate,
		videoKbps: VideoBitRate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle dispatches one media event.
func (r *Relay) Handle(ev media.Event) {
	switch e := ev.(type) {
	case media.IncomingCall:
		r.OnCall(e)
	case media.CallStateChanged:
		r.OnCallState(e)
	case media.AudioFrameReceived:
		r.OnAudioFrame(e)
	case media.VideoFrameReceived:
		r.OnVideoFrame(e)
	}
}

// OnCall answers with the default rate for each offered stream and zero
// for the rest.
func (r *Relay) OnCall(call media.IncomingCall) {
	var audio, video uint32
	if call.Audio {
		audio = r.audioKbps
	}
	if call.Video {
		video = r.videoKbps
	}

	err := r.engine.Answer(call.FriendID, audio, video)
	r.metrics.CallAnswered(err)

	logger := logrus.WithFields(logrus.Fields{
		"function":   "OnCall",
		"friend_id":  call.FriendID,
		"audio_kbps": audio,
		"video_kbps": video,
	})
	if err != nil {
		logger.WithError(err).Warn("Could not answer call")
		return
	}
	logger.Info("Answered call")
}

// OnCallState enables sending a stream only while the peer both sends and
// accepts it.
func (r *Relay) OnCallState(change media.CallStateChanged) {
	logger := logrus.WithFields(logrus.Fields{
		"function":  "OnCallState",
		"friend_id": change.FriendID,
		"state":     change.State.String(),
	})

	switch {
	case change.State.Has(media.CallStateFinished):
		logger.Info("Call finished")
		return
	case change.State.Has(media.CallStateError):
		logger.Warn("Call errored")
		return
	}

	sendAudio := change.State.Has(media.CallStateSendingAudio | media.CallStateAcceptingAudio)
	sendVideo := change.State.Has(media.CallStateSendingVideo | media.CallStateAcceptingVideo)

	var audio, video uint32
	if sendAudio {
		audio = r.audioKbps
	}
	if sendVideo {
		video = r.videoKbps
	}

	if err := r.engine.SetBitRate(change.FriendID, audio, video); err != nil {
		logger.WithError(err).Warn("Could not set bit rate")
	}
	logger.WithFields(logrus.Fields{
		"audio": sendAudio,
		"video": sendVideo,
	}).Info("Call state changed")
}

// OnAudioFrame sends the frame back unchanged.
func (r *Relay) OnAudioFrame(ev media.AudioFrameReceived) {
	if err := limits.ValidateAudioFrame(ev.Frame.PCM, ev.Frame.SampleCount, ev.Frame.Channels); err != nil {
		r.metrics.FrameDropped(metrics.KindAudio)
		logrus.WithFields(logrus.Fields{
			"function":  "OnAudioFrame",
			"friend_id": ev.FriendID,
			"error":     err.Error(),
		}).Debug("Dropping audio frame")
		return
	}
	if err := r.engine.SendAudioFrame(ev.FriendID, ev.Frame); err != nil {
		r.metrics.FrameDropped(metrics.KindAudio)
		logrus.WithFields(logrus.Fields{
			"function":  "OnAudioFrame",
			"friend_id": ev.FriendID,
			"error":     err.Error(),
		}).Debug("Could not send audio frame")
		return
	}
	r.metrics.FrameRelayed(metrics.KindAudio)
}

// OnVideoFrame repacks the planes without row padding and sends them back.
// Frames with inconsistent geometry are dropped.
func (r *Relay) OnVideoFrame(ev media.VideoFrameReceived) {
	f := ev.Frame
	y, u, v, err := Repack(f)
	if err != nil {
		r.metrics.FrameDropped(metrics.KindVideo)
		logrus.WithFields(logrus.Fields{
			"function":  "OnVideoFrame",
			"friend_id": ev.FriendID,
			"width":     f.Width,
			"height":    f.Height,
			"error":     err.Error(),
		}).Debug("Dropping video frame")
		return
	}

	if err := r.engine.SendVideoFrame(ev.FriendID, f.Width, f.Height, y, u, v); err != nil {
		r.metrics.FrameDropped(metrics.KindVideo)
		logrus.WithFields(logrus.Fields{
			"function":  "OnVideoFrame",
			"friend_id": ev.FriendID,
			"error":     err.Error(),
		}).Debug("Could not send video frame")
		return
	}
	r.metrics.FrameRelayed(metrics.KindVideo)
}
