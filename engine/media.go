package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/echobot/media"
	"github.com/opd-ai/toxcore"
	avpkg "github.com/opd-ai/toxcore/av"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Media implements media.Engine on top of toxcore.ToxAV.
//
// Callbacks only queue events; they reach the handler from Iterate, on the
// goroutine driving the media loop. Handlers may therefore call back into
// Answer or SetBitRate without re-entering toxcore's locks.
//
// toxcore reports a live call with a single "sending audio" transition
// whatever was negotiated. Media remembers which streams each call carries
// and reports live calls as sending and accepting exactly those streams.
type Media struct {
	av     *toxcore.ToxAV
	events eventQueue[func() media.Event]

	mu      sync.Mutex
	handler media.Handler
	calls   map[uint32]streams
}

// streams records which directions of a call carry media.
type streams struct {
	audio bool
	video bool
}

// active is the bitmask of a live call carrying these streams.
func (s streams) active() media.CallState {
	var state media.CallState
	if s.audio {
		state |= media.CallStateSendingAudio | media.CallStateAcceptingAudio
	}
	if s.video {
		state |= media.CallStateSendingVideo | media.CallStateAcceptingVideo
	}
	return state
}

var _ media.Engine = (*Media)(nil)

// NewMedia creates the media engine bound to s.
func NewMedia(s *Session) (*Media, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	av, err := toxcore.NewToxAV(s.Tox())
	if err != nil {
		return nil, fmt.Errorf("failed to create toxav instance: %w", err)
	}

	m := &Media{
		av:    av,
		calls: make(map[uint32]streams),
	}
	m.registerCallbacks()
	return m, nil
}

func (m *Media) registerCallbacks() {
	m.av.CallbackCall(func(friendNumber uint32, audioEnabled, videoEnabled bool) {
		m.events.push(func() media.Event {
			m.offer(friendNumber, streams{audio: audioEnabled, video: videoEnabled})
			return media.IncomingCall{FriendID: friendNumber, Audio: audioEnabled, Video: videoEnabled}
		})
	})
	m.av.CallbackCallState(func(friendNumber uint32, state avpkg.CallState) {
		m.events.push(func() media.Event {
			return media.CallStateChanged{FriendID: friendNumber, State: m.resolveState(friendNumber, state)}
		})
	})
	m.av.CallbackAudioReceiveFrame(func(friendNumber uint32, pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
		frame := media.AudioFrame{
			PCM:          pcm,
			SampleCount:  perChannelSamples(len(pcm), sampleCount, channels),
			Channels:     channels,
			SamplingRate: samplingRate,
		}
		m.events.push(func() media.Event {
			return media.AudioFrameReceived{FriendID: friendNumber, Frame: frame}
		})
	})
	m.av.CallbackVideoReceiveFrame(func(friendNumber uint32, width, height uint16, y, u, v []byte, yStride, uStride, vStride int) {
		frame := media.VideoFrame{
			Width:   width,
			Height:  height,
			Y:       y,
			U:       u,
			V:       v,
			YStride: yStride,
			UStride: uStride,
			VStride: vStride,
		}
		m.events.push(func() media.Event {
			return media.VideoFrameReceived{FriendID: friendNumber, Frame: frame}
		})
	})
}

func (m *Media) deliver(resolve func() media.Event) {
	ev := resolve()
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

// perChannelSamples converts toxcore's sample count to samples per channel.
// toxcore reports the interleaved total, which equals len(pcm).
func perChannelSamples(pcmLen, sampleCount int, channels uint8) int {
	if channels > 1 && sampleCount == pcmLen {
		return sampleCount / int(channels)
	}
	return sampleCount
}

// offer records the streams a peer proposed for an incoming call.
func (m *Media) offer(friendNumber uint32, offered streams) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[friendNumber] = offered
}

// negotiate narrows the recorded offer to the streams we agreed to send.
// Without a recorded offer every stream we enabled counts.
func (m *Media) negotiate(friendNumber uint32, audioKbps, videoKbps uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	offered, ok := m.calls[friendNumber]
	if !ok {
		offered = streams{audio: true, video: true}
	}
	m.calls[friendNumber] = streams{
		audio: offered.audio && audioKbps > 0,
		video: offered.video && videoKbps > 0,
	}
}

func (m *Media) forget(friendNumber uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.calls, friendNumber)
}

// resolveState turns a toxcore transition into the friend's call bitmask.
func (m *Media) resolveState(friendNumber uint32, state avpkg.CallState) media.CallState {
	m.mu.Lock()
	defer m.mu.Unlock()

	neg, ok := m.calls[friendNumber]
	if !ok {
		neg = streamsOf(state)
	}
	next := translateCallState(neg, state)
	if next.Ended() || next == 0 {
		delete(m.calls, friendNumber)
	}
	return next
}

// translateCallState maps one toxcore transition onto the bitmask of a call
// carrying neg.
func translateCallState(neg streams, state avpkg.CallState) media.CallState {
	switch state {
	case avpkg.CallStateError:
		return media.CallStateError
	case avpkg.CallStateFinished:
		return media.CallStateFinished
	case avpkg.CallStateSendingAudio, avpkg.CallStateSendingVideo,
		avpkg.CallStateAcceptingAudio, avpkg.CallStateAcceptingVideo:
		return neg.active()
	default:
		return 0
	}
}

// streamsOf guesses the streams of a call nobody negotiated through us.
func streamsOf(state avpkg.CallState) streams {
	switch state {
	case avpkg.CallStateSendingVideo, avpkg.CallStateAcceptingVideo:
		return streams{video: true}
	default:
		return streams{audio: true}
	}
}

// SetHandler registers the event sink.
func (m *Media) SetHandler(h media.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Iterate runs one engine step, then hands queued events to the handler.
func (m *Media) Iterate() {
	m.av.Iterate()
	m.events.drain(m.deliver)
}

func (m *Media) IterationInterval() time.Duration {
	return m.av.IterationInterval()
}

// Call starts a call. Bit rates are given in kbit/s.
func (m *Media) Call(friendID uint32, audioKbps, videoKbps uint32) error {
	m.forget(friendID)
	m.negotiate(friendID, audioKbps, videoKbps)
	if err := m.av.Call(friendID, kbps(audioKbps), kbps(videoKbps)); err != nil {
		m.forget(friendID)
		return err
	}
	return nil
}

// Answer accepts an incoming call. Bit rates are given in kbit/s.
func (m *Media) Answer(friendID uint32, audioKbps, videoKbps uint32) error {
	m.negotiate(friendID, audioKbps, videoKbps)
	if err := m.av.Answer(friendID, kbps(audioKbps), kbps(videoKbps)); err != nil {
		m.forget(friendID)
		return err
	}
	return nil
}

// SetBitRate adjusts both send bit rates. A zero rate disables that stream.
func (m *Media) SetBitRate(friendID uint32, audioKbps, videoKbps uint32) error {
	var err error
	if e := m.av.AudioSetBitRate(friendID, kbps(audioKbps)); e != nil {
		err = multierr.Append(err, fmt.Errorf("audio: %w", e))
	}
	if e := m.av.VideoSetBitRate(friendID, kbps(videoKbps)); e != nil {
		err = multierr.Append(err, fmt.Errorf("video: %w", e))
	}
	return err
}

func (m *Media) SendAudioFrame(friendID uint32, frame media.AudioFrame) error {
	return m.av.AudioSendFrame(friendID, frame.PCM, frame.SampleCount, frame.Channels, frame.SamplingRate)
}

func (m *Media) SendVideoFrame(friendID uint32, width, height uint16, y, u, v []byte) error {
	return m.av.VideoSendFrame(friendID, width, height, y, u, v)
}

func (m *Media) Kill() {
	m.SetHandler(nil)
	m.av.Kill()

	logrus.WithFields(logrus.Fields{
		"function": "Kill",
	}).Debug("Media engine released")
}

func kbps(rate uint32) uint32 {
	return rate * 1000
}
