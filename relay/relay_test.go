package relay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/echobot/enginetest"
	"github.com/opd-ai/echobot/media"
	"github.com/opd-ai/echobot/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRates(t *testing.T) {
	tests := []struct {
		name         string
		audio, video bool
		want         enginetest.Rates
	}{
		{"audio only", true, false, enginetest.Rates{FriendID: 1, AudioKbps: 48, VideoKbps: 0}},
		{"audio and video", true, true, enginetest.Rates{FriendID: 1, AudioKbps: 48, VideoKbps: 5000}},
		{"video only", false, true, enginetest.Rates{FriendID: 1, AudioKbps: 0, VideoKbps: 5000}},
		{"nothing", false, false, enginetest.Rates{FriendID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := enginetest.NewMedia(time.Millisecond)
			New(m).Handle(media.IncomingCall{FriendID: 1, Audio: tt.audio, Video: tt.video})
			assert.Equal(t, []enginetest.Rates{tt.want}, m.Answers())
		})
	}
}

func TestAnswerFailureIsLogged(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	m.SetAnswerError(errors.New("no call"))

	assert.NotPanics(t, func() {
		New(m).Handle(media.IncomingCall{FriendID: 2, Audio: true})
	})
	assert.Len(t, m.Answers(), 1)
}

func TestCallStateBitRates(t *testing.T) {
	tests := []struct {
		name  string
		state media.CallState
		want  []enginetest.Rates
	}{
		{
			"audio sending and accepting",
			media.CallStateSendingAudio | media.CallStateAcceptingAudio,
			[]enginetest.Rates{{FriendID: 3, AudioKbps: 48, VideoKbps: 0}},
		},
		{
			"audio sending only",
			media.CallStateSendingAudio,
			[]enginetest.Rates{{FriendID: 3, AudioKbps: 0, VideoKbps: 0}},
		},
		{
			"full video call",
			media.CallStateSendingAudio | media.CallStateAcceptingAudio |
				media.CallStateSendingVideo | media.CallStateAcceptingVideo,
			[]enginetest.Rates{{FriendID: 3, AudioKbps: 48, VideoKbps: 5000}},
		},
		{
			"video accepted but not sent",
			media.CallStateSendingAudio | media.CallStateAcceptingAudio | media.CallStateAcceptingVideo,
			[]enginetest.Rates{{FriendID: 3, AudioKbps: 48, VideoKbps: 0}},
		},
		{"finished", media.CallStateFinished | media.CallStateSendingAudio, nil},
		{"errored", media.CallStateError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := enginetest.NewMedia(time.Millisecond)
			New(m).Handle(media.CallStateChanged{FriendID: 3, State: tt.state})
			assert.Equal(t, tt.want, m.BitRates())
		})
	}
}

func TestAudioLoopback(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	met := metrics.New()
	r := New(m, WithMetrics(met))

	frame := media.AudioFrame{PCM: []int16{1, -2, 3, -4}, SampleCount: 2, Channels: 2, SamplingRate: 48000}
	r.Handle(media.AudioFrameReceived{FriendID: 6, Frame: frame})

	sent := m.AudioSent()
	require.Len(t, sent, 1)
	assert.Equal(t, uint32(6), sent[0].FriendID)
	assert.Equal(t, frame, sent[0].Frame)
	expected := `
# HELP echobot_frames_relayed_total Media frames sent back to the caller, by kind.
# TYPE echobot_frames_relayed_total counter
echobot_frames_relayed_total{kind="audio"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(met.Registry(), strings.NewReader(expected), "echobot_frames_relayed_total"))
}

func TestAudioStereoFrameRelayed(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)

	// 20 ms of 48 kHz stereo, counted per channel.
	frame := media.AudioFrame{PCM: make([]int16, 960*2), SampleCount: 960, Channels: 2, SamplingRate: 48000}
	New(m).Handle(media.AudioFrameReceived{FriendID: 6, Frame: frame})

	sent := m.AudioSent()
	require.Len(t, sent, 1)
	assert.Equal(t, 960, sent[0].Frame.SampleCount)
	assert.Equal(t, uint8(2), sent[0].Frame.Channels)
	assert.Len(t, sent[0].Frame.PCM, 1920)
}

func TestAudioMalformedFrameDropped(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	New(m).Handle(media.AudioFrameReceived{FriendID: 6, Frame: media.AudioFrame{PCM: []int16{1}, SampleCount: 960, Channels: 1}})
	assert.Empty(t, m.AudioSent())
}

func TestAudioSendFailureIsLogged(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	m.SetSendError(errors.New("not in call"))

	assert.NotPanics(t, func() {
		New(m).Handle(media.AudioFrameReceived{FriendID: 6, Frame: media.AudioFrame{PCM: []int16{0}, SampleCount: 1, Channels: 1}})
	})
}

func TestVideoLoopbackRepacks(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	frame := media.VideoFrame{
		Width: 4, Height: 2,
		Y: paddedPlane(2, 8, 4, 0), U: paddedPlane(1, 4, 2, 50), V: paddedPlane(1, 4, 2, 90),
		YStride: 8, UStride: 4, VStride: 4,
	}

	New(m).Handle(media.VideoFrameReceived{FriendID: 8, Frame: frame})

	sent := m.VideoSent()
	require.Len(t, sent, 1)
	assert.Equal(t, enginetest.VideoSend{
		FriendID: 8, Width: 4, Height: 2,
		Y: tightPlane(2, 4, 0), U: tightPlane(1, 2, 50), V: tightPlane(1, 2, 90),
	}, sent[0])
}

func TestVideoBadStrideSendsNothing(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	met := metrics.New()
	frame := media.VideoFrame{
		Width: 4, Height: 2,
		Y: make([]byte, 8), U: make([]byte, 2), V: make([]byte, 2),
		YStride: 3, UStride: 2, VStride: 2,
	}

	New(m, WithMetrics(met)).Handle(media.VideoFrameReceived{FriendID: 8, Frame: frame})

	assert.Empty(t, m.VideoSent())
	expected := `
# HELP echobot_frames_dropped_total Media frames not relayed, by kind.
# TYPE echobot_frames_dropped_total counter
echobot_frames_dropped_total{kind="video"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(met.Registry(), strings.NewReader(expected), "echobot_frames_dropped_total"))
}

func TestCustomBitRates(t *testing.T) {
	m := enginetest.NewMedia(time.Millisecond)
	New(m, WithBitRates(64, 2000)).Handle(media.IncomingCall{FriendID: 1, Audio: true, Video: true})
	assert.Equal(t, []enginetest.Rates{{FriendID: 1, AudioKbps: 64, VideoKbps: 2000}}, m.Answers())
}
