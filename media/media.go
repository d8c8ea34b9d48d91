package media

import (
	"strings"
	"time"
)

// CallState is a bitmask describing a peer's side of a call.
type CallState uint32

const (
	// CallStateError means the call broke and no longer exists.
	CallStateError CallState = 1 << iota
	// CallStateFinished means the call ended normally and no longer exists.
	CallStateFinished
	// CallStateSendingAudio means the peer is sending audio.
	CallStateSendingAudio
	// CallStateSendingVideo means the peer is sending video.
	CallStateSendingVideo
	// CallStateAcceptingAudio means the peer accepts audio from us.
	CallStateAcceptingAudio
	// CallStateAcceptingVideo means the peer accepts video from us.
	CallStateAcceptingVideo
)

// Has reports whether all bits in flag are set.
func (s CallState) Has(flag CallState) bool {
	return s&flag == flag
}

// Ended reports whether the call is gone (finished or errored).
func (s CallState) Ended() bool {
	return s&(CallStateError|CallStateFinished) != 0
}

// String lists the set flags.
func (s CallState) String() string {
	if s == 0 {
		return "none"
	}
	names := []struct {
		flag CallState
		name string
	}{
		{CallStateError, "error"},
		{CallStateFinished, "finished"},
		{CallStateSendingAudio, "sending_audio"},
		{CallStateSendingVideo, "sending_video"},
		{CallStateAcceptingAudio, "accepting_audio"},
		{CallStateAcceptingVideo, "accepting_video"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// AudioFrame is interleaved signed 16-bit PCM. SampleCount counts samples
// per channel, so PCM holds SampleCount*Channels values.
type AudioFrame struct {
	PCM          []int16
	SampleCount  int
	Channels     uint8
	SamplingRate uint32
}

// VideoFrame is a YUV420 frame. Strides are the byte distance between rows
// of each plane and may exceed the visible width; a negative stride denotes
// bottom-up row order in the source and is treated by magnitude.
type VideoFrame struct {
	Width   uint16
	Height  uint16
	Y       []byte
	U       []byte
	V       []byte
	YStride int
	UStride int
	VStride int
}

// Handler receives inbound media events.
type Handler func(Event)

// Engine is the audio/video engine contract.
type Engine interface {
	Iterate()
	IterationInterval() time.Duration
	SetHandler(h Handler)

	Call(friendID uint32, audioKbps, videoKbps uint32) error
	Answer(friendID uint32, audioKbps, videoKbps uint32) error
	SetBitRate(friendID uint32, audioKbps, videoKbps uint32) error
	SendAudioFrame(friendID uint32, frame AudioFrame) error
	// SendVideoFrame sends tightly packed planes (no stride padding).
	SendVideoFrame(friendID uint32, width, height uint16, y, u, v []byte) error

	Kill()
}
