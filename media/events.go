package media

// Event is an inbound notification from the media engine.
type Event interface {
	mediaEvent()
}

// IncomingCall is a call offer from a friend.
type IncomingCall struct {
	FriendID uint32
	Audio    bool
	Video    bool
}

// CallStateChanged carries the peer's current call flags.
type CallStateChanged struct {
	FriendID uint32
	State    CallState
}

// AudioFrameReceived is one decoded audio frame from a friend.
type AudioFrameReceived struct {
	FriendID uint32
	Frame    AudioFrame
}

// VideoFrameReceived is one decoded video frame from a friend.
type VideoFrameReceived struct {
	FriendID uint32
	Frame    VideoFrame
}

func (IncomingCall) mediaEvent()       {}
func (CallStateChanged) mediaEvent()   {}
func (AudioFrameReceived) mediaEvent() {}
func (VideoFrameReceived) mediaEvent() {}
