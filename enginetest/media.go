package enginetest

import (
	"sync"
	"time"

	"github.com/opd-ai/echobot/media"
)

// Rates is one recorded Call, Answer or SetBitRate request.
type Rates struct {
	FriendID  uint32
	AudioKbps uint32
	VideoKbps uint32
}

// AudioSend is one recorded SendAudioFrame call.
type AudioSend struct {
	FriendID uint32
	Frame    media.AudioFrame
}

// VideoSend is one recorded SendVideoFrame call.
type VideoSend struct {
	FriendID uint32
	Width    uint16
	Height   uint16
	Y, U, V  []byte
}

// Media is a fake media.Engine.
type Media struct {
	mu sync.Mutex

	interval   time.Duration
	iterations int
	handler    media.Handler
	pending    []media.Event

	callErr    error
	answerErr  error
	bitRateErr error
	sendErr    error

	calls     []Rates
	answers   []Rates
	bitRates  []Rates
	audioSent []AudioSend
	videoSent []VideoSend
	killed    bool
	onKill    func()
}

var _ media.Engine = (*Media)(nil)

// NewMedia creates a fake media engine with the given iteration interval.
func NewMedia(interval time.Duration) *Media {
	return &Media{interval: interval}
}

// SetCallError makes Call fail with err.
func (m *Media) SetCallError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callErr = err
}

// SetAnswerError makes Answer fail with err.
func (m *Media) SetAnswerError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answerErr = err
}

// SetBitRateError makes SetBitRate fail with err.
func (m *Media) SetBitRateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bitRateErr = err
}

// SetSendError makes both frame sends fail with err.
func (m *Media) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// OnKill registers fn to run when Kill is called.
func (m *Media) OnKill(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onKill = fn
}

// Queue schedules ev for delivery during the next Iterate.
func (m *Media) Queue(ev media.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, ev)
}

// Inject delivers ev to the handler immediately on the calling goroutine.
func (m *Media) Inject(ev media.Event) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (m *Media) Iterate() {
	m.mu.Lock()
	m.iterations++
	events := m.pending
	m.pending = nil
	h := m.handler
	m.mu.Unlock()

	if h == nil {
		return
	}
	for _, ev := range events {
		h(ev)
	}
}

func (m *Media) IterationInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func (m *Media) SetHandler(h media.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

func (m *Media) Call(friendID uint32, audioKbps, videoKbps uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Rates{friendID, audioKbps, videoKbps})
	return m.callErr
}

func (m *Media) Answer(friendID uint32, audioKbps, videoKbps uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, Rates{friendID, audioKbps, videoKbps})
	return m.answerErr
}

func (m *Media) SetBitRate(friendID uint32, audioKbps, videoKbps uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bitRates = append(m.bitRates, Rates{friendID, audioKbps, videoKbps})
	return m.bitRateErr
}

func (m *Media) SendAudioFrame(friendID uint32, frame media.AudioFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	frame.PCM = append([]int16(nil), frame.PCM...)
	m.audioSent = append(m.audioSent, AudioSend{FriendID: friendID, Frame: frame})
	return nil
}

func (m *Media) SendVideoFrame(friendID uint32, width, height uint16, y, u, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.videoSent = append(m.videoSent, VideoSend{
		FriendID: friendID,
		Width:    width,
		Height:   height,
		Y:        append([]byte(nil), y...),
		U:        append([]byte(nil), u...),
		V:        append([]byte(nil), v...),
	})
	return nil
}

func (m *Media) Kill() {
	m.mu.Lock()
	m.killed = true
	fn := m.onKill
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Iterations returns how many times Iterate ran.
func (m *Media) Iterations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.iterations
}

// Calls returns the recorded Call requests.
func (m *Media) Calls() []Rates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Rates(nil), m.calls...)
}

// Answers returns the recorded Answer requests.
func (m *Media) Answers() []Rates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Rates(nil), m.answers...)
}

// BitRates returns the recorded SetBitRate requests.
func (m *Media) BitRates() []Rates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Rates(nil), m.bitRates...)
}

// AudioSent returns the relayed audio frames.
func (m *Media) AudioSent() []AudioSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AudioSend(nil), m.audioSent...)
}

// VideoSent returns the relayed video frames.
func (m *Media) VideoSent() []VideoSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]VideoSend(nil), m.videoSent...)
}

// Killed reports whether Kill was called.
func (m *Media) Killed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killed
}
