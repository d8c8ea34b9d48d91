package enginetest

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/echobot/session"
)

// Friend is a friend record held by the fake session engine.
type Friend struct {
	LastSeen    time.Time
	LastSeenErr error
	Status      session.ConnectionStatus
}

// SentMessage is one recorded SendMessage call.
type SentMessage struct {
	FriendID uint32
	Message  session.Message
}

// CancelledFile is one recorded CancelFile call.
type CancelledFile struct {
	FriendID uint32
	FileID   uint32
}

// Session is a fake session.Engine. Configure it before handing it to the
// code under test; inspect it through the accessor methods.
type Session struct {
	mu sync.Mutex

	interval   time.Duration
	iterations int
	handler    session.Handler
	pending    []session.Event
	onIterate  func()

	friends      map[uint32]*Friend
	nextFriendID uint32
	acceptErr    error
	bootstrapErr map[string]error
	sendErr      error
	deleteErr    error

	bootstrapped []session.Node
	sent         []SentMessage
	deleted      []uint32
	cancelled    []CancelledFile
	blob         []byte
	name         string
	statusMsg    string
	killed       bool
	onKill       func()
}

var _ session.Engine = (*Session)(nil)

// NewSession creates a fake session engine with the given iteration interval.
func NewSession(interval time.Duration) *Session {
	return &Session{
		interval:     interval,
		friends:      make(map[uint32]*Friend),
		bootstrapErr: make(map[string]error),
		blob:         []byte("fake-savedata"),
	}
}

// AddFriend inserts a friend record.
func (s *Session) AddFriend(id uint32, f Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[id] = &f
	if id >= s.nextFriendID {
		s.nextFriendID = id + 1
	}
}

// SetAcceptError makes AcceptFriend fail with err.
func (s *Session) SetAcceptError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptErr = err
}

// SetBootstrapError makes Bootstrap fail for host.
func (s *Session) SetBootstrapError(host string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootstrapErr[host] = err
}

// SetSendError makes SendMessage fail with err.
func (s *Session) SetSendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// SetDeleteError makes DeleteFriend fail with err.
func (s *Session) SetDeleteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// SetSavedata replaces the blob returned by Savedata.
func (s *Session) SetSavedata(blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
}

// OnIterate registers fn to run at the start of every Iterate.
func (s *Session) OnIterate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onIterate = fn
}

// OnKill registers fn to run when Kill is called.
func (s *Session) OnKill(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onKill = fn
}

// Queue schedules ev for delivery during the next Iterate.
func (s *Session) Queue(ev session.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, ev)
}

// Inject delivers ev to the handler immediately on the calling goroutine.
func (s *Session) Inject(ev session.Event) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (s *Session) Iterate() {
	s.mu.Lock()
	s.iterations++
	fn := s.onIterate
	events := s.pending
	s.pending = nil
	h := s.handler
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	if h == nil {
		return
	}
	for _, ev := range events {
		h(ev)
	}
}

func (s *Session) IterationInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Session) SetHandler(h session.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Session) Bootstrap(node session.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootstrapped = append(s.bootstrapped, node)
	return s.bootstrapErr[node.Host]
}

func (s *Session) FriendIDs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint32, 0, len(s.friends))
	for id := range s.friends {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Session) LastSeen(friendID uint32) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.friends[friendID]
	if !ok {
		return time.Time{}, fmt.Errorf("friend %d not found", friendID)
	}
	if f.LastSeenErr != nil {
		return time.Time{}, f.LastSeenErr
	}
	return f.LastSeen, nil
}

func (s *Session) ConnectionStatus(friendID uint32) session.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.friends[friendID]; ok {
		return f.Status
	}
	return session.ConnectionNone
}

func (s *Session) DeleteFriend(friendID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.friends[friendID]; !ok {
		return fmt.Errorf("friend %d not found", friendID)
	}
	delete(s.friends, friendID)
	s.deleted = append(s.deleted, friendID)
	return nil
}

func (s *Session) AcceptFriend(publicKey [32]byte) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acceptErr != nil {
		return 0, s.acceptErr
	}
	id := s.nextFriendID
	s.nextFriendID++
	s.friends[id] = &Friend{}
	return id, nil
}

func (s *Session) SendMessage(friendID uint32, msg session.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, SentMessage{FriendID: friendID, Message: msg})
	return nil
}

func (s *Session) CancelFile(friendID, fileID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, CancelledFile{FriendID: friendID, FileID: fileID})
	return nil
}

func (s *Session) Savedata() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.blob...)
}

func (s *Session) Address() string {
	return "FAKE0000000000000000000000000000000000000000000000000000000000000000000000"
}

func (s *Session) SetProfile(name, statusMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.statusMsg = statusMessage
	return nil
}

func (s *Session) Kill() {
	s.mu.Lock()
	s.killed = true
	fn := s.onKill
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Iterations returns how many times Iterate ran.
func (s *Session) Iterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterations
}

// Sent returns the recorded outbound messages.
func (s *Session) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}

// SentTo returns the texts sent to friendID, in order.
func (s *Session) SentTo(friendID uint32) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.sent {
		if m.FriendID == friendID {
			out = append(out, m.Message.Text)
		}
	}
	return out
}

// Deleted returns the friend ids removed through DeleteFriend.
func (s *Session) Deleted() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.deleted...)
}

// Cancelled returns the recorded file cancellations.
func (s *Session) Cancelled() []CancelledFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CancelledFile(nil), s.cancelled...)
}

// Bootstrapped returns the nodes passed to Bootstrap, in order.
func (s *Session) Bootstrapped() []session.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.Node(nil), s.bootstrapped...)
}

// Profile returns the name and status message last set.
func (s *Session) Profile() (name, statusMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.statusMsg
}

// Killed reports whether Kill was called.
func (s *Session) Killed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}

// HasFriend reports whether id is in the friend list.
func (s *Session) HasFriend(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friends[id]
	return ok
}
