package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/echobot/session"
	"github.com/opd-ai/toxcore"
	"github.com/sirupsen/logrus"
)

// Options selects the transports the session engine binds.
type Options struct {
	UDPEnabled     bool
	IPv6Enabled    bool
	LocalDiscovery bool
	StartPort      uint16
	EndPort        uint16
	TCPPort        uint16
}

// DefaultOptions returns toxcore's defaults.
func DefaultOptions() Options {
	o := toxcore.NewOptions()
	return Options{
		UDPEnabled:     o.UDPEnabled,
		IPv6Enabled:    o.IPv6Enabled,
		LocalDiscovery: o.LocalDiscovery,
		StartPort:      o.StartPort,
		EndPort:        o.EndPort,
		TCPPort:        o.TCPPort,
	}
}

func (o Options) toxOptions() *toxcore.Options {
	opts := toxcore.NewOptions()
	opts.UDPEnabled = o.UDPEnabled
	opts.IPv6Enabled = o.IPv6Enabled
	opts.LocalDiscovery = o.LocalDiscovery
	opts.StartPort = o.StartPort
	opts.EndPort = o.EndPort
	opts.TCPPort = o.TCPPort
	return opts
}

// Session implements session.Engine on top of toxcore.Tox.
//
// Callbacks only queue events; they reach the handler from Iterate, on the
// goroutine driving the session loop.
type Session struct {
	tox    *toxcore.Tox
	events eventQueue[session.Event]

	mu      sync.RWMutex
	handler session.Handler
}

var _ session.Engine = (*Session)(nil)

// NewSession creates a session engine. A nil or empty savedata creates a
// fresh identity; otherwise the identity is restored from savedata.
func NewSession(opts Options, savedata []byte) (*Session, error) {
	var (
		tox *toxcore.Tox
		err error
	)
	if len(savedata) > 0 {
		tox, err = toxcore.NewFromSavedata(opts.toxOptions(), savedata)
	} else {
		tox, err = toxcore.New(opts.toxOptions())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tox instance: %w", err)
	}

	s := &Session{tox: tox}
	s.registerCallbacks()

	logrus.WithFields(logrus.Fields{
		"function": "NewSession",
		"restored": len(savedata) > 0,
	}).Debug("Session engine created")

	return s, nil
}

func (s *Session) registerCallbacks() {
	s.tox.OnConnectionStatus(func(status toxcore.ConnectionStatus) {
		s.emit(session.ConnectionChanged{Status: fromToxConnection(status)})
	})
	s.tox.OnFriendRequest(func(publicKey [32]byte, message string) {
		s.emit(session.FriendRequest{PublicKey: publicKey, Message: message})
	})
	s.tox.OnFriendMessageDetailed(func(friendID uint32, message string, messageType toxcore.MessageType) {
		s.emit(session.FriendMessage{
			FriendID: friendID,
			Type:     fromToxMessageType(messageType),
			Text:     message,
		})
	})
	s.tox.OnFileRecv(func(friendID, fileID, kind uint32, fileSize uint64, filename string) {
		s.emit(session.FileRequest{
			FriendID: friendID,
			FileID:   fileID,
			Kind:     kind,
			Size:     fileSize,
			Filename: filename,
		})
	})
}

func (s *Session) emit(ev session.Event) {
	s.events.push(ev)
}

func (s *Session) deliver(ev session.Event) {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h != nil {
		h(ev)
	}
}

// SetHandler registers the event sink.
func (s *Session) SetHandler(h session.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Tox exposes the wrapped instance for constructing the media engine.
func (s *Session) Tox() *toxcore.Tox {
	return s.tox
}

// Iterate runs one engine step, then hands queued events to the handler.
func (s *Session) Iterate() {
	s.tox.Iterate()
	s.events.drain(s.deliver)
}

func (s *Session) IterationInterval() time.Duration {
	return s.tox.IterationInterval()
}

func (s *Session) Bootstrap(node session.Node) error {
	return s.tox.Bootstrap(node.Host, node.Port, node.PublicKey)
}

// FriendIDs returns the friend numbers in ascending order.
func (s *Session) FriendIDs() []uint32 {
	friends := s.tox.GetFriends()
	ids := make([]uint32, 0, len(friends))
	for id := range friends {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Session) LastSeen(friendID uint32) (time.Time, error) {
	f, ok := s.tox.GetFriends()[friendID]
	if !ok || f == nil {
		return time.Time{}, fmt.Errorf("friend %d: %w", friendID, ErrUnknownFriend)
	}
	return f.LastSeen, nil
}

func (s *Session) ConnectionStatus(friendID uint32) session.ConnectionStatus {
	return fromToxConnection(s.tox.GetFriendConnectionStatus(friendID))
}

func (s *Session) DeleteFriend(friendID uint32) error {
	return s.tox.DeleteFriend(friendID)
}

func (s *Session) AcceptFriend(publicKey [32]byte) (uint32, error) {
	return s.tox.AddFriendByPublicKey(publicKey)
}

func (s *Session) SendMessage(friendID uint32, msg session.Message) error {
	return s.tox.SendFriendMessage(friendID, msg.Text, toToxMessageType(msg.Type))
}

func (s *Session) CancelFile(friendID, fileID uint32) error {
	return s.tox.FileControl(friendID, fileID, toxcore.FileControlCancel)
}

func (s *Session) Savedata() []byte {
	return s.tox.GetSavedata()
}

func (s *Session) Address() string {
	return s.tox.SelfGetAddress()
}

func (s *Session) SetProfile(name, statusMessage string) error {
	if err := s.tox.SelfSetName(name); err != nil {
		return fmt.Errorf("failed to set name: %w", err)
	}
	if err := s.tox.SelfSetStatusMessage(statusMessage); err != nil {
		return fmt.Errorf("failed to set status message: %w", err)
	}
	return nil
}

func (s *Session) Kill() {
	s.SetHandler(nil)
	s.tox.Kill()
}

func fromToxConnection(status toxcore.ConnectionStatus) session.ConnectionStatus {
	switch status {
	case toxcore.ConnectionTCP:
		return session.ConnectionTCP
	case toxcore.ConnectionUDP:
		return session.ConnectionUDP
	default:
		return session.ConnectionNone
	}
}

func fromToxMessageType(mt toxcore.MessageType) session.MessageType {
	if mt == toxcore.MessageTypeAction {
		return session.MessageAction
	}
	return session.MessageNormal
}

func toToxMessageType(mt session.MessageType) toxcore.MessageType {
	if mt == session.MessageAction {
		return toxcore.MessageTypeAction
	}
	return toxcore.MessageTypeNormal
}
