package session

import (
	"fmt"
	"time"
)

// ConnectionStatus is the transport a peer (or the bot itself) is reachable over.
type ConnectionStatus uint8

const (
	ConnectionNone ConnectionStatus = iota
	ConnectionTCP
	ConnectionUDP
)

// String returns a human-readable connection status.
func (c ConnectionStatus) String() string {
	switch c {
	case ConnectionNone:
		return "offline"
	case ConnectionTCP:
		return "tcp"
	case ConnectionUDP:
		return "udp"
	default:
		return fmt.Sprintf("ConnectionStatus(%d)", uint8(c))
	}
}

// MessageType distinguishes normal chat lines from /me actions.
type MessageType uint8

const (
	MessageNormal MessageType = iota
	MessageAction
)

// FileKind values as carried in file transfer requests.
const (
	FileKindData   uint32 = 0
	FileKindAvatar uint32 = 1
)

// Message is one outbound chat line.
type Message struct {
	Type MessageType
	Text string
}

// Node is a bootstrap peer.
type Node struct {
	PublicKey string // 64 hex characters
	Host      string
	Port      uint16
}

// String returns host:port for logging.
func (n Node) String() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// Handler receives inbound engine events.
type Handler func(Event)

// Engine is the network/messaging engine contract.
type Engine interface {
	// Iterate processes one batch of pending network work, invoking the
	// handler synchronously for every event before returning.
	Iterate()
	// IterationInterval is the advisory delay until Iterate is useful again.
	IterationInterval() time.Duration
	// SetHandler registers the event sink. A nil handler drops events.
	SetHandler(h Handler)

	Bootstrap(node Node) error
	FriendIDs() []uint32
	LastSeen(friendID uint32) (time.Time, error)
	ConnectionStatus(friendID uint32) ConnectionStatus
	DeleteFriend(friendID uint32) error
	AcceptFriend(publicKey [32]byte) (uint32, error)
	SendMessage(friendID uint32, msg Message) error
	CancelFile(friendID, fileID uint32) error

	// Savedata serializes the identity into an opaque blob.
	Savedata() []byte
	// Address is the shareable Tox ID of this identity.
	Address() string
	SetProfile(name, statusMessage string) error

	// Kill releases the engine. The handle must not be used afterwards.
	Kill()
}
