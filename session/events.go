package session

// Event is an inbound notification from the engine. The concrete types
// below are the only implementations.
type Event interface {
	sessionEvent()
}

// ConnectionChanged reports the bot's own network connectivity.
type ConnectionChanged struct {
	Status ConnectionStatus
}

// FriendRequest is an incoming contact request.
type FriendRequest struct {
	PublicKey [32]byte
	Message   string
}

// FriendMessage is a chat line from an established friend.
type FriendMessage struct {
	FriendID uint32
	Type     MessageType
	Text     string
}

// FileRequest is an offered file transfer.
type FileRequest struct {
	FriendID uint32
	FileID   uint32
	Kind     uint32
	Size     uint64
	Filename string
}

func (ConnectionChanged) sessionEvent() {}
func (FriendRequest) sessionEvent()     {}
func (FriendMessage) sessionEvent()     {}
func (FileRequest) sessionEvent()       {}
