package engine

import "errors"

var (
	// ErrUnknownFriend indicates the friend number is not in the friend list.
	ErrUnknownFriend = errors.New("unknown friend")

	// ErrNilSession indicates a media engine was requested without a session.
	ErrNilSession = errors.New("session cannot be nil")
)
