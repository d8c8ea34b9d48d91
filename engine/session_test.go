package engine

import (
	"testing"

	"github.com/opd-ai/echobot/session"
	"github.com/opd-ai/toxcore"
	"github.com/stretchr/testify/assert"
)

func TestConnectionStatusMapping(t *testing.T) {
	assert.Equal(t, session.ConnectionNone, fromToxConnection(toxcore.ConnectionNone))
	assert.Equal(t, session.ConnectionTCP, fromToxConnection(toxcore.ConnectionTCP))
	assert.Equal(t, session.ConnectionUDP, fromToxConnection(toxcore.ConnectionUDP))
}

func TestMessageTypeMapping(t *testing.T) {
	for _, mt := range []session.MessageType{session.MessageNormal, session.MessageAction} {
		assert.Equal(t, mt, fromToxMessageType(toToxMessageType(mt)))
	}
	assert.Equal(t, toxcore.MessageTypeAction, toToxMessageType(session.MessageAction))
}

func TestOptionsCarryTransportSettings(t *testing.T) {
	o := DefaultOptions()
	o.UDPEnabled = false
	o.StartPort = 40000
	o.EndPort = 40010

	opts := o.toxOptions()
	assert.False(t, opts.UDPEnabled)
	assert.Equal(t, uint16(40000), opts.StartPort)
	assert.Equal(t, uint16(40010), opts.EndPort)
}

func TestSessionEventsReachHandlerOnlyWhenDrained(t *testing.T) {
	s := &Session{}

	var got []session.Event
	s.SetHandler(func(ev session.Event) {
		got = append(got, ev)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.emit(session.FriendRequest{Message: "hi"})
		s.emit(session.FriendMessage{FriendID: 2, Text: "ping"})
	}()
	<-done

	assert.Empty(t, got, "callbacks must not invoke the handler directly")

	s.events.drain(s.deliver)
	assert.Equal(t, []session.Event{
		session.FriendRequest{Message: "hi"},
		session.FriendMessage{FriendID: 2, Text: "ping"},
	}, got)
}
