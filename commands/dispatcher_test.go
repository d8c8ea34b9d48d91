package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/echobot/clock"
	"github.com/opd-ai/echobot/enginetest"
	"github.com/opd-ai/echobot/limits"
	"github.com/opd-ai/echobot/session"
	"github.com/opd-ai/echobot/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestDispatcher(t *testing.T) (*Dispatcher, *enginetest.Session, *enginetest.Media, *clock.MockTimeProvider) {
	t.Helper()
	s := enginetest.NewSession(time.Millisecond)
	m := enginetest.NewMedia(time.Millisecond)
	tp := clock.NewMockTimeProvider(start)
	d := NewDispatcher(s, m, Config{Version: "EchoBot test"}, WithTimeProvider(tp))
	return d, s, m, tp
}

func TestEchoThenHelp(t *testing.T) {
	d, s, m, _ := newTestDispatcher(t)

	d.HandleMessage(session.FriendMessage{FriendID: 4, Type: session.MessageNormal, Text: "hello"})

	sent := s.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, enginetest.SentMessage{FriendID: 4, Message: session.Message{Type: session.MessageNormal, Text: "hello"}}, sent[0])
	assert.Equal(t, HelpText, sent[1].Message.Text)
	assert.Empty(t, m.Calls())
}

func TestEchoKeepsMessageType(t *testing.T) {
	d, s, _, _ := newTestDispatcher(t)

	d.HandleMessage(session.FriendMessage{FriendID: 1, Type: session.MessageAction, Text: "waves"})

	sent := s.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, session.MessageAction, sent[0].Message.Type)
	assert.Equal(t, session.MessageNormal, sent[1].Message.Type)
}

func TestCommandMatchIsExact(t *testing.T) {
	for _, text := range []string{"!INFO", " !info", "!info ", "!callme please", "!Callme"} {
		t.Run(text, func(t *testing.T) {
			d, s, m, _ := newTestDispatcher(t)
			d.HandleMessage(session.FriendMessage{FriendID: 1, Text: text})

			assert.Equal(t, []string{text, HelpText}, s.SentTo(1))
			assert.Empty(t, m.Calls())
		})
	}
}

func TestInfo(t *testing.T) {
	d, s, _, tp := newTestDispatcher(t)
	s.AddFriend(1, enginetest.Friend{Status: session.ConnectionUDP})
	s.AddFriend(2, enginetest.Friend{Status: session.ConnectionNone})
	s.AddFriend(3, enginetest.Friend{Status: session.ConnectionTCP})
	tp.Advance(26*time.Hour + 5*time.Minute + 30*time.Second)

	d.HandleMessage(session.FriendMessage{FriendID: 1, Text: CmdInfo})

	got := s.SentTo(1)
	require.GreaterOrEqual(t, len(got), 4)
	assert.Equal(t, "Uptime: 1d 2h 5m", got[0])
	assert.Equal(t, "EchoBot test", got[1])
	assert.Equal(t, "Friends: 3 (2 online)", got[2])
	assert.Equal(t, DefaultInfoLines, got[3:])
	for _, line := range got {
		assert.NotContains(t, line, HelpText)
	}
}

func TestInfoCustomLines(t *testing.T) {
	s := enginetest.NewSession(time.Millisecond)
	d := NewDispatcher(s, enginetest.NewMedia(time.Millisecond), Config{
		Version:   "v1",
		InfoLines: []string{"contact me"},
	})

	d.HandleMessage(session.FriendMessage{FriendID: 9, Text: CmdInfo})

	got := s.SentTo(9)
	require.Len(t, got, 4)
	assert.True(t, strings.HasPrefix(got[0], "Uptime: "))
	assert.Equal(t, "Friends: 0 (0 online)", got[2])
	assert.Equal(t, "contact me", got[3])
}

func TestInfoEmptyConfigStillSendsEveryLine(t *testing.T) {
	s := enginetest.NewSession(time.Millisecond)
	d := NewDispatcher(s, enginetest.NewMedia(time.Millisecond), Config{
		InfoLines: []string{},
	})

	d.HandleMessage(session.FriendMessage{FriendID: 4, Text: CmdInfo})

	got := s.SentTo(4)
	require.Len(t, got, 3+len(DefaultInfoLines))
	assert.Equal(t, version.String(), got[1])
	assert.Equal(t, DefaultInfoLines, got[3:])
}

func TestCallCommands(t *testing.T) {
	d, s, m, _ := newTestDispatcher(t)

	d.HandleMessage(session.FriendMessage{FriendID: 3, Text: CmdCallMe})
	d.HandleMessage(session.FriendMessage{FriendID: 5, Text: CmdVideoCallMe})

	assert.Equal(t, []enginetest.Rates{
		{FriendID: 3, AudioKbps: 48, VideoKbps: 0},
		{FriendID: 5, AudioKbps: 48, VideoKbps: 5000},
	}, m.Calls())
	assert.Empty(t, s.Sent())
}

func TestCallFailureIsSilent(t *testing.T) {
	d, s, m, _ := newTestDispatcher(t)
	m.SetCallError(errors.New("friend offline"))

	assert.NotPanics(t, func() {
		d.HandleMessage(session.FriendMessage{FriendID: 3, Text: CmdCallMe})
	})
	assert.Len(t, m.Calls(), 1)
	assert.Empty(t, s.Sent())
}

func TestOverlongEchoIsSkipped(t *testing.T) {
	d, s, _, _ := newTestDispatcher(t)
	long := strings.Repeat("x", limits.MaxPlaintextMessage+1)

	d.HandleMessage(session.FriendMessage{FriendID: 2, Text: long})

	assert.Equal(t, []string{HelpText}, s.SentTo(2))
}

func TestFileRefused(t *testing.T) {
	d, s, _, _ := newTestDispatcher(t)

	d.HandleFile(session.FileRequest{FriendID: 2, FileID: 11, Kind: session.FileKindData, Size: 1024, Filename: "cat.png"})

	assert.Equal(t, []enginetest.CancelledFile{{FriendID: 2, FileID: 11}}, s.Cancelled())
	assert.Equal(t, []string{FileRefusal}, s.SentTo(2))
}

func TestAvatarIgnored(t *testing.T) {
	d, s, _, _ := newTestDispatcher(t)

	d.HandleFile(session.FileRequest{FriendID: 2, FileID: 0, Kind: session.FileKindAvatar})

	assert.Empty(t, s.Cancelled())
	assert.Empty(t, s.Sent())
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0d 0h 0m"},
		{59 * time.Second, "0d 0h 0m"},
		{61 * time.Minute, "0d 1h 1m"},
		{49*time.Hour + 59*time.Minute, "2d 1h 59m"},
		{-time.Minute, "0d 0h 0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.d), tt.d.String())
	}
}
