package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.FriendRequest(nil)
	m.FriendRequest(nil)
	m.FriendRequest(errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.friendRequests.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.friendRequests.WithLabelValues(ResultError)))

	m.FriendsPruned(3)
	m.FriendsPruned(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.friendsPruned))

	m.Command("!info")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("!info")))

	m.FrameRelayed(KindVideo)
	m.FrameDropped(KindVideo)
	m.FrameDropped(KindVideo)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesRelayed.WithLabelValues(KindVideo)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesDropped.WithLabelValues(KindVideo)))

	m.Friends(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.friends))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FriendRequest(nil)
		m.FriendsPruned(1)
		m.Friends(1)
		m.MessageEchoed()
		m.Command("!callme")
		m.CallAnswered(nil)
		m.CallPlaced(nil)
		m.FrameRelayed(KindAudio)
		m.FrameDropped(KindAudio)
		m.ProfileSaved(nil)
		m.Iteration("session")
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.MessageEchoed()
	m.ProfileSaved(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "echobot_messages_echoed_total 1"))
	assert.True(t, strings.Contains(body, `echobot_profile_saves_total{result="ok"} 1`))
}
