package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallStateFlags(t *testing.T) {
	s := CallStateSendingAudio | CallStateAcceptingAudio

	assert.True(t, s.Has(CallStateSendingAudio))
	assert.True(t, s.Has(CallStateSendingAudio|CallStateAcceptingAudio))
	assert.False(t, s.Has(CallStateSendingVideo))
	assert.False(t, s.Ended())
	assert.Equal(t, "sending_audio|accepting_audio", s.String())
}

func TestCallStateEnded(t *testing.T) {
	assert.True(t, CallStateFinished.Ended())
	assert.True(t, CallStateError.Ended())
	assert.True(t, (CallStateError | CallStateSendingAudio).Ended())
	assert.False(t, CallState(0).Ended())
	assert.Equal(t, "none", CallState(0).String())
}
