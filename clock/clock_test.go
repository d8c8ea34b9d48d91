package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemTracksWallClock(t *testing.T) {
	var tp System
	before := time.Now()
	now := tp.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
	assert.GreaterOrEqual(t, tp.Since(time.Now().Add(-100*time.Millisecond)), 100*time.Millisecond)
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	assert.True(t, mock.Now().Equal(start))

	mock.Advance(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, mock.Since(start))

	mock.Set(start.Add(-time.Hour))
	assert.Equal(t, -time.Hour, mock.Since(start))
}

func TestMockTimeProviderConcurrentAdvance(t *testing.T) {
	start := time.Unix(0, 0)
	mock := NewMockTimeProvider(start)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mock.Advance(time.Second)
			_ = mock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*time.Second, mock.Since(start))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, System{}, OrDefault(nil))

	mock := NewMockTimeProvider(time.Unix(0, 0))
	assert.Same(t, mock, OrDefault(mock))
}
