package delay

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClockScheduler_FiresAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewClockScheduler(clock)

	var fired atomic.Int32
	h := s.Schedule(2*time.Second, func() { fired.Add(1) })

	clock.Advance(time.Second)
	assert.Never(t, func() bool { return fired.Load() > 0 }, 50*time.Millisecond, 10*time.Millisecond)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, h.Done())
	assert.False(t, h.Cancel())
}

func TestClockScheduler_CancelledNeverFires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewClockScheduler(clock)

	var fired atomic.Bool
	h := s.Schedule(time.Second, func() { fired.Store(true) })
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())
	assert.True(t, h.Done())

	clock.Advance(5 * time.Second)
	assert.Never(t, fired.Load, 50*time.Millisecond, 10*time.Millisecond)
}

func TestClockScheduler_RealClockDefault(t *testing.T) {
	s := NewClockScheduler(nil)
	done := make(chan struct{})
	s.Schedule(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("action did not run")
	}
}
