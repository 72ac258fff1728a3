package overlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"perfoverlay/rolling"
)

type countingNotifier struct {
	calls int
}

func (c *countingNotifier) NotifyActivity() { c.calls++ }

func newGate() (*ChangeGate, rolling.RollingCounter, rolling.RollingCounter, *countingNotifier) {
	ft := rolling.MustEWMA(DefaultFrameTimeWindow)
	fps := rolling.MustEWMA(DefaultFPSWindow)
	n := &countingNotifier{}
	return NewChangeGate(ft, fps, n), ft, fps, n
}

func TestChangeGate_EitherThresholdTriggers(t *testing.T) {
	gate, ft, fps, n := newGate()

	assert.True(t, gate.Observe(Reading{FrameTime: 6, FPS: 5}, 16))
	assert.Equal(t, 1, n.calls)
	assert.Greater(t, ft.Current(), 0.0)
	assert.Less(t, ft.Current(), 6.0)
	assert.Greater(t, fps.Current(), 0.0)
	assert.Less(t, fps.Current(), 5.0)
}

func TestChangeGate_BothExceedingNotifiesOnce(t *testing.T) {
	gate, _, _, n := newGate()
	gate.Observe(Reading{FrameTime: 100, FPS: 100}, 16)
	assert.Equal(t, 1, n.calls)
}

func TestChangeGate_SmallChangesAreQuiet(t *testing.T) {
	gate, _, _, n := newGate()
	assert.False(t, gate.Observe(Reading{FrameTime: 5, FPS: 10}, 16))
	assert.Equal(t, 0, n.calls)
}

func TestChangeGate_ComparesBeforeUpdate(t *testing.T) {
	ft := rolling.MustEWMA(DefaultFrameTimeWindow)
	fps := rolling.MustEWMA(DefaultFPSWindow)
	for i := 0; i < 1000; i++ {
		ft.Update(16, 16)
		fps.Update(60, 16)
	}
	n := &countingNotifier{}
	gate := NewChangeGate(ft, fps, n)

	// 22 would be smoothed to well under 21 after the update; the gate
	// must still see the raw 6ms jump
	gate.Observe(Reading{FrameTime: 22, FPS: 60}, 16)
	assert.Equal(t, 1, n.calls)
	assert.Less(t, ft.Current(), 21.0)
}

func TestChangeGate_NonFiniteReadingsNeverTrigger(t *testing.T) {
	gate, ft, _, n := newGate()
	gate.Observe(Reading{FrameTime: math.NaN(), FPS: math.Inf(1)}, 16)
	assert.Equal(t, 0, n.calls)
	assert.Equal(t, 0.0, ft.Current())
}

func TestChangeGate_SetThresholds(t *testing.T) {
	gate, _, _, n := newGate()
	gate.SetThresholds(50, 50)
	gate.Observe(Reading{FrameTime: 40, FPS: 40}, 16)
	assert.Equal(t, 0, n.calls)

	gate.SetThresholds(0, -1)
	ft, fps := gate.Thresholds()
	assert.Equal(t, FrameTimeThreshold, ft)
	assert.Equal(t, FPSThreshold, fps)
}
