// Package framing measures the frame loop it is called from.
package framing

import (
	"time"

	"github.com/jonboulle/clockwork"

	"perfoverlay/overlay"
)

const DefaultUpdateInterval = time.Second

type state struct {
	fps        float64
	frameTime  time.Duration
	frameCount int
	lastFrame  time.Time
	lastUpdate time.Time
	started    bool
}

// FrameClock reports the time since the previous frame and a frames per
// second figure recomputed every UpdateInterval. The frame time is elapsed
// clock time between calls, not time spent doing work.
type FrameClock struct {
	state
	clock          clockwork.Clock
	UpdateInterval time.Duration
}

func NewFrameClock(clock clockwork.Clock, updateInterval time.Duration) *FrameClock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if updateInterval <= 0 {
		updateInterval = DefaultUpdateInterval
	}
	return &FrameClock{clock: clock, UpdateInterval: updateInterval}
}

// ProcessFrame marks the start of a new frame and returns its elapsed time.
func (fc *FrameClock) ProcessFrame() time.Duration {
	now := fc.clock.Now()
	if !fc.started {
		fc.started = true
		fc.lastFrame = now
		fc.lastUpdate = now
		return 0
	}

	fc.frameTime = now.Sub(fc.lastFrame)
	fc.lastFrame = now
	fc.frameCount++

	elapsed := now.Sub(fc.lastUpdate)
	if elapsed >= fc.UpdateInterval {
		fc.fps = float64(fc.frameCount) / elapsed.Seconds()
		fc.frameCount = 0
		fc.lastUpdate = now
	}
	return fc.frameTime
}

func (fc *FrameClock) ElapsedFrameTime() time.Duration {
	return fc.frameTime
}

func (fc *FrameClock) FramesPerSecond() float64 {
	return fc.fps
}

func (fc *FrameClock) Reading() overlay.Reading {
	return overlay.Reading{
		FrameTime: float64(fc.frameTime) / float64(time.Millisecond),
		FPS:       fc.fps,
	}
}
