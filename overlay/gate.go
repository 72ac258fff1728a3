package overlay

import (
	"math"

	"perfoverlay/rolling"
)

// Jumps large enough for a person to care about. They are independent of the
// smoothing windows.
const (
	FrameTimeThreshold = 5.0
	FPSThreshold       = 10.0
)

type Notifier interface {
	NotifyActivity()
}

// Reading is one tick's worth of raw measurements.
type Reading struct {
	FrameTime float64 // ms
	FPS       float64
}

// ChangeGate compares fresh readings with the smoothed values they are about
// to be folded into and raises activity when either one jumps.
type ChangeGate struct {
	frameTime rolling.RollingCounter
	fps       rolling.RollingCounter
	notifier  Notifier

	frameTimeThreshold float64
	fpsThreshold       float64
}

func NewChangeGate(frameTime, fps rolling.RollingCounter, n Notifier) *ChangeGate {
	return &ChangeGate{
		frameTime:          frameTime,
		fps:                fps,
		notifier:           n,
		frameTimeThreshold: FrameTimeThreshold,
		fpsThreshold:       FPSThreshold,
	}
}

// SetThresholds overrides the thresholds; non-positive values restore the defaults.
func (g *ChangeGate) SetThresholds(frameTime, fps float64) {
	if !(frameTime > 0) {
		frameTime = FrameTimeThreshold
	}
	if !(fps > 0) {
		fps = FPSThreshold
	}
	g.frameTimeThreshold = frameTime
	g.fpsThreshold = fps
}

func (g *ChangeGate) Thresholds() (frameTime, fps float64) {
	return g.frameTimeThreshold, g.fpsThreshold
}

// Significant compares against the values before this tick's update.
func (g *ChangeGate) Significant(r Reading) bool {
	return exceeds(g.frameTime.Current(), r.FrameTime, g.frameTimeThreshold) ||
		exceeds(g.fps.Current(), r.FPS, g.fpsThreshold)
}

// Observe notifies at most once, then feeds both counters regardless of the outcome.
func (g *ChangeGate) Observe(r Reading, dt float64) bool {
	significant := g.Significant(r)
	if significant {
		g.notifier.NotifyActivity()
	}

	g.frameTime.Update(r.FrameTime, dt)
	g.fps.Update(r.FPS, dt)
	return significant
}

func exceeds(current, raw, threshold float64) bool {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return false
	}
	return math.Abs(current-raw) > threshold
}
