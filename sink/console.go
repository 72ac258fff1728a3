package sink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"perfoverlay/overlay"
)

// Console renders the overlay into the log: visibility changes at info,
// visible frames at debug.
type Console struct {
	log *zap.Logger

	mu      sync.Mutex
	opacity float64
	fade    time.Duration
}

func NewConsole(log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{log: log}
}

func (c *Console) Reveal(d time.Duration) {
	c.fadeTo(1, d)
	c.log.Info("overlay shown", zap.Duration("fade", d))
}

func (c *Console) Conceal(d time.Duration) {
	c.fadeTo(0, d)
	c.log.Info("overlay hidden", zap.Duration("fade", d))
}

func (c *Console) fadeTo(opacity float64, d time.Duration) {
	c.mu.Lock()
	c.opacity = opacity
	c.fade = d
	c.mu.Unlock()
}

// Opacity is the target of the latest fade.
func (c *Console) Opacity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opacity
}

func (c *Console) Publish(_ context.Context, s overlay.Snapshot) error {
	if !s.Visible {
		return nil
	}
	c.log.Debug(s.FrameTimeLabel+" "+s.FPSLabel,
		zap.Float64("frame_time", s.FrameTime),
		zap.Float64("fps", s.FPS),
		zap.Float64("frame_time_max", s.Stats.FrameTimeMax),
		zap.Float64("fps_min", s.Stats.FPSMin),
		zap.Float64("cpu", s.CPU))
	return nil
}
