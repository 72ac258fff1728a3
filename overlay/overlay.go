// Package overlay wires the smoothing counters, the change gate and the
// attention scheduler into one per-tick component.
package overlay

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"perfoverlay/attention"
	"perfoverlay/delay"
	"perfoverlay/rolling"
)

const (
	DefaultFrameTimeWindow = 1000.0
	DefaultFPSWindow       = 400.0

	defaultStatsBuckets        = 10
	defaultStatsBucketDuration = 1000.0
)

// Smoothing selects the RollingCounter behind the displayed values.
const (
	SmoothingEWMA = "ewma"
	SmoothingMean = "mean"
)

var ErrUnknownSmoothing = errors.New("overlay: unknown smoothing")

// Theme holds the label colors as hex strings.
type Theme struct {
	FrameTime string `json:"frame_time"`
	FPS       string `json:"fps"`
}

var DefaultTheme = Theme{
	FrameTime: "#FFA500",
	FPS:       "#9ACD32",
}

type Options struct {
	// SmoothingEWMA (default) or SmoothingMean
	Smoothing string
	// smoothing windows in ms
	FrameTimeWindow float64
	FPSWindow       float64

	FrameTimeThreshold float64
	FPSThreshold       float64

	StatsBuckets        int
	StatsBucketDuration float64

	Attention attention.Options
	Theme     Theme
	Logger    *zap.Logger
}

func (o *Options) fix() {
	if o.Smoothing == "" {
		o.Smoothing = SmoothingEWMA
	}
	if o.FrameTimeWindow == 0 {
		o.FrameTimeWindow = DefaultFrameTimeWindow
	}
	if o.FPSWindow == 0 {
		o.FPSWindow = DefaultFPSWindow
	}
	if o.StatsBuckets == 0 {
		o.StatsBuckets = defaultStatsBuckets
	}
	if o.StatsBucketDuration == 0 {
		o.StatsBucketDuration = defaultStatsBucketDuration
	}
	if o.Theme.FrameTime == "" {
		o.Theme.FrameTime = DefaultTheme.FrameTime
	}
	if o.Theme.FPS == "" {
		o.Theme.FPS = DefaultTheme.FPS
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Attention.Logger == nil {
		o.Attention.Logger = o.Logger
	}
}

type Overlay struct {
	frameTime rolling.RollingCounter
	fps       rolling.RollingCounter

	frameTimeStats rolling.RollingWindow
	fpsStats       rolling.RollingWindow

	attention *attention.Scheduler
	gate      *ChangeGate
	theme     Theme
	log       *zap.Logger

	ticks uint64
}

func New(s delay.Scheduler, sink attention.Sink, opts Options) (*Overlay, error) {
	opts.fix()

	frameTime, err := newCounter(opts.Smoothing, opts.FrameTimeWindow)
	if err != nil {
		return nil, errors.Wrap(err, "frame time counter")
	}
	fps, err := newCounter(opts.Smoothing, opts.FPSWindow)
	if err != nil {
		return nil, errors.Wrap(err, "fps counter")
	}

	statsOpts := rolling.RollingWindowOpts{
		Size:           opts.StatsBuckets,
		BucketDuration: opts.StatsBucketDuration,
	}
	frameTimeStats, err := rolling.NewRollingWindow(statsOpts)
	if err != nil {
		return nil, errors.Wrap(err, "frame time stats")
	}
	fpsStats, err := rolling.NewRollingWindow(statsOpts)
	if err != nil {
		return nil, errors.Wrap(err, "fps stats")
	}

	a := attention.New(s, sink, opts.Attention)
	gate := NewChangeGate(frameTime, fps, a)
	gate.SetThresholds(opts.FrameTimeThreshold, opts.FPSThreshold)

	return &Overlay{
		frameTime:      frameTime,
		fps:            fps,
		frameTimeStats: frameTimeStats,
		fpsStats:       fpsStats,
		attention:      a,
		gate:           gate,
		theme:          opts.Theme,
		log:            opts.Logger,
	}, nil
}

func newCounter(smoothing string, window float64) (rolling.RollingCounter, error) {
	opts := rolling.RollingCounterOpts{Window: window}
	switch smoothing {
	case SmoothingEWMA:
		return rolling.NewEWMA(opts)
	case SmoothingMean:
		return rolling.NewMean(opts)
	default:
		return nil, errors.Wrapf(ErrUnknownSmoothing, "%q", smoothing)
	}
}

// Start runs the initial show/auto-hide cycle so the overlay is seen once
// even when nothing ever changes.
func (o *Overlay) Start() {
	o.attention.NotifyActivity()
}

func (o *Overlay) Tick(r Reading, elapsed time.Duration) {
	dt := float64(elapsed) / float64(time.Millisecond)

	if o.gate.Observe(r, dt) {
		o.log.Debug("significant change",
			zap.Float64("frame_time", r.FrameTime),
			zap.Float64("fps", r.FPS))
	}
	o.frameTimeStats.Add(r.FrameTime, dt)
	o.fpsStats.Add(r.FPS, dt)
	o.ticks++
}

func (o *Overlay) FrameTime() float64 {
	return o.frameTime.Current()
}

func (o *Overlay) FPS() float64 {
	return o.fps.Current()
}

func (o *Overlay) Labels() (frameTime, fps string) {
	return FormatFrameTime(o.frameTime.Current()), FormatFPS(o.fps.Current())
}

func (o *Overlay) Visible() bool {
	return o.attention.Visible()
}

func (o *Overlay) SetThresholds(frameTime, fps float64) {
	o.gate.SetThresholds(frameTime, fps)
	ft, f := o.gate.Thresholds()
	o.log.Info("thresholds updated", zap.Float64("frame_time", ft), zap.Float64("fps", f))
}

func (o *Overlay) Thresholds() (frameTime, fps float64) {
	return o.gate.Thresholds()
}

func (o *Overlay) Stats() Stats {
	return Stats{
		FrameTimeMin: o.frameTimeStats.Min(),
		FrameTimeAvg: o.frameTimeStats.Avg(),
		FrameTimeMax: o.frameTimeStats.Max(),
		FPSMin:       o.fpsStats.Min(),
		FPSAvg:       o.fpsStats.Avg(),
		FPSMax:       o.fpsStats.Max(),
		Samples:      int64(o.frameTimeStats.Count()),
		Span:         o.frameTimeStats.Timespan(),
	}
}

func (o *Overlay) Snapshot() Snapshot {
	frameTimeLabel, fpsLabel := o.Labels()
	return Snapshot{
		FrameTime:      o.frameTime.Current(),
		FPS:            o.fps.Current(),
		FrameTimeLabel: frameTimeLabel,
		FPSLabel:       fpsLabel,
		Visible:        o.attention.Visible(),
		Theme:          o.theme,
		Stats:          o.Stats(),
		Tick:           o.ticks,
	}
}
