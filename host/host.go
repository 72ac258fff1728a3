// Package host runs the overlay from a fixed rate frame loop.
package host

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"perfoverlay/attention"
	"perfoverlay/conf"
	"perfoverlay/delay"
	"perfoverlay/framing"
	"perfoverlay/logging"
	"perfoverlay/overlay"
	"perfoverlay/sys/cpu"
)

// Publisher receives a snapshot every publish interval.
type Publisher interface {
	Publish(ctx context.Context, s overlay.Snapshot) error
}

type Options struct {
	Clock  clockwork.Clock
	Logger *zap.Logger
	// Level is adjusted on reload when set.
	Level *zap.AtomicLevel
	// CPU is sampled for the snapshot; nil leaves it at 0.
	CPU        cpu.CPU
	Sinks      attention.Sinks
	Publishers []Publisher
}

func (o *Options) fix() {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Host owns the tick loop. Everything the overlay touches runs on that loop,
// including delayed hides and config reloads.
type Host struct {
	clock clockwork.Clock
	log   *zap.Logger
	level *zap.AtomicLevel

	frames    *framing.FrameClock
	scheduler *delay.FrameScheduler
	overlay   *overlay.Overlay
	monitor   *cpu.Monitor
	// config the overlay was built from
	cfg *conf.Config

	publishers      []Publisher
	interval        time.Duration
	publishInterval time.Duration
	sincePublish    time.Duration

	reload chan *conf.Config
}

func New(cfg *conf.Config, opts Options) (*Host, error) {
	opts.fix()

	scheduler := delay.NewFrameScheduler()
	o, err := overlay.New(scheduler, opts.Sinks, cfg.OverlayOptions(opts.Logger.Named("overlay")))
	if err != nil {
		return nil, errors.Wrap(err, "overlay")
	}

	h := &Host{
		clock:           opts.Clock,
		log:             opts.Logger,
		level:           opts.Level,
		frames:          framing.NewFrameClock(opts.Clock, cfg.Host.FPSUpdateInterval),
		scheduler:       scheduler,
		overlay:         o,
		cfg:             cfg,
		publishers:      opts.Publishers,
		interval:        time.Second / time.Duration(cfg.Host.TickRate),
		publishInterval: cfg.Host.PublishInterval,
		reload:          make(chan *conf.Config, 1),
	}
	if opts.CPU != nil && cfg.Host.CPU {
		h.monitor = cpu.NewMonitor(opts.CPU, opts.Clock, opts.Logger.Named("cpu"))
	}
	return h, nil
}

func (h *Host) Overlay() *overlay.Overlay {
	return h.overlay
}

// Run ticks until ctx is done.
func (h *Host) Run(ctx context.Context) error {
	if h.monitor != nil {
		go h.monitor.Run(ctx)
	}

	ticker := h.clock.NewTicker(h.interval)
	defer ticker.Stop()

	h.log.Info("host started",
		zap.Duration("tick", h.interval),
		zap.Duration("publish_interval", h.publishInterval))
	h.overlay.Start()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("host stopped")
			return nil
		case cfg := <-h.reload:
			h.apply(cfg)
		case <-ticker.Chan():
			h.tick(ctx)
		}
	}
}

func (h *Host) tick(ctx context.Context) {
	elapsed := h.frames.ProcessFrame()
	// due hides run first so a hide scheduled by this tick counts from now
	h.scheduler.Advance(elapsed)
	h.overlay.Tick(h.frames.Reading(), elapsed)

	if h.publishInterval <= 0 {
		return
	}
	h.sincePublish += elapsed
	if h.sincePublish < h.publishInterval {
		return
	}
	h.sincePublish = 0
	h.publish(ctx)
}

func (h *Host) publish(ctx context.Context) {
	s := h.overlay.Snapshot()
	if h.monitor != nil {
		s.CPU = h.monitor.Usage()
	}
	for _, p := range h.publishers {
		if err := p.Publish(ctx, s); err != nil {
			h.log.Warn("publish snapshot", zap.Uint64("tick", s.Tick), zap.Error(err))
		}
	}
}

// Reload hands a new config to the tick loop. Only the latest pending config
// is kept.
func (h *Host) Reload(cfg *conf.Config) {
	for {
		select {
		case h.reload <- cfg:
			return
		default:
		}
		select {
		case <-h.reload:
		default:
		}
	}
}

func (h *Host) apply(cfg *conf.Config) {
	if keys := restartKeys(h.cfg, cfg); len(keys) > 0 {
		h.log.Info("config changes need a restart", zap.Strings("keys", keys))
	}

	// only thresholds and the log level change the running host
	applied := *h.cfg
	applied.Overlay.FrameTimeThreshold = cfg.Overlay.FrameTimeThreshold
	applied.Overlay.FPSThreshold = cfg.Overlay.FPSThreshold
	h.cfg = &applied
	h.overlay.SetThresholds(cfg.Overlay.FrameTimeThreshold, cfg.Overlay.FPSThreshold)

	if h.level == nil {
		return
	}
	if err := logging.SetLevel(*h.level, cfg.Log.Level); err != nil {
		h.log.Warn("keeping log level", zap.Error(err))
		return
	}
	applied.Log.Level = cfg.Log.Level
	h.log.Info("log level updated", zap.String("level", cfg.Log.Level))
}

// restartKeys lists the settings that differ between old and next but only take
// effect when the host is rebuilt.
func restartKeys(old, next *conf.Config) []string {
	o, n := old.Overlay, next.Overlay
	log := next.Log
	log.Level = old.Log.Level
	changed := []struct {
		key  string
		diff bool
	}{
		{"overlay.smoothing", o.Smoothing != n.Smoothing},
		{"overlay.frame_time_window", o.FrameTimeWindow != n.FrameTimeWindow},
		{"overlay.fps_window", o.FPSWindow != n.FPSWindow},
		{"overlay.quiet_timeout", o.QuietTimeout != n.QuietTimeout},
		{"overlay.reveal_duration", o.RevealDuration != n.RevealDuration},
		{"overlay.conceal_duration", o.ConcealDuration != n.ConcealDuration},
		{"overlay.stats_window", o.StatsWindow != n.StatsWindow},
		{"overlay.stats_buckets", o.StatsBuckets != n.StatsBuckets},
		{"overlay.frame_time_color", o.FrameTimeColor != n.FrameTimeColor},
		{"overlay.fps_color", o.FPSColor != n.FPSColor},
		{"host", old.Host != next.Host},
		{"log", old.Log != log},
		{"redis", old.Redis != next.Redis},
	}

	var keys []string
	for _, c := range changed {
		if c.diff {
			keys = append(keys, c.key)
		}
	}
	return keys
}
