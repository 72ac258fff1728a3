// Package attention keeps an overlay hidden until something worth looking at
// happens, then hides it again once things have been quiet for a while.
package attention

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"perfoverlay/delay"
)

const (
	DefaultQuietTimeout    = 2000 * time.Millisecond
	DefaultRevealDuration  = 300 * time.Millisecond
	DefaultConcealDuration = 1000 * time.Millisecond
)

// Sink receives the visual side of visibility changes, typically an opacity
// fade over the given duration.
type Sink interface {
	Reveal(d time.Duration)
	Conceal(d time.Duration)
}

// Sinks fans visibility changes out to several sinks in order.
type Sinks []Sink

func (s Sinks) Reveal(d time.Duration) {
	for _, sink := range s {
		sink.Reveal(d)
	}
}

func (s Sinks) Conceal(d time.Duration) {
	for _, sink := range s {
		sink.Conceal(d)
	}
}

type Options struct {
	QuietTimeout    time.Duration
	RevealDuration  time.Duration
	ConcealDuration time.Duration
	Logger          *zap.Logger
}

func (o *Options) fix() {
	if o.QuietTimeout <= 0 {
		o.QuietTimeout = DefaultQuietTimeout
	}
	if o.RevealDuration <= 0 {
		o.RevealDuration = DefaultRevealDuration
	}
	if o.ConcealDuration <= 0 {
		o.ConcealDuration = DefaultConcealDuration
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Scheduler is a two state machine, Hidden and Visible, that owns exactly one
// replaceable hide action. Only the Scheduler cancels or reschedules it.
type Scheduler struct {
	delay delay.Scheduler
	sink  Sink
	opts  Options
	log   *zap.Logger

	mu      sync.Mutex
	visible bool
	pending delay.Handle
	// generation of the pending hide; a hide from an older one is stale
	gen uint64
}

func New(s delay.Scheduler, sink Sink, opts Options) *Scheduler {
	opts.fix()
	return &Scheduler{
		delay: s,
		sink:  sink,
		opts:  opts,
		log:   opts.Logger,
	}
}

// NotifyActivity reveals the overlay if it is hidden and pushes the hide
// deadline to QuietTimeout from now.
func (s *Scheduler) NotifyActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.visible {
		s.visible = true
		s.sink.Reveal(s.opts.RevealDuration)
		s.log.Debug("overlay revealed", zap.Duration("fade", s.opts.RevealDuration))
	}

	if s.pending != nil {
		s.pending.Cancel()
	}
	s.gen++
	gen := s.gen
	s.pending = s.delay.Schedule(s.opts.QuietTimeout, func() { s.hide(gen) })
}

func (s *Scheduler) hide(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// superseded while the timer was firing
	if gen != s.gen || !s.visible {
		return
	}
	s.visible = false
	s.sink.Conceal(s.opts.ConcealDuration)
	s.log.Debug("overlay concealed",
		zap.Stringer("action", s.pending.ID()),
		zap.Duration("fade", s.opts.ConcealDuration))
}

func (s *Scheduler) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Scheduler) QuietTimeout() time.Duration {
	return s.opts.QuietTimeout
}
