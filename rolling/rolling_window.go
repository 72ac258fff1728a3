package rolling

import (
	"github.com/pkg/errors"
)

// RollingWindow aggregates samples in a ring of fixed-duration buckets.
type RollingWindow interface {
	Aggregation
	Add(val, dt float64)
	Advance(dt float64)
	// Timespan is the amount of virtual time the ring currently covers, in ms.
	Timespan() float64
	Reduce(f func(iterator Iterator) float64) float64
}

type RollingWindowOpts struct {
	Size           int
	BucketDuration float64
}

type rollingWindow struct {
	policy *Policy
}

func NewRollingWindow(opts RollingWindowOpts) (RollingWindow, error) {
	if opts.Size <= 0 {
		return nil, errors.Errorf("rolling: window size must be positive, got %d", opts.Size)
	}
	if err := checkWindow(opts.BucketDuration); err != nil {
		return nil, errors.Wrap(err, "bucket duration")
	}

	window := NewWindow(WindowOpts{Size: opts.Size})
	p := NewPolicy(window, PolicyOpts{BucketDuration: opts.BucketDuration})
	return &rollingWindow{policy: p}, nil
}

func (w *rollingWindow) Add(val, dt float64) {
	if val < 0 {
		w.policy.Advance(dt)
		return
	}
	w.policy.Add(val, dt)
}

func (w *rollingWindow) Advance(dt float64) {
	w.policy.Advance(dt)
}

func (w *rollingWindow) Timespan() float64 {
	return w.policy.timespan()
}

func (w *rollingWindow) Reduce(f func(iterator Iterator) float64) float64 {
	return w.policy.Reduce(f)
}

func (w *rollingWindow) Avg() float64 {
	return w.policy.Reduce(Avg)
}

func (w *rollingWindow) Min() float64 {
	return w.policy.Reduce(Min)
}

func (w *rollingWindow) Max() float64 {
	return w.policy.Reduce(Max)
}

func (w *rollingWindow) Sum() float64 {
	return w.policy.Reduce(Sum)
}

func (w *rollingWindow) Count() float64 {
	return w.policy.Reduce(Count)
}
