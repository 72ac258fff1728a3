package rolling

import (
	"math"
	"sync"
)

// Policy moves the write offset of a Window forward as virtual time passes.
// Time is whatever the caller reports through dt, never the wall clock.
type Policy struct {
	mu     sync.Mutex
	size   int
	window *Window
	offset int

	bucketDuration float64
	// ms spent in the current bucket
	elapsed float64
}

type PolicyOpts struct {
	BucketDuration float64
}

func NewPolicy(window *Window, opts PolicyOpts) *Policy {
	return &Policy{
		size:           window.Size(),
		window:         window,
		bucketDuration: opts.BucketDuration,
	}
}

// advance clears every bucket the elapsed time steps into, at most the whole ring.
func (p *Policy) advance(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}

	p.elapsed += dt
	span := math.Floor(p.elapsed / p.bucketDuration)
	if span < 1 {
		return
	}
	p.elapsed = math.Mod(p.elapsed, p.bucketDuration)

	// a full lap clears everything and lands on the same offset
	if span >= float64(p.size) {
		p.window.ResetWindow()
		return
	}
	for i := 0; i < int(span); i++ {
		p.offset++
		if p.offset == p.size {
			p.offset = 0
		}
		p.window.ResetBucket(p.offset)
	}
}

func (p *Policy) Advance(dt float64) {
	p.mu.Lock()
	p.advance(dt)
	p.mu.Unlock()
}

func (p *Policy) Add(val, dt float64) {
	p.mu.Lock()
	p.advance(dt)
	if finite(val) {
		p.window.Add(p.offset, val)
	}
	p.mu.Unlock()
}

// Reduce applies f to the whole ring starting at the oldest bucket.
func (p *Policy) Reduce(f func(iterator Iterator) float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	offset := p.offset + 1
	if offset == p.size {
		offset = 0
	}
	return f(p.window.Iterator(offset, p.size))
}

func (p *Policy) timespan() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.size-1)*p.bucketDuration + p.elapsed
}
