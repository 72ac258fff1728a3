package rolling

import (
	"github.com/gammazero/deque"
)

type timedSample struct {
	at    float64
	value float64
}

// mean is the arithmetic mean of every sample no older than the window.
type mean struct {
	window     float64
	maxSamples int

	now     float64
	sum     float64
	samples deque.Deque[timedSample]
}

func NewMean(opts RollingCounterOpts) (RollingCounter, error) {
	if err := checkWindow(opts.Window); err != nil {
		return nil, err
	}
	maxSamples := opts.MaxSamples
	if maxSamples <= 0 {
		maxSamples = defaultMaxSamples
	}
	return &mean{window: opts.Window, maxSamples: maxSamples}, nil
}

func MustMean(window float64) RollingCounter {
	c, err := NewMean(RollingCounterOpts{Window: window})
	if err != nil {
		panic(err)
	}
	return c
}

// Update advances time even when raw is rejected so stale samples still age out.
func (m *mean) Update(raw, dt float64) {
	if !finite(dt) {
		return
	}
	if dt > 0 {
		m.now += dt
	}
	if sample(raw) {
		m.samples.PushBack(timedSample{at: m.now, value: raw})
		m.sum += raw
	}
	m.evict()
}

func (m *mean) evict() {
	for m.samples.Len() > 0 {
		oldest := m.samples.Front()
		if m.now-oldest.at <= m.window && m.samples.Len() <= m.maxSamples {
			break
		}
		m.samples.PopFront()
		m.sum -= oldest.value
	}
	if m.samples.Len() == 0 {
		m.sum = 0
		return
	}
	// subtracting what was added leaves rounding residue behind
	if m.sum < 0 || !finite(m.sum) {
		m.resum()
	}
}

func (m *mean) resum() {
	m.sum = 0
	for i := 0; i < m.samples.Len(); i++ {
		m.sum += m.samples.At(i).value
	}
}

func (m *mean) Current() float64 {
	n := m.samples.Len()
	if n == 0 || m.sum <= 0 {
		return 0
	}
	return m.sum / float64(n)
}

func (m *mean) Window() float64 {
	return m.window
}

func (m *mean) Len() int {
	return m.samples.Len()
}
