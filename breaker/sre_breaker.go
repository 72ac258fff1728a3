package breaker

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"

	"perfoverlay/rolling"
)

// rejection probability p = max(0, (requests - k*accepts) / (requests + 1))
type sre struct {
	clock clockwork.Clock

	mu   sync.Mutex
	stat rolling.RollingWindow
	last time.Time
	r    *rand.Rand

	k       float64
	request int64
	state   atomic.Int32
}

func newSre(c *Config) *sre {
	stat, err := rolling.NewRollingWindow(rolling.RollingWindowOpts{
		Size:           c.Bucket,
		BucketDuration: float64(c.Window) / float64(c.Bucket) / float64(time.Millisecond),
	})
	if err != nil {
		panic(err)
	}

	s := &sre{
		clock:   c.Clock,
		stat:    stat,
		last:    c.Clock.Now(),
		r:       rand.New(rand.NewSource(c.Clock.Now().UnixNano())),
		k:       c.K,
		request: c.Request,
	}
	s.state.Store(StateClosed)
	return s
}

// elapsed returns the ms since the previous call. Caller holds mu.
func (s *sre) elapsed() float64 {
	now := s.clock.Now()
	dt := float64(now.Sub(s.last)) / float64(time.Millisecond)
	s.last = now
	return dt
}

func (s *sre) summary() (success, total int64) {
	s.stat.Advance(s.elapsed())
	s.stat.Reduce(func(it rolling.Iterator) float64 {
		for it.Next() {
			b := it.Bucket()
			total += b.Count
			success += int64(b.Sum)
		}
		return 0
	})
	return
}

func (s *sre) Allow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	success, total := s.summary()
	k := float64(success) * s.k

	if total < s.request || float64(total) < k {
		s.state.CompareAndSwap(StateOpen, StateClosed)
		return nil
	}
	s.state.CompareAndSwap(StateClosed, StateOpen)

	p := math.Max(0, (float64(total)-k)/float64(total+1))
	if s.r.Float64() < p {
		return ErrNotAllowed
	}
	return nil
}

func (s *sre) MarkSuccess() {
	s.mark(1)
}

// failures count toward the total but add nothing to the accepted sum
func (s *sre) MarkFailed() {
	s.mark(0)
}

func (s *sre) mark(v float64) {
	s.mu.Lock()
	s.stat.Add(v, s.elapsed())
	s.mu.Unlock()
}

func (s *sre) State() int32 {
	return s.state.Load()
}
