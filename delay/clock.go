package delay

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ClockScheduler runs actions on timer goroutines of a clockwork.Clock.
type ClockScheduler struct {
	clock clockwork.Clock
}

type clockTask struct {
	id uuid.UUID

	mu    sync.Mutex
	state state
	timer clockwork.Timer
}

func NewClockScheduler(clock clockwork.Clock) *ClockScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClockScheduler{clock: clock}
}

func (s *ClockScheduler) Schedule(d time.Duration, fn func()) Handle {
	t := &clockTask{id: uuid.New()}

	// hold the lock so a zero delay cannot fire before timer is assigned
	t.mu.Lock()
	t.timer = s.clock.AfterFunc(d, func() {
		t.mu.Lock()
		if t.state != statePending {
			t.mu.Unlock()
			return
		}
		t.state = stateFired
		t.mu.Unlock()

		fn()
	})
	t.mu.Unlock()
	return t
}

func (t *clockTask) ID() uuid.UUID { return t.id }

func (t *clockTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != statePending {
		return false
	}
	t.state = stateCancelled
	t.timer.Stop()
	return true
}

func (t *clockTask) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != statePending
}
