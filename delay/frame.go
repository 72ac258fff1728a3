package delay

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FrameScheduler runs actions from the tick loop. Time only moves when the
// owner calls Advance, so it is deterministic and needs no locking.
type FrameScheduler struct {
	now   time.Duration
	seq   uint64
	tasks []*frameTask
}

type frameTask struct {
	id    uuid.UUID
	due   time.Duration
	seq   uint64
	fn    func()
	state state
}

func (t *frameTask) ID() uuid.UUID { return t.id }

func (t *frameTask) Cancel() bool {
	if t.state != statePending {
		return false
	}
	t.state = stateCancelled
	return true
}

func (t *frameTask) Done() bool { return t.state != statePending }

func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

func (s *FrameScheduler) Schedule(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &frameTask{
		id:  uuid.New(),
		due: s.now + d,
		seq: s.seq,
		fn:  fn,
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves time forward and runs every action that became due, in due
// order. Actions scheduled while running wait for the next Advance.
func (s *FrameScheduler) Advance(elapsed time.Duration) {
	if elapsed > 0 {
		s.now += elapsed
	}

	var due []*frameTask
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		switch {
		case t.state != statePending:
		case t.due <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		// an earlier action in this batch may have cancelled it
		if t.state != statePending {
			continue
		}
		t.state = stateFired
		t.fn()
	}
}

func (s *FrameScheduler) Now() time.Duration {
	return s.now
}

// Pending counts actions that are neither fired nor cancelled.
func (s *FrameScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if t.state == statePending {
			n++
		}
	}
	return n
}
