// Package delay provides cancellable delayed actions.
//
// A Scheduler registers a callback to run after a delay and returns a Handle
// that can cancel it. Cancelling is idempotent: cancelling an action that has
// already run, or was already cancelled, is a no-op.
package delay

import (
	"time"

	"github.com/google/uuid"
)

type Handle interface {
	ID() uuid.UUID
	// Cancel stops the action if it has not started yet and reports whether it did.
	Cancel() bool
	// Done reports whether the action ran or was cancelled.
	Done() bool
}

type Scheduler interface {
	Schedule(d time.Duration, fn func()) Handle
}

type state int32

const (
	statePending state = iota
	stateFired
	stateCancelled
)
