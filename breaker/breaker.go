// Package breaker sheds publish attempts against a sink that keeps failing,
// using the client side throttling from the Google SRE book.
package breaker

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
)

var ErrNotAllowed = errors.New("breaker: request rejected")

type Breaker interface {
	Allow() error
	// MarkSuccess or MarkFailed must follow every allowed call.
	MarkSuccess()
	MarkFailed()
}

type Config struct {
	// K is the multiplier on accepted requests; lower is more aggressive.
	K float64

	Window  time.Duration
	Bucket  int
	Request int64 // below this many requests per window the breaker stays closed

	Clock clockwork.Clock
}

func (c *Config) fix() {
	if c.K == 0 {
		c.K = 1.5
	}
	if c.Request == 0 {
		c.Request = 100
	}
	if c.Bucket == 0 {
		c.Bucket = 10
	}
	if c.Window == 0 {
		c.Window = 3 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

const (
	StateOpen = iota
	StateClosed
)

func New(c Config) Breaker {
	c.fix()
	return newSre(&c)
}
