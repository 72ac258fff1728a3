package rolling

import (
	"math"

	"github.com/pkg/errors"
)

var ErrInvalidWindow = errors.New("rolling: window must be positive and finite")

const defaultMaxSamples = 4096

type RollingCounterOpts struct {
	// Window is the smoothing horizon in milliseconds.
	Window float64
	// MaxSamples caps the samples a sliding mean retains. Ignored by EWMA.
	MaxSamples int
}

func checkWindow(window float64) error {
	if !(window > 0) || math.IsInf(window, 1) {
		return errors.Wrapf(ErrInvalidWindow, "got %v", window)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// sample reports whether raw may enter a counter. Negative readings are
// dropped the same way non-finite ones are.
func sample(raw float64) bool {
	return finite(raw) && raw >= 0
}

// ewma is a continuous-time exponential moving average whose time constant
// equals the window: a step moves the value 1-1/e of the way in one window.
type ewma struct {
	window float64
	value  float64
}

func NewEWMA(opts RollingCounterOpts) (RollingCounter, error) {
	if err := checkWindow(opts.Window); err != nil {
		return nil, err
	}
	return &ewma{window: opts.Window}, nil
}

func MustEWMA(window float64) RollingCounter {
	c, err := NewEWMA(RollingCounterOpts{Window: window})
	if err != nil {
		panic(err)
	}
	return c
}

func (e *ewma) Update(raw, dt float64) {
	if !sample(raw) || !finite(dt) || dt <= 0 {
		return
	}

	// v = v*β + (1-β)*raw, β = exp(-dt/window)
	w := math.Exp(-dt / e.window)
	e.value = e.value*w + (1-w)*raw
}

func (e *ewma) Current() float64 {
	return e.value
}

func (e *ewma) Window() float64 {
	return e.window
}
