package rolling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 16.0

func drive(c RollingCounter, raw float64, total float64) {
	for elapsed := 0.0; elapsed < total; elapsed += tick {
		c.Update(raw, tick)
	}
}

func TestEWMA_ConvergesFromColdStart(t *testing.T) {
	for _, window := range []float64{400, 1000} {
		c := MustEWMA(window)
		assert.Equal(t, 0.0, c.Current())

		drive(c, 60, 5*window)
		assert.InEpsilon(t, 60.0, c.Current(), 0.01, "window %v", window)
	}
}

func TestEWMA_StepResponseAfterOneWindow(t *testing.T) {
	const window = 400.0
	c := MustEWMA(window)
	drive(c, 60, 20*window)
	require.InEpsilon(t, 60.0, c.Current(), 0.001)

	for i := 0; i < int(window/tick); i++ {
		c.Update(30, tick)
	}

	want := 60 + 0.63*(30-60)
	assert.InEpsilon(t, want, c.Current(), 0.05)
}

func TestEWMA_RejectsInvalidWindow(t *testing.T) {
	for _, window := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewEWMA(RollingCounterOpts{Window: window})
		assert.ErrorIs(t, err, ErrInvalidWindow, "window %v", window)
	}
	assert.Panics(t, func() { MustEWMA(0) })
}

func TestEWMA_DiscardsInvalidSamples(t *testing.T) {
	c := MustEWMA(1000)
	drive(c, 16, 5000)
	before := c.Current()

	c.Update(math.NaN(), tick)
	c.Update(math.Inf(1), tick)
	c.Update(math.Inf(-1), tick)
	c.Update(-5, tick)
	c.Update(16, math.NaN())
	assert.Equal(t, before, c.Current())

	c.Update(16, tick)
	assert.False(t, math.IsNaN(c.Current()))
}

func TestEWMA_StableAcrossSpikes(t *testing.T) {
	c := MustEWMA(1000)
	c.Update(0, tick)
	c.Update(5000, 5000)
	c.Update(1e300, tick)
	c.Update(0, 1e9)

	v := c.Current()
	assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	assert.GreaterOrEqual(t, v, 0.0)
}

func TestEWMA_ZeroElapsedKeepsValue(t *testing.T) {
	c := MustEWMA(400)
	drive(c, 100, 2000)
	before := c.Current()

	c.Update(0, 0)
	c.Update(0, -10)
	assert.Equal(t, before, c.Current())
}
