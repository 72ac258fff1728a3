package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfoverlay/attention"
	"perfoverlay/delay"
	"perfoverlay/rolling"
)

const frame = 16 * time.Millisecond

type fadeSink struct {
	reveals, conceals int
}

func (f *fadeSink) Reveal(time.Duration)  { f.reveals++ }
func (f *fadeSink) Conceal(time.Duration) { f.conceals++ }

func newOverlay(t *testing.T) (*Overlay, *delay.FrameScheduler, *fadeSink) {
	t.Helper()
	fs := delay.NewFrameScheduler()
	sink := &fadeSink{}
	o, err := New(fs, sink, Options{})
	require.NoError(t, err)
	return o, fs, sink
}

func run(o *Overlay, fs *delay.FrameScheduler, r Reading, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		fs.Advance(frame)
		o.Tick(r, frame)
	}
}

func TestOverlay_InitialCycle(t *testing.T) {
	o, fs, sink := newOverlay(t)
	assert.False(t, o.Visible())

	o.Start()
	assert.True(t, o.Visible())
	assert.Equal(t, 1, sink.reveals)

	fs.Advance(attention.DefaultQuietTimeout)
	assert.False(t, o.Visible())
	assert.Equal(t, 1, sink.conceals)
}

func TestOverlay_SettlesThenWakesOnSpike(t *testing.T) {
	o, fs, sink := newOverlay(t)
	o.Start()

	steady := Reading{FrameTime: 16, FPS: 60}
	run(o, fs, steady, 6*time.Second)
	assert.False(t, o.Visible())
	assert.InEpsilon(t, 16.0, o.FrameTime(), 0.01)
	assert.InEpsilon(t, 60.0, o.FPS(), 0.01)

	ft, fps := o.Labels()
	assert.Equal(t, "16ms", ft)
	assert.Equal(t, "60fps", fps)

	o.Tick(Reading{FrameTime: 250, FPS: 4}, frame)
	assert.True(t, o.Visible())
	assert.Equal(t, 2, sink.reveals)

	run(o, fs, steady, 10*time.Second)
	assert.False(t, o.Visible())
	assert.Equal(t, 2, sink.conceals)
}

func TestOverlay_Snapshot(t *testing.T) {
	o, fs, _ := newOverlay(t)
	o.Start()
	run(o, fs, Reading{FrameTime: 10, FPS: 100}, time.Second)
	o.Tick(Reading{FrameTime: 30, FPS: 30}, frame)

	snap := o.Snapshot()
	assert.True(t, snap.Visible)
	assert.Equal(t, DefaultTheme, snap.Theme)
	assert.Equal(t, FormatFrameTime(o.FrameTime()), snap.FrameTimeLabel)
	assert.Equal(t, FormatFPS(o.FPS()), snap.FPSLabel)
	assert.Equal(t, 10.0, snap.Stats.FrameTimeMin)
	assert.Equal(t, 30.0, snap.Stats.FrameTimeMax)
	assert.Equal(t, 30.0, snap.Stats.FPSMin)
	assert.Equal(t, 100.0, snap.Stats.FPSMax)
	assert.Equal(t, int64(65), snap.Stats.Samples)
	assert.Equal(t, uint64(65), snap.Tick)
}

func TestOverlay_RejectsInvalidWindows(t *testing.T) {
	_, err := New(delay.NewFrameScheduler(), &fadeSink{}, Options{FPSWindow: -1})
	assert.ErrorIs(t, err, rolling.ErrInvalidWindow)

	_, err = New(delay.NewFrameScheduler(), &fadeSink{}, Options{StatsBuckets: -2})
	assert.Error(t, err)
}

func TestOverlay_CustomThresholds(t *testing.T) {
	fs := delay.NewFrameScheduler()
	o, err := New(fs, &fadeSink{}, Options{FrameTimeThreshold: 1000, FPSThreshold: 1000})
	require.NoError(t, err)

	o.Tick(Reading{FrameTime: 500, FPS: 500}, frame)
	assert.False(t, o.Visible())

	o.SetThresholds(1, 1)
	o.Tick(Reading{FrameTime: 500, FPS: 500}, frame)
	assert.True(t, o.Visible())
}

func TestOverlay_MeanSmoothing(t *testing.T) {
	fs := delay.NewFrameScheduler()
	sink := &fadeSink{}
	o, err := New(fs, sink, Options{Smoothing: SmoothingMean})
	require.NoError(t, err)
	o.Start()

	steady := Reading{FrameTime: 16, FPS: 60}
	run(o, fs, steady, 6*time.Second)
	assert.False(t, o.Visible())
	assert.Equal(t, 16.0, o.FrameTime())
	assert.Equal(t, 60.0, o.FPS())

	// the mean only moves by a fraction of the jump, the gate still sees all of it
	o.Tick(Reading{FrameTime: 40, FPS: 60}, frame)
	assert.True(t, o.Visible())
	assert.Equal(t, 2, sink.reveals)
	assert.Less(t, o.FrameTime(), 17.0)

	run(o, fs, steady, 4*time.Second)
	assert.False(t, o.Visible())
	assert.Equal(t, 16.0, o.FrameTime())
}

func TestOverlay_UnknownSmoothing(t *testing.T) {
	_, err := New(delay.NewFrameScheduler(), &fadeSink{}, Options{Smoothing: "median"})
	assert.ErrorIs(t, err, ErrUnknownSmoothing)
}
