package sink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"perfoverlay/overlay"
)

func TestConsole_Fades(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewConsole(zap.New(core))

	c.Reveal(300 * time.Millisecond)
	assert.Equal(t, 1.0, c.Opacity())
	c.Conceal(time.Second)
	assert.Equal(t, 0.0, c.Opacity())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "overlay shown", entries[0].Message)
	assert.Equal(t, "overlay hidden", entries[1].Message)
	assert.Equal(t, time.Second, entries[1].ContextMap()["fade"])
}

func TestConsole_PublishesOnlyVisibleFrames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewConsole(zap.New(core))
	ctx := context.Background()

	require.NoError(t, c.Publish(ctx, overlay.Snapshot{FrameTimeLabel: "16ms", FPSLabel: "60fps"}))
	assert.Zero(t, logs.Len())

	require.NoError(t, c.Publish(ctx, overlay.Snapshot{
		FrameTime:      16.6,
		FPS:            60,
		FrameTimeLabel: "17ms",
		FPSLabel:       "60fps",
		Visible:        true,
	}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "17ms 60fps", logs.All()[0].Message)
}
