package overlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFrameTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.7, "0.7ms"},
		{0, "0.0ms"},
		{12.0, "12ms"},
		{16.4, "16ms"},
		{1500, "1,500ms"},
		{math.Inf(1), "9,223,372,036,854,775,807ms"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFrameTime(tt.in), "in %v", tt.in)
	}
}

func TestFormatFPS(t *testing.T) {
	assert.Equal(t, "1,234fps", FormatFPS(1234.0))
	assert.Equal(t, "60fps", FormatFPS(59.6))
	assert.Equal(t, "0fps", FormatFPS(-3))
	assert.Equal(t, "9,223,372,036,854,775,807fps", FormatFPS(1e300))
}
