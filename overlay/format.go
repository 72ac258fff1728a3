package overlay

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatFrameTime keeps one decimal below a millisecond, none above.
func FormatFrameTime(ms float64) string {
	if !(ms > 0) {
		ms = 0
	}
	if ms < 1 {
		return printer.Sprintf("%.1fms", ms)
	}
	return printer.Sprintf("%dms", round(ms))
}

func FormatFPS(fps float64) string {
	if !(fps > 0) {
		fps = 0
	}
	return printer.Sprintf("%dfps", round(fps))
}

// round saturates at MaxInt64 where the conversion would be undefined.
func round(v float64) int64 {
	r := math.Round(v)
	if r >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(r)
}
