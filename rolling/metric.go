package rolling

// RollingCounter smooths a stream of raw samples. dt is the time elapsed since
// the previous Update, in milliseconds.
type RollingCounter interface {
	Update(raw, dt float64)
	Current() float64
	Window() float64
}

type Aggregation interface {
	Min() float64
	Max() float64
	Avg() float64
	Sum() float64
	Count() float64
}
