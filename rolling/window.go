package rolling

// Bucket folds every sample of one time slice into constant space.
type Bucket struct {
	Sum   float64
	Count int64
	Min   float64
	Max   float64
	next  *Bucket
}

func (b *Bucket) Add(val float64) {
	if b.Count == 0 || val < b.Min {
		b.Min = val
	}
	if b.Count == 0 || val > b.Max {
		b.Max = val
	}
	b.Sum += val
	b.Count++
}

func (b *Bucket) Reset() {
	b.Sum = 0
	b.Count = 0
	b.Min = 0
	b.Max = 0
}

type Window struct {
	window []Bucket
	size   int
}

type WindowOpts struct {
	Size int
}

func NewWindow(opts WindowOpts) *Window {
	buckets := make([]Bucket, opts.Size)

	for i := 0; i < opts.Size; i++ {
		nextOffset := i + 1
		if nextOffset == opts.Size {
			nextOffset = 0
		}
		buckets[i].next = &buckets[nextOffset]
	}

	return &Window{window: buckets, size: opts.Size}
}

func (w *Window) ResetWindow() {
	for offset := range w.window {
		w.ResetBucket(offset)
	}
}

func (w *Window) ResetBucket(offset int) {
	w.window[offset].Reset()
}

func (w *Window) Add(offset int, val float64) {
	w.window[offset].Add(val)
}

func (w *Window) Bucket(offset int) Bucket {
	return w.window[offset]
}

func (w *Window) Size() int {
	return w.size
}

func (w *Window) Iterator(offset int, count int) Iterator {
	return Iterator{
		Count: count,
		cur:   &w.window[offset],
	}
}
