package rolling

// Iterator walks Count buckets of a Window, oldest first.
type Iterator struct {
	Count         int
	iteratedCount int
	cur           *Bucket
}

func (i *Iterator) Next() bool {
	return i.iteratedCount < i.Count
}

func (i *Iterator) Bucket() Bucket {
	if !i.Next() {
		panic("rolling: iterator exhausted")
	}

	bucket := *i.cur
	i.iteratedCount++
	i.cur = i.cur.next
	return bucket
}
