package rolling

func Sum(iterator Iterator) float64 {
	res := 0.0
	for iterator.Next() {
		res += iterator.Bucket().Sum
	}
	return res
}

func Avg(iterator Iterator) float64 {
	res := 0.0
	var count int64
	for iterator.Next() {
		b := iterator.Bucket()
		res += b.Sum
		count += b.Count
	}

	if count == 0 {
		return 0
	}
	return res / float64(count)
}

// Min and Max skip empty buckets and report 0 when every bucket is empty.
func Min(iterator Iterator) float64 {
	res, seen := 0.0, false
	for iterator.Next() {
		b := iterator.Bucket()
		if b.Count == 0 {
			continue
		}
		if !seen || b.Min < res {
			res, seen = b.Min, true
		}
	}
	return res
}

func Max(iterator Iterator) float64 {
	res, seen := 0.0, false
	for iterator.Next() {
		b := iterator.Bucket()
		if b.Count == 0 {
			continue
		}
		if !seen || b.Max > res {
			res, seen = b.Max, true
		}
	}
	return res
}

func Count(iterator Iterator) float64 {
	var res int64
	for iterator.Next() {
		res += iterator.Bucket().Count
	}
	return float64(res)
}
