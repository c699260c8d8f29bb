package envelope

// SelectBundle picks at most maxCount of total items spread evenly by
// index, first and last included. It returns the chosen indices.
func SelectBundle(total, maxCount int) []int {
	if total <= 0 || maxCount <= 0 {
		return nil
	}
	draw := maxCount
	if draw > total {
		draw = total
	}
	idx := make([]int, draw)
	if draw == total {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	den := draw - 1
	if den < 1 {
		den = 1
	}
	for n := range idx {
		idx[n] = n * (total - 1) / den
	}
	return idx
}
