package systems

import "math/rand"

// clampInt clamps v between lo and hi.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// weightedIndex draws an index with probability proportional to its weight.
// Weights must be non-negative with a positive sum. Exactly one value is
// taken from rng.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}

	r := rng.Float64() * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i
		}
		r -= w
		last = i
	}
	// Rounding can leave r just above the final weight.
	return last
}
