package rescue

import "math/rand"

// choose draws an index with probability proportional to weights.
// Weights must be non-negative with a positive sum; rounding that runs past
// the last bucket lands on the last index carrying weight.
func choose(rng *rand.Rand, weights [NumRegions]float64) int {
	total := 0.0
	last := 0
	for i, w := range weights {
		total += w
		if w > 0 {
			last = i
		}
	}
	u := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if u < acc {
			return i
		}
	}
	return last
}

// uniformCell picks a cell uniformly over r's grid.
func uniformCell(rng *rand.Rand, r Region) Cell {
	return Cell{X: rng.Intn(r.Width), Y: rng.Intn(r.Height)}
}
