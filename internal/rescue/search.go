// internal/rescue/search.go
//
// Search engine: one pass over one region.
//
// A pass shuffles every cell of the region's grid and inspects the first
// floor(cells * effectiveness) of them. The target is found iff it sits in
// this region on one of the inspected cells.

package rescue

import (
	"errors"
	"math"
	"math/rand"
)

// Outcome of a single search pass.
type Outcome string

const (
	Found    Outcome = "found"
	NotFound Outcome = "not_found"
)

// Hideout answers "is the target here?" without revealing where it is.
// *Target implements it.
type Hideout interface {
	Occupies(region int, c Cell) bool
}

// SearchResult is what one pass produced.
type SearchResult struct {
	Region    int
	Outcome   Outcome
	Inspected []Cell
}

// Conduct runs one search pass over region (index 0..2) with the given
// effectiveness. An effectiveness outside [0,1] is rejected.
func Conduct(rng *rand.Rand, h Hideout, region int, grid Region, effectiveness float64) (SearchResult, error) {
	if err := checkEffectiveness(region, effectiveness); err != nil {
		return SearchResult{}, err
	}
	if !validIndex(region) {
		return SearchResult{}, errors.New("rescue: region index out of range")
	}
	if err := grid.Validate(); err != nil {
		return SearchResult{}, err
	}

	cells := make([]Cell, 0, grid.Cells())
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	n := int(math.Floor(float64(len(cells)) * effectiveness))
	inspected := cells[:n]

	res := SearchResult{Region: region, Outcome: NotFound, Inspected: inspected}
	for _, c := range inspected {
		if h.Occupies(region, c) {
			res.Outcome = Found
			break
		}
	}
	return res, nil
}

// Coverage is the fraction of grid inspected by the union of passes.
// Passes over other regions are ignored.
func Coverage(grid Region, region int, passes ...SearchResult) float64 {
	total := grid.Cells()
	if total == 0 {
		return 0
	}
	seen := make(map[Cell]struct{}, total)
	for _, p := range passes {
		if p.Region != region {
			continue
		}
		for _, c := range p.Inspected {
			seen[c] = struct{}{}
		}
	}
	return float64(len(seen)) / float64(total)
}
