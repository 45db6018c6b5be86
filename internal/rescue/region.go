// internal/rescue/region.go
//
// Search regions. A region is only a cell grid plus a difficulty range;
// where it sits on a map is somebody else's problem.

package rescue

import (
	"fmt"
	"math"
)

// NumRegions is fixed: the engine works over exactly three search areas.
const NumRegions = 3

// Cell is a local grid coordinate inside one region.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region describes one search area.
type Region struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	MinEffectiveness float64 `json:"minEffectiveness"`
	MaxEffectiveness float64 `json:"maxEffectiveness"`
}

// Cells returns the number of cells in the region's grid.
func (r Region) Cells() int { return r.Width * r.Height }

// Contains reports whether c lies inside the grid.
func (r Region) Contains(c Cell) bool {
	return c.X >= 0 && c.X < r.Width && c.Y >= 0 && c.Y < r.Height
}

// Validate checks geometry and the difficulty range.
func (r Region) Validate() error { return r.validate("region") }

func (r Region) validate(field string) error {
	if r.Width <= 0 || r.Height <= 0 {
		return configErr(field, "grid must be positive, got %dx%d", r.Width, r.Height)
	}
	lo, hi := r.MinEffectiveness, r.MaxEffectiveness
	if math.IsNaN(lo) || math.IsNaN(hi) || lo < 0 || hi > 1 {
		return configErr(field, "difficulty range [%v,%v] must lie within [0,1]", lo, hi)
	}
	if lo > hi {
		return configErr(field, "difficulty min %v exceeds max %v", lo, hi)
	}
	return nil
}

// Regions is the fixed, indexed set of search areas (index 0..2).
type Regions [NumRegions]Region

// Validate checks every region.
func (rs Regions) Validate() error {
	for i, r := range rs {
		if err := r.validate(fmt.Sprintf("regions[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func validIndex(i int) bool { return i >= 0 && i < NumRegions }
