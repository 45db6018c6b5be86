// internal/rescue/target.go
//
// The hidden target. Its true position moves by the drift matrix, sampled
// independently from the belief's own propagation each round.
//
// Only two things may look inside a Target:
//   - the search engine, through the Occupies check;
//   - the end-of-game reveal (TrueRegion / TrueCell).

package rescue

import (
	"errors"
	"math/rand"
)

// Target is the true, hidden location.
type Target struct {
	regions Regions
	region  int
	cell    Cell
}

// Move records a region change produced by Step.
type Move struct {
	From int  // region index before the step
	To   int  // region index after the step
	Cell Cell // fresh cell in the new region
}

// PlaceTarget samples the starting region from b, then a uniform cell in it.
func PlaceTarget(rng *rand.Rand, b Belief, regions Regions) (*Target, error) {
	if err := regions.Validate(); err != nil {
		return nil, err
	}
	t := &Target{regions: regions, region: choose(rng, b)}
	t.cell = uniformCell(rng, regions[t.region])
	return t, nil
}

// NewTargetAt pins the target to a known position. Replays and tests use it.
func NewTargetAt(regions Regions, region int, cell Cell) (*Target, error) {
	if err := regions.Validate(); err != nil {
		return nil, err
	}
	if !validIndex(region) {
		return nil, errors.New("rescue: region index out of range")
	}
	if !regions[region].Contains(cell) {
		return nil, errors.New("rescue: cell outside region grid")
	}
	return &Target{regions: regions, region: region, cell: cell}, nil
}

// Step drifts the target one round.
// Leaving a region always lands on a fresh uniform cell; staying keeps the
// current cell. The Move is only reported when the region changed.
// A current row that is not a distribution is a ConfigurationError and the
// target does not move.
func (t *Target) Step(rng *rand.Rand, m TransitionMatrix) (Move, bool, error) {
	if err := m.validateRow(t.region); err != nil {
		return Move{}, false, err
	}
	next := choose(rng, m.Row(t.region))
	if next == t.region {
		return Move{}, false, nil
	}
	mv := Move{From: t.region, To: next}
	t.region = next
	t.cell = uniformCell(rng, t.regions[next])
	mv.Cell = t.cell
	return mv, true, nil
}

// Occupies reports whether the target sits at cell c of region.
func (t *Target) Occupies(region int, c Cell) bool {
	return t.region == region && t.cell == c
}

// TrueRegion reveals the region index. End of game only.
func (t *Target) TrueRegion() int { return t.region }

// TrueCell reveals the local cell. End of game only.
func (t *Target) TrueCell() Cell { return t.cell }
