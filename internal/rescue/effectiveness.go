package rescue

import (
	"math"
	"math/rand"
)

// Effectiveness is the fraction of each region covered by this round's
// search (search effectiveness probability). A region that is not searched
// in a round carries 0.
type Effectiveness [NumRegions]float64

// SampleEffectiveness draws uniform(min, max) for every region.
// Called exactly once per round; it never looks at belief or target.
func SampleEffectiveness(rng *rand.Rand, regions Regions) Effectiveness {
	var e Effectiveness
	for i, r := range regions {
		e[i] = r.MinEffectiveness + rng.Float64()*(r.MaxEffectiveness-r.MinEffectiveness)
	}
	return e
}

// Validate reports the first component outside [0,1].
func (e Effectiveness) Validate() error {
	for i, x := range e {
		if err := checkEffectiveness(i, x); err != nil {
			return err
		}
	}
	return nil
}

func checkEffectiveness(region int, x float64) error {
	if math.IsNaN(x) || x < 0 || x > 1 {
		return &InvalidEffectivenessError{Region: region, Value: x}
	}
	return nil
}
