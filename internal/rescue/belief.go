// internal/rescue/belief.go
//
// Observer belief over the target's region.
//
// The belief only ever learns about the target through failed searches.
// It drifts with the same matrix as the target but never consults the
// target itself; the two evolve as separate random experiments.

package rescue

import (
	"math"
	"math/rand"
)

// revisionEpsilon replaces a zero denominator in Revise.
const revisionEpsilon = 1e-10

// Belief is a point on the probability simplex: (p1, p2, p3).
type Belief [NumRegions]float64

// NewBelief draws three uniform(0,1) values and normalizes them.
// The result is not uniform over the simplex; it leans towards balanced
// beliefs. That bias is part of the game and is kept as is.
func NewBelief(rng *rand.Rand) Belief {
	var raw [NumRegions]float64
	for i := range raw {
		raw[i] = rng.Float64()
	}
	return Belief(normalize(raw, uniformWeights()))
}

// Values returns the triple for display.
func (b Belief) Values() [NumRegions]float64 { return b }

// Sum returns p1+p2+p3.
func (b Belief) Sum() float64 { return b[0] + b[1] + b[2] }

// Propagate applies one round of passive drift: b·M.
// m must be row-stochastic; anything else is a ConfigurationError and b is
// returned unchanged.
func (b Belief) Propagate(m TransitionMatrix) (Belief, error) {
	if err := m.Validate(); err != nil {
		return b, err
	}
	return Belief(normalize(m.apply(b), uniformWeights())), nil
}

// Revise conditions the belief on "every search this round failed".
// e holds the realized effectiveness per region; regions that were not
// searched must carry 0, which leaves their mass unscaled.
func (b Belief) Revise(e Effectiveness) (Belief, error) {
	if err := e.Validate(); err != nil {
		return b, err
	}
	denom := 0.0
	for i := range b {
		denom += b[i] * (1 - e[i])
	}
	if denom == 0 {
		denom = revisionEpsilon
	}
	var post [NumRegions]float64
	for i := range b {
		post[i] = b[i] * (1 - e[i]) / denom
	}
	return Belief(normalize(post, unsearchedWeights(e))), nil
}

// normalize scales v to sum to one. Negative or NaN components are treated
// as zero. When nothing is left, fallback is used instead.
func normalize(v, fallback [NumRegions]float64) [NumRegions]float64 {
	total := 0.0
	for i, x := range v {
		if math.IsNaN(x) || x < 0 {
			v[i] = 0
			continue
		}
		total += x
	}
	if total <= 0 || math.IsInf(total, 0) {
		if fallback == v {
			return uniformWeights()
		}
		return normalize(fallback, uniformWeights())
	}
	for i := range v {
		v[i] /= total
	}
	return v
}

func uniformWeights() [NumRegions]float64 {
	return [NumRegions]float64{1, 1, 1}
}

// unsearchedWeights spreads mass over regions that were not perfectly
// searched. Used when the evidence wipes out the whole prior.
func unsearchedWeights(e Effectiveness) [NumRegions]float64 {
	var w [NumRegions]float64
	for i, x := range e {
		if x < 1 {
			w[i] = 1
		}
	}
	return w
}
