// internal/rescue/matrix.go
//
// Markov drift matrix. M[i][j] = P(region j next round | region i now).
// Rows may be supplied in any positive scale; they are normalized once at
// construction and the value is never mutated afterwards.

package rescue

import (
	"fmt"
	"math"
)

// TransitionMatrix is a 3x3 row-stochastic matrix.
type TransitionMatrix [NumRegions][NumRegions]float64

// Identity is the no-drift matrix.
var Identity = TransitionMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// NewTransitionMatrix row-normalizes rows and returns the result.
func NewTransitionMatrix(rows [NumRegions][NumRegions]float64) (TransitionMatrix, error) {
	return TransitionMatrix(rows).Normalize()
}

// Normalize divides each row by its own sum.
// A row with a negative or non-finite entry, or a row summing to zero
// (no transition at all, not even staying put), is a ConfigurationError.
func (m TransitionMatrix) Normalize() (TransitionMatrix, error) {
	var out TransitionMatrix
	for i, row := range m {
		field := fmt.Sprintf("drift[%d]", i)
		sum := 0.0
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return TransitionMatrix{}, configErr(field, "entry %d is %v", j, v)
			}
			sum += v
		}
		if sum <= 0 {
			return TransitionMatrix{}, configErr(field, "row sums to %v", sum)
		}
		for j, v := range row {
			out[i][j] = v / sum
		}
	}
	return out, nil
}

// rowTolerance bounds how far a row sum may sit from one after Normalize.
const rowTolerance = 1e-9

// Validate reports whether m is row-stochastic. A matrix built without
// NewTransitionMatrix must pass this before it drives belief or target.
func (m TransitionMatrix) Validate() error {
	for i := range m {
		if err := m.validateRow(i); err != nil {
			return err
		}
	}
	return nil
}

func (m TransitionMatrix) validateRow(i int) error {
	field := fmt.Sprintf("drift[%d]", i)
	sum := 0.0
	for j, v := range m[i] {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return configErr(field, "entry %d is %v", j, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > rowTolerance {
		return configErr(field, "row sums to %v, want 1", sum)
	}
	return nil
}

// Row returns the outgoing distribution for region i.
func (m TransitionMatrix) Row(i int) [NumRegions]float64 { return m[i] }

// apply computes v·M without normalizing, so it stays linear in v.
func (m TransitionMatrix) apply(v [NumRegions]float64) [NumRegions]float64 {
	var out [NumRegions]float64
	for i := 0; i < NumRegions; i++ {
		for j := 0; j < NumRegions; j++ {
			out[j] += v[i] * m[i][j]
		}
	}
	return out
}
