package rescue

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-9

func assertSimplex(t *testing.T, b Belief) {
	t.Helper()
	for i, p := range b {
		if math.IsNaN(p) || p < 0 || p > 1 {
			t.Fatalf("component %d invalid: %v (belief %v)", i, p, b)
		}
	}
	if math.Abs(b.Sum()-1) > tol {
		t.Fatalf("belief %v sums to %v", b, b.Sum())
	}
}

func assertClose(t *testing.T, got, want [NumRegions]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func capePython(t *testing.T) TransitionMatrix {
	t.Helper()
	m, err := NewTransitionMatrix([NumRegions][NumRegions]float64{
		{0.8, 0.2, 0.0},
		{0.1, 0.7, 0.2},
		{0.0, 0.1, 0.9},
	})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	return m
}

func TestNewBeliefIsOnSimplex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		assertSimplex(t, NewBelief(rng))
	}
}

func TestNewBeliefDeterministicForSeed(t *testing.T) {
	a := NewBelief(rand.New(rand.NewSource(42)))
	b := NewBelief(rand.New(rand.NewSource(42)))
	if a != b {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
}

func TestPropagateKeepsSimplex(t *testing.T) {
	m := capePython(t)
	rng := rand.New(rand.NewSource(7))
	b := NewBelief(rng)
	for i := 0; i < 200; i++ {
		b = mustPropagate(t, b, m)
		assertSimplex(t, b)
	}
}

func TestPropagateKnownValue(t *testing.T) {
	m := capePython(t)
	got := mustPropagate(t, Belief{1, 0, 0}, m)
	assertClose(t, got, [NumRegions]float64{0.8, 0.2, 0})

	got = mustPropagate(t, Belief{0.5, 0.3, 0.2}, m)
	// 0.5*0.8+0.3*0.1, 0.5*0.2+0.3*0.7+0.2*0.1, 0.3*0.2+0.2*0.9
	assertClose(t, got, [NumRegions]float64{0.43, 0.33, 0.24})
}

func TestPropagateIsLinear(t *testing.T) {
	m := capePython(t)
	b1 := [NumRegions]float64{0.7, 2.5, 0.1}
	b2 := [NumRegions]float64{1.2, 0.0, 3.3}
	var sum [NumRegions]float64
	for i := range sum {
		sum[i] = b1[i] + b2[i]
	}
	left := m.apply(sum)
	r1, r2 := m.apply(b1), m.apply(b2)
	assertClose(t, left, [NumRegions]float64{r1[0] + r2[0], r1[1] + r2[1], r1[2] + r2[2]})
}

func TestPropagateIdentityIsNoOp(t *testing.T) {
	b := Belief{0.5, 0.3, 0.2}
	assertClose(t, mustPropagate(t, b, Identity), b)
}

func TestPropagateRejectsUnnormalizedMatrix(t *testing.T) {
	b := Belief{0.5, 0.3, 0.2}
	for _, m := range []TransitionMatrix{
		{},
		{{1, 0, 0}, {0, 2, 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, 1, 0}, {-0.5, 0.5, 1}},
	} {
		got, err := b.Propagate(m)
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("Propagate(%v) err = %v", m, err)
		}
		if got != b {
			t.Fatalf("belief changed on error: %v", got)
		}
	}
}

func mustPropagate(t *testing.T, b Belief, m TransitionMatrix) Belief {
	t.Helper()
	out, err := b.Propagate(m)
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	return out
}

func TestReviseUniformEffectivenessKeepsRatios(t *testing.T) {
	b := Belief{0.5, 0.3, 0.2}
	got, err := b.Revise(Effectiveness{0.5, 0.5, 0.5})
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	assertClose(t, got, b)
}

func TestRevisePerfectSearchOfRegionOne(t *testing.T) {
	got, err := Belief{0.5, 0.3, 0.2}.Revise(Effectiveness{1, 0, 0})
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	assertClose(t, got, [NumRegions]float64{0, 0.6, 0.4})
}

func TestReviseUnsearchedRegionsKeepRelativeMass(t *testing.T) {
	b := Belief{0.2, 0.5, 0.3}
	got, err := b.Revise(Effectiveness{0, 0.8, 0})
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	assertSimplex(t, got)
	if math.Abs(got[0]/got[2]-b[0]/b[2]) > tol {
		t.Fatalf("unsearched ratio changed: %v -> %v", b, got)
	}
	if got[1] >= b[1] {
		t.Fatalf("searched region should lose mass: %v -> %v", b, got)
	}
}

func TestReviseZeroDenominatorStaysFinite(t *testing.T) {
	// All mass on a perfectly searched region.
	got, err := Belief{1, 0, 0}.Revise(Effectiveness{1, 0.3, 0})
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	assertSimplex(t, got)
	if got[0] != 0 {
		t.Fatalf("perfectly searched region kept mass: %v", got)
	}
	assertClose(t, got, [NumRegions]float64{0, 0.5, 0.5})

	// Every region perfectly searched.
	got, err = Belief{0.5, 0.3, 0.2}.Revise(Effectiveness{1, 1, 1})
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	assertSimplex(t, got)
}

func TestReviseRejectsBadEffectiveness(t *testing.T) {
	b := Belief{0.5, 0.3, 0.2}
	for _, e := range []Effectiveness{{-0.1, 0, 0}, {0, 1.5, 0}, {0, 0, math.NaN()}} {
		got, err := b.Revise(e)
		if !errors.Is(err, ErrInvalidEffectiveness) {
			t.Fatalf("Revise(%v) err = %v", e, err)
		}
		if got != b {
			t.Fatalf("belief changed on error: %v", got)
		}
	}
}

func TestReviseRandomizedKeepsSimplex(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	m := capePython(t)
	b := NewBelief(rng)
	for i := 0; i < 500; i++ {
		b = mustPropagate(t, b, m)
		var e Effectiveness
		for j := range e {
			if rng.Intn(3) > 0 {
				e[j] = rng.Float64()
			}
		}
		var err error
		if b, err = b.Revise(e); err != nil {
			t.Fatalf("revise: %v", err)
		}
		assertSimplex(t, b)
	}
}
