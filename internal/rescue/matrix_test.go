package rescue

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeRows(t *testing.T) {
	m, err := NewTransitionMatrix([NumRegions][NumRegions]float64{
		{8, 2, 0},
		{1, 7, 2},
		{0, 0, 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, m[0], [NumRegions]float64{0.8, 0.2, 0})
	assertClose(t, m[1], [NumRegions]float64{0.1, 0.7, 0.2})
	assertClose(t, m[2], [NumRegions]float64{0, 0, 1})
}

func TestNormalizeIdempotent(t *testing.T) {
	once, err := NewTransitionMatrix([NumRegions][NumRegions]float64{
		{3, 1, 1},
		{0.2, 0.2, 0.7},
		{1e-3, 5, 9},
	})
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	twice, err := once.Normalize()
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	for i := range once {
		assertClose(t, once[i], twice[i])
		sum := once[i][0] + once[i][1] + once[i][2]
		if math.Abs(sum-1) > tol {
			t.Fatalf("row %d sums to %v", i, sum)
		}
	}
}

func TestNormalizeRejectsDeadRow(t *testing.T) {
	_, err := NewTransitionMatrix([NumRegions][NumRegions]float64{
		{1, 0, 0},
		{0, 0, 0},
		{0, 0, 1},
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "drift[1]" {
		t.Fatalf("expected drift[1] error, got %#v", err)
	}
}

func TestNormalizeRejectsNegativeAndNaN(t *testing.T) {
	for _, rows := range [][NumRegions][NumRegions]float64{
		{{1, -1, 1}, {0, 1, 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, math.NaN(), 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, 1, 0}, {math.Inf(1), 0, 1}},
	} {
		if _, err := NewTransitionMatrix(rows); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("rows %v: expected configuration error, got %v", rows, err)
		}
	}
}

func TestRegionsValidate(t *testing.T) {
	good := Regions{
		{Width: 50, Height: 50, MinEffectiveness: 0.2, MaxEffectiveness: 0.4},
		{Width: 50, Height: 50, MinEffectiveness: 0.7, MaxEffectiveness: 0.9},
		{Width: 50, Height: 50, MinEffectiveness: 0.4, MaxEffectiveness: 0.6},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid regions rejected: %v", err)
	}

	bad := good
	bad[1].Width = 0
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("zero width accepted: %v", err)
	}
	bad = good
	bad[2].MinEffectiveness, bad[2].MaxEffectiveness = 0.8, 0.3
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("inverted range accepted: %v", err)
	}
	bad = good
	bad[0].MaxEffectiveness = 1.2
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("range above 1 accepted: %v", err)
	}
}
