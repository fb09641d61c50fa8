package stats

import (
	"math"
	"testing"
)

func TestGini_UniformValues(t *testing.T) {
	g := Gini([]float64{3, 3, 3, 3})
	if math.Abs(g) > 1e-3 {
		t.Errorf("equal values should give near-zero Gini, got %v", g)
	}
}

func TestGini_ConcentratedValues(t *testing.T) {
	g := Gini([]float64{0, 0, 0, 1})
	if math.Abs(g-0.75) > 1e-3 {
		t.Errorf("Gini = %v, want about 0.75", g)
	}
}

func TestGini_ShiftsNegatives(t *testing.T) {
	shifted := Gini([]float64{-1, 0, 1, 2})
	if math.IsNaN(shifted) || shifted < 0 || shifted > 1 {
		t.Errorf("Gini with negatives should stay in [0,1], got %v", shifted)
	}
}

func TestGini_Empty(t *testing.T) {
	if g := Gini(nil); !math.IsNaN(g) {
		t.Errorf("empty input should give NaN, got %v", g)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	cv := CoefficientOfVariation([]float64{2, 4, 6})
	want := math.Sqrt(8.0/3.0) / 4
	if math.Abs(cv-want) > 1e-12 {
		t.Errorf("cv = %v, want %v", cv, want)
	}
}

func TestCoefficientOfVariation_ZeroMean(t *testing.T) {
	if cv := CoefficientOfVariation([]float64{-1, 1}); !math.IsNaN(cv) {
		t.Errorf("zero mean should give NaN, got %v", cv)
	}
}
