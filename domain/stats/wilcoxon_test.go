package stats

import (
	"math"
	"testing"
)

func TestWilcoxonSignedRankGreater_AllPositive(t *testing.T) {
	p := WilcoxonSignedRankGreater([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	if p >= 0.05 {
		t.Errorf("uniformly positive differences should be significant, got p=%v", p)
	}
}

func TestWilcoxonSignedRankGreater_Symmetric(t *testing.T) {
	// positive and negative ranks cancel exactly, z=0
	p := WilcoxonSignedRankGreater([]float64{1, -1, 2, -2})
	if math.Abs(p-0.5) > 1e-12 {
		t.Errorf("symmetric differences should give p=0.5, got %v", p)
	}
}

func TestWilcoxonSignedRankGreater_AllNegative(t *testing.T) {
	p := WilcoxonSignedRankGreater([]float64{-1, -2, -3, -4, -5, -6, -7, -8})
	if p <= 0.95 {
		t.Errorf("uniformly negative differences should be far from significant, got p=%v", p)
	}
}

func TestWilcoxonSignedRankGreater_NothingSurvivesFiltering(t *testing.T) {
	cases := [][]float64{
		nil,
		{0, 0, 0},
		{math.NaN(), math.Inf(1), 0},
	}
	for _, diffs := range cases {
		if p := WilcoxonSignedRankGreater(diffs); p != 1 {
			t.Errorf("WilcoxonSignedRankGreater(%v) = %v, want 1", diffs, p)
		}
	}
}

func TestWilcoxonSignedRankGreater_IgnoresNonFinite(t *testing.T) {
	clean := WilcoxonSignedRankGreater([]float64{1, 2, 3, 4, 5})
	dirty := WilcoxonSignedRankGreater([]float64{1, 2, math.NaN(), 3, 4, math.Inf(-1), 5, 0})
	if math.Abs(clean-dirty) > 1e-12 {
		t.Errorf("non-finite and zero entries should be dropped: %v vs %v", clean, dirty)
	}
}

func TestRankAbsolute_Midranks(t *testing.T) {
	ranks, tieTerm := rankAbsolute([]float64{-1, 1, 2, -2})
	want := []float64{1.5, 1.5, 3.5, 3.5}
	for i := range want {
		if ranks[i] != want[i] {
			t.Errorf("ranks[%d] = %v, want %v", i, ranks[i], want[i])
		}
	}
	// two tie groups of size 2: 2*(2^3-2)
	if tieTerm != 12 {
		t.Errorf("tieTerm = %v, want 12", tieTerm)
	}
}
