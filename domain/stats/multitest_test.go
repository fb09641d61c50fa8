package stats

import (
	"math"
	"math/rand"
	"testing"

	apperrors "github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

func TestBenjaminiHochberg_KnownCase(t *testing.T) {
	pvals := []float64{0.001, 0.01, 0.02, 0.5, 0.7}
	res, err := BenjaminiHochberg(0.05, pvals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantReject := []bool{true, true, true, false, false}
	for i, want := range wantReject {
		if res.Reject[i] != want {
			t.Errorf("Reject[%d] = %v, want %v", i, res.Reject[i], want)
		}
	}

	wantAdjusted := []float64{0.005, 0.025, 0.02 / 0.6, 0.625, 0.7}
	for i, want := range wantAdjusted {
		if math.Abs(res.Adjusted[i]-want) > 1e-12 {
			t.Errorf("Adjusted[%d] = %v, want %v", i, res.Adjusted[i], want)
		}
	}
}

func TestBenjaminiHochberg_MonotoneInAlpha(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pvals := make([]float64, 100)
	for i := range pvals {
		pvals[i] = rng.Float64()
	}
	// mix in some strong signals
	pvals[3], pvals[40], pvals[77] = 1e-6, 1e-4, 1e-3

	strict, err := BenjaminiHochberg(0.01, pvals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loose, err := BenjaminiHochberg(0.1, pvals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range pvals {
		if strict.Reject[i] && !loose.Reject[i] {
			t.Errorf("p=%v rejected at alpha 0.01 but not at 0.1", pvals[i])
		}
	}
}

func TestBenjaminiHochberg_UpwardClosedRejections(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pvals := make([]float64, 50)
	for i := range pvals {
		pvals[i] = rng.Float64() * rng.Float64()
	}

	res, err := BenjaminiHochberg(0.05, pvals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// if p_i is rejected, every p_j <= p_i must be rejected too
	for i := range pvals {
		if !res.Reject[i] {
			continue
		}
		for j := range pvals {
			if pvals[j] <= pvals[i] && !res.Reject[j] {
				t.Errorf("p=%v rejected but smaller p=%v was not", pvals[i], pvals[j])
			}
		}
	}
}

func TestBenjaminiHochberg_OrderInvariance(t *testing.T) {
	pvals := []float64{0.04, 0.001, 0.9, 0.02, 0.6, 0.0005}
	res, err := BenjaminiHochberg(0.05, pvals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	perm := []int{5, 2, 0, 3, 1, 4}
	shuffled := make([]float64, len(pvals))
	for dst, src := range perm {
		shuffled[dst] = pvals[src]
	}
	shufRes, err := BenjaminiHochberg(0.05, shuffled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for dst, src := range perm {
		if shufRes.Reject[dst] != res.Reject[src] {
			t.Errorf("reject decision for p=%v changed with input order", pvals[src])
		}
		if math.Abs(shufRes.Adjusted[dst]-res.Adjusted[src]) > 1e-15 {
			t.Errorf("adjusted value for p=%v changed with input order", pvals[src])
		}
	}
}

func TestBenjaminiHochberg_NaNCoercedToOne(t *testing.T) {
	res, err := BenjaminiHochberg(0.05, []float64{math.NaN(), 0.01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reject[0] {
		t.Error("NaN p-value must never be rejected")
	}
	if res.Adjusted[0] != 1 {
		t.Errorf("NaN p-value adjusted to %v, want 1", res.Adjusted[0])
	}
	if !res.Reject[1] {
		t.Error("p=0.01 should be rejected at alpha 0.05 with n=2")
	}
}

func TestBenjaminiHochberg_InvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		alpha float64
		pvals []float64
		code  string
	}{
		{"alpha zero", 0, []float64{0.1}, "INVALID_ALPHA"},
		{"alpha one", 1, []float64{0.1}, "INVALID_ALPHA"},
		{"alpha NaN", math.NaN(), []float64{0.1}, "INVALID_ALPHA"},
		{"empty pvals", 0.05, nil, "EMPTY_INPUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BenjaminiHochberg(tc.alpha, tc.pvals); apperrors.GetCode(err) != tc.code {
				t.Errorf("got error %v, want code %s", err, tc.code)
			}
			if _, err := Bonferroni(tc.alpha, tc.pvals); apperrors.GetCode(err) != tc.code {
				t.Errorf("bonferroni: got error %v, want code %s", err, tc.code)
			}
		})
	}
}

func TestBonferroni_AdjustedNotClipped(t *testing.T) {
	res, err := Bonferroni(0.05, []float64{0.001, 0.01, 0.02, 0.5, 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantAdjusted := []float64{0.005, 0.05, 0.1, 2.5, 3.5}
	for i, want := range wantAdjusted {
		if math.Abs(res.Adjusted[i]-want) > 1e-12 {
			t.Errorf("Adjusted[%d] = %v, want %v", i, res.Adjusted[i], want)
		}
	}
	if res.Adjusted[4] <= 1 {
		t.Error("adjusted values above 1 must be reported as-is")
	}

	// reject threshold is alpha/n = 0.01, inclusive
	wantReject := []bool{true, true, false, false, false}
	for i, want := range wantReject {
		if res.Reject[i] != want {
			t.Errorf("Reject[%d] = %v, want %v", i, res.Reject[i], want)
		}
	}
}

func TestBonferroni_BoundaryInclusive(t *testing.T) {
	// p exactly equal to alpha/n still rejects
	res, err := Bonferroni(0.05, []float64{0.025, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Reject[0] {
		t.Error("p equal to alpha/n should reject")
	}
}

func TestBonferroni_NaNCoercedToOne(t *testing.T) {
	res, err := Bonferroni(0.05, []float64{math.NaN(), 0.001})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reject[0] {
		t.Error("NaN p-value must never be rejected")
	}
	if res.Adjusted[0] != 2 {
		t.Errorf("NaN coerces to 1, so adjusted should be n=2, got %v", res.Adjusted[0])
	}
}
