package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// CorrectionMethod selects the multiple-testing policy applied to the
// per-feature permutation p-values.
type CorrectionMethod int

const (
	CorrectBonferroni CorrectionMethod = iota
	CorrectBenjaminiHochberg
)

// PermutationTest evaluates how far observed per-feature statistics
// depart from an empirical null built by label permutation. A feature is
// declared significant only when all three gates hold: the mean
// difference from the null exceeds the threshold, the corrected
// one-sided signed-rank p-value rejects, and the observed value exceeds
// the median of its null column.
type PermutationTest struct {
	Alpha             float64
	MeanDiffThreshold float64
	Correction        CorrectionMethod
}

// NewPermutationTest creates a permutation test with the cutoffs used by
// the transcript analysis: alpha 0.01, mean-difference threshold 0.08,
// Bonferroni correction.
func NewPermutationTest() *PermutationTest {
	return &PermutationTest{
		Alpha:             0.01,
		MeanDiffThreshold: 0.08,
		Correction:        CorrectBonferroni,
	}
}

// PermutationResult holds per-feature outcomes aligned to the observed
// vector's order.
type PermutationResult struct {
	MeanDiff    []float64 // mean of observed - null over permutations
	PValues     []float64 // one-sided Wilcoxon signed-rank p-values
	Adjusted    []float64 // corrected p-values
	Reject      []bool    // corrected rejection decisions
	NullMedian  []float64 // median of each feature's null column
	Significant []bool    // conjunction of all three gates
}

// Evaluate computes the permutation significance of observed against the
// null matrix (one row per permutation, one column per feature).
// Non-finite observed values, which arise from zero-variance
// denominators upstream, are masked: their p-values coerce to 1 before
// correction and they can never be significant.
func (t *PermutationTest) Evaluate(observed []float64, null [][]float64) (*PermutationResult, error) {
	if err := t.validate(observed, null); err != nil {
		return nil, err
	}

	numFeatures := len(observed)
	numPerms := len(null)
	res := &PermutationResult{
		MeanDiff:    make([]float64, numFeatures),
		PValues:     make([]float64, numFeatures),
		NullMedian:  make([]float64, numFeatures),
		Significant: make([]bool, numFeatures),
	}

	diffs := make([]float64, numPerms)
	column := make([]float64, numPerms)
	for f := 0; f < numFeatures; f++ {
		for p := 0; p < numPerms; p++ {
			column[p] = null[p][f]
			diffs[p] = observed[f] - null[p][f]
		}

		med, err := mstats.Median(column)
		if err != nil {
			return nil, errors.Wrapf(err, "median of null column %d", f)
		}
		res.NullMedian[f] = med

		if !isFinite(observed[f]) {
			res.MeanDiff[f] = math.NaN()
			res.PValues[f] = 1
			continue
		}

		sum := 0.0
		for _, d := range diffs {
			sum += d
		}
		res.MeanDiff[f] = sum / float64(numPerms)
		res.PValues[f] = WilcoxonSignedRankGreater(diffs)
	}

	corrected, err := t.correct(res.PValues)
	if err != nil {
		return nil, err
	}
	res.Adjusted = corrected.Adjusted
	res.Reject = corrected.Reject

	for f := 0; f < numFeatures; f++ {
		res.Significant[f] = isFinite(observed[f]) &&
			res.MeanDiff[f] > t.MeanDiffThreshold &&
			res.Reject[f] &&
			observed[f] > res.NullMedian[f]
	}
	return res, nil
}

func (t *PermutationTest) correct(pvals []float64) (*CorrectionResult, error) {
	switch t.Correction {
	case CorrectBenjaminiHochberg:
		return BenjaminiHochberg(t.Alpha, pvals)
	default:
		return Bonferroni(t.Alpha, pvals)
	}
}

func (t *PermutationTest) validate(observed []float64, null [][]float64) error {
	if len(observed) == 0 {
		return errors.New("EMPTY_INPUT", "observed vector must not be empty")
	}
	if len(null) == 0 {
		return errors.New("EMPTY_INPUT", "null matrix must have at least one permutation")
	}
	for p, row := range null {
		if len(row) != len(observed) {
			return errors.New("SHAPE_MISMATCH",
				fmt.Sprintf("null row %d has %d features, observed has %d", p, len(row), len(observed)))
		}
	}
	if math.IsNaN(t.Alpha) || t.Alpha <= 0 || t.Alpha >= 1 {
		return errors.New("INVALID_ALPHA", fmt.Sprintf("alpha must be in (0,1), got %v", t.Alpha))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
