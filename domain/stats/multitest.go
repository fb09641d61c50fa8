package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// CorrectionResult holds adjusted p-values and reject decisions aligned
// to the original input order.
type CorrectionResult struct {
	Adjusted []float64
	Reject   []bool
}

// BenjaminiHochberg applies the Benjamini-Hochberg step-up procedure at
// false discovery rate alpha. NaN p-values are coerced to 1.0 so that
// features without enough data are never rejected.
func BenjaminiHochberg(alpha float64, pvals []float64) (*CorrectionResult, error) {
	if err := validateCorrectionInput(alpha, pvals); err != nil {
		return nil, err
	}

	n := len(pvals)
	clean := sanitizePValues(pvals)
	order := argsort(clean)

	sorted := make([]float64, n)
	for i, idx := range order {
		sorted[i] = clean[idx]
	}

	// Empirical CDF factor rank/n for each sorted position
	reject := make([]bool, n)
	for i := range sorted {
		ecdf := float64(i+1) / float64(n)
		reject[i] = sorted[i] <= ecdf*alpha
	}

	// Step-up closure: if rank k rejects, every smaller rank rejects too,
	// even when its own inequality fails by float rounding
	rejectMax := -1
	for i := n - 1; i >= 0; i-- {
		if reject[i] {
			rejectMax = i
			break
		}
	}
	for i := 0; i < rejectMax; i++ {
		reject[i] = true
	}

	// Raw adjusted values, then running minimum from the largest rank
	// downward to enforce monotonicity, clipped at 1
	adjusted := make([]float64, n)
	runningMin := math.Inf(1)
	for i := n - 1; i >= 0; i-- {
		ecdf := float64(i+1) / float64(n)
		raw := sorted[i] / ecdf
		if raw < runningMin {
			runningMin = raw
		}
		if runningMin > 1 {
			adjusted[i] = 1
		} else {
			adjusted[i] = runningMin
		}
	}

	return unsortCorrection(order, adjusted, reject), nil
}

// Bonferroni applies the Bonferroni correction at significance level
// alpha. The adjusted value is p*n without clipping at 1, matching the
// published analysis; reject decisions use p <= alpha/n exactly. NaN
// p-values are coerced to 1.0 first.
func Bonferroni(alpha float64, pvals []float64) (*CorrectionResult, error) {
	if err := validateCorrectionInput(alpha, pvals); err != nil {
		return nil, err
	}

	n := len(pvals)
	clean := sanitizePValues(pvals)
	alphaBonf := alpha / float64(n)

	adjusted := make([]float64, n)
	reject := make([]bool, n)
	for i, p := range clean {
		adjusted[i] = p * float64(n)
		reject[i] = p <= alphaBonf
	}

	return &CorrectionResult{Adjusted: adjusted, Reject: reject}, nil
}

// validateCorrectionInput checks the shared preconditions of both
// correction procedures.
func validateCorrectionInput(alpha float64, pvals []float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return errors.New("INVALID_ALPHA", fmt.Sprintf("alpha must be in (0,1), got %v", alpha))
	}
	if len(pvals) == 0 {
		return errors.New("EMPTY_INPUT", "p-value vector must not be empty")
	}
	return nil
}

// sanitizePValues copies the input and replaces NaN entries with 1.0.
func sanitizePValues(pvals []float64) []float64 {
	clean := make([]float64, len(pvals))
	for i, p := range pvals {
		if math.IsNaN(p) {
			clean[i] = 1
		} else {
			clean[i] = p
		}
	}
	return clean
}

// argsort returns the indices that would sort vals ascending.
func argsort(vals []float64) []int {
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return vals[order[a]] < vals[order[b]]
	})
	return order
}

// unsortCorrection scatters sorted-order results back to input order.
func unsortCorrection(order []int, adjusted []float64, reject []bool) *CorrectionResult {
	out := &CorrectionResult{
		Adjusted: make([]float64, len(order)),
		Reject:   make([]bool, len(order)),
	}
	for sortedPos, origIdx := range order {
		out.Adjusted[origIdx] = adjusted[sortedPos]
		out.Reject[origIdx] = reject[sortedPos]
	}
	return out
}
