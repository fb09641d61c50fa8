// Package cellcycle models expression along cell-cycle pseudotime: moving
// average curves, the fraction of variance explained by cell-cycle
// progression, and the compartment bookkeeping for stained proteins.
package cellcycle

import (
	"fmt"
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"github.com/fredricj/SingleCellProteogenomics/domain/stats"
	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// MovingAverage returns the boxcar moving average of y with the given
// window, valid mode: the result has len(y)-window+1 points.
func MovingAverage(y []float64, window int) ([]float64, error) {
	if window < 1 || window > len(y) {
		return nil, errors.New("INVALID_WINDOW",
			fmt.Sprintf("window %d out of range for %d values", window, len(y)))
	}
	out := make([]float64, len(y)-window+1)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += y[i]
	}
	out[0] = sum / float64(window)
	for i := window; i < len(y); i++ {
		sum += y[i] - y[i-window]
		out[i-window+1] = sum / float64(window)
	}
	return out, nil
}

// PercentVariance computes the fraction of the total variance captured
// by the moving average, along with the moving average itself. A
// zero-variance input yields NaN, which downstream correction masks as
// non-significant.
func PercentVariance(y []float64, window int) (float64, []float64, error) {
	avg, err := MovingAverage(y, window)
	if err != nil {
		return 0, nil, err
	}
	avgVar := populationVariance(avg)
	totalVar := populationVariance(y)
	if totalVar == 0 {
		return math.NaN(), avg, nil
	}
	return avgVar / totalVar, avg, nil
}

// RollingPercentiles returns the 10/25/50/75/90th percentiles of each
// length-window slice of y, for band summaries around the moving average.
func RollingPercentiles(y []float64, window int) ([][5]float64, error) {
	if window < 1 || window > len(y) {
		return nil, errors.New("INVALID_WINDOW",
			fmt.Sprintf("window %d out of range for %d values", window, len(y)))
	}
	cuts := []float64{10, 25, 50, 75, 90}
	out := make([][5]float64, len(y)-window+1)
	for i := range out {
		bin := y[i : i+window]
		for c, q := range cuts {
			v, err := mstats.Percentile(bin, q)
			if err != nil {
				return nil, errors.Wrapf(err, "percentile %v of window %d", q, i)
			}
			out[i][c] = v
		}
	}
	return out, nil
}

// Profile holds per-feature pseudotime statistics, aligned to the
// feature order of the input matrix.
type Profile struct {
	Order           []int       // cell indices sorted by pseudotime
	PercentVariance []float64   // var(moving average) / var(values)
	TotalVariance   []float64   // population variance per feature
	Gini            []float64   // expression inequality per feature
	MovingAverages  [][]float64 // smoothed curve per feature
}

// ProfileFeatures orders cells by pseudotime, normalizes each feature by
// its maximum, and computes moving-average percent variance per feature.
// features is feature-major: features[f][c] is feature f in cell c.
func ProfileFeatures(pseudotime []float64, features [][]float64, window int) (*Profile, error) {
	if len(pseudotime) == 0 || len(features) == 0 {
		return nil, errors.New("EMPTY_INPUT", "pseudotime and feature matrix must not be empty")
	}
	for f, row := range features {
		if len(row) != len(pseudotime) {
			return nil, errors.New("SHAPE_MISMATCH",
				fmt.Sprintf("feature %d has %d cells, pseudotime has %d", f, len(row), len(pseudotime)))
		}
	}

	order := argsortFloats(pseudotime)
	p := &Profile{
		Order:           order,
		PercentVariance: make([]float64, len(features)),
		TotalVariance:   make([]float64, len(features)),
		Gini:            make([]float64, len(features)),
		MovingAverages:  make([][]float64, len(features)),
	}

	for f, row := range features {
		sorted := takeAndNormalize(row, order)
		percVar, avg, err := PercentVariance(sorted, window)
		if err != nil {
			return nil, err
		}
		p.PercentVariance[f] = percVar
		p.TotalVariance[f] = populationVariance(sorted)
		p.Gini[f] = stats.Gini(sorted)
		p.MovingAverages[f] = avg
	}
	return p, nil
}

// PermutedPercentVariance recomputes per-feature percent variance after
// reordering cells by perm instead of pseudotime. The result is one row
// of the permutation null matrix.
func PermutedPercentVariance(features [][]float64, perm []int, window int) ([]float64, error) {
	row := make([]float64, len(features))
	for f, vals := range features {
		if len(vals) != len(perm) {
			return nil, errors.New("SHAPE_MISMATCH",
				fmt.Sprintf("feature %d has %d cells, permutation has %d", f, len(vals), len(perm)))
		}
		shuffled := takeAndNormalize(vals, perm)
		percVar, _, err := PercentVariance(shuffled, window)
		if err != nil {
			return nil, err
		}
		row[f] = percVar
	}
	return row, nil
}

// takeAndNormalize gathers vals in the given order and divides by the
// maximum so curves are comparable across features.
func takeAndNormalize(vals []float64, order []int) []float64 {
	out := make([]float64, len(order))
	maxVal := math.Inf(-1)
	for _, idx := range order {
		if vals[idx] > maxVal {
			maxVal = vals[idx]
		}
	}
	for i, idx := range order {
		if maxVal != 0 && !math.IsInf(maxVal, -1) {
			out[i] = vals[idx] / maxVal
		} else {
			out[i] = vals[idx]
		}
	}
	return out
}

func argsortFloats(vals []float64) []int {
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })
	return order
}

func populationVariance(vals []float64) float64 {
	v, err := mstats.PopulationVariance(vals)
	if err != nil {
		return math.NaN()
	}
	return v
}
