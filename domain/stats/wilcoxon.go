package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// WilcoxonSignedRankGreater computes a one-sided Wilcoxon signed-rank
// p-value testing whether the paired differences are stochastically
// greater than zero. Zero differences are discarded before ranking and
// the p-value comes from the tie-corrected normal approximation without
// continuity correction. Non-finite differences are skipped; if nothing
// survives filtering the test is inconclusive and returns 1.
func WilcoxonSignedRankGreater(diffs []float64) float64 {
	d := make([]float64, 0, len(diffs))
	for _, v := range diffs {
		if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			d = append(d, v)
		}
	}
	n := len(d)
	if n == 0 {
		return 1
	}

	ranks, tieTerm := rankAbsolute(d)

	wPlus := 0.0
	for i, v := range d {
		if v > 0 {
			wPlus += ranks[i]
		}
	}

	fn := float64(n)
	mean := fn * (fn + 1) / 4
	variance := fn*(fn+1)*(2*fn+1)/24 - tieTerm/48
	if variance <= 0 {
		// every |difference| tied at a single value and n too small to
		// spread ranks; fall back to the conservative answer
		if wPlus > mean {
			return 0
		}
		return 1
	}

	z := (wPlus - mean) / math.Sqrt(variance)
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return normal.Survival(z)
}

// rankAbsolute assigns midranks to the absolute values of d and returns
// the tie correction term sum(t^3 - t) over tie groups.
func rankAbsolute(d []float64) ([]float64, float64) {
	n := len(d)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(d[order[a]]) < math.Abs(d[order[b]])
	})

	ranks := make([]float64, n)
	tieTerm := 0.0
	i := 0
	for i < n {
		j := i
		for j+1 < n && math.Abs(d[order[j+1]]) == math.Abs(d[order[i]]) {
			j++
		}
		// ranks are 1-based; tied values share the average rank
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		t := float64(j - i + 1)
		if t > 1 {
			tieTerm += t*t*t - t
		}
		i = j + 1
	}
	return ranks, tieTerm
}
