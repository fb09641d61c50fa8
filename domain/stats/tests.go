package stats

import (
	"fmt"
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// TestResult pairs a test statistic with its p-value.
type TestResult struct {
	Statistic float64
	PValue    float64
}

// KruskalWallis performs the Kruskal-Wallis H test across two or more
// groups, with tie correction. The p-value comes from the chi-squared
// distribution with k-1 degrees of freedom.
func KruskalWallis(groups ...[]float64) (TestResult, error) {
	if len(groups) < 2 {
		return TestResult{}, errors.New("INVALID_GROUPS", "kruskal-wallis requires at least two groups")
	}
	total := 0
	for i, g := range groups {
		if len(g) == 0 {
			return TestResult{}, errors.New("EMPTY_INPUT", fmt.Sprintf("group %d is empty", i))
		}
		total += len(g)
	}

	pooled := make([]float64, 0, total)
	groupOf := make([]int, 0, total)
	for gi, g := range groups {
		for _, v := range g {
			pooled = append(pooled, v)
			groupOf = append(groupOf, gi)
		}
	}

	ranks, tieTerm := midranks(pooled)

	rankSums := make([]float64, len(groups))
	for i, r := range ranks {
		rankSums[groupOf[i]] += r
	}

	n := float64(total)
	h := 0.0
	for gi, g := range groups {
		h += rankSums[gi] * rankSums[gi] / float64(len(g))
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	// Tie correction divides H by 1 - sum(t^3-t)/(N^3-N)
	correction := 1 - tieTerm/(n*n*n-n)
	if correction <= 0 {
		// all observations identical; no evidence of group differences
		return TestResult{Statistic: 0, PValue: 1}, nil
	}
	h /= correction

	chi2 := distuv.ChiSquared{K: float64(len(groups) - 1)}
	return TestResult{Statistic: h, PValue: chi2.Survival(h)}, nil
}

// LeveneCenter selects the location estimate used for the spread test.
type LeveneCenter int

const (
	LeveneMedian LeveneCenter = iota // Brown-Forsythe, robust default
	LeveneMean
)

// Levene tests the null hypothesis of equal variances across groups by
// comparing absolute deviations from each group's center. The p-value
// comes from the F distribution with (k-1, N-k) degrees of freedom.
func Levene(center LeveneCenter, groups ...[]float64) (TestResult, error) {
	k := len(groups)
	if k < 2 {
		return TestResult{}, errors.New("INVALID_GROUPS", "levene requires at least two groups")
	}
	total := 0
	for i, g := range groups {
		if len(g) < 2 {
			return TestResult{}, errors.New("EMPTY_INPUT", fmt.Sprintf("group %d needs at least two values", i))
		}
		total += len(g)
	}

	// absolute deviations from the chosen center of each group
	z := make([][]float64, k)
	for gi, g := range groups {
		var loc float64
		var err error
		if center == LeveneMean {
			loc, err = mstats.Mean(g)
		} else {
			loc, err = mstats.Median(g)
		}
		if err != nil {
			return TestResult{}, errors.Wrapf(err, "center of group %d", gi)
		}
		z[gi] = make([]float64, len(g))
		for i, v := range g {
			z[gi][i] = math.Abs(v - loc)
		}
	}

	groupMeans := make([]float64, k)
	grand := 0.0
	for gi := range z {
		m, _ := mstats.Mean(z[gi])
		groupMeans[gi] = m
		grand += m * float64(len(z[gi]))
	}
	grand /= float64(total)

	between := 0.0
	within := 0.0
	for gi := range z {
		d := groupMeans[gi] - grand
		between += float64(len(z[gi])) * d * d
		for _, v := range z[gi] {
			dv := v - groupMeans[gi]
			within += dv * dv
		}
	}
	if within == 0 {
		return TestResult{Statistic: 0, PValue: 1}, nil
	}

	n := float64(total)
	w := (n - float64(k)) / float64(k-1) * between / within
	f := distuv.F{D1: float64(k - 1), D2: n - float64(k)}
	return TestResult{Statistic: w, PValue: f.Survival(w)}, nil
}

// TTestInd performs a two-sided two-sample t-test with pooled variance.
func TTestInd(a, b []float64) (TestResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return TestResult{}, errors.New("EMPTY_INPUT", "t-test requires at least two values per group")
	}
	meanA, _ := mstats.Mean(a)
	meanB, _ := mstats.Mean(b)
	varA, _ := mstats.SampleVariance(a)
	varB, _ := mstats.SampleVariance(b)

	na, nb := float64(len(a)), float64(len(b))
	df := na + nb - 2
	pooled := ((na-1)*varA + (nb-1)*varB) / df
	se := math.Sqrt(pooled * (1/na + 1/nb))
	if se == 0 {
		return TestResult{Statistic: 0, PValue: 1}, nil
	}

	t := (meanA - meanB) / se
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return TestResult{Statistic: t, PValue: 2 * tDist.Survival(math.Abs(t))}, nil
}

// midranks assigns 1-based midranks to vals and returns the tie term
// sum(t^3 - t) over tie groups.
func midranks(vals []float64) ([]float64, float64) {
	n := len(vals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })

	ranks := make([]float64, n)
	tieTerm := 0.0
	i := 0
	for i < n {
		j := i
		for j+1 < n && vals[order[j+1]] == vals[order[i]] {
			j++
		}
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
