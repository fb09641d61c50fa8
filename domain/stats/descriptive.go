package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// Gini computes the Gini coefficient of the values as a measure of
// expression inequality. Negative inputs are shifted to zero first and a
// small offset keeps all-zero vectors well defined.
func Gini(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	v := make([]float64, len(values))
	minVal := values[0]
	for _, x := range values {
		if x < minVal {
			minVal = x
		}
	}
	for i, x := range values {
		v[i] = x
		if minVal < 0 {
			v[i] -= minVal
		}
		v[i] += 1e-7
	}
	sort.Float64s(v)

	n := float64(len(v))
	num, sum := 0.0, 0.0
	for i, x := range v {
		num += (2*float64(i+1) - n - 1) * x
		sum += x
	}
	return num / (n * sum)
}

// CoefficientOfVariation returns the population standard deviation
// divided by the mean.
func CoefficientOfVariation(values []float64) float64 {
	mean, err := mstats.Mean(values)
	if err != nil || mean == 0 {
		return math.NaN()
	}
	sd, err := mstats.StandardDeviationPopulation(values)
	if err != nil {
		return math.NaN()
	}
	return sd / mean
}
