package service

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ComplexityStats summarises the complexities of evaluated files
type ComplexityStats struct {
	Max  float64
	Mean float64
	P90  float64
}

// ComputeComplexityStats returns zero values for an empty input
func ComputeComplexityStats(values []float64) ComplexityStats {
	if len(values) == 0 {
		return ComplexityStats{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return ComplexityStats{
		Max:  sorted[len(sorted)-1],
		Mean: stat.Mean(sorted, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}
