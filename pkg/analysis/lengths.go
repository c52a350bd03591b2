package analysis

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// lengthSummary holds the sequence-length statistics of a node set.
type lengthSummary struct {
	total  int64
	mean   float64
	median float64
	min    int64
	max    int64
	std    float64
	n50    int64
	n90    int64
}

// summarizeLengths computes exact order statistics with a full sort.
// An empty input yields the zero summary.
func summarizeLengths(lengths []int64) lengthSummary {
	if len(lengths) == 0 {
		return lengthSummary{}
	}

	sorted := slices.Clone(lengths)
	slices.Sort(sorted)

	var total int64
	values := make([]float64, len(sorted))
	for i, l := range sorted {
		total += l
		values[i] = float64(l)
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	return lengthSummary{
		total:  total,
		mean:   mean,
		median: medianSorted(sorted),
		min:    sorted[0],
		max:    sorted[len(sorted)-1],
		std:    std,
		n50:    nMetricSorted(sorted, total, 50),
		n90:    nMetricSorted(sorted, total, 90),
	}
}

// medianSorted averages the two middle values of an even-length input.
func medianSorted(sorted []int64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

// NMetric returns the Nx contiguity metric: the length of the node at which
// the running sum of lengths, taken longest first, first reaches x percent of
// the total. NMetric of an empty input is 0.
func NMetric(lengths []int64, x float64) int64 {
	if len(lengths) == 0 {
		return 0
	}
	sorted := slices.Clone(lengths)
	slices.Sort(sorted)

	var total int64
	for _, l := range sorted {
		total += l
	}
	return nMetricSorted(sorted, total, x)
}

// nMetricSorted walks an ascending slice from the end.
func nMetricSorted(sorted []int64, total int64, x float64) int64 {
	target := float64(total) * x / 100
	var cum int64
	for i := len(sorted) - 1; i >= 0; i-- {
		cum += sorted[i]
		if float64(cum) >= target {
			return sorted[i]
		}
	}
	return 0
}
