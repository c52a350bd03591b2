// Package compare aligns the Stats of two graphs into a Comparison.
//
// Compare is a pure function: it performs no I/O and never modifies its
// inputs. Where the two graphs tie, the first graph (A) wins.
package compare

import (
	"fmt"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// Magnitude bucket upper bounds, exclusive.
const (
	muchSmallerBelow = 0.5
	smallerBelow     = 0.9
	comparableBelow  = 1.1
	largerBelow      = 2.0
)

// Ratio divides a by b, defined as 0 when b is 0 regardless of a.
func Ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Classify buckets a ratio.
func Classify(ratio float64) model.Magnitude {
	switch {
	case ratio < muchSmallerBelow:
		return model.MagnitudeMuchSmaller
	case ratio < smallerBelow:
		return model.MagnitudeSmaller
	case ratio < comparableBelow:
		return model.MagnitudeComparable
	case ratio < largerBelow:
		return model.MagnitudeLarger
	default:
		return model.MagnitudeMuchLarger
	}
}

// ScaleFactor is max/min of two counts, 0 when the smaller one is 0.
func ScaleFactor(a, b int) float64 {
	lo, hi := min(a, b), max(a, b)
	if lo == 0 {
		return 0
	}
	return float64(hi) / float64(lo)
}

// Compare builds the Comparison of a against b. Ratios are a/b, one per
// metric, in the order of model.Stats.Metrics.
func Compare(a, b *model.Stats) *model.Comparison {
	c := &model.Comparison{
		NameA: a.Name,
		NameB: b.Name,
	}

	metricsA, metricsB := a.Metrics(), b.Metrics()
	c.Ratios = make([]model.MetricRatio, len(metricsA))
	for i, m := range metricsA {
		vb := metricsB[i].Value
		r := model.MetricRatio{
			Metric:   m.Name,
			ValueA:   m.Value,
			ValueB:   vb,
			Ratio:    Ratio(m.Value, vb),
			Integral: m.Integral,
		}
		if vb == 0 {
			r.Magnitude = model.MagnitudeUndefined
		} else {
			r.Magnitude = Classify(r.Ratio)
		}
		c.Ratios[i] = r
	}

	c.LargerByNodes = pick(a.Name, b.Name, b.NumNodes > a.NumNodes)
	c.NodeScaleFactor = ScaleFactor(a.NumNodes, b.NumNodes)
	c.LargerByEdges = pick(a.Name, b.Name, b.NumEdges > a.NumEdges)
	c.EdgeScaleFactor = ScaleFactor(a.NumEdges, b.NumEdges)
	c.MoreComplex = pick(a.Name, b.Name, b.BranchRatio > a.BranchRatio)

	c.ContiguityA = model.Contiguity{Name: a.Name, N50: a.N50, N90: a.N90}
	c.ContiguityB = model.Contiguity{Name: b.Name, N50: b.N50, N90: b.N90}

	c.Verdicts = verdicts(a, b, c)
	return c
}

func pick(nameA, nameB string, chooseB bool) string {
	if chooseB {
		return nameB
	}
	return nameA
}

func verdicts(a, b *model.Stats, c *model.Comparison) []string {
	var out []string

	out = append(out, scaleVerdict("nodes", a.Name, b.Name, a.NumNodes, b.NumNodes, c.LargerByNodes, c.NodeScaleFactor))
	out = append(out, scaleVerdict("edges", a.Name, b.Name, a.NumEdges, b.NumEdges, c.LargerByEdges, c.EdgeScaleFactor))

	if a.BranchRatio == b.BranchRatio {
		out = append(out, fmt.Sprintf("%s and %s have the same branch ratio (%.4f)", a.Name, b.Name, a.BranchRatio))
	} else {
		out = append(out, fmt.Sprintf("%s has the higher branch ratio (%.4f vs %.4f)",
			c.MoreComplex, max(a.BranchRatio, b.BranchRatio), min(a.BranchRatio, b.BranchRatio)))
	}

	switch {
	case a.N50 > b.N50:
		out = append(out, fmt.Sprintf("%s is more contiguous (N50 %d vs %d bp)", a.Name, a.N50, b.N50))
	case b.N50 > a.N50:
		out = append(out, fmt.Sprintf("%s is more contiguous (N50 %d vs %d bp)", b.Name, b.N50, a.N50))
	}

	return out
}

func scaleVerdict(unit, nameA, nameB string, countA, countB int, larger string, factor float64) string {
	if countA == countB {
		return fmt.Sprintf("%s and %s have the same number of %s (%d)", nameA, nameB, unit, countA)
	}
	hi, lo := max(countA, countB), min(countA, countB)
	if factor == 0 {
		return fmt.Sprintf("%s has more %s (%d vs %d)", larger, unit, hi, lo)
	}
	return fmt.Sprintf("%s has %.1fx more %s (%d vs %d)", larger, factor, unit, hi, lo)
}
