package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/gfa"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// PrintStats prints the statistics of one graph with colors. report may be nil.
func PrintStats(w io.Writer, s *model.Stats, report *gfa.Report) {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Graph: %s\n", s.Name)
	bold.Fprintln(w, "==================================")
	for _, m := range s.Metrics() {
		fmt.Fprintf(w, "  %-18s %20s\n", m.Name, formatValue(m.Value, m.Integral))
	}

	if st := s.Structure; st != nil {
		cyan.Fprintln(w, "  Structure:")
		for _, m := range structureMetrics(st) {
			fmt.Fprintf(w, "    %-16s %20s\n", m.name, formatCount(m.value))
		}
	}

	if len(s.DegreeHistogram) > 0 {
		cyan.Fprintln(w, "  Degree histogram:")
		for _, bin := range s.DegreeHistogram {
			fmt.Fprintf(w, "    %4d: %s\n", bin.Degree, formatCount(bin.Count))
		}
	}

	if s.DanglingRefs > 0 {
		yellow.Fprintf(w, "  %s edge endpoint(s) reference undefined segments\n", formatCount(s.DanglingRefs))
	}
	if report != nil && report.Warnings() > 0 {
		yellow.Fprintf(w, "  Parse warnings: %d (malformed %d, duplicate nodes %d, duplicate paths %d, missing sequences %d)\n",
			report.Warnings(), report.Malformed, report.DuplicateNodes, report.DuplicatePaths, report.MissingSequences)
	}
	fmt.Fprintln(w)
}

// PrintComparison prints the ratio table and verdicts with colors.
func PrintComparison(w io.Writer, c *model.Comparison) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	bold.Fprintf(w, "Comparison: %s / %s\n", c.NameA, c.NameB)
	bold.Fprintln(w, "==================================")
	fmt.Fprintf(w, "  %-18s %14s %14s %10s  %s\n", "metric", truncate(c.NameA, 14), truncate(c.NameB, 14), "ratio", "magnitude")
	for _, r := range c.Ratios {
		fmt.Fprintf(w, "  %-18s %14s %14s %9.3fx  ",
			r.Metric, formatValue(r.ValueA, r.Integral), formatValue(r.ValueB, r.Integral), r.Ratio)
		magnitudeColor(r.Magnitude).Fprintln(w, string(r.Magnitude))
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "Verdicts:")
	for _, v := range c.Verdicts {
		green.Fprintf(w, "  - %s\n", v)
	}
}

// Red below half, green from parity upward.
func magnitudeColor(m model.Magnitude) *color.Color {
	switch m {
	case model.MagnitudeMuchSmaller:
		return color.New(color.FgRed)
	case model.MagnitudeSmaller:
		return color.New(color.FgYellow)
	case model.MagnitudeComparable:
		return color.New(color.FgHiGreen)
	case model.MagnitudeLarger, model.MagnitudeMuchLarger:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Faint)
	}
}
