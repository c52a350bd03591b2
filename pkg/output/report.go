package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/analysis"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// Report file names inside the output directory.
const (
	ReportFile = "comparison_report.txt"
	JSONFile   = "comparison_data.json"
	YAMLFile   = "comparison_data.yaml"
)

const (
	ruleWidth = 80
	nameWidth = 18
)

// GraphEntry is one input in a Document. Stats is nil and Error set when
// the graph could not be analyzed.
type GraphEntry struct {
	Name  string       `json:"name" yaml:"name"`
	Path  string       `json:"path,omitempty" yaml:"path,omitempty"`
	Stats *model.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Error string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// StatsEntry wraps the Stats of an analyzed graph.
func StatsEntry(s *model.Stats) GraphEntry {
	return GraphEntry{Name: s.Name, Stats: s}
}

// Document is the structured report written as JSON or YAML. Graph1 and
// Graph2 follow input order, failed inputs included.
type Document struct {
	Graph1     GraphEntry        `json:"graph1" yaml:"graph1"`
	Graph2     *GraphEntry       `json:"graph2,omitempty" yaml:"graph2,omitempty"`
	Comparison *model.Comparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	Generated  time.Time         `json:"generated" yaml:"generated"`
}

// NewDocument builds the document for one or two graphs. c is nil unless
// both were analyzed.
func NewDocument(graphs []GraphEntry, c *model.Comparison, generated time.Time) *Document {
	doc := &Document{Comparison: c, Generated: generated}
	if len(graphs) > 0 {
		doc.Graph1 = graphs[0]
	}
	if len(graphs) > 1 {
		second := graphs[1]
		doc.Graph2 = &second
	}
	return doc
}

// FromOutcome builds the document of a run, one entry per input position.
func FromOutcome(o *analysis.Outcome) *Document {
	graphs := make([]GraphEntry, 0, len(o.Results))
	for _, r := range o.Results {
		entry := GraphEntry{Name: r.Input.DisplayName(), Path: r.Input.Path, Stats: r.Stats}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		graphs = append(graphs, entry)
	}
	return NewDocument(graphs, o.Comparison, o.Completed)
}

func (d *Document) graphs() []GraphEntry {
	if d.Graph2 == nil {
		return []GraphEntry{d.Graph1}
	}
	return []GraphEntry{d.Graph1, *d.Graph2}
}

// EncodeJSON writes doc as indented JSON.
func EncodeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// EncodeYAML writes doc as YAML.
func EncodeYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// TextReport renders the plain-text report of doc.
func TextReport(doc *Document) string {
	var sb strings.Builder
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	title := "PANGENOME GRAPH REPORT"
	if doc.Graph2 != nil {
		title = "PANGENOME GRAPH COMPARISON REPORT"
	}
	fmt.Fprintln(&sb, heavy)
	fmt.Fprintf(&sb, "              %s\n", title)
	fmt.Fprintf(&sb, "              Generated: %s\n", doc.Generated.Format(time.DateTime))
	fmt.Fprintln(&sb, heavy)

	for i, g := range doc.graphs() {
		fmt.Fprintf(&sb, "\n%s\nGRAPH %d: %s\n%s\n", light, i+1, g.Name, light)
		if g.Stats == nil {
			fmt.Fprintf(&sb, "  analysis failed: %s\n", g.Error)
			continue
		}
		for _, m := range g.Stats.Metrics() {
			fmt.Fprintf(&sb, "  %-30s: %20s\n", m.Name, formatValue(m.Value, m.Integral))
		}
		if st := g.Stats.Structure; st != nil {
			for _, m := range structureMetrics(st) {
				fmt.Fprintf(&sb, "  %-30s: %20s\n", m.name, formatCount(m.value))
			}
		}
	}

	if c := doc.Comparison; c != nil && doc.Graph2 != nil && doc.Graph1.Stats != nil && doc.Graph2.Stats != nil {
		writeComparisonTable(&sb, c)
		writeInsights(&sb, doc.Graph1.Stats, doc.Graph2.Stats, c)
	}

	fmt.Fprintf(&sb, "\n%s\n", heavy)
	return sb.String()
}

type structureMetric struct {
	name  string
	value int
}

func structureMetrics(st *model.Structure) []structureMetric {
	return []structureMetric{
		{"components", st.Components},
		{"cycles", st.Cycles},
		{"cyclic_nodes", st.CyclicNodes},
		{"self_loops", st.SelfLoops},
	}
}

func writeComparisonTable(sb *strings.Builder, c *model.Comparison) {
	fmt.Fprintf(sb, "\n%s\nCOMPARISON TABLE\n%s\n", strings.Repeat("=", ruleWidth), strings.Repeat("=", ruleWidth))
	fmt.Fprintf(sb, "%-25s | %*s | %*s | %10s\n", "Metric",
		nameWidth, truncate(c.NameA, nameWidth), nameWidth, truncate(c.NameB, nameWidth), "Ratio")
	fmt.Fprintln(sb, strings.Repeat("-", ruleWidth))
	for _, r := range c.Ratios {
		fmt.Fprintf(sb, "%-25s | %*s | %*s | %9.3fx\n", r.Metric,
			nameWidth, formatValue(r.ValueA, r.Integral), nameWidth, formatValue(r.ValueB, r.Integral), r.Ratio)
	}
}

func writeInsights(sb *strings.Builder, a, b *model.Stats, c *model.Comparison) {
	fmt.Fprintf(sb, "\n%s\nKEY INSIGHTS\n%s\n", strings.Repeat("=", ruleWidth), strings.Repeat("=", ruleWidth))

	section := func(name string, lines ...string) {
		fmt.Fprintf(sb, "\n%s:\n", name)
		for _, l := range lines {
			fmt.Fprintf(sb, "   - %s\n", l)
		}
	}

	section("VERDICTS", c.Verdicts...)
	section("COMPLEXITY ANALYSIS",
		fmt.Sprintf("%s branch ratio: %.4f (%s branching nodes)", a.Name, a.BranchRatio, formatCount(a.BranchNodes)),
		fmt.Sprintf("%s branch ratio: %.4f (%s branching nodes)", b.Name, b.BranchRatio, formatCount(b.BranchNodes)),
		fmt.Sprintf("%s shows HIGHER complexity", c.MoreComplex))
	section("CONTIGUITY (N50/N90)",
		numbers.Sprintf("%s: N50=%d bp, N90=%d bp", c.ContiguityA.Name, c.ContiguityA.N50, c.ContiguityA.N90),
		numbers.Sprintf("%s: N50=%d bp, N90=%d bp", c.ContiguityB.Name, c.ContiguityB.N50, c.ContiguityB.N90))
	section("SAMPLE COVERAGE",
		fmt.Sprintf("%s: %d unique samples, %d paths", a.Name, a.NumSamples, a.NumPaths),
		fmt.Sprintf("%s: %d unique samples, %d paths", b.Name, b.NumSamples, b.NumPaths))
	section("SEQUENCE STATISTICS",
		fmt.Sprintf("%s: Total=%.2fMb, Mean node=%.0fbp", a.Name, float64(a.TotalBP)/1e6, a.MeanNodeLen),
		fmt.Sprintf("%s: Total=%.2fMb, Mean node=%.0fbp", b.Name, float64(b.TotalBP)/1e6, b.MeanNodeLen))
	section("CONNECTIVITY", connectivity(a), connectivity(b))
}

func connectivity(s *model.Stats) string {
	line := fmt.Sprintf("%s: Mean degree=%.2f, Edge/node ratio=%.2f", s.Name, s.MeanDegree, s.EdgeNodeRatio)
	if s.Structure != nil {
		line += fmt.Sprintf(", Components=%d", s.Structure.Components)
	}
	return line
}

// WriteReports writes the text report, the JSON document and, when withYAML
// is set, the YAML document into dir, creating it if needed. It returns the
// paths written.
func WriteReports(dir string, doc *Document, withYAML bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	text := TextReport(doc)

	var written []string
	write := func(name string, render func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if err := render(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(ReportFile, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	}); err != nil {
		return written, err
	}
	if err := write(JSONFile, func(w io.Writer) error { return EncodeJSON(w, doc) }); err != nil {
		return written, err
	}
	if withYAML {
		if err := write(YAMLFile, func(w io.Writer) error { return EncodeYAML(w, doc) }); err != nil {
			return written, err
		}
	}
	return written, nil
}
