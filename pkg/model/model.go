package model

// DegreeBin counts the nodes that share one total degree.
type DegreeBin struct {
	Degree int `json:"degree" yaml:"degree"`
	Count  int `json:"count" yaml:"count"`
}

// Stats is the summary of one analyzed graph. It is computed once from a
// frozen Graph and never modified afterwards.
type Stats struct {
	Name string `json:"name" yaml:"name"`

	NumNodes   int `json:"num_nodes" yaml:"num_nodes"`
	NumEdges   int `json:"num_edges" yaml:"num_edges"`
	NumPaths   int `json:"num_paths" yaml:"num_paths"`
	NumSamples int `json:"num_samples" yaml:"num_samples"`

	TotalBP       int64   `json:"total_bp" yaml:"total_bp"`
	MeanNodeLen   float64 `json:"mean_node_len" yaml:"mean_node_len"`
	MedianNodeLen float64 `json:"median_node_len" yaml:"median_node_len"`
	MinNodeLen    int64   `json:"min_node_len" yaml:"min_node_len"`
	MaxNodeLen    int64   `json:"max_node_len" yaml:"max_node_len"`
	StdNodeLen    float64 `json:"std_node_len" yaml:"std_node_len"` // Population standard deviation
	N50           int64   `json:"n50" yaml:"n50"`
	N90           int64   `json:"n90" yaml:"n90"`

	MeanDegree    float64 `json:"mean_degree" yaml:"mean_degree"`
	MaxDegree     int     `json:"max_degree" yaml:"max_degree"`
	IsolatedNodes int     `json:"isolated_nodes" yaml:"isolated_nodes"` // degree 0
	LinearNodes   int     `json:"linear_nodes" yaml:"linear_nodes"`     // degree 2
	BranchNodes   int     `json:"branch_nodes" yaml:"branch_nodes"`     // degree > 2
	OtherNodes    int     `json:"other_nodes" yaml:"other_nodes"`       // degree 1

	BranchRatio   float64 `json:"branch_ratio" yaml:"branch_ratio"`
	EdgeNodeRatio float64 `json:"edge_node_ratio" yaml:"edge_node_ratio"`

	// DanglingRefs counts edge endpoints whose node id has no segment record.
	// Those endpoints still contribute to the degree sum.
	DanglingRefs int `json:"dangling_refs" yaml:"dangling_refs"`

	DegreeHistogram []DegreeBin `json:"degree_histogram" yaml:"degree_histogram"`

	// Structure is set only when the structural pass was requested. It is
	// not part of Metrics and never compared.
	Structure *Structure `json:"structure,omitempty" yaml:"structure,omitempty"`
}

// Structure holds the traversal-based counts of the defined segments.
type Structure struct {
	Components  int `json:"components" yaml:"components"`     // Weakly connected components
	Cycles      int `json:"cycles" yaml:"cycles"`             // Multi-segment cycles plus self-loops
	CyclicNodes int `json:"cyclic_nodes" yaml:"cyclic_nodes"` // Segments on a directed cycle
	SelfLoops   int `json:"self_loops" yaml:"self_loops"`
}

// Metric is one named numeric value of a Stats record.
type Metric struct {
	Name     string
	Value    float64
	Integral bool // Value holds a count or a length in bases
}

func count[T int | int64](name string, v T) Metric {
	return Metric{Name: name, Value: float64(v), Integral: true}
}

func measure(name string, v float64) Metric {
	return Metric{Name: name, Value: v}
}

// Metrics returns the numeric metrics that take part in a comparison, in
// report order.
func (s *Stats) Metrics() []Metric {
	return []Metric{
		count("num_nodes", s.NumNodes),
		count("num_edges", s.NumEdges),
		count("num_paths", s.NumPaths),
		count("num_samples", s.NumSamples),
		count("total_bp", s.TotalBP),
		measure("mean_node_len", s.MeanNodeLen),
		measure("median_node_len", s.MedianNodeLen),
		count("min_node_len", s.MinNodeLen),
		count("max_node_len", s.MaxNodeLen),
		measure("std_node_len", s.StdNodeLen),
		count("n50", s.N50),
		count("n90", s.N90),
		measure("mean_degree", s.MeanDegree),
		count("max_degree", s.MaxDegree),
		count("isolated_nodes", s.IsolatedNodes),
		count("linear_nodes", s.LinearNodes),
		count("branch_nodes", s.BranchNodes),
		measure("branch_ratio", s.BranchRatio),
		measure("edge_node_ratio", s.EdgeNodeRatio),
	}
}

// Magnitude buckets a ratio between two metric values.
type Magnitude string

const (
	MagnitudeMuchSmaller Magnitude = "much smaller"
	MagnitudeSmaller     Magnitude = "smaller"
	MagnitudeComparable  Magnitude = "comparable"
	MagnitudeLarger      Magnitude = "larger"
	MagnitudeMuchLarger  Magnitude = "much larger"

	// MagnitudeUndefined marks a ratio whose divisor was 0.
	MagnitudeUndefined Magnitude = "n/a"
)

// MetricRatio compares one metric across two graphs.
type MetricRatio struct {
	Metric    string    `json:"metric" yaml:"metric"`
	ValueA    float64   `json:"value_a" yaml:"value_a"`
	ValueB    float64   `json:"value_b" yaml:"value_b"`
	Ratio     float64   `json:"ratio" yaml:"ratio"` // ValueA / ValueB, 0 when ValueB is 0
	Magnitude Magnitude `json:"magnitude" yaml:"magnitude"`
	Integral  bool      `json:"-" yaml:"-"`
}

// Contiguity pairs the N50 and N90 of one graph.
type Contiguity struct {
	Name string `json:"name" yaml:"name"`
	N50  int64  `json:"n50" yaml:"n50"`
	N90  int64  `json:"n90" yaml:"n90"`
}

// Comparison is derived from exactly two Stats records.
type Comparison struct {
	NameA string `json:"name_a" yaml:"name_a"`
	NameB string `json:"name_b" yaml:"name_b"`

	Ratios []MetricRatio `json:"ratios" yaml:"ratios"`

	LargerByNodes   string  `json:"larger_by_nodes" yaml:"larger_by_nodes"`
	NodeScaleFactor float64 `json:"node_scale_factor" yaml:"node_scale_factor"` // max/min node count, 0 when min is 0
	LargerByEdges   string  `json:"larger_by_edges" yaml:"larger_by_edges"`
	EdgeScaleFactor float64 `json:"edge_scale_factor" yaml:"edge_scale_factor"`
	MoreComplex     string  `json:"more_complex" yaml:"more_complex"` // Higher branch ratio

	ContiguityA Contiguity `json:"contiguity_a" yaml:"contiguity_a"`
	ContiguityB Contiguity `json:"contiguity_b" yaml:"contiguity_b"`

	Verdicts []string `json:"verdicts" yaml:"verdicts"`
}

// Ratio returns the ratio recorded for a metric.
func (c *Comparison) Ratio(metric string) (MetricRatio, bool) {
	for _, r := range c.Ratios {
		if r.Metric == metric {
			return r, true
		}
	}
	return MetricRatio{}, false
}
