package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/cycles"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/graph"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// Analyze computes the Stats of a fully parsed graph. The graph is only read.
// Analyzing the same graph twice yields identical Stats.
//
// Degree is accumulated for every id an edge names. Ids without a segment
// record are not nodes: they are absent from NumNodes and from the per-node
// degree array, so their degree is reported only through DanglingRefs.
func Analyze(name string, g *model.Graph) *model.Stats {
	s := &model.Stats{Name: name}

	// Cardinalities
	s.NumNodes = g.NodeCount()
	s.NumEdges = g.EdgeCount()
	s.NumPaths = g.PathCount()
	s.NumSamples = g.SampleCount()

	// Length statistics
	lengths := summarizeLengths(g.NodeLengths())
	s.TotalBP = lengths.total
	s.MeanNodeLen = lengths.mean
	s.MedianNodeLen = lengths.median
	s.MinNodeLen = lengths.min
	s.MaxNodeLen = lengths.max
	s.StdNodeLen = lengths.std
	s.N50 = lengths.n50
	s.N90 = lengths.n90

	// Degree distribution
	table := NewDegreeTable(g)
	degrees := table.NodeDegrees()
	s.DanglingRefs = table.DanglingDegree()
	logging.Debug("degree table built", "name", name,
		"degreeSum", table.TotalDegree(), "edgeEndpoints", 2*s.NumEdges, "danglingIds", table.Len()-len(degrees))

	if len(degrees) > 0 {
		values := make([]float64, len(degrees))
		for i, d := range degrees {
			values[i] = float64(d)
			s.MaxDegree = max(s.MaxDegree, d)

			switch Classify(d) {
			case ClassIsolated:
				s.IsolatedNodes++
			case ClassLinear:
				s.LinearNodes++
			case ClassBranching:
				s.BranchNodes++
			case ClassOther:
				s.OtherNodes++
			}
		}
		s.MeanDegree = stat.Mean(values, nil)
	}
	s.DegreeHistogram = histogram(degrees)

	// Ratios
	if s.NumNodes > 0 {
		s.BranchRatio = float64(s.BranchNodes) / float64(s.NumNodes)
		s.EdgeNodeRatio = float64(s.NumEdges) / float64(s.NumNodes)
	}

	return s
}

// AnalyzeStructure counts the weakly connected components and the directed
// cycles of the defined segments of g. Unlike Analyze it traverses the
// graph and builds a second, indexed copy of its links, so callers request
// it explicitly.
func AnalyzeStructure(g *model.Graph) *model.Structure {
	summary := cycles.Summarize(graph.BuildSegmentGraph(g))
	return &model.Structure{
		Components:  summary.Components,
		Cycles:      summary.Cycles,
		CyclicNodes: summary.CyclicNodes,
		SelfLoops:   summary.SelfLoops,
	}
}
