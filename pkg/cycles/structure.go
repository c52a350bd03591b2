// Package cycles derives structural counts from the link structure of the
// defined segments: weakly connected components and nodes on directed cycles.
package cycles

import (
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/graph"
)

// Summary holds the structural counts of one segment graph.
type Summary struct {
	Components  int // Weakly connected components
	Cycles      int // Multi-node strongly connected components plus self-loops
	CyclicNodes int // Segments that lie on at least one directed cycle
	SelfLoops   int // Segments linked to themselves
}

// Summarize computes the structural counts of sg.
func Summarize(sg *graph.SegmentGraph) Summary {
	var s Summary
	if sg.Len() == 0 {
		return s
	}

	s.SelfLoops = sg.SelfLoops()
	s.Components = len(topo.ConnectedComponents(gonum.Undirect{G: sg.Graph()}))

	onCycle := make(map[int64]bool)
	for _, scc := range NewTarjanSCC(sg.Graph()).FindSCCs() {
		s.Cycles++
		for _, id := range scc {
			onCycle[id] = true
		}
	}

	for id := int64(0); id < int64(sg.Len()); id++ {
		if sg.HasSelfLoop(id) {
			if !onCycle[id] {
				s.Cycles++
			}
			onCycle[id] = true
		}
	}

	s.CyclicNodes = len(onCycle)
	return s
}
