package graph

import (
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// SegmentGraph is the link structure of the defined segments of a graph,
// backed by a gonum directed graph. Parallel links collapse into one gonum
// edge; self-loops are tracked beside it since gonum simple graphs reject them.
type SegmentGraph struct {
	graph     *simple.DirectedGraph
	ids       map[string]int64 // Map from segment id to graph ID
	selfLoops map[int64]bool
}

// NewSegmentGraph creates a new empty segment graph
func NewSegmentGraph() *SegmentGraph {
	return &SegmentGraph{
		graph:     simple.NewDirectedGraph(),
		ids:       make(map[string]int64),
		selfLoops: make(map[int64]bool),
	}
}

// AddSegment adds a segment to the graph
func (sg *SegmentGraph) AddSegment(id string) int64 {
	if nodeID, exists := sg.ids[id]; exists {
		return nodeID
	}

	nodeID := int64(len(sg.ids))
	sg.ids[id] = nodeID
	sg.graph.AddNode(simple.Node(nodeID))
	return nodeID
}

// AddLink adds a link from one segment to another, adding missing segments.
func (sg *SegmentGraph) AddLink(from, to string) {
	fromID := sg.AddSegment(from)
	toID := sg.AddSegment(to)

	if fromID == toID {
		sg.selfLoops[fromID] = true
		return
	}

	if !sg.graph.HasEdgeFromTo(fromID, toID) {
		sg.graph.SetEdge(sg.graph.NewEdge(sg.graph.Node(fromID), sg.graph.Node(toID)))
	}
}

// HasSelfLoop reports whether a segment links to itself
func (sg *SegmentGraph) HasSelfLoop(id int64) bool {
	return sg.selfLoops[id]
}

// SelfLoops returns the number of segments with a self-loop
func (sg *SegmentGraph) SelfLoops() int {
	return len(sg.selfLoops)
}

// Len returns the number of segments
func (sg *SegmentGraph) Len() int {
	return len(sg.ids)
}

// Graph returns the underlying directed graph
func (sg *SegmentGraph) Graph() *simple.DirectedGraph {
	return sg.graph
}

// BuildSegmentGraph builds the structure of the defined segments of g.
// Links touching an undefined segment are left out.
func BuildSegmentGraph(g *model.Graph) *SegmentGraph {
	sg := NewSegmentGraph()

	for _, id := range g.NodeIDs() {
		sg.AddSegment(id)
	}

	for _, e := range g.Edges() {
		if g.HasNode(e.From) && g.HasNode(e.To) {
			sg.AddLink(e.From, e.To)
		}
	}

	return sg
}
