package model

import "strings"

// SampleSeparator splits a PanSN-style path name (sample#haplotype#contig).
const SampleSeparator = "#"

// Graph holds the nodes, edges and paths of one pangenome graph.
// It is populated by a single parse pass and treated as read-only afterwards.
type Graph struct {
	nodes       map[string]*Node
	nodeOrder   []string
	edges       []Edge
	paths       map[string]*Path
	pathOrder   []string
	samples     map[string]struct{}
	sampleOrder []string
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make([]Edge, 0),
		paths:   make(map[string]*Path),
		samples: make(map[string]struct{}),
	}
}

// Node is a segment of sequence identified by an opaque id.
type Node struct {
	ID     string `json:"id"`
	Length int64  `json:"length"` // Sequence length in bases
}

// Edge is a directed link between two node ids. Orientation is not retained.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Step is one node visit of a path.
type Step struct {
	NodeID      string `json:"nodeId"`
	Orientation byte   `json:"orientation"` // '+', '-' or '?' when the token carries none
}

// Path is a named, ordered traversal of node ids.
type Path struct {
	ID     string `json:"id"`
	Steps  []Step `json:"steps"`
	Sample string `json:"sample,omitempty"` // Empty when the id has no sample separator
}

// SampleOf returns the sample prefix of a PanSN path id and whether one exists.
func SampleOf(pathID string) (string, bool) {
	idx := strings.Index(pathID, SampleSeparator)
	if idx < 0 {
		return "", false
	}
	return pathID[:idx], true
}

// AddNode adds a node to the graph. If a node with the same ID exists it is
// replaced (last write wins) and AddNode reports true.
func (g *Graph) AddNode(node Node) (replaced bool) {
	if existing, ok := g.nodes[node.ID]; ok {
		*existing = node
		return true
	}
	n := node
	g.nodes[node.ID] = &n
	g.nodeOrder = append(g.nodeOrder, node.ID)
	return false
}

// AddEdge appends an edge. Parallel edges are kept.
func (g *Graph) AddEdge(edge Edge) {
	g.edges = append(g.edges, edge)
}

// AddPath adds a path and records its sample. A path with an existing ID is
// replaced and AddPath reports true.
func (g *Graph) AddPath(path Path) (replaced bool) {
	if sample, ok := SampleOf(path.ID); ok {
		path.Sample = sample
		if _, seen := g.samples[sample]; !seen {
			g.samples[sample] = struct{}{}
			g.sampleOrder = append(g.sampleOrder, sample)
		}
	}

	if existing, ok := g.paths[path.ID]; ok {
		*existing = path
		return true
	}
	p := path
	g.paths[path.ID] = &p
	g.pathOrder = append(g.pathOrder, path.ID)
	return false
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id was defined by a segment record.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeIDs returns node ids in first-definition order.
func (g *Graph) NodeIDs() []string {
	return g.nodeOrder
}

// Edges returns edges in input order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Path returns the path with the given id.
func (g *Graph) Path(id string) (*Path, bool) {
	p, ok := g.paths[id]
	return p, ok
}

// PathIDs returns path ids in first-definition order.
func (g *Graph) PathIDs() []string {
	return g.pathOrder
}

// Samples returns the distinct sample names in the order their first path
// was read.
func (g *Graph) Samples() []string {
	return g.sampleOrder
}

// NodeCount returns the number of distinct node ids.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// PathCount returns the number of distinct path ids.
func (g *Graph) PathCount() int { return len(g.paths) }

// SampleCount returns the number of distinct samples.
func (g *Graph) SampleCount() int { return len(g.samples) }

// NodeLengths returns the length of every node in first-definition order.
func (g *Graph) NodeLengths() []int64 {
	lengths := make([]int64, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		lengths = append(lengths, g.nodes[id].Length)
	}
	return lengths
}

// DanglingReferences counts edge endpoints and path steps naming a node id
// that no segment record defined.
func (g *Graph) DanglingReferences() (edgeRefs, pathRefs int) {
	for _, e := range g.edges {
		if !g.HasNode(e.From) {
			edgeRefs++
		}
		if !g.HasNode(e.To) {
			edgeRefs++
		}
	}
	for _, id := range g.pathOrder {
		for _, step := range g.paths[id].Steps {
			if !g.HasNode(step.NodeID) {
				pathRefs++
			}
		}
	}
	return edgeRefs, pathRefs
}
