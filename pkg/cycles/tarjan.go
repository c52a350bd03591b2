package cycles

import (
	"gonum.org/v1/gonum/graph"
)

// TarjanSCC finds all strongly connected components using Tarjan's algorithm.
// The depth-first search keeps an explicit call stack, so long linear chains
// of segments do not grow the goroutine stack.
type TarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g graph.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph:   g,
		index:   0,
		stack:   make([]int64, 0),
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
		sccs:    make([][]int64, 0),
	}
}

// FindSCCs returns the strongly connected components with more than one node
func (t *TarjanSCC) FindSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		node := nodes.Node()
		if _, visited := t.indices[node.ID()]; !visited {
			t.strongConnect(node.ID())
		}
	}
	return t.sccs
}

type frame struct {
	id         int64
	successors graph.Nodes
}

func (t *TarjanSCC) visit(nodeID int64) {
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true
}

func (t *TarjanSCC) strongConnect(root int64) {
	t.visit(root)
	calls := []frame{{id: root, successors: t.graph.From(root)}}

	for len(calls) > 0 {
		top := &calls[len(calls)-1]

		if top.successors.Next() {
			successorID := top.successors.Node().ID()
			if _, visited := t.indices[successorID]; !visited {
				// Descend into the successor
				t.visit(successorID)
				calls = append(calls, frame{id: successorID, successors: t.graph.From(successorID)})
			} else if t.onStack[successorID] {
				// Successor is on stack and hence in the current SCC
				t.lowLink[top.id] = min(t.lowLink[top.id], t.indices[successorID])
			}
			continue
		}

		// All successors done: return to the caller frame
		nodeID := top.id
		calls = calls[:len(calls)-1]
		if len(calls) > 0 {
			parent := calls[len(calls)-1].id
			t.lowLink[parent] = min(t.lowLink[parent], t.lowLink[nodeID])
		}

		// If nodeID is a root node, pop the stack and create an SCC
		if t.lowLink[nodeID] == t.indices[nodeID] {
			scc := make([]int64, 0)
			for {
				w := t.stack[len(t.stack)-1]
				t.stack = t.stack[:len(t.stack)-1]
				t.onStack[w] = false
				scc = append(scc, w)
				if w == nodeID {
					break
				}
			}
			if len(scc) > 1 {
				t.sccs = append(t.sccs, scc)
			}
		}
	}
}
