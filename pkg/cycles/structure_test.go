package cycles

import (
	"fmt"
	"testing"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/graph"
)

func TestSummarize_NoCycles(t *testing.T) {
	sg := graph.NewSegmentGraph()

	// Simple acyclic chain: A -> B -> C
	sg.AddLink("a", "b")
	sg.AddLink("b", "c")

	s := Summarize(sg)

	if s.Cycles != 0 || s.CyclicNodes != 0 {
		t.Errorf("Expected no cycles, got %+v", s)
	}
	if s.Components != 1 {
		t.Errorf("Expected 1 component, got %d", s.Components)
	}
}

func TestSummarize_SimpleCycle(t *testing.T) {
	sg := graph.NewSegmentGraph()

	// A -> B -> A
	sg.AddLink("a", "b")
	sg.AddLink("b", "a")

	s := Summarize(sg)

	if s.Cycles != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", s.Cycles)
	}
	if s.CyclicNodes != 2 {
		t.Errorf("Expected 2 cyclic nodes, got %d", s.CyclicNodes)
	}
}

func TestSummarize_ThreeNodeCycleWithTail(t *testing.T) {
	sg := graph.NewSegmentGraph()

	// A -> B -> C -> A, plus a tail C -> D
	sg.AddLink("a", "b")
	sg.AddLink("b", "c")
	sg.AddLink("c", "a")
	sg.AddLink("c", "d")

	s := Summarize(sg)

	if s.Cycles != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", s.Cycles)
	}
	if s.CyclicNodes != 3 {
		t.Errorf("Expected 3 cyclic nodes, got %d", s.CyclicNodes)
	}
	if s.Components != 1 {
		t.Errorf("Expected 1 component, got %d", s.Components)
	}
}

func TestSummarize_SelfLoopAndComponents(t *testing.T) {
	sg := graph.NewSegmentGraph()

	sg.AddLink("a", "a")
	sg.AddLink("b", "c")
	sg.AddSegment("lonely")

	s := Summarize(sg)

	if s.Components != 3 {
		t.Errorf("Expected 3 components, got %d", s.Components)
	}
	if s.Cycles != 1 || s.CyclicNodes != 1 || s.SelfLoops != 1 {
		t.Errorf("Expected one self-loop cycle, got %+v", s)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(graph.NewSegmentGraph())
	if s != (Summary{}) {
		t.Errorf("Expected zero summary, got %+v", s)
	}
}

func TestSummarize_LongChainDoesNotRecurse(t *testing.T) {
	sg := graph.NewSegmentGraph()

	const n = 200000
	for i := 0; i < n-1; i++ {
		sg.AddLink(fmt.Sprint(i), fmt.Sprint(i+1))
	}
	sg.AddLink(fmt.Sprint(n-1), "0")

	s := Summarize(sg)
	if s.CyclicNodes != n {
		t.Errorf("Expected %d cyclic nodes, got %d", n, s.CyclicNodes)
	}
}
