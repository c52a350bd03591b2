package analysis

import (
	"slices"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// DegreeTable accumulates in- and out-degree over dense node indices.
// Defined nodes occupy indices [0, Defined) in graph order; ids that only
// appear in edges are appended after them.
type DegreeTable struct {
	index   map[string]int
	ids     []string
	in      []int
	out     []int
	defined int
}

// NewDegreeTable counts one out-degree on From and one in-degree on To for
// every edge of g, parallel edges and self-loops included.
func NewDegreeTable(g *model.Graph) *DegreeTable {
	nodeIDs := g.NodeIDs()
	t := &DegreeTable{
		index:   make(map[string]int, len(nodeIDs)),
		ids:     make([]string, 0, len(nodeIDs)),
		defined: len(nodeIDs),
	}
	for _, id := range nodeIDs {
		t.intern(id)
	}

	for _, e := range g.Edges() {
		t.out[t.intern(e.From)]++
		t.in[t.intern(e.To)]++
	}
	return t
}

func (t *DegreeTable) intern(id string) int {
	if i, ok := t.index[id]; ok {
		return i
	}
	i := len(t.ids)
	t.index[id] = i
	t.ids = append(t.ids, id)
	t.in = append(t.in, 0)
	t.out = append(t.out, 0)
	return i
}

// Len is the number of distinct ids seen, dangling ones included.
func (t *DegreeTable) Len() int { return len(t.ids) }

// inOut returns the in- and out-degree of id, zero if unseen.
func (t *DegreeTable) inOut(id string) (in, out int) {
	i, ok := t.index[id]
	if !ok {
		return 0, 0
	}
	return t.in[i], t.out[i]
}

// NodeDegrees returns the total degree of every defined node in graph order.
func (t *DegreeTable) NodeDegrees() []int {
	degrees := make([]int, t.defined)
	for i := range degrees {
		degrees[i] = t.in[i] + t.out[i]
	}
	return degrees
}

// DanglingDegree sums the degree accumulated on ids without a segment record.
func (t *DegreeTable) DanglingDegree() int {
	sum := 0
	for i := t.defined; i < len(t.ids); i++ {
		sum += t.in[i] + t.out[i]
	}
	return sum
}

// TotalDegree sums degree over every id, dangling ones included.
func (t *DegreeTable) TotalDegree() int {
	sum := 0
	for i := range t.ids {
		sum += t.in[i] + t.out[i]
	}
	return sum
}

// Node classes by total degree.
type DegreeClass int

const (
	ClassIsolated  DegreeClass = iota // degree 0
	ClassOther                        // degree 1
	ClassLinear                       // degree 2
	ClassBranching                    // degree > 2
)

// Classify maps a total degree to its class.
func Classify(degree int) DegreeClass {
	switch {
	case degree == 0:
		return ClassIsolated
	case degree == 2:
		return ClassLinear
	case degree > 2:
		return ClassBranching
	default:
		return ClassOther
	}
}

// histogram bins degrees in ascending degree order.
func histogram(degrees []int) []model.DegreeBin {
	counts := make(map[int]int)
	for _, d := range degrees {
		counts[d]++
	}
	bins := make([]model.DegreeBin, 0, len(counts))
	for d, c := range counts {
		bins = append(bins, model.DegreeBin{Degree: d, Count: c})
	}
	slices.SortFunc(bins, func(a, b model.DegreeBin) int { return a.Degree - b.Degree })
	return bins
}
