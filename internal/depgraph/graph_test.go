package depgraph

import (
	"reflect"
	"strconv"
	"testing"
)

func TestAddEdgeCollapsesDuplicates(t *testing.T) {
	g := New()
	g.AddNode("a.py", "a")
	g.AddNode("b.py", "b")
	g.AddEdge("a.py", "b.py", 3)
	g.AddEdge("a.py", "b.py", 10)
	g.AddEdge("a.py", "b.py", 3)

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if !reflect.DeepEqual(edges[0].Lines, []int{3, 10}) {
		t.Errorf("lines = %v, want [3 10]", edges[0].Lines)
	}
}

func TestNodesSortedAndFlagged(t *testing.T) {
	g := New()
	g.AddNode("c.py", "c")
	g.AddNode("a.py", "a")
	g.AddNode("b.py", "b")
	g.MarkScanFailed("b.py")

	nodes := g.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	for i, want := range []string{"a.py", "b.py", "c.py"} {
		if nodes[i].Path != want {
			t.Errorf("nodes[%d] = %q, want %q", i, nodes[i].Path, want)
		}
	}
	if !nodes[1].ScanFailed {
		t.Errorf("b.py should be flagged as scan-failed")
	}
	if nodes[0].Module != "a" {
		t.Errorf("module name lost: %+v", nodes[0])
	}
}

func TestImportsAndImportedBy(t *testing.T) {
	g := New()
	g.AddEdge("a.py", "b.py", 1)
	g.AddEdge("a.py", "c.py", 2)
	g.AddEdge("b.py", "c.py", 3)

	if got := g.Imports("a.py"); !reflect.DeepEqual(got, []string{"b.py", "c.py"}) {
		t.Errorf("Imports(a) = %v", got)
	}
	if got := g.ImportedBy("c.py"); !reflect.DeepEqual(got, []string{"a.py", "b.py"}) {
		t.Errorf("ImportedBy(c) = %v", got)
	}
	if got := g.ImportedBy("a.py"); len(got) != 0 {
		t.Errorf("ImportedBy(a) = %v, want empty", got)
	}
}

func TestCyclesTriangle(t *testing.T) {
	g := New()
	g.AddEdge("a.py", "b.py", 1)
	g.AddEdge("b.py", "c.py", 1)
	g.AddEdge("c.py", "a.py", 1)
	// a node outside the cycle
	g.AddEdge("d.py", "a.py", 1)

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	members := map[string]bool{}
	for _, m := range cycles[0].Members {
		members[m] = true
	}
	if !members["a.py"] || !members["b.py"] || !members["c.py"] || members["d.py"] {
		t.Errorf("members = %v", cycles[0].Members)
	}

	walk := cycles[0].Walk
	if len(walk) != 3 {
		t.Fatalf("walk length = %d, want 3", len(walk))
	}
	if walk[0].From != walk[len(walk)-1].To {
		t.Errorf("walk is not closed: %+v", walk)
	}
	for i := 0; i+1 < len(walk); i++ {
		if walk[i].To != walk[i+1].From {
			t.Errorf("walk edges do not chain: %+v", walk)
		}
	}
}

func TestCyclesAcyclic(t *testing.T) {
	g := New()
	g.AddEdge("a.py", "b.py", 1)
	g.AddEdge("b.py", "c.py", 1)
	g.AddEdge("a.py", "c.py", 1)

	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Errorf("acyclic graph reported cycles: %+v", cycles)
	}
}

func TestCyclesSelfLoop(t *testing.T) {
	g := New()
	g.AddEdge("a.py", "a.py", 7)
	g.AddEdge("a.py", "b.py", 1)

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	c := cycles[0]
	if len(c.Members) != 1 || c.Members[0] != "a.py" {
		t.Errorf("members = %v", c.Members)
	}
	if len(c.Walk) != 1 || c.Walk[0].From != "a.py" || c.Walk[0].To != "a.py" {
		t.Errorf("walk = %+v", c.Walk)
	}
	if !reflect.DeepEqual(c.Walk[0].Lines, []int{7}) {
		t.Errorf("walk lines = %v", c.Walk[0].Lines)
	}
}

func TestCyclesTwoComponents(t *testing.T) {
	g := New()
	// first cycle
	g.AddEdge("a.py", "b.py", 1)
	g.AddEdge("b.py", "a.py", 1)
	// second cycle
	g.AddEdge("x.py", "y.py", 1)
	g.AddEdge("y.py", "z.py", 1)
	g.AddEdge("z.py", "x.py", 1)
	// bridge, no extra cycle
	g.AddEdge("b.py", "x.py", 1)

	cycles := g.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	sizes := []int{len(cycles[0].Members), len(cycles[1].Members)}
	if !(sizes[0] == 3 && sizes[1] == 2) && !(sizes[0] == 2 && sizes[1] == 3) {
		t.Errorf("component sizes = %v", sizes)
	}
}

func TestCyclesDeterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		g.AddEdge("m1.py", "m2.py", 1)
		g.AddEdge("m2.py", "m3.py", 1)
		g.AddEdge("m3.py", "m1.py", 1)
		g.AddEdge("m3.py", "m4.py", 1)
		g.AddEdge("m4.py", "m5.py", 1)
		g.AddEdge("m5.py", "m4.py", 1)
		return g
	}

	first := build().Cycles()
	second := build().Cycles()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cycle reports differ across identical graphs")
	}
}

func TestCyclesDeepChain(t *testing.T) {
	// A long two-way chain: every adjacent pair forms a 2-cycle, and
	// the traversal must survive depth far beyond comfortable call
	// recursion.
	g := New()
	const n = 50000
	name := func(i int) string {
		return "m" + strconv.Itoa(i) + ".py"
	}
	for i := 0; i+1 < n; i++ {
		g.AddEdge(name(i), name(i+1), 1)
	}
	g.AddEdge(name(n-1), name(0), 1)

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("expected one giant cycle, got %d", len(cycles))
	}
	if len(cycles[0].Members) != n {
		t.Errorf("members = %d, want %d", len(cycles[0].Members), n)
	}
}
