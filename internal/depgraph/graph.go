// Package depgraph accumulates resolved internal imports into a
// directed file graph and reports its structure, most importantly
// circular dependencies.
package depgraph

import (
	"errors"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// NodeInfo describes one project file participating in the graph.
type NodeInfo struct {
	Path   string `json:"path"`
	Module string `json:"module,omitempty"`
	// ScanFailed marks files whose imports could not be extracted.
	// They stay in the graph as nodes without outgoing edges.
	ScanFailed bool `json:"scanFailed,omitempty"`
}

// Edge is one importer -> importee relationship. Duplicate imports of
// the same target collapse into a single edge; the originating source
// lines accumulate in Lines.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Lines []int  `json:"lines"`
}

// EdgeInfo is the mutable payload attached to a stored edge.
type EdgeInfo struct {
	Lines []int
}

// Graph is the dependency graph for one analysis run. Built
// single-writer after scanning completes; reads may follow freely.
type Graph struct {
	g     graphlib.Graph[string, string]
	nodes map[string]*NodeInfo
	// Self-importing files are tracked outside the adjacency library
	// and merged back in during queries and cycle detection.
	selfEdges map[string]*EdgeInfo
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		g:         graphlib.New(graphlib.StringHash, graphlib.Directed()),
		nodes:     make(map[string]*NodeInfo),
		selfEdges: make(map[string]*EdgeInfo),
	}
}

// AddNode ensures a node exists for path, recording its module name
// the first time one is supplied.
func (dg *Graph) AddNode(path, module string) *NodeInfo {
	if n, ok := dg.nodes[path]; ok {
		if module != "" && n.Module == "" {
			n.Module = module
		}
		return n
	}
	_ = dg.g.AddVertex(path)
	n := &NodeInfo{Path: path, Module: module}
	dg.nodes[path] = n
	return n
}

// MarkScanFailed flags path as unscannable while keeping it a node.
func (dg *Graph) MarkScanFailed(path string) {
	dg.AddNode(path, "").ScanFailed = true
}

// AddEdge records an import of to by from at the given source line.
// Re-adding an existing edge appends the line instead of duplicating
// the edge.
func (dg *Graph) AddEdge(from, to string, line int) {
	dg.AddNode(from, "")
	dg.AddNode(to, "")

	if from == to {
		if info, ok := dg.selfEdges[from]; ok {
			info.Lines = appendLine(info.Lines, line)
		} else {
			dg.selfEdges[from] = &EdgeInfo{Lines: []int{line}}
		}
		return
	}

	err := dg.g.AddEdge(from, to, graphlib.EdgeData(&EdgeInfo{Lines: []int{line}}))
	if err != nil && errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		if e, lookupErr := dg.g.Edge(from, to); lookupErr == nil {
			if info, ok := e.Properties.Data.(*EdgeInfo); ok {
				info.Lines = appendLine(info.Lines, line)
			}
		}
	}
}

// Node returns the node for path, if present.
func (dg *Graph) Node(path string) (NodeInfo, bool) {
	if n, ok := dg.nodes[path]; ok {
		return *n, true
	}
	return NodeInfo{}, false
}

// Nodes returns every node sorted by path.
func (dg *Graph) Nodes() []NodeInfo {
	out := make([]NodeInfo, 0, len(dg.nodes))
	for _, n := range dg.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// NodeCount returns the number of nodes.
func (dg *Graph) NodeCount() int {
	return len(dg.nodes)
}

// Edges returns every edge sorted by (From, To).
func (dg *Graph) Edges() []Edge {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []Edge
	for from, nbrs := range adj {
		for to, e := range nbrs {
			edge := Edge{From: from, To: to}
			if info, ok := e.Properties.Data.(*EdgeInfo); ok {
				edge.Lines = append([]int(nil), info.Lines...)
			}
			out = append(out, edge)
		}
	}
	for path, info := range dg.selfEdges {
		out = append(out, Edge{From: path, To: path, Lines: append([]int(nil), info.Lines...)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Imports returns the sorted successor paths of path.
func (dg *Graph) Imports(path string) []string {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []string
	for to := range adj[path] {
		out = append(out, to)
	}
	if _, ok := dg.selfEdges[path]; ok {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// ImportedBy returns the sorted predecessor paths of path.
func (dg *Graph) ImportedBy(path string) []string {
	pred, err := dg.g.PredecessorMap()
	if err != nil {
		return nil
	}
	var out []string
	for from := range pred[path] {
		out = append(out, from)
	}
	if _, ok := dg.selfEdges[path]; ok {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// sortedAdjacency flattens the adjacency structure into sorted
// neighbor slices, with self-edges merged in, so every traversal over
// it is deterministic.
func (dg *Graph) sortedAdjacency() map[string][]string {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	out := make(map[string][]string, len(adj))
	for v, nbrs := range adj {
		list := make([]string, 0, len(nbrs)+1)
		for w := range nbrs {
			list = append(list, w)
		}
		if _, ok := dg.selfEdges[v]; ok {
			list = append(list, v)
		}
		sort.Strings(list)
		out[v] = list
	}
	return out
}

// edgeLines returns the recorded source lines for an edge.
func (dg *Graph) edgeLines(from, to string) []int {
	if from == to {
		if info, ok := dg.selfEdges[from]; ok {
			return append([]int(nil), info.Lines...)
		}
		return nil
	}
	e, err := dg.g.Edge(from, to)
	if err != nil {
		return nil
	}
	if info, ok := e.Properties.Data.(*EdgeInfo); ok {
		return append([]int(nil), info.Lines...)
	}
	return nil
}

// appendLine inserts line into sorted unique order.
func appendLine(lines []int, line int) []int {
	i := sort.SearchInts(lines, line)
	if i < len(lines) && lines[i] == line {
		return lines
	}
	lines = append(lines, 0)
	copy(lines[i+1:], lines[i:])
	lines[i] = line
	return lines
}
