package depgraph

import "sort"

// CycleReport describes one non-trivial strongly connected component.
type CycleReport struct {
	// Members lists the component's nodes in discovery order.
	Members []string `json:"members"`
	// Walk is a concrete closed edge sequence through the component,
	// starting and ending at Members[0].
	Walk []Edge `json:"walk"`
}

// tarjanFrame is one explicit depth-first frame: the node and the
// position of its next unexplored neighbor. An explicit stack keeps
// arbitrarily deep import chains from exhausting call-stack depth.
type tarjanFrame struct {
	v string
	i int
}

// Cycles finds all dependency cycles: strongly connected components
// with more than one member, or a single member with a self-edge.
// Emission order is Tarjan finish order over a sorted root sequence,
// so the report is stable across runs for the same graph.
func (dg *Graph) Cycles() []CycleReport {
	adj := dg.sortedAdjacency()

	roots := make([]string, 0, len(adj))
	for v := range adj {
		roots = append(roots, v)
	}
	sort.Strings(roots)

	index := make(map[string]int, len(adj))
	low := make(map[string]int, len(adj))
	onStack := make(map[string]bool, len(adj))
	var stack []string
	next := 0

	var reports []CycleReport

	visit := func(start string) {
		frames := []tarjanFrame{{v: start}}
		index[start] = next
		low[start] = next
		next++
		stack = append(stack, start)
		onStack[start] = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.i < len(adj[f.v]) {
				w := adj[f.v][f.i]
				f.i++
				if _, seen := index[w]; !seen {
					index[w] = next
					low[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, tarjanFrame{v: w})
				} else if onStack[w] && index[w] < low[f.v] {
					low[f.v] = index[w]
				}
				continue
			}

			// f.v is finished; pop its component if it is a root.
			v := f.v
			if low[v] == index[v] {
				var members []string
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					members = append(members, w)
					if w == v {
						break
					}
				}
				// popped in reverse discovery order
				reverse(members)
				if report, ok := dg.cycleReport(members, adj); ok {
					reports = append(reports, report)
				}
			}

			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				p := &frames[len(frames)-1]
				if low[v] < low[p.v] {
					low[p.v] = low[v]
				}
			}
		}
	}

	for _, v := range roots {
		if _, seen := index[v]; !seen {
			visit(v)
		}
	}

	return reports
}

// cycleReport turns an SCC into a CycleReport, filtering trivial
// components (one member, no self-edge).
func (dg *Graph) cycleReport(members []string, adj map[string][]string) (CycleReport, bool) {
	if len(members) == 1 {
		if _, ok := dg.selfEdges[members[0]]; !ok {
			return CycleReport{}, false
		}
		v := members[0]
		return CycleReport{
			Members: members,
			Walk:    []Edge{{From: v, To: v, Lines: dg.edgeLines(v, v)}},
		}, true
	}

	walk := dg.closedWalk(members, adj)
	return CycleReport{Members: members, Walk: walk}, true
}

// closedWalk builds a deterministic closed edge walk through the
// component: the first member's smallest in-component neighbor, then
// the breadth-first shortest way back.
func (dg *Graph) closedWalk(members []string, adj map[string][]string) []Edge {
	in := make(map[string]bool, len(members))
	for _, m := range members {
		in[m] = true
	}
	start := members[0]

	var first string
	for _, w := range adj[start] {
		if in[w] && w != start {
			first = w
			break
		}
	}
	if first == "" {
		// Only a self-edge leads out of start inside this component.
		return []Edge{{From: start, To: start, Lines: dg.edgeLines(start, start)}}
	}

	nodes := []string{start, first}
	nodes = append(nodes, dg.shortestReturn(first, start, in, adj)...)

	edges := make([]Edge, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		edges = append(edges, Edge{
			From:  nodes[i],
			To:    nodes[i+1],
			Lines: dg.edgeLines(nodes[i], nodes[i+1]),
		})
	}
	return edges
}

// shortestReturn finds the breadth-first path from "from" back to
// "to" inside the component, excluding "from" itself from the result.
func (dg *Graph) shortestReturn(from, to string, in map[string]bool, adj map[string][]string) []string {
	prev := make(map[string]string)
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range adj[v] {
			if !in[w] || seen[w] {
				continue
			}
			seen[w] = true
			prev[w] = v
			if w == to {
				var path []string
				for node := to; node != from; node = prev[node] {
					path = append(path, node)
				}
				reverse(path)
				return path
			}
			queue = append(queue, w)
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
