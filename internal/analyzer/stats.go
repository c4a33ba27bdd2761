package analyzer

import "sort"

// Stats summarizes a run for reporting.
type Stats struct {
	TotalFiles       int         `json:"totalFiles"`
	TotalEdges       int         `json:"totalEdges"`
	ExternalCount    int         `json:"externalCount"`
	CycleCount       int         `json:"cycleCount"`
	FailureCount     int         `json:"failureCount"`
	CacheHits        int         `json:"cacheHits"`
	MostImported     []FileCount `json:"mostImported,omitempty"`
	HeaviestImporter []FileCount `json:"heaviestImporters,omitempty"`
}

// FileCount pairs a file with an edge count.
type FileCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

const statsTopN = 5

// Stats computes summary statistics over the finished run.
func (r *Result) Stats() Stats {
	s := Stats{
		TotalFiles:    r.graph.NodeCount(),
		TotalEdges:    len(r.graph.Edges()),
		ExternalCount: len(r.externals),
		CycleCount:    len(r.cycles),
		FailureCount:  len(r.failures),
		CacheHits:     r.cacheHits,
	}

	inbound := make(map[string]int)
	outbound := make(map[string]int)
	for _, e := range r.graph.Edges() {
		inbound[e.To]++
		outbound[e.From]++
	}
	s.MostImported = topCounts(inbound, statsTopN)
	s.HeaviestImporter = topCounts(outbound, statsTopN)
	return s
}

// topCounts returns the n largest counts, ties broken by path so the
// output is stable.
func topCounts(counts map[string]int, n int) []FileCount {
	out := make([]FileCount, 0, len(counts))
	for path, c := range counts {
		out = append(out, FileCount{Path: path, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
