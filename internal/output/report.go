// Package output renders a finished analysis as text, JSON, YAML, or
// Graphviz DOT. Every format is built from the same Report value, and
// the Report itself is fully ordered, so identical runs render to
// byte-identical output.
package output

import (
	"path/filepath"
	"sort"

	"github.com/pathway/fastdeps/internal/analyzer"
)

// Report is the serializable view of one analysis run. Paths are
// root-relative with forward slashes regardless of platform.
type Report struct {
	RunID      string         `json:"runId" yaml:"runId"`
	Root       string         `json:"root" yaml:"root"`
	DurationMs int64          `json:"durationMs" yaml:"durationMs"`
	Partial    bool           `json:"partial,omitempty" yaml:"partial,omitempty"`
	Stats      analyzer.Stats `json:"stats" yaml:"stats"`
	Files      []FileReport   `json:"files" yaml:"files"`
	Edges      []EdgeReport   `json:"edges,omitempty" yaml:"edges,omitempty"`
	Cycles     []CycleReport  `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	Externals  []string       `json:"externals,omitempty" yaml:"externals,omitempty"`
	Errors     []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// FileReport is one graph node.
type FileReport struct {
	Path    string `json:"path" yaml:"path"`
	Module  string `json:"module,omitempty" yaml:"module,omitempty"`
	Failure string `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// EdgeReport is one internal import edge.
type EdgeReport struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Lines []int  `json:"lines" yaml:"lines"`
}

// CycleReport is one dependency cycle with a concrete closed walk.
type CycleReport struct {
	Members []string     `json:"members" yaml:"members"`
	Walk    []EdgeReport `json:"walk" yaml:"walk"`
}

// BuildReport flattens a Result into the ordered report model. Stats
// are recomputed here so their paths match the relativized ones.
func BuildReport(res *analyzer.Result) *Report {
	rel := func(path string) string {
		r, err := filepath.Rel(res.Root, path)
		if err != nil {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(r)
	}

	rep := &Report{
		RunID:      res.RunID,
		Root:       res.Root,
		DurationMs: res.Duration.Milliseconds(),
		Partial:    res.Partial,
		Stats:      res.Stats(),
	}
	for i := range rep.Stats.MostImported {
		rep.Stats.MostImported[i].Path = rel(rep.Stats.MostImported[i].Path)
	}
	for i := range rep.Stats.HeaviestImporter {
		rep.Stats.HeaviestImporter[i].Path = rel(rep.Stats.HeaviestImporter[i].Path)
	}

	failures := res.ScanFailures()
	for _, n := range res.Nodes() {
		fr := FileReport{Path: rel(n.Path), Module: n.Module}
		if f, ok := failures[n.Path]; ok {
			fr.Failure = f.Kind.String()
		}
		rep.Files = append(rep.Files, fr)
	}

	for _, e := range res.Edges() {
		rep.Edges = append(rep.Edges, EdgeReport{
			From:  rel(e.From),
			To:    rel(e.To),
			Lines: e.Lines,
		})
	}

	for _, c := range res.Cycles() {
		cr := CycleReport{}
		for _, m := range c.Members {
			cr.Members = append(cr.Members, rel(m))
		}
		for _, e := range c.Walk {
			cr.Walk = append(cr.Walk, EdgeReport{
				From:  rel(e.From),
				To:    rel(e.To),
				Lines: e.Lines,
			})
		}
		rep.Cycles = append(rep.Cycles, cr)
	}

	rep.Externals = res.ExternalDependencies()

	for _, err := range res.ResolutionErrors() {
		rep.Errors = append(rep.Errors, err.Error())
	}
	sort.Strings(rep.Errors)

	return rep
}
