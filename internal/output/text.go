package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// renderText writes the human-readable summary: counts first, then the
// sections that have content. Files with no edges and no failures are
// summarized rather than listed.
func renderText(w io.Writer, rep *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyzed %d files in %dms", rep.Stats.TotalFiles, rep.DurationMs)
	if rep.Partial {
		b.WriteString(" (partial)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d internal edges, %d external dependencies, %d cycles\n",
		rep.Stats.TotalEdges, rep.Stats.ExternalCount, rep.Stats.CycleCount)
	if rep.Stats.CacheHits > 0 {
		fmt.Fprintf(&b, "  %d files served from cache\n", rep.Stats.CacheHits)
	}

	if len(rep.Edges) > 0 {
		b.WriteString("\nImports:\n")
		for _, e := range rep.Edges {
			fmt.Fprintf(&b, "  %s -> %s (line %s)\n", e.From, e.To, joinLines(e.Lines))
		}
	}

	if len(rep.Externals) > 0 {
		b.WriteString("\nExternal dependencies:\n")
		for _, name := range rep.Externals {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	if len(rep.Cycles) > 0 {
		b.WriteString("\nCycles:\n")
		for i, c := range rep.Cycles {
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, formatWalk(c.Walk))
		}
	}

	var failed []FileReport
	for _, f := range rep.Files {
		if f.Failure != "" {
			failed = append(failed, f)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\nScan failures:\n")
		for _, f := range failed {
			fmt.Fprintf(&b, "  %s: %s\n", f.Path, f.Failure)
		}
	}

	if len(rep.Errors) > 0 {
		b.WriteString("\nResolution errors:\n")
		for _, msg := range rep.Errors {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatWalk renders a closed walk as "a -> b -> a".
func formatWalk(walk []EdgeReport) string {
	if len(walk) == 0 {
		return ""
	}
	parts := []string{walk[0].From}
	for _, e := range walk {
		parts = append(parts, e.To)
	}
	return strings.Join(parts, " -> ")
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
