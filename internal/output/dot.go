package output

import (
	"fmt"
	"io"
	"strings"
)

// renderDOT writes a Graphviz digraph. Cycle members are highlighted,
// scan failures get a dashed outline, and externals appear as boxes.
func renderDOT(w io.Writer, rep *Report) error {
	var b strings.Builder

	inCycle := make(map[string]bool)
	for _, c := range rep.Cycles {
		for _, m := range c.Members {
			inCycle[m] = true
		}
	}

	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=ellipse];\n")

	for _, f := range rep.Files {
		attrs := []string{fmt.Sprintf("label=%s", dotQuote(f.Path))}
		if inCycle[f.Path] {
			attrs = append(attrs, "color=red")
		}
		if f.Failure != "" {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&b, "  %s [%s];\n", dotQuote(f.Path), strings.Join(attrs, ", "))
	}

	for _, name := range rep.Externals {
		fmt.Fprintf(&b, "  %s [shape=box, style=filled, fillcolor=lightgrey];\n", dotQuote(name))
	}

	for _, e := range rep.Edges {
		attrs := ""
		if inCycle[e.From] && inCycle[e.To] {
			attrs = " [color=red]"
		}
		fmt.Fprintf(&b, "  %s -> %s%s;\n", dotQuote(e.From), dotQuote(e.To), attrs)
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func dotQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
