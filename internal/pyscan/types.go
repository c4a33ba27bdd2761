// Package pyscan extracts import declarations from Python source text
// without executing it. It lexes only the subset of the language needed
// to recognize import statements and skips everything else.
package pyscan

import "fmt"

// ImportRecord is one recognized import declaration, prior to resolution.
type ImportRecord struct {
	// Module is the dotted target path. Empty for "from . import x"
	// style records and for dynamic records.
	Module string `json:"module"`

	// Names lists the imported symbols of a from-import. A whole-module
	// import has no names. A wildcard import is recorded as ["*"].
	Names []string `json:"names,omitempty"`

	// Level is the relative-import level: 0 for absolute imports,
	// N for N leading dots.
	Level int `json:"level,omitempty"`

	// Line is the 1-based source line of the statement.
	Line int `json:"line"`

	// IsFrom marks "from X import Y" records.
	IsFrom bool `json:"isFrom,omitempty"`

	// Depth is the enclosing-block depth of the statement. Zero means
	// module level; anything deeper is not guaranteed to execute at
	// load time.
	Depth int `json:"depth,omitempty"`

	// Dynamic marks import-like calls whose target is computed rather
	// than a string literal. Dynamic records are never resolved.
	Dynamic bool `json:"dynamic,omitempty"`
}

// SyntaxError reports a malformed import statement. It aborts scanning
// of the file that contains it, and only that file.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Msg)
}
