// Package resolver classifies import records against the module
// index: internal project edges, standard-library names, external
// dependencies, or errors.
package resolver

import (
	"strings"

	"github.com/pathway/fastdeps/internal/errors"
	"github.com/pathway/fastdeps/internal/modules"
	"github.com/pathway/fastdeps/internal/pyscan"
)

// Kind tags a resolution result.
type Kind int

const (
	// KindInternal resolved to a project file.
	KindInternal Kind = iota
	// KindStdlib names a standard-library module.
	KindStdlib
	// KindExternal names a dependency outside the project.
	KindExternal
	// KindDynamic marks records the scanner tagged as computed;
	// they join neither the graph nor the external set.
	KindDynamic
	// KindError marks a relative import that cannot be resolved.
	KindError
)

// Resolution is the outcome for one import target.
type Resolution struct {
	Kind Kind
	// Path is the resolved project file for KindInternal.
	Path string
	// Name is the top-level module name for KindStdlib/KindExternal.
	Name string
	// Err describes KindError resolutions.
	Err error
}

// Resolver resolves import records for one analysis run. Not safe
// for concurrent use: lookups may lazily extend the index through
// filesystem probes.
type Resolver struct {
	index    *modules.Index
	stdlib   map[string]bool
	external map[string]bool
}

// New builds a Resolver over the index, applying any project
// declarations on top of the bundled stdlib set.
func New(index *modules.Index, decls *Declarations) *Resolver {
	r := &Resolver{
		index:    index,
		stdlib:   make(map[string]bool, len(stdlibModules)),
		external: make(map[string]bool),
	}
	for name := range stdlibModules {
		r.stdlib[name] = true
	}
	if decls != nil {
		for _, name := range decls.Modules.Stdlib {
			r.stdlib[name] = true
		}
		for _, name := range decls.Modules.External {
			r.external[name] = true
		}
	}
	return r
}

// Resolve classifies one import record made from fromPath. From-style
// relative imports with no module part fan out to one resolution per
// imported name; everything else yields exactly one.
func (r *Resolver) Resolve(rec pyscan.ImportRecord, fromPath string) []Resolution {
	if rec.Dynamic {
		return []Resolution{{Kind: KindDynamic}}
	}
	if rec.Level == 0 {
		return []Resolution{r.resolveAbsolute(rec.Module)}
	}
	return r.resolveRelative(rec, fromPath)
}

// resolveAbsolute looks up the full dotted path, then progressively
// shorter prefixes, longest first. "import package.sub" resolves to
// the package anchor when sub itself is not indexed.
func (r *Resolver) resolveAbsolute(module string) Resolution {
	if module == "" {
		return Resolution{
			Kind: KindError,
			Err:  errors.Newf(errors.ResolutionError, "empty absolute import target"),
		}
	}
	parts := strings.Split(module, ".")
	top := parts[0]

	if r.external[top] {
		return Resolution{Kind: KindExternal, Name: top}
	}
	if r.stdlib[top] {
		return Resolution{Kind: KindStdlib, Name: top}
	}

	for i := len(parts); i >= 1; i-- {
		name := strings.Join(parts[:i], ".")
		if path, ok := r.index.Probe(name); ok {
			return Resolution{Kind: KindInternal, Path: path}
		}
	}

	return Resolution{Kind: KindExternal, Name: top}
}

// resolveRelative walks level ancestor packages up from the importing
// file's own dotted name, then resolves below that anchor.
func (r *Resolver) resolveRelative(rec pyscan.ImportRecord, fromPath string) []Resolution {
	fromName := r.index.ModuleName(fromPath)
	if fromName == "" {
		return []Resolution{{
			Kind: KindError,
			Err:  errors.Newf(errors.ResolutionError, "relative import from file outside the analysis root: %s", fromPath),
		}}
	}

	// The containing package: for an __init__.py that is the module
	// name itself, otherwise the name minus its last component.
	pkgParts := strings.Split(fromName, ".")
	if !r.index.IsPackage(fromName) {
		pkgParts = pkgParts[:len(pkgParts)-1]
	}

	// Level 1 is the current package; each extra dot steps one
	// package up.
	up := rec.Level - 1
	if up > len(pkgParts) {
		return []Resolution{{
			Kind: KindError,
			Err: errors.Newf(errors.ResolutionError,
				"relative import level %d exceeds package depth of %s", rec.Level, fromName),
		}}
	}
	anchor := pkgParts[:len(pkgParts)-up]

	if rec.Module != "" {
		target := strings.Join(append(append([]string{}, anchor...), strings.Split(rec.Module, ".")...), ".")
		if path, ok := r.index.Probe(target); ok {
			return []Resolution{{Kind: KindInternal, Path: path}}
		}
		return []Resolution{{
			Kind: KindError,
			Err:  errors.Newf(errors.ResolutionError, "relative import target not found: %s", target),
		}}
	}

	// "from . import a, b": each name is tried as a sibling module,
	// falling back to the package anchor that would define it.
	anchorName := strings.Join(anchor, ".")
	var out []Resolution
	for _, name := range rec.Names {
		if name == "*" {
			continue
		}
		target := name
		if anchorName != "" {
			target = anchorName + "." + name
		}
		if path, ok := r.index.Probe(target); ok {
			out = append(out, Resolution{Kind: KindInternal, Path: path})
			continue
		}
		if anchorName != "" {
			if path, ok := r.index.Probe(anchorName); ok {
				out = append(out, Resolution{Kind: KindInternal, Path: path})
				continue
			}
		}
		out = append(out, Resolution{
			Kind: KindError,
			Err:  errors.Newf(errors.ResolutionError, "relative import name not found: %s", target),
		})
	}
	if len(out) == 0 {
		// "from . import *" or an empty name list
		if anchorName != "" {
			if path, ok := r.index.Probe(anchorName); ok {
				return []Resolution{{Kind: KindInternal, Path: path}}
			}
		}
		return []Resolution{{
			Kind: KindError,
			Err:  errors.Newf(errors.ResolutionError, "relative import has no resolvable target"),
		}}
	}
	return out
}
