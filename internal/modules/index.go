package modules

import (
	"os"
	"path/filepath"
	"strings"
)

const initFile = "__init__.py"

// Index maps dotted module names to file paths for one analysis run.
// It is built single-writer and is not safe for concurrent mutation;
// resolution reads it after construction.
//
// Two maps are kept: plain modules (pkg.mod -> pkg/mod.py) and
// package anchors (pkg -> pkg/__init__.py). When a directory and a
// module produce the same dotted name, the package anchor wins; the
// deeper, more specific path is the one a real interpreter would
// load.
type Index struct {
	root     string
	modules  map[string]string
	packages map[string]string
	probed   map[string]bool
}

// BuildIndex indexes the discovered files against the analysis root.
// One pass, no scan results needed, so it can run while files are
// being scanned.
func BuildIndex(root string, files []string) *Index {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	ix := &Index{
		root:     abs,
		modules:  make(map[string]string, len(files)),
		packages: make(map[string]string),
		probed:   make(map[string]bool),
	}
	for _, f := range files {
		ix.Add(f)
	}
	return ix
}

// Root returns the analysis root the index is anchored at.
func (ix *Index) Root() string {
	return ix.root
}

// Add indexes one file. Files outside the root are ignored.
func (ix *Index) Add(path string) {
	name, isPkg := ix.nameOf(path)
	if name == "" {
		return
	}
	if isPkg {
		ix.packages[name] = path
	} else {
		ix.modules[name] = path
	}
}

// nameOf derives the dotted name for path. The second return marks
// package anchors (__init__.py files, named after their directory).
func (ix *Index) nameOf(path string) (string, bool) {
	rel, err := filepath.Rel(ix.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, ".py") {
		return "", false
	}

	if filepath.Base(rel) == initFile {
		dir := strings.TrimSuffix(rel, initFile)
		dir = strings.Trim(dir, "/")
		if dir == "" {
			// __init__.py at the root itself has no dotted name.
			return "", false
		}
		return strings.ReplaceAll(dir, "/", "."), true
	}

	rel = strings.TrimSuffix(rel, ".py")
	return strings.ReplaceAll(rel, "/", "."), false
}

// ModuleName returns the dotted name of a project file, or "" when
// the file lies outside the root.
func (ix *Index) ModuleName(path string) string {
	name, _ := ix.nameOf(path)
	return name
}

// Lookup resolves a dotted name to a file path. Package anchors are
// preferred over plain modules of the same name.
func (ix *Index) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if p, ok := ix.packages[name]; ok {
		return p, true
	}
	if p, ok := ix.modules[name]; ok {
		return p, true
	}
	return "", false
}

// IsPackage reports whether the dotted name is a package anchor.
func (ix *Index) IsPackage(name string) bool {
	_, ok := ix.packages[name]
	return ok
}

// Probe checks the filesystem for a module that discovery did not
// walk (a name under the analysis root but outside the requested
// target). On success the file is added to the index and returned.
// Probe results, positive and negative, are memoized per name.
func (ix *Index) Probe(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if path, ok := ix.Lookup(name); ok {
		return path, true
	}
	if ix.probed[name] {
		return "", false
	}
	ix.probed[name] = true

	base := filepath.Join(ix.root, filepath.FromSlash(strings.ReplaceAll(name, ".", "/")))
	if path := filepath.Join(base, initFile); regularFile(path) {
		ix.Add(path)
		return path, true
	}
	if path := base + ".py"; regularFile(path) {
		ix.Add(path)
		return path, true
	}
	return "", false
}

func regularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
