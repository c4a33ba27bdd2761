// Package modules discovers Python source files and maps dotted
// module names onto them.
package modules

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are never walked during discovery.
var skipDirs = map[string]bool{
	"__pycache__":  true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	"venv":         true,
	".venv":        true,
	"env":          true,
	"node_modules": true,
	".fastdeps":    true,
	".tox":         true,
	".eggs":        true,
	"build":        true,
	"dist":         true,
}

// Discover returns the Python files under target, sorted. A target
// that is itself a file yields just that file. Directories in
// skipDirs are not entered. Discovery never leaves the target's own
// subtree; files the target imports from elsewhere under the analysis
// root are picked up later by index probes.
func Discover(target string) ([]string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{abs}, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != abs && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
