package modules

import (
	"os"
	"path/filepath"
	"testing"
)

// makeTree writes a file tree under a fresh temp root.
func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return root
}

func TestDiscoverFlat(t *testing.T) {
	root := makeTree(t, map[string]string{
		"a.py":  "",
		"b.py":  "",
		"c.txt": "",
	})

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	// sorted output
	if filepath.Base(files[0]) != "a.py" || filepath.Base(files[1]) != "b.py" {
		t.Errorf("unexpected order: %v", files)
	}
}

func TestDiscoverNestedAndSkips(t *testing.T) {
	root := makeTree(t, map[string]string{
		"main.py":                  "",
		"sub/module.py":            "",
		"__pycache__/cached.py":    "",
		".git/config.py":           "",
		"venv/lib/site.py":         "",
		"node_modules/pkg/idx.py":  "",
		".fastdeps/leftover.py":    "",
		"sub/__pycache__/x.py":     "",
	})

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %v", files)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	root := makeTree(t, map[string]string{"only.py": "import os\n"})
	target := filepath.Join(root, "only.py")

	files, err := Discover(target)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 || files[0] != target {
		t.Errorf("expected just the file, got %v", files)
	}
}

func TestDiscoverMissingTarget(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Errorf("expected error for missing target")
	}
}

func TestIndexNames(t *testing.T) {
	root := makeTree(t, map[string]string{
		"pkg/__init__.py":     "",
		"pkg/mod.py":          "",
		"pkg/sub/__init__.py": "",
		"pkg/sub/deep.py":     "",
		"top.py":              "",
	})
	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	ix := BuildIndex(root, files)

	tests := []struct {
		name string
		file string
	}{
		{"pkg", "pkg/__init__.py"},
		{"pkg.mod", "pkg/mod.py"},
		{"pkg.sub", "pkg/sub/__init__.py"},
		{"pkg.sub.deep", "pkg/sub/deep.py"},
		{"top", "top.py"},
	}
	for _, tt := range tests {
		got, ok := ix.Lookup(tt.name)
		if !ok {
			t.Errorf("Lookup(%q) missed", tt.name)
			continue
		}
		want := filepath.Join(root, filepath.FromSlash(tt.file))
		if got != want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.name, got, want)
		}
	}

	if !ix.IsPackage("pkg") || !ix.IsPackage("pkg.sub") {
		t.Errorf("package anchors not recognized")
	}
	if ix.IsPackage("pkg.mod") {
		t.Errorf("plain module flagged as package")
	}
	if _, ok := ix.Lookup("nothing.here"); ok {
		t.Errorf("unknown name resolved")
	}
}

func TestIndexPackageAnchorWins(t *testing.T) {
	// Both thing.py and thing/__init__.py produce the dotted name
	// "thing"; the anchor must win, deterministically.
	root := makeTree(t, map[string]string{
		"thing.py":          "",
		"thing/__init__.py": "",
	})
	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	ix := BuildIndex(root, files)

	got, ok := ix.Lookup("thing")
	if !ok {
		t.Fatalf("Lookup missed")
	}
	want := filepath.Join(root, "thing", "__init__.py")
	if got != want {
		t.Errorf("Lookup = %q, want the package anchor %q", got, want)
	}
}

func TestIndexModuleName(t *testing.T) {
	root := makeTree(t, map[string]string{"pkg/mod.py": ""})
	ix := BuildIndex(root, nil)

	path := filepath.Join(root, "pkg", "mod.py")
	if got := ix.ModuleName(path); got != "pkg.mod" {
		t.Errorf("ModuleName = %q", got)
	}
	if got := ix.ModuleName("/somewhere/else.py"); got != "" {
		t.Errorf("outside file got name %q", got)
	}
}

func TestIndexProbe(t *testing.T) {
	root := makeTree(t, map[string]string{
		"lib/util.py":        "",
		"lib/__init__.py":    "",
		"target/__init__.py": "",
	})
	// Index only the target subtree; lib is probed lazily.
	files, err := Discover(filepath.Join(root, "target"))
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	ix := BuildIndex(root, files)

	if _, ok := ix.Lookup("lib.util"); ok {
		t.Fatalf("lib.util should not be indexed before probing")
	}

	path, ok := ix.Probe("lib.util")
	if !ok {
		t.Fatalf("Probe(lib.util) missed")
	}
	if path != filepath.Join(root, "lib", "util.py") {
		t.Errorf("Probe path = %q", path)
	}
	if _, ok := ix.Lookup("lib.util"); !ok {
		t.Errorf("probed module not added to the index")
	}

	if path, ok := ix.Probe("lib"); !ok || path != filepath.Join(root, "lib", "__init__.py") {
		t.Errorf("package probe = %q, %v", path, ok)
	}

	if _, ok := ix.Probe("no.such.module"); ok {
		t.Errorf("probe invented a module")
	}
	// memoized negative
	if _, ok := ix.Probe("no.such.module"); ok {
		t.Errorf("memoized probe invented a module")
	}
}
