package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/pathway/fastdeps/internal/cache"
	"github.com/pathway/fastdeps/internal/logging"
	"github.com/pathway/fastdeps/internal/pyscan"
)

func writeFiles(t *testing.T, contents map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, src := range contents {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func TestScanAllBasic(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.py": "import os\nimport b\n",
		"b.py": "from json import loads\n",
		"c.py": "",
	})

	res := ScanAll(context.Background(), paths, cache.NopStore{}, Config{Workers: 2}, logging.Nop())
	if res.Partial {
		t.Errorf("unexpected partial run")
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(res.Files))
	}
	for path, out := range res.Files {
		if out.Kind != OutcomeOK {
			t.Errorf("%s: kind = %v", path, out.Kind)
		}
	}
}

func TestScanAllSyntaxErrorIsolated(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"good.py": "import os\n",
		"bad.py":  "from os imp path\n",
	})

	res := ScanAll(context.Background(), paths, cache.NopStore{}, Config{Workers: 4}, logging.Nop())

	var badKind, goodKind OutcomeKind
	for path, out := range res.Files {
		if filepath.Base(path) == "bad.py" {
			badKind = out.Kind
		} else {
			goodKind = out.Kind
		}
	}
	if badKind != OutcomeSyntaxError {
		t.Errorf("bad.py kind = %v, want syntax-error", badKind)
	}
	if goodKind != OutcomeOK {
		t.Errorf("good.py kind = %v, want ok", goodKind)
	}
}

func TestScanAllWorkerCountIndependence(t *testing.T) {
	contents := make(map[string]string)
	for i := 0; i < 40; i++ {
		contents[fmt.Sprintf("m%02d.py", i)] = fmt.Sprintf("import os\nimport m%02d\n", (i+1)%40)
	}
	paths := writeFiles(t, contents)

	one := ScanAll(context.Background(), paths, cache.NopStore{}, Config{Workers: 1}, logging.Nop())
	many := ScanAll(context.Background(), paths, cache.NopStore{}, Config{Workers: 8}, logging.Nop())

	if len(one.Files) != len(many.Files) {
		t.Fatalf("result sizes differ: %d vs %d", len(one.Files), len(many.Files))
	}
	for path, a := range one.Files {
		b, ok := many.Files[path]
		if !ok {
			t.Fatalf("path %s missing from parallel run", path)
		}
		if a.Kind != b.Kind || !reflect.DeepEqual(a.Records, b.Records) {
			t.Errorf("path %s differs between 1 and 8 workers", path)
		}
	}
}

func TestScanAllUsesCache(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"a.py": "import os\n",
		"b.py": "import sys\n",
	})
	store, err := cache.OpenSQLite(filepath.Join(t.TempDir(), "scan.db"), logging.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	first := ScanAll(context.Background(), paths, store, Config{Workers: 2}, logging.Nop())
	for path, out := range first.Files {
		if out.FromCache {
			t.Errorf("%s: first run must not hit the cache", path)
		}
	}

	second := ScanAll(context.Background(), paths, store, Config{Workers: 2}, logging.Nop())
	for path, out := range second.Files {
		if !out.FromCache {
			t.Errorf("%s: unchanged file re-scanned", path)
		}
		if !reflect.DeepEqual(out.Records, first.Files[path].Records) {
			t.Errorf("%s: cached records differ from scanned", path)
		}
	}
}

func TestScanAllCacheInvalidatedOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte("import os\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	store, err := cache.OpenSQLite(filepath.Join(dir, "scan.db"), logging.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	ScanAll(context.Background(), []string{path}, store, Config{}, logging.Nop())

	// Grow the file so size, and thus the signature, changes.
	if err := os.WriteFile(path, []byte("import os\nimport json\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	res := ScanAll(context.Background(), []string{path}, store, Config{}, logging.Nop())
	out := res.Files[path]
	if out.FromCache {
		t.Errorf("changed file served from cache")
	}
	if len(out.Records) != 2 {
		t.Errorf("expected 2 records after change, got %d", len(out.Records))
	}
}

func TestScanAllCancellation(t *testing.T) {
	contents := make(map[string]string)
	for i := 0; i < 100; i++ {
		contents[fmt.Sprintf("m%03d.py", i)] = "import os\n"
	}
	paths := writeFiles(t, contents)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := ScanAll(ctx, paths, cache.NopStore{}, Config{Workers: 2}, logging.Nop())
	if !res.Partial {
		t.Errorf("cancelled run must be flagged partial")
	}
	for path, out := range res.Files {
		if out.Kind != OutcomeOK {
			t.Errorf("%s: completed outcome has kind %v", path, out.Kind)
		}
	}
}

func TestScanOneMissingFile(t *testing.T) {
	out := scanOne(filepath.Join(t.TempDir(), "missing.py"), cache.NopStore{}, pyscan.DefaultPrefixBytes)
	if out.Kind != OutcomeWorkerFault {
		t.Errorf("kind = %v, want worker-fault", out.Kind)
	}
	if out.Err == nil {
		t.Errorf("expected error")
	}
}

func TestOutcomeKindString(t *testing.T) {
	tests := []struct {
		kind OutcomeKind
		want string
	}{
		{OutcomeOK, "ok"},
		{OutcomeSyntaxError, "syntax-error"},
		{OutcomeWorkerFault, "worker-fault"},
		{OutcomeTimeout, "timeout"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
