package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pathway/fastdeps/internal/analyzer"
	"github.com/pathway/fastdeps/internal/logging"
)

func analyzeTree(t *testing.T, files map[string]string) *analyzer.Result {
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
	res, err := analyzer.Analyze(context.Background(), analyzer.Options{Target: root}, logging.Nop())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return res
}

func sampleResult(t *testing.T) *analyzer.Result {
	t.Helper()
	return analyzeTree(t, map[string]string{
		"a.py":      "import b\nimport numpy\n",
		"b.py":      "import a\n",
		"broken.py": "from x imp y\n",
	})
}

func TestBuildReportRelativePaths(t *testing.T) {
	rep := BuildReport(sampleResult(t))

	for _, f := range rep.Files {
		if filepath.IsAbs(f.Path) || strings.Contains(f.Path, "\\") {
			t.Errorf("file path not relativized: %q", f.Path)
		}
	}
	if len(rep.Files) != 3 {
		t.Errorf("files = %+v", rep.Files)
	}
	if len(rep.Cycles) != 1 {
		t.Errorf("cycles = %+v", rep.Cycles)
	}
	if len(rep.Externals) != 1 || rep.Externals[0] != "numpy" {
		t.Errorf("externals = %v", rep.Externals)
	}

	var failure string
	for _, f := range rep.Files {
		if f.Path == "broken.py" {
			failure = f.Failure
		}
	}
	if failure == "" {
		t.Errorf("broken.py failure not carried into report")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "yaml", "dot", ""} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("ParseFormat accepted xml")
	}
}

func TestRenderJSON(t *testing.T) {
	rep := BuildReport(sampleResult(t))

	var buf bytes.Buffer
	if err := Render(&buf, rep, FormatJSON); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != rep.RunID || len(decoded.Files) != len(rep.Files) {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestRenderYAML(t *testing.T) {
	rep := BuildReport(sampleResult(t))

	var buf bytes.Buffer
	if err := Render(&buf, rep, FormatYAML); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Externals) != 1 || decoded.Externals[0] != "numpy" {
		t.Errorf("externals lost in YAML: %+v", decoded.Externals)
	}
}

func TestRenderText(t *testing.T) {
	rep := BuildReport(sampleResult(t))

	var buf bytes.Buffer
	if err := Render(&buf, rep, FormatText); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"External dependencies:", "numpy", "Cycles:", "Scan failures:", "broken.py"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDOT(t *testing.T) {
	rep := BuildReport(sampleResult(t))

	var buf bytes.Buffer
	if err := Render(&buf, rep, FormatDOT); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph dependencies {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("malformed digraph:\n%s", out)
	}
	if !strings.Contains(out, `"a.py" -> "b.py" [color=red]`) {
		t.Errorf("cycle edge not highlighted:\n%s", out)
	}
	if !strings.Contains(out, `"numpy" [shape=box`) {
		t.Errorf("external node missing:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	rep := BuildReport(sampleResult(t))

	for _, format := range []Format{FormatText, FormatJSON, FormatYAML, FormatDOT} {
		var first, second bytes.Buffer
		if err := Render(&first, rep, format); err != nil {
			t.Fatalf("Render %s failed: %v", format, err)
		}
		if err := Render(&second, rep, format); err != nil {
			t.Fatalf("Render %s failed: %v", format, err)
		}
		if !bytes.Equal(first.Bytes(), second.Bytes()) {
			t.Errorf("%s output is not byte-stable", format)
		}
	}
}
