package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("REACTIVE_LOG_LEVEL", "")
	t.Setenv("REACTIVE_DEVTOOLS_PORT", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", t.TempDir()))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDemoChain(t *testing.T) {
	out, _, err := execute(t, "demo", "chain")
	if err != nil {
		t.Fatalf("demo chain: %v", err)
	}
	for _, want := range []string{"chain: setup", "  area = 200", "chain: width.Set(200)", "  area = 400"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "area = 100") {
		t.Errorf("stale value printed:\n%s", out)
	}
}

func TestDemoCascadeWarnsOnReentry(t *testing.T) {
	out, stderr, err := execute(t, "demo", "cascade")
	if err != nil {
		t.Fatalf("demo cascade: %v", err)
	}
	if !strings.Contains(out, "autosave #1") {
		t.Errorf("output missing autosave:\n%s", out)
	}
	if !strings.Contains(stderr, "code=R001") || !strings.Contains(stderr, "name=autosave") {
		t.Errorf("expected an R001 warning on stderr, got:\n%s", stderr)
	}
}

func TestDemoList(t *testing.T) {
	out, _, err := execute(t, "demo", "--list")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"cascade", "chain", "cleanup", "dynamic"} {
		if !strings.Contains(out, name) {
			t.Errorf("list missing %s:\n%s", name, out)
		}
	}
}

func TestDemoUnknownScenario(t *testing.T) {
	_, _, err := execute(t, "demo", "spreadsheet")
	if !errors.HasCode(err, "X001") {
		t.Errorf("expected X001, got %v", err)
	}
}

func TestGraphText(t *testing.T) {
	out, _, err := execute(t, "graph", "chain")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"HANDLE", "width", "scale", "area", "print-area", "invalidator^3"} {
		if !strings.Contains(out, want) {
			t.Errorf("graph missing %q:\n%s", want, out)
		}
	}
}

func TestGraphJSON(t *testing.T) {
	out, _, err := execute(t, "graph", "dynamic", "--format", "json", "--steps")
	if err != nil {
		t.Fatal(err)
	}
	var g reactive.Graph
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	status, ok := g.Lookup("status-bar")
	if !ok {
		t.Fatal("status-bar effect missing")
	}
	// After the last step the ruler is hidden, so cursor is not a dependency.
	if len(status.Deps) != 2 {
		t.Errorf("status-bar deps = %v, want showRuler and title", status.Deps)
	}
}

func TestGraphJSONColor(t *testing.T) {
	out, _, err := execute(t, "graph", "chain", "--format", "json", "--color")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\x1b[") || !strings.Contains(out, "runtime") {
		t.Errorf("expected highlighted JSON, got:\n%s", out)
	}
}

func TestGraphBadFormat(t *testing.T) {
	_, _, err := execute(t, "graph", "--format", "yaml")
	if !errors.HasCode(err, "C003") {
		t.Errorf("expected C003, got %v", err)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "demo", "chain", "--log-level", "chatty")
	if !errors.HasCode(err, "C003") {
		t.Errorf("expected C003, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}
