package scenario

import (
	"bytes"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func run(t *testing.T, name string) []string {
	t.Helper()
	s, err := Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	rt := reactive.NewRuntime(reactive.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	inst := s.Start(rt, nil)
	inst.Run()
	return inst.Log.Lines()
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"chain", []string{"area = 200", "area = 400", "area = 600", "area = 300"}},
		{"dynamic", []string{
			"status: untitled",
			"status: untitled | col 4",
			"status: untitled | col 9",
			"status: untitled",
			"status: notes.md",
		}},
		{"cleanup", []string{"start", "stop", "start", "stop"}},
		{"cascade", []string{
			"caret at 0",
			"0 words",
			"autosave #0",
			"4 words",
			"caret at 21",
			"clamp selection to 5",
			"caret at 5",
			"clamp done",
			"1 words",
			"autosave #1",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.name); !slices.Equal(got, tt.want) {
				t.Errorf("log:\n got  %q\n want %q", got, tt.want)
			}
		})
	}
}

func TestAllSorted(t *testing.T) {
	var names []string
	for _, s := range All() {
		names = append(names, s.Name)
		if s.Description == "" {
			t.Errorf("scenario %s has no description", s.Name)
		}
	}
	want := []string{"cascade", "chain", "cleanup", "dynamic"}
	if !slices.Equal(names, want) {
		t.Errorf("All() = %v, want %v", names, want)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("spreadsheet")
	if !errors.HasCode(err, "X001") {
		t.Errorf("expected X001, got %v", err)
	}
}

func TestStepWrapsAround(t *testing.T) {
	s, _ := Lookup("chain")
	var buf bytes.Buffer
	inst := s.Start(reactive.NewRuntime(), &buf)

	for i := 0; i < len(inst.Steps); i++ {
		inst.Step()
	}
	if label := inst.Step(); label != inst.Steps[0].Label {
		t.Errorf("Step after the last should wrap to %q, got %q", inst.Steps[0].Label, label)
	}

	out := buf.String()
	for _, want := range []string{"chain: setup", "  area = 200", "chain: width.Set(200)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogRetentionIsBounded(t *testing.T) {
	s, _ := Lookup("chain")
	inst := s.Start(reactive.NewRuntime(), nil)

	// Each pass over chain's steps logs three lines.
	for i := 0; i < len(inst.Steps)*MaxLogLines; i++ {
		inst.Step()
	}

	lines := inst.Log.Lines()
	if len(lines) != MaxLogLines {
		t.Fatalf("retained %d lines, want %d", len(lines), MaxLogLines)
	}
	if cap(inst.Log.lines) >= 4*MaxLogLines {
		t.Errorf("backing array grew to %d", cap(inst.Log.lines))
	}
	if last := lines[len(lines)-1]; last != "area = 300" {
		t.Errorf("last line = %q, want the most recent write", last)
	}
}
