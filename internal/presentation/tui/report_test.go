package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

func TestSchemaMarkdown(t *testing.T) {
	s := schema.Schema{
		Inputs: []schema.Input{
			{Name: "value1", Type: socket.Int()},
			{Name: "value2", Type: socket.Int(), Optional: true, Default: 0},
		},
		Outputs: []schema.Output{{Name: "list", Type: socket.Parse("LIST<INT>")}},
		Groups:  map[string]int{"N": 2},
	}

	got := SchemaMarkdown("list (MakeList)", s)
	for _, want := range []string{
		"## list (MakeList)",
		"| `value1` | `INT` |  |",
		"| `value2` | `INT` | optional, default `0` |",
		"| 0 | `list` | `LIST<INT>` |",
		"- group `N`: 2 slots from 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("SchemaMarkdown() missing %q\nGot:\n%s", want, got)
		}
	}
}

func TestVerdict(t *testing.T) {
	if got := Verdict(termenv.Ascii, nil); got != "OK" {
		t.Errorf("Verdict(nil) = %q", got)
	}

	err := schema.Join(
		&schema.ValidationError{Node: "math", Socket: "a", Declared: socket.Int(), Actual: socket.Boolean()},
		errors.New("unknown node class"),
	)
	got := Verdict(termenv.Ascii, err)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "FAIL ") || !strings.Contains(lines[0], `node "math"`) {
		t.Errorf("Unexpected first line %q", lines[0])
	}
	if lines[1] != "FAIL unknown node class" {
		t.Errorf("Unexpected second line %q", lines[1])
	}
}
