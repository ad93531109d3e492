package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/weave/pkg/schema"
)

// SchemaMarkdown renders a resolved schema as a markdown section with one
// table for inputs and one for outputs.
func SchemaMarkdown(title string, s schema.Schema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)

	if len(s.Inputs) > 0 {
		sb.WriteString("| Input | Type | Flags |\n|---|---|---|\n")
		for _, in := range s.Inputs {
			fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", in.Name, in.Type, flags(in))
		}
		sb.WriteString("\n")
	}

	if len(s.Outputs) > 0 {
		sb.WriteString("| # | Output | Type |\n|---|---|---|\n")
		for i, out := range s.Outputs {
			fmt.Fprintf(&sb, "| %d | `%s` | `%s` |\n", i, out.Name, out.Type)
		}
		sb.WriteString("\n")
	}

	if len(s.Groups) > 0 {
		groups := make([]string, 0, len(s.Groups))
		for g := range s.Groups {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		for _, g := range groups {
			fmt.Fprintf(&sb, "- group `%s`: %d slots from %d\n", g, s.Groups[g], s.Start(g))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func flags(in schema.Input) string {
	var parts []string
	if in.Optional {
		parts = append(parts, "optional")
	}
	if in.Hidden {
		parts = append(parts, "hidden")
	}
	if in.RawLink {
		parts = append(parts, "raw link")
	}
	if in.Default != nil {
		parts = append(parts, fmt.Sprintf("default `%v`", in.Default))
	}
	return strings.Join(parts, ", ")
}

// Verdict renders the outcome of a validation: a green OK line, or one red
// line per failure.
func Verdict(p termenv.Profile, err error) string {
	if err == nil {
		return p.String("OK").Foreground(p.Color("#22c55e")).Bold().String()
	}

	failures := schema.ValidationErrors(err)
	if len(failures) == 0 {
		failures = []error{err}
	}

	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		mark := p.String("FAIL").Foreground(p.Color("#ef4444")).Bold()
		var ve *schema.ValidationError
		if errors.As(f, &ve) && ve.Node != "" {
			lines = append(lines, fmt.Sprintf("%s %s", mark, p.String(f.Error()).Foreground(p.Color("#fca5a5"))))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, f.Error()))
	}
	return strings.Join(lines, "\n")
}
