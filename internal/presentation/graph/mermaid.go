package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/loop"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	// Executions counts runs per display id, as in a run report.
	Executions map[string]int
	// Failed marks the node that aborted the run, if any.
	Failed string
}

// Loop is one open/close pair and the nodes its iterations clone.
type Loop struct {
	Open      string
	Close     string
	Contained []string
}

// Loops finds every open/close pair in the prompt, with the contained set
// an expansion of that close node would clone. Pairs are ordered by
// contained size, largest first, so nested loops come after the loops
// that hold them.
func Loops(p *domain.Prompt) []Loop {
	var out []Loop
	for _, id := range p.IDs() {
		n, _ := p.Node(id)
		in, ok := n.Inputs[loop.FlowSocket]
		if !ok || !in.IsLink() {
			continue
		}
		upstream, err := loop.Upstream(p, id)
		if err != nil {
			continue
		}
		set := loop.Contained(upstream, in.Link.From, id)
		members := make([]string, 0, len(set))
		for m := range set {
			members = append(members, m)
		}
		sort.Strings(members)
		out = append(out, Loop{Open: in.Link.From, Close: id, Contained: members})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Contained) > len(out[j].Contained)
	})
	return out
}

// GenerateMermaid produces a Mermaid flowchart of a prompt.
// It applies semantic styling:
// - Loop open/close: {{Hexagon}}
// - Default: [Rectangle]
// Links are labeled with the consuming socket; flow handle links are dotted.
// Every loop is drawn as a subgraph holding its contained nodes.
// It also applies overlay styles (Visited/Failed) if provided.
func GenerateMermaid(p *domain.Prompt, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	loops := Loops(p)
	boundary := make(map[string]bool)
	for _, l := range loops {
		boundary[l.Open] = true
		boundary[l.Close] = true
	}

	for _, id := range p.IDs() {
		node, _ := p.Node(id)
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		if boundary[node.ID] {
			opener, closer = "{{", "}}"
		}

		label := node.ID
		if node.Display() != node.ID {
			label = fmt.Sprintf("%s (%s)", node.ID, node.Display())
		}
		label = fmt.Sprintf("%s <br/> %s", label, node.Class)
		if overlay != nil {
			if count := overlay.Executions[node.Display()]; count > 1 {
				label = fmt.Sprintf("%s <br/> x%d", label, count)
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)

		for _, name := range node.InputNames() {
			in := node.Inputs[name]
			if !in.IsLink() {
				continue
			}
			safeFrom := sanitizeMermaidID(in.Link.From)
			if name == loop.FlowSocket {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeFrom, name, safeID)
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeFrom, escapeLabel(name), safeID)
		}
	}

	for _, l := range loops {
		fmt.Fprintf(&sb, "    subgraph loop_%s [\"loop %s\"]\n", sanitizeMermaidID(l.Close), escapeLabel(l.Close))
		for _, m := range l.Contained {
			fmt.Fprintf(&sb, "        %s\n", sanitizeMermaidID(m))
		}
		sb.WriteString("    end\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		for _, id := range p.IDs() {
			node, _ := p.Node(id)
			if overlay.Executions[node.Display()] > 0 && node.ID != overlay.Failed {
				fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(node.ID))
			}
		}
		if overlay.Failed != "" {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID(overlay.Failed))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
