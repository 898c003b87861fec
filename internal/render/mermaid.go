package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hargabyte/stepgraph/internal/present"
)

// MermaidRenderer writes a Mermaid flowchart.
type MermaidRenderer struct {
	opts Options
}

// Mermaid returns the flowchart source for m.
func Mermaid(m *present.Model, opts Options) string {
	direction := "LR"
	if opts.Direction == "down" {
		direction = "TD"
	}

	var sb strings.Builder
	if m.Title != "" {
		fmt.Fprintf(&sb, "---\ntitle: %s\n---\n", escapeMermaidString(m.Title))
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	for _, n := range m.Nodes {
		sb.WriteString("    ")
		sb.WriteString(mermaidNode(n))
		sb.WriteString("\n")
	}
	for _, e := range m.Edges {
		arrow := "-->"
		if e.Dangling {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s|%s| %s\n", mermaidID(e.From), arrow, escapeMermaidString(e.Label), mermaidID(e.To))
	}
	for _, n := range m.Nodes {
		if n.Color == "" {
			continue
		}
		fmt.Fprintf(&sb, "    style %s fill:%s", mermaidID(n.ID), n.Color)
		if n.Role == present.RoleEntry {
			sb.WriteString(",stroke-width:3px")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Render implements Renderer.
func (r *MermaidRenderer) Render(w io.Writer, m *present.Model) error {
	_, err := io.WriteString(w, Mermaid(m, r.opts))
	return err
}

func mermaidNode(n present.Node) string {
	text := escapeMermaidString(n.Name) + "<br/>" + escapeMermaidString(n.Label)
	switch n.Role {
	case present.RoleEntry:
		return fmt.Sprintf("%s{{\"%s\"}}", mermaidID(n.ID), text)
	case present.RoleDangling:
		return fmt.Sprintf("%s[/\"%s\"/]", mermaidID(n.ID), text)
	default:
		return fmt.Sprintf("%s[\"%s\"]", mermaidID(n.ID), text)
	}
}

func mermaidID(id int) string {
	return fmt.Sprintf("n%d", id)
}

// escapeMermaidString escapes text inside a quoted Mermaid label.
func escapeMermaidString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}

// TypePieChart returns a Mermaid pie chart of entity counts per type.
// Types beyond the top n are folded into "other"; n <= 0 keeps all.
func TypePieChart(counts map[string]int, title string, n int) string {
	type slice struct {
		name  string
		count int
	}
	slices := make([]slice, 0, len(counts))
	for k, v := range counts {
		slices = append(slices, slice{k, v})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].count != slices[j].count {
			return slices[i].count > slices[j].count
		}
		return slices[i].name < slices[j].name
	})
	if n > 0 && len(slices) > n {
		other := 0
		for _, s := range slices[n:] {
			other += s.count
		}
		slices = append(slices[:n], slice{"other", other})
	}

	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "pie title %s\n", escapeMermaidString(title))
	} else {
		sb.WriteString("pie\n")
	}
	for _, s := range slices {
		fmt.Fprintf(&sb, "    \"%s\" : %d\n", escapeMermaidString(s.name), s.count)
	}
	return sb.String()
}
