package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/hargabyte/stepgraph/internal/present"
)

// D2Theme selects a built-in D2 theme and layout engine.
type D2Theme struct {
	ID           int
	Name         string
	LayoutEngine string // dagre, elk, tala
}

// D2Themes are the themes accepted by Options.Theme.
// See: d2 themes (CLI) or https://d2lang.com/tour/themes/
var D2Themes = map[string]D2Theme{
	"default":          {ID: 8, Name: "Colorblind Clear", LayoutEngine: "elk"},
	"colorblind-clear": {ID: 8, Name: "Colorblind Clear", LayoutEngine: "elk"},
	"mixed-berry":      {ID: 5, Name: "Mixed Berry Blue", LayoutEngine: "elk"},
	"earth-tones":      {ID: 103, Name: "Earth Tones", LayoutEngine: "elk"},
	"terminal":         {ID: 300, Name: "Terminal", LayoutEngine: "elk"},
	"dark":             {ID: 200, Name: "Dark Mauve", LayoutEngine: "elk"},
	"neutral":          {ID: 0, Name: "Neutral Default", LayoutEngine: "dagre"},
}

// D2Renderer writes D2 diagram source.
type D2Renderer struct {
	opts Options
}

// D2 returns the D2 source for m.
func D2(m *present.Model, opts Options) string {
	var sb strings.Builder
	writeD2(&sb, m, opts)
	return sb.String()
}

// Render implements Renderer.
func (r *D2Renderer) Render(w io.Writer, m *present.Model) error {
	_, err := io.WriteString(w, D2(m, r.opts))
	return err
}

func writeD2(sb *strings.Builder, m *present.Model, opts Options) {
	theme, ok := D2Themes[opts.Theme]
	if !ok {
		theme = D2Themes["default"]
	}
	direction := opts.Direction
	if direction != "down" {
		direction = "right"
	}

	sb.WriteString("vars: {\n  d2-config: {\n")
	fmt.Fprintf(sb, "    theme-id: %d\n", theme.ID)
	fmt.Fprintf(sb, "    layout-engine: %s\n", theme.LayoutEngine)
	sb.WriteString("  }\n}\n")
	fmt.Fprintf(sb, "direction: %s\n", direction)
	if m.Title != "" {
		fmt.Fprintf(sb, "title: {\n  label: \"%s\"\n  near: top-center\n  shape: text\n}\n", escapeD2String(m.Title))
	}
	sb.WriteString("\n")

	sb.WriteString("# Nodes\n")
	for _, n := range m.Nodes {
		writeD2Node(sb, n)
	}
	sb.WriteString("\n")

	sb.WriteString("# Edges\n")
	for _, e := range m.Edges {
		writeD2Edge(sb, e)
	}
}

func writeD2Node(sb *strings.Builder, n present.Node) {
	fmt.Fprintf(sb, "%s: {\n", d2ID(n.ID))
	fmt.Fprintf(sb, "  label: \"%s\"\n", escapeD2String(nodeText(n)))
	if n.Tooltip != "" {
		fmt.Fprintf(sb, "  tooltip: \"%s\"\n", escapeD2String(n.Tooltip))
	}
	switch n.Role {
	case present.RoleEntry:
		sb.WriteString("  shape: hexagon\n")
	case present.RoleDangling:
		sb.WriteString("  shape: rectangle\n")
	default:
		sb.WriteString("  shape: oval\n")
	}
	sb.WriteString("  style: {\n")
	if n.Color != "" {
		fmt.Fprintf(sb, "    fill: \"%s\"\n", escapeD2String(n.Color))
	}
	switch n.Role {
	case present.RoleEntry:
		sb.WriteString("    stroke-width: 3\n")
		sb.WriteString("    bold: true\n")
	case present.RoleDangling:
		sb.WriteString("    stroke-dash: 4\n")
	}
	sb.WriteString("  }\n}\n")
}

func writeD2Edge(sb *strings.Builder, e present.Edge) {
	fmt.Fprintf(sb, "%s -> %s: \"%s\"", d2ID(e.From), d2ID(e.To), escapeD2String(e.Label))
	if e.Dangling {
		sb.WriteString(" {\n  style.stroke-dash: 4\n  style.stroke: red\n}")
	}
	sb.WriteString("\n")
}

// d2ID is the shape key for an entity. Keys never need quoting.
func d2ID(id int) string {
	return fmt.Sprintf("n%d", id)
}

// escapeD2String escapes text for a double-quoted D2 string.
func escapeD2String(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
