package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/hargabyte/stepgraph/internal/present"
)

// The page loads vis-network from a CDN and says so when it cannot.
// Everything else, including the graph data, is inlined.
const visNetworkURL = "https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
<style>
  html, body { margin: 0; padding: 0; font-family: sans-serif; }
  #header { padding: 6px 10px; font-size: 14px; border-bottom: 1px solid #ddd; }
  #graph { width: {{.Width}}; height: {{.Height}}; }
  div.vis-tooltip { white-space: pre-wrap; font-family: monospace; max-width: 900px; }
</style>
</head>
<body>
<div id="header">{{.Title}} &middot; {{.NodeCount}} entities &middot; {{.EdgeCount}} references</div>
<div id="graph"></div>
<script>
  var container = document.getElementById("graph");
  if (typeof vis === "undefined") {
    container.textContent = "Could not load vis-network from " + {{.Script}} + ". Viewing this page needs network access.";
  } else {
    var nodes = new vis.DataSet({{.Nodes}});
    var edges = new vis.DataSet({{.Edges}});
    var options = {
      nodes: { shape: "dot", size: 12, font: { size: 12, multi: false } },
      edges: { arrows: { to: { enabled: true, scaleFactor: 0.5 } }, font: { size: 10, align: "middle" }, smooth: false },
      interaction: { hover: true, dragNodes: true, zoomView: true, dragView: true, tooltipDelay: 150 },
      physics: { enabled: {{.Physics}}, stabilization: { iterations: 200 }, barnesHut: { gravitationalConstant: -8000, springLength: 120 } }
    };
    var network = new vis.Network(container, { nodes: nodes, edges: edges }, options);
  }
</script>
</body>
</html>
`))

type visNode struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Color       string `json:"color,omitempty"`
	Shape       string `json:"shape,omitempty"`
	BorderWidth int    `json:"borderWidth,omitempty"`
}

type visEdge struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Label  string `json:"label,omitempty"`
	Title  string `json:"title,omitempty"`
	Dashes bool   `json:"dashes,omitempty"`
	Color  string `json:"color,omitempty"`
}

type pageData struct {
	Title     string
	Script    string
	Width     string
	Height    string
	Physics   bool
	NodeCount int
	EdgeCount int
	Nodes     []visNode
	Edges     []visEdge
}

// HTMLRenderer writes a single interactive page with pan, zoom, node
// dragging and hover tooltips.
type HTMLRenderer struct {
	opts Options
}

// HTML writes m as an interactive page.
func HTML(w io.Writer, m *present.Model, opts Options) error {
	return (&HTMLRenderer{opts: opts}).Render(w, m)
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, m *present.Model) error {
	data := pageData{
		Title:   m.Title,
		Script:  visNetworkURL,
		Width:   r.opts.Width,
		Height:  r.opts.Height,
		Physics: r.opts.Physics,
		Nodes:   make([]visNode, 0, len(m.Nodes)),
		Edges:   make([]visEdge, 0, len(m.Edges)),
	}
	if data.Title == "" {
		data.Title = "stepgraph"
	}
	if data.Width == "" {
		data.Width = "100%"
	}
	if data.Height == "" {
		data.Height = "800px"
	}

	for _, n := range m.Nodes {
		vn := visNode{
			ID:    n.ID,
			Label: nodeText(n),
			Title: n.Name + " " + n.Tooltip,
			Color: n.Color,
		}
		switch n.Role {
		case present.RoleEntry:
			vn.Shape = "star"
			vn.BorderWidth = 3
		case present.RoleDangling:
			vn.Shape = "box"
			vn.Title = n.Tooltip
		}
		if n.Role != present.RoleDangling {
			data.NodeCount++
		}
		data.Nodes = append(data.Nodes, vn)
	}
	for _, e := range m.Edges {
		ve := visEdge{
			From:  e.From,
			To:    e.To,
			Label: e.Label,
			Title: fmt.Sprintf("#%d attribute %s -> #%d", e.From, e.Label, e.To),
		}
		if e.Dangling {
			ve.Dashes = true
			ve.Color = "red"
		}
		if !e.Dangling {
			data.EdgeCount++
		}
		data.Edges = append(data.Edges, ve)
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
