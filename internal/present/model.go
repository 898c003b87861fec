// Package present maps an entity graph, or a neighborhood of it, onto a
// neutral node/edge model that renderers consume. Nothing here knows about
// HTML, D2 or any other output format.
package present

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/step"
)

// Role distinguishes the target and placeholder nodes from ordinary ones.
type Role string

const (
	RoleEntity   Role = "entity"
	RoleEntry    Role = "entry"    // target of a neighborhood view
	RoleDangling Role = "dangling" // referenced but not declared
)

// Node is one entity.
type Node struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`   // "#42"
	Label   string `json:"label" yaml:"label"` // type name
	Tooltip string `json:"tooltip" yaml:"tooltip"`
	Color   string `json:"color" yaml:"color"`
	Role    Role   `json:"role" yaml:"role"`
}

// Edge is one reference, labelled with the attribute position it comes from.
type Edge struct {
	From     int    `json:"from" yaml:"from"`
	To       int    `json:"to" yaml:"to"`
	Label    string `json:"label" yaml:"label"`
	Dangling bool   `json:"dangling,omitempty" yaml:"dangling,omitempty"`
}

// Model is the neutral structure handed to a renderer.
type Model struct {
	Title  string `json:"title" yaml:"title"`
	Target *int   `json:"target,omitempty" yaml:"target,omitempty"`
	Nodes  []Node `json:"nodes" yaml:"nodes"`
	Edges  []Edge `json:"edges" yaml:"edges"`
}

// Options configures FromView.
type Options struct {
	Title        string
	Palette      Palette
	ShowDangling bool // add placeholder nodes for dangling references
	WrapWidth    uint // tooltip line width; 0 uses DefaultWrapWidth
}

// DefaultWrapWidth is the tooltip line width.
const DefaultWrapWidth = 100

// DefaultOptions returns options with the built-in palette.
func DefaultOptions() Options {
	return Options{Palette: DefaultPalette(), WrapWidth: DefaultWrapWidth}
}

// FromView builds the model for a whole graph or a subgraph. Nodes follow
// the view's id order; for a subgraph the target comes first and gets the
// entry color.
func FromView(view graph.View, opts Options) *Model {
	if opts.WrapWidth == 0 {
		opts.WrapWidth = DefaultWrapWidth
	}
	m := &Model{Title: opts.Title, Nodes: []Node{}, Edges: []Edge{}}

	target, hasTarget := 0, false
	if sub, ok := view.(*graph.Subgraph); ok {
		target, hasTarget = sub.Target, true
		m.Target = &target
	}

	for _, id := range view.IDs() {
		rec, ok := view.Get(id)
		if !ok {
			continue
		}
		node := Node{
			ID:      id,
			Name:    fmt.Sprintf("#%d", id),
			Label:   rec.TypeName(),
			Tooltip: Tooltip(rec, opts.WrapWidth),
			Color:   colorForRecord(rec, opts.Palette),
			Role:    RoleEntity,
		}
		if hasTarget && id == target {
			node.Role = RoleEntry
			if opts.Palette.Entry != "" {
				node.Color = opts.Palette.Entry
			}
		}
		m.Nodes = append(m.Nodes, node)
	}

	for _, e := range view.Edges() {
		m.Edges = append(m.Edges, Edge{From: e.From, To: e.To, Label: e.Label})
	}

	if opts.ShowDangling {
		added := make(map[int]struct{})
		for _, d := range view.Dangling() {
			if _, ok := added[d.To]; !ok {
				added[d.To] = struct{}{}
				m.Nodes = append(m.Nodes, Node{
					ID:      d.To,
					Name:    fmt.Sprintf("#%d", d.To),
					Label:   "missing",
					Tooltip: fmt.Sprintf("#%d is referenced but not declared", d.To),
					Color:   opts.Palette.Dangling,
					Role:    RoleDangling,
				})
			}
			m.Edges = append(m.Edges, Edge{From: d.From, To: d.To, Label: d.Label, Dangling: true})
		}
	}

	return m
}

// colorForRecord prefers a pinned color of any segment of a complex
// instance before hashing the full type name.
func colorForRecord(rec *step.EntityRecord, p Palette) string {
	for _, seg := range rec.Segments {
		if c, ok := p.Types[seg.Type]; ok {
			return c
		}
	}
	return ColorFor(rec.TypeName(), p)
}

// Tooltip renders each segment as TYPE(params) with strings decoded,
// wrapped at width, one segment per paragraph.
func Tooltip(rec *step.EntityRecord, width uint) string {
	parts := make([]string, 0, len(rec.Segments))
	for _, seg := range rec.Segments {
		text := seg.Type + "(" + displayParams(seg.Params) + ")"
		parts = append(parts, wordwrap.WrapString(text, width))
	}
	return strings.Join(parts, "\n")
}

func displayParams(params []step.Value) string {
	items := make([]string, len(params))
	for i, p := range params {
		items[i] = displayValue(p)
	}
	return strings.Join(items, ", ")
}

func displayValue(v step.Value) string {
	switch v.Kind {
	case step.ValueString:
		return "'" + step.DecodeString(v.Str) + "'"
	case step.ValueList:
		return "(" + displayParams(v.List) + ")"
	case step.ValueTyped:
		return v.Typed.Type + "(" + displayParams(v.Typed.Params) + ")"
	default:
		return step.FormatValue(v)
	}
}
