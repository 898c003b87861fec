package output

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/metrics"
	"github.com/hargabyte/stepgraph/internal/present"
	"github.com/hargabyte/stepgraph/internal/step"
)

// FormatID renders an entity id as "#42".
func FormatID(id int) string {
	return "#" + strconv.Itoa(id)
}

// Summary describes a parsed and built file.
func Summary(name string, f *step.File, g *graph.Graph) *SummaryOutput {
	out := &SummaryOutput{
		File:     name,
		Schemas:  f.Schemas(),
		Entities: g.NodeCount(),
		Edges:    g.EdgeCount(),
		Warnings: len(g.Dangling()),
	}
	for _, d := range g.Dangling() {
		out.Dangling = append(out.Dangling, fmt.Sprintf("#%d.%s -> #%d", d.From, d.Label, d.To))
	}
	return out
}

// Entity describes one entity of g at the given density. A missing id
// returns *graph.EntityNotFoundError.
func Entity(g *graph.Graph, id int, density Density) (*EntityOutput, error) {
	rec, ok := g.Get(id)
	if !ok {
		return nil, &graph.EntityNotFoundError{ID: id}
	}

	out := &EntityOutput{
		ID:   FormatID(id),
		Type: rec.TypeName(),
		Line: rec.Pos.Line,
	}

	if density.IncludesAttributes() {
		for si, seg := range rec.Segments {
			for i, v := range seg.Params {
				pos := strconv.Itoa(i + 1)
				if rec.IsComplex() {
					pos = rec.Segments[si].Type + ":" + pos
				}
				out.Attributes = append(out.Attributes, AttributeOutput{Position: pos, Value: step.FormatValue(v)})
			}
		}

		for _, e := range g.Forward(id) {
			out.References = append(out.References, ReferenceOutput{
				Attribute: e.Label,
				Entity:    FormatID(e.To),
				Type:      typeOf(g, e.To),
			})
		}
		for _, d := range g.Dangling() {
			if d.From == id {
				out.References = append(out.References, ReferenceOutput{
					Attribute: d.Label,
					Entity:    FormatID(d.To),
					Missing:   true,
				})
			}
		}
	}

	if density.IncludesReferrers() {
		for _, e := range g.Backward(id) {
			out.ReferencedBy = append(out.ReferencedBy, ReferenceOutput{
				Attribute: e.Label,
				Entity:    FormatID(e.From),
				Type:      typeOf(g, e.From),
			})
		}
		out.Text = present.Tooltip(rec, present.DefaultWrapWidth)
	}

	return out, nil
}

func typeOf(g *graph.Graph, id int) string {
	if rec, ok := g.Get(id); ok {
		return rec.TypeName()
	}
	return ""
}

// Stats summarizes the content of a file: a type histogram, most frequent
// type first, and whether references form a cycle.
func Stats(name string, f *step.File, g *graph.Graph) *StatsOutput {
	out := &StatsOutput{
		File:     name,
		Schemas:  f.Schemas(),
		Entities: g.NodeCount(),
		Edges:    g.EdgeCount(),
		Dangling: len(g.Dangling()),
	}

	for typ, n := range g.TypeCounts() {
		out.Types = append(out.Types, TypeCount{Type: typ, Count: n})
	}
	slices.SortFunc(out.Types, func(a, b TypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})

	for _, id := range g.IDs() {
		if g.InDegree(id) == 0 {
			out.Roots++
		}
		if g.OutDegree(id) == 0 {
			out.Leaves++
		}
	}

	found, cycle := g.FindCycles()
	out.Cycles = &CycleOutput{Found: found}
	for _, id := range cycle {
		out.Cycles.Example = append(out.Cycles.Example, FormatID(id))
	}
	return out
}

// Path finds the shortest reference path between two entities. Both ends
// must exist; an unreachable target yields Found false.
func Path(g *graph.Graph, from, to int, dir graph.Direction) (*PathOutput, error) {
	for _, id := range []int{from, to} {
		if !g.Has(id) {
			return nil, &graph.EntityNotFoundError{ID: id}
		}
	}

	out := &PathOutput{From: FormatID(from), To: FormatID(to), Direction: dir.String()}
	ids := g.ShortestPath(from, to, dir)
	if ids == nil {
		return out, nil
	}
	out.Found = true
	out.Hops = len(ids) - 1
	for _, id := range ids {
		out.Path = append(out.Path, PathStep{ID: FormatID(id), Type: typeOf(g, id)})
	}
	return out, nil
}

// RankEntryFor converts one metrics row without an importance class.
func RankEntryFor(m metrics.Metrics) *RankEntry {
	return &RankEntry{
		ID:          FormatID(m.EntityID),
		Type:        m.Type,
		PageRank:    m.PageRank,
		Betweenness: m.Betweenness,
		InDegree:    m.InDegree,
		OutDegree:   m.OutDegree,
	}
}

// Rank lists the top entries of ms, which must already be ordered by
// PageRank, with their importance class from classes (see
// metrics.Classify). top <= 0 keeps every entry.
func Rank(name string, ms []metrics.Metrics, classes map[int]metrics.Importance, top int, cached bool) *RankOutput {
	if top > 0 && top < len(ms) {
		ms = ms[:top]
	}

	out := &RankOutput{File: name, Count: len(ms), Cached: cached, Results: make([]RankEntry, 0, len(ms))}
	for _, m := range ms {
		e := RankEntryFor(m)
		e.Importance = string(classes[m.EntityID])
		out.Results = append(out.Results, *e)
	}
	return out
}
