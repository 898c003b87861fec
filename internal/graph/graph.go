package graph

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hargabyte/stepgraph/internal/step"
)

// Edge is one reference from an attribute of From to entity To.
type Edge struct {
	From  int
	To    int
	Path  step.Path
	Label string // attribute position, e.g. "3" or "1.2"
}

// DanglingReference is a reference to an id with no entity in the file.
// It is a warning, not an error: the edge is left out of the graph.
type DanglingReference struct {
	From  int
	To    int
	Path  step.Path
	Label string
}

func (d DanglingReference) String() string {
	return fmt.Sprintf("#%d attribute %s references missing entity #%d", d.From, d.Label, d.To)
}

// Graph is the resolved entity graph of one file. It owns every record and
// is read-only once Build returns, so it can be shared between readers.
type Graph struct {
	records  map[int]*step.EntityRecord
	order    []int // declaration order
	forward  map[int][]Edge
	backward map[int][]Edge
	edges    int
	dangling []DanglingReference
}

// Options configures Build.
type Options struct {
	// Logger receives one warning per dangling reference. Nil discards them.
	Logger *slog.Logger
}

// Build resolves records into a Graph in two passes: every record is
// indexed by id first, then references are walked, so forward references
// to later records resolve. A repeated id fails with *DuplicateEntityError.
func Build(records []*step.EntityRecord, opts Options) (*Graph, error) {
	g := &Graph{
		records:  make(map[int]*step.EntityRecord, len(records)),
		order:    make([]int, 0, len(records)),
		forward:  make(map[int][]Edge),
		backward: make(map[int][]Edge),
	}

	for _, rec := range records {
		if prev, ok := g.records[rec.ID]; ok {
			return nil, &DuplicateEntityError{ID: rec.ID, First: prev.Pos, Second: rec.Pos}
		}
		g.records[rec.ID] = rec
		g.order = append(g.order, rec.ID)
	}

	for _, id := range g.order {
		rec := g.records[id]
		for _, ref := range rec.Refs() {
			label := rec.PathLabel(ref.Path)
			if _, ok := g.records[ref.Target]; !ok {
				g.dangling = append(g.dangling, DanglingReference{
					From: id, To: ref.Target, Path: ref.Path, Label: label,
				})
				continue
			}
			e := Edge{From: id, To: ref.Target, Path: ref.Path, Label: label}
			g.forward[id] = append(g.forward[id], e)
			g.backward[ref.Target] = append(g.backward[ref.Target], e)
			g.edges++
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	for _, d := range g.dangling {
		logger.Warn("dangling reference",
			slog.Int("from", d.From),
			slog.Int("to", d.To),
			slog.String("path", d.Label))
	}

	return g, nil
}

// Get returns the record with the given id.
func (g *Graph) Get(id int) (*step.EntityRecord, bool) {
	rec, ok := g.records[id]
	return rec, ok
}

// Has reports whether the graph contains id.
func (g *Graph) Has(id int) bool {
	_, ok := g.records[id]
	return ok
}

// IDs returns all entity ids in declaration order.
func (g *Graph) IDs() []int {
	return append([]int(nil), g.order...)
}

// Forward returns the outgoing edges of id, one per referencing attribute.
func (g *Graph) Forward(id int) []Edge {
	return g.forward[id]
}

// Backward returns the incoming edges of id, one per referencing attribute.
func (g *Graph) Backward(id int) []Edge {
	return g.backward[id]
}

// References returns the distinct ids that id references, in attribute order.
func (g *Graph) References(id int) []int {
	return distinct(g.forward[id], func(e Edge) int { return e.To })
}

// Referrers returns the distinct ids that reference id.
func (g *Graph) Referrers(id int) []int {
	return distinct(g.backward[id], func(e Edge) int { return e.From })
}

func distinct(edges []Edge, key func(Edge) int) []int {
	seen := make(map[int]struct{}, len(edges))
	out := []int{}
	for _, e := range edges {
		k := key(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Edges returns every resolved edge, grouped by source in declaration order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, id := range g.order {
		out = append(out, g.forward[id]...)
	}
	return out
}

// Dangling returns the references that could not be resolved.
func (g *Graph) Dangling() []DanglingReference {
	return g.dangling
}

// NodeCount returns the number of entities.
func (g *Graph) NodeCount() int {
	return len(g.records)
}

// EdgeCount returns the number of resolved edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// OutDegree returns the number of distinct entities id references.
func (g *Graph) OutDegree(id int) int {
	return len(g.References(id))
}

// InDegree returns the number of distinct entities referencing id.
func (g *Graph) InDegree(id int) int {
	return len(g.Referrers(id))
}

// Adjacency returns the graph as id -> distinct referenced ids. Every
// entity has an entry.
func (g *Graph) Adjacency() map[int][]int {
	adj := make(map[int][]int, len(g.records))
	for _, id := range g.order {
		adj[id] = g.References(id)
	}
	return adj
}

// TypeCounts returns the number of entities per type name.
func (g *Graph) TypeCounts() map[string]int {
	counts := make(map[string]int)
	for _, rec := range g.records {
		counts[rec.TypeName()]++
	}
	return counts
}

// FindByType returns the ids of entities whose type name contains substr,
// case-insensitively, in declaration order.
func (g *Graph) FindByType(substr string) []int {
	needle := strings.ToUpper(substr)
	var out []int
	for _, id := range g.order {
		if strings.Contains(strings.ToUpper(g.records[id].TypeName()), needle) {
			out = append(out, id)
		}
	}
	return out
}

// ParseID parses an entity id written as "42" or "#42".
func ParseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid entity id %q: expected a non-negative integer such as 42 or #42", s)
	}
	return n, nil
}
