package graph

import "github.com/hargabyte/stepgraph/internal/step"

// View is the read surface shared by a whole Graph and a Subgraph. It is
// what the presenter consumes.
type View interface {
	IDs() []int
	Get(id int) (*step.EntityRecord, bool)
	Edges() []Edge
	Dangling() []DanglingReference
}

var (
	_ View = (*Graph)(nil)
	_ View = (*Subgraph)(nil)
)

// ExtractOptions bounds a neighborhood.
type ExtractOptions struct {
	// Radius is the number of hops from the target. 0 keeps only the
	// target; a negative radius follows references without limit.
	Radius    int
	Direction Direction
}

// DefaultExtractOptions is the one-hop neighborhood in both directions.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Radius: 1, Direction: Both}
}

// Subgraph is a neighborhood of one target entity. It borrows records from
// its Graph and holds only ids and the edges induced between them.
type Subgraph struct {
	Target int
	g      *Graph
	ids    []int
	depth  map[int]int
	edges  []Edge
}

// Extract returns the neighborhood of target. With the default options
// that is the target, every entity it references and every entity that
// references it, plus all edges among those entities.
func Extract(g *Graph, target int, opts ExtractOptions) (*Subgraph, error) {
	if !g.Has(target) {
		return nil, &EntityNotFoundError{ID: target}
	}

	ids, depth := g.BFS(target, opts.Direction, opts.Radius)
	sub := &Subgraph{Target: target, g: g, ids: ids, depth: depth}
	for _, id := range ids {
		for _, e := range g.Forward(id) {
			if _, ok := depth[e.To]; ok {
				sub.edges = append(sub.edges, e)
			}
		}
	}
	return sub, nil
}

// Graph returns the graph the subgraph was drawn from.
func (s *Subgraph) Graph() *Graph { return s.g }

// IDs returns the member ids, target first, in breadth-first order.
func (s *Subgraph) IDs() []int { return append([]int(nil), s.ids...) }

// Get returns a member record. Ids outside the subgraph are not found.
func (s *Subgraph) Get(id int) (*step.EntityRecord, bool) {
	if _, ok := s.depth[id]; !ok {
		return nil, false
	}
	return s.g.Get(id)
}

// Contains reports whether id is a member.
func (s *Subgraph) Contains(id int) bool {
	_, ok := s.depth[id]
	return ok
}

// Depth returns the hop distance of id from the target.
func (s *Subgraph) Depth(id int) (int, bool) {
	d, ok := s.depth[id]
	return d, ok
}

// Edges returns the edges between members.
func (s *Subgraph) Edges() []Edge { return s.edges }

// Dangling returns the unresolved references made by members.
func (s *Subgraph) Dangling() []DanglingReference {
	var out []DanglingReference
	for _, d := range s.g.Dangling() {
		if s.Contains(d.From) {
			out = append(out, d)
		}
	}
	return out
}

// NodeCount returns the number of members.
func (s *Subgraph) NodeCount() int { return len(s.ids) }

// EdgeCount returns the number of induced edges.
func (s *Subgraph) EdgeCount() int { return len(s.edges) }
