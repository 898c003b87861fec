package graph

import "fmt"

// Direction selects which adjacency a traversal follows.
type Direction int

const (
	Both Direction = iota // references and referrers
	Out                   // references only
	In                    // referrers only
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	default:
		return "both"
	}
}

// ParseDirection accepts "out", "in" or "both".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "out":
		return Out, nil
	case "in":
		return In, nil
	case "both", "":
		return Both, nil
	default:
		return Both, fmt.Errorf("invalid direction %q: must be out, in, or both", s)
	}
}

// Neighbors returns the distinct ids adjacent to id in the given direction.
func (g *Graph) Neighbors(id int, dir Direction) []int {
	switch dir {
	case Out:
		return g.References(id)
	case In:
		return g.Referrers(id)
	}
	out := g.References(id)
	seen := make(map[int]struct{}, len(out))
	for _, n := range out {
		seen[n] = struct{}{}
	}
	for _, n := range g.Referrers(id) {
		if _, ok := seen[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// BFS returns the ids reachable from start in breadth-first order, start
// first, together with the hop distance of each. maxDepth < 0 means no
// limit. Cycles terminate because every id is visited once.
func (g *Graph) BFS(start int, dir Direction, maxDepth int) ([]int, map[int]int) {
	depth := map[int]int{start: 0}
	result := []int{}
	queue := []int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		if maxDepth >= 0 && depth[current] >= maxDepth {
			continue
		}
		for _, neighbor := range g.Neighbors(current, dir) {
			if _, seen := depth[neighbor]; seen {
				continue
			}
			depth[neighbor] = depth[current] + 1
			queue = append(queue, neighbor)
		}
	}

	return result, depth
}

// ShortestPath finds the shortest path from start to end using BFS.
// Returns the path as a slice of ids, or nil if no path exists.
func (g *Graph) ShortestPath(start, end int, dir Direction) []int {
	if start == end {
		return []int{start}
	}

	visited := map[int]struct{}{start: {}}
	parent := make(map[int]int)
	queue := []int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.Neighbors(current, dir) {
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}
			parent[neighbor] = current

			if neighbor == end {
				path := []int{end}
				for node := end; node != start; {
					node = parent[node]
					path = append([]int{node}, path...)
				}
				return path
			}

			queue = append(queue, neighbor)
		}
	}

	return nil
}

// FindCycles reports whether the reference graph has a cycle and returns
// one example, closed by repeating its first id. Self references count.
func (g *Graph) FindCycles() (bool, []int) {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // finished
	)

	color := make(map[int]int, len(g.records))
	parent := make(map[int]int)

	// Iterative DFS: reference chains in large models are too deep for
	// comfortable recursion.
	type frame struct {
		id   int
		refs []int
		next int
	}

	for _, root := range g.order {
		if color[root] != white {
			continue
		}
		stack := []frame{{id: root, refs: g.References(root)}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.refs) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			neighbor := top.refs[top.next]
			top.next++

			switch color[neighbor] {
			case gray:
				cycle := []int{neighbor}
				for node := top.id; node != neighbor; node = parent[node] {
					cycle = append([]int{node}, cycle...)
				}
				cycle = append([]int{neighbor}, cycle...)
				return true, cycle
			case white:
				color[neighbor] = gray
				parent[neighbor] = top.id
				stack = append(stack, frame{id: neighbor, refs: g.References(neighbor)})
			}
		}
	}

	return false, nil
}
