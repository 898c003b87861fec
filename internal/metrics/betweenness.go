package metrics

// ComputeBetweenness calculates betweenness centrality with Brandes'
// algorithm over the directed reference graph adj. Scores are normalized
// by (n-1)(n-2).
//
// Betweenness measures how often an entity lies on the shortest reference
// chain between two others; placements and representation contexts tend
// to score high.
//
//	BC(v) = Σ σ(s,t|v) / σ(s,t)  for all s≠v≠t
func ComputeBetweenness(adj map[int][]int) map[int]float64 {
	nodes := allNodes(adj)
	n := len(nodes)

	bc := make(map[int]float64, n)
	for _, id := range nodes {
		bc[id] = 0
	}
	if n < 3 {
		return bc
	}

	for _, source := range nodes {
		stack := make([]int, 0, n)
		pred := make(map[int][]int)
		sigma := map[int]float64{source: 1}
		dist := map[int]int{source: 0}

		queue := []int{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, w := range adj[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[int]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != source {
				bc[w] += delta[w]
			}
		}
	}

	norm := float64((n - 1) * (n - 2))
	for id := range bc {
		bc[id] /= norm
	}
	return bc
}
