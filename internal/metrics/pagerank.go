package metrics

import (
	"math"
	"sort"
)

// PageRankConfig holds algorithm parameters for PageRank computation.
type PageRankConfig struct {
	// Damping is the probability of following a reference rather than
	// jumping to a random entity. Standard value is 0.85.
	Damping float64

	// MaxIterations is the maximum number of iterations before stopping.
	MaxIterations int

	// Tolerance is the convergence threshold: iteration stops when the
	// largest change of any score drops below it.
	Tolerance float64
}

// DefaultPageRankConfig returns the default PageRank configuration.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     0.0001,
	}
}

// PageRankResult contains the PageRank computation results.
type PageRankResult struct {
	// Scores maps entity ids to their PageRank scores. They sum to 1.
	Scores map[int]float64

	Iterations int
	Converged  bool

	// FinalDelta is the maximum change in the last iteration.
	FinalDelta float64
}

// ComputePageRank calculates PageRank for every entity of adj, where
// adj[a] lists the entities a references. An entity that references
// nothing spreads its score evenly over all entities.
func ComputePageRank(adj map[int][]int, config PageRankConfig) map[int]float64 {
	return ComputePageRankWithInfo(adj, config).Scores
}

// ComputePageRankWithInfo calculates PageRank and returns iteration details.
func ComputePageRankWithInfo(adj map[int][]int, config PageRankConfig) PageRankResult {
	if len(adj) == 0 {
		return PageRankResult{Converged: true}
	}

	nodes := allNodes(adj)
	n := float64(len(nodes))

	pr := make(map[int]float64, len(nodes))
	for _, id := range nodes {
		pr[id] = 1.0 / n
	}
	incoming := incomingLinks(adj, nodes)

	result := PageRankResult{Scores: pr, FinalDelta: 1.0}
	for iter := 0; iter < config.MaxIterations; iter++ {
		sinkSum := 0.0
		for _, id := range nodes {
			if len(adj[id]) == 0 {
				sinkSum += pr[id]
			}
		}
		base := (1.0-config.Damping)/n + config.Damping*sinkSum/n

		next := make(map[int]float64, len(nodes))
		maxDelta := 0.0
		for _, id := range nodes {
			score := base
			for _, in := range incoming[id] {
				score += config.Damping * pr[in.source] / float64(in.outDegree)
			}
			next[id] = score
			maxDelta = math.Max(maxDelta, math.Abs(score-pr[id]))
		}

		pr = next
		result.Iterations = iter + 1
		result.FinalDelta = maxDelta
		if maxDelta < config.Tolerance {
			result.Converged = true
			break
		}
	}

	result.Scores = pr
	return result
}

type incomingLink struct {
	source    int
	outDegree int
}

// allNodes returns every id that appears as a key or a target, sorted so
// that floating point sums are accumulated in a fixed order.
func allNodes(adj map[int][]int) []int {
	seen := make(map[int]struct{}, len(adj))
	for id, targets := range adj {
		seen[id] = struct{}{}
		for _, t := range targets {
			seen[t] = struct{}{}
		}
	}
	nodes := make([]int, 0, len(seen))
	for id := range seen {
		nodes = append(nodes, id)
	}
	sort.Ints(nodes)
	return nodes
}

func incomingLinks(adj map[int][]int, nodes []int) map[int][]incomingLink {
	incoming := make(map[int][]incomingLink, len(nodes))
	for _, source := range nodes {
		targets := adj[source]
		for _, t := range targets {
			incoming[t] = append(incoming[t], incomingLink{source: source, outDegree: len(targets)})
		}
	}
	return incoming
}

// Relative rescales scores so the highest one is 1. Importance thresholds
// apply to relative scores, since raw PageRank shrinks as files grow.
func Relative(scores map[int]float64) map[int]float64 {
	maxScore := 0.0
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	out := make(map[int]float64, len(scores))
	for id, s := range scores {
		if maxScore > 0 {
			out[id] = s / maxScore
		}
	}
	return out
}
