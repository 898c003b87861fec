package metrics

import (
	"math"
	"testing"
)

func floatEquals(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func sum(scores map[int]float64) float64 {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total
}

func TestComputePageRank_EmptyGraph(t *testing.T) {
	scores := ComputePageRank(map[int][]int{}, DefaultPageRankConfig())
	if scores != nil {
		t.Errorf("expected nil for empty graph, got %v", scores)
	}
}

func TestComputePageRank_SingleEntity(t *testing.T) {
	scores := ComputePageRank(map[int][]int{1: {}}, DefaultPageRankConfig())
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	if !floatEquals(scores[1], 1.0, 0.0001) {
		t.Errorf("expected score 1.0 for single entity, got %f", scores[1])
	}
}

func TestComputePageRank_Chain(t *testing.T) {
	// #3 references #2 which references #1, like a placement of a point.
	adj := map[int][]int{3: {2}, 2: {1}, 1: {}}
	scores := ComputePageRank(adj, DefaultPageRankConfig())

	if scores[1] <= scores[2] || scores[2] <= scores[3] {
		t.Errorf("expected #1 > #2 > #3, got %v", scores)
	}
	if !floatEquals(sum(scores), 1.0, 0.001) {
		t.Errorf("expected sum ~1.0, got %f", sum(scores))
	}
}

func TestComputePageRank_Cycle(t *testing.T) {
	adj := map[int][]int{1: {2}, 2: {3}, 3: {1}}
	scores := ComputePageRank(adj, DefaultPageRankConfig())
	for id, s := range scores {
		if !floatEquals(s, 1.0/3.0, 0.001) {
			t.Errorf("#%d = %f, want 1/3", id, s)
		}
	}
}

func TestComputePageRank_SharedPoint(t *testing.T) {
	// Five polylines share one point.
	adj := map[int][]int{1: {}, 2: {1}, 3: {1}, 4: {1}, 5: {1}, 6: {1}}
	scores := ComputePageRank(adj, DefaultPageRankConfig())
	for id := 2; id <= 6; id++ {
		if scores[1] <= scores[id] {
			t.Errorf("shared point should outrank #%d: %f <= %f", id, scores[1], scores[id])
		}
	}
}

func TestComputePageRank_TargetOnlyNodes(t *testing.T) {
	// #9 only appears as a target.
	scores := ComputePageRank(map[int][]int{1: {9}}, DefaultPageRankConfig())
	if _, ok := scores[9]; !ok {
		t.Error("target-only entity should be scored")
	}
}

func TestComputePageRankWithInfo_Converges(t *testing.T) {
	adj := map[int][]int{1: {2, 3}, 2: {3}, 3: {1}}
	result := ComputePageRankWithInfo(adj, DefaultPageRankConfig())
	if !result.Converged {
		t.Errorf("expected convergence, final delta %f after %d iterations", result.FinalDelta, result.Iterations)
	}
	if result.Iterations == 0 || result.Iterations > 100 {
		t.Errorf("iterations = %d", result.Iterations)
	}

	capped := ComputePageRankWithInfo(adj, PageRankConfig{Damping: 0.85, MaxIterations: 1, Tolerance: 1e-12})
	if capped.Converged || capped.Iterations != 1 {
		t.Errorf("capped run: converged=%v iterations=%d", capped.Converged, capped.Iterations)
	}
}

func TestComputePageRank_Deterministic(t *testing.T) {
	adj := map[int][]int{1: {2, 3}, 2: {3, 4}, 3: {4}, 4: {1}, 5: {1, 4}}
	first := ComputePageRank(adj, DefaultPageRankConfig())
	for i := 0; i < 5; i++ {
		again := ComputePageRank(adj, DefaultPageRankConfig())
		for id, s := range first {
			if again[id] != s {
				t.Fatalf("run %d: #%d = %v, want %v", i, id, again[id], s)
			}
		}
	}
}

func TestRelative(t *testing.T) {
	rel := Relative(map[int]float64{1: 0.5, 2: 0.25, 3: 0})
	if rel[1] != 1 || rel[2] != 0.5 || rel[3] != 0 {
		t.Errorf("Relative = %v", rel)
	}
	if got := Relative(map[int]float64{1: 0}); got[1] != 0 {
		t.Errorf("all-zero scores should stay zero, got %v", got)
	}
}
