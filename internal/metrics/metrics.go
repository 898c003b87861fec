// Package metrics ranks the entities of a STEP file by how central they are
// to its reference graph: PageRank, betweenness, degrees and an importance
// class derived from them.
package metrics

import (
	"sort"
	"time"

	"github.com/hargabyte/stepgraph/internal/graph"
)

// Metrics holds computed scores for one entity.
type Metrics struct {
	EntityID    int       `json:"entity_id"`
	Type        string    `json:"type"`
	PageRank    float64   `json:"pagerank"`
	InDegree    int       `json:"in_degree"`
	OutDegree   int       `json:"out_degree"`
	Betweenness float64   `json:"betweenness"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Importance is the classification level of an entity.
type Importance string

const (
	Critical Importance = "critical"
	High     Importance = "high"
	Medium   Importance = "medium"
	Low      Importance = "low"
)

// ImportanceThresholds contains configurable thresholds for importance
// classification.
type ImportanceThresholds struct {
	Critical    float64
	High        float64
	Medium      float64
	KeystonePR  float64
	KeystoneDep int
	Bottleneck  float64
}

// DefaultThresholds returns the default importance thresholds.
func DefaultThresholds() ImportanceThresholds {
	return ImportanceThresholds{
		Critical:    0.50,
		High:        0.30,
		Medium:      0.10,
		KeystonePR:  0.30,
		KeystoneDep: 5,
		Bottleneck:  0.20,
	}
}

// ClassifyWithThresholds returns the importance level using custom thresholds.
func ClassifyWithThresholds(pr float64, t ImportanceThresholds) Importance {
	switch {
	case pr >= t.Critical:
		return Critical
	case pr >= t.High:
		return High
	case pr >= t.Medium:
		return Medium
	default:
		return Low
	}
}

// IsKeystone reports whether an entity with relative PageRank pr and the
// given number of referrers is a keystone: highly ranked and widely shared.
func IsKeystone(pr float64, referrers int, t ImportanceThresholds) bool {
	return pr >= t.KeystonePR && referrers >= t.KeystoneDep
}

func IsBottleneck(betweenness float64, t ImportanceThresholds) bool {
	return betweenness >= t.Bottleneck
}

// Compute scores every entity of g. Results are ordered by PageRank,
// highest first, ties by id.
func Compute(g *graph.Graph, config PageRankConfig) []Metrics {
	adj := g.Adjacency()
	pr := ComputePageRank(adj, config)
	bc := ComputeBetweenness(adj)
	now := time.Now()

	out := make([]Metrics, 0, g.NodeCount())
	for _, id := range g.IDs() {
		rec, _ := g.Get(id)
		out = append(out, Metrics{
			EntityID:    id,
			Type:        rec.TypeName(),
			PageRank:    pr[id],
			InDegree:    len(g.Referrers(id)),
			OutDegree:   len(adj[id]),
			Betweenness: bc[id],
			ComputedAt:  now,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PageRank != out[j].PageRank {
			return out[i].PageRank > out[j].PageRank
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// Classify returns the importance class of each entry of ms, relative to
// the top PageRank among them.
func Classify(ms []Metrics, t ImportanceThresholds) map[int]Importance {
	scores := make(map[int]float64, len(ms))
	for _, m := range ms {
		scores[m.EntityID] = m.PageRank
	}
	rel := Relative(scores)
	out := make(map[int]Importance, len(ms))
	for _, m := range ms {
		out[m.EntityID] = ClassifyWithThresholds(rel[m.EntityID], t)
	}
	return out
}

// Filter keeps the keystones, the bottlenecks, or the entries that are
// both when both are asked for. Keystones are judged on PageRank relative
// to the top entry of ms, so ms should be the full result of Compute.
func Filter(ms []Metrics, keystones, bottlenecks bool, t ImportanceThresholds) []Metrics {
	if !keystones && !bottlenecks {
		return ms
	}

	scores := make(map[int]float64, len(ms))
	for _, m := range ms {
		scores[m.EntityID] = m.PageRank
	}
	rel := Relative(scores)

	var out []Metrics
	for _, m := range ms {
		if keystones && !IsKeystone(rel[m.EntityID], m.InDegree, t) {
			continue
		}
		if bottlenecks && !IsBottleneck(m.Betweenness, t) {
			continue
		}
		out = append(out, m)
	}
	return out
}
