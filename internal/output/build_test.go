package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/metrics"
	"github.com/hargabyte/stepgraph/internal/step"
)

const buildSample = `#1=CARTESIAN_POINT('',(0.,0.,0.));
#2=DIRECTION('',(1.,0.,0.));
#3=AXIS2_PLACEMENT_3D('',#1,#2,$);
#4=PLANE('',#3);
#5=ADVANCED_FACE('',(#9),#4,.T.);
`

func buildGraph(t *testing.T) (*step.File, *graph.Graph) {
	t.Helper()
	f, err := step.Parse([]byte(buildSample))
	require.NoError(t, err)
	g, err := graph.Build(f.Records, graph.Options{})
	require.NoError(t, err)
	return f, g
}

func TestSummary(t *testing.T) {
	f, g := buildGraph(t)
	s := Summary("face.stp", f, g)

	assert.Equal(t, 5, s.Entities)
	assert.Equal(t, 4, s.Edges)
	assert.Equal(t, 1, s.Warnings)
	assert.Equal(t, []string{"#5.2.1 -> #9"}, s.Dangling)
}

func TestEntityDensities(t *testing.T) {
	_, g := buildGraph(t)

	sparse, err := Entity(g, 5, DensitySparse)
	require.NoError(t, err)
	assert.Equal(t, "#5", sparse.ID)
	assert.Equal(t, "ADVANCED_FACE", sparse.Type)
	assert.Equal(t, 5, sparse.Line)
	assert.Empty(t, sparse.Attributes)
	assert.Empty(t, sparse.References)

	medium, err := Entity(g, 5, DensityMedium)
	require.NoError(t, err)
	assert.Equal(t, []AttributeOutput{
		{Position: "1", Value: "''"},
		{Position: "2", Value: "(#9)"},
		{Position: "3", Value: "#4"},
		{Position: "4", Value: ".T."},
	}, medium.Attributes)
	assert.Equal(t, []ReferenceOutput{
		{Attribute: "3", Entity: "#4", Type: "PLANE"},
		{Attribute: "2.1", Entity: "#9", Missing: true},
	}, medium.References)
	assert.Empty(t, medium.ReferencedBy)
	assert.Empty(t, medium.Text)

	dense, err := Entity(g, 3, DensityDense)
	require.NoError(t, err)
	assert.Equal(t, []ReferenceOutput{{Attribute: "2", Entity: "#4", Type: "PLANE"}}, dense.ReferencedBy)
	assert.Contains(t, dense.Text, "AXIS2_PLACEMENT_3D(")
}

func TestEntityNotFound(t *testing.T) {
	_, g := buildGraph(t)
	_, err := Entity(g, 42, DensityMedium)

	var nf *graph.EntityNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 42, nf.ID)
}

func TestStats(t *testing.T) {
	f, g := buildGraph(t)
	s := Stats("face.stp", f, g)

	assert.Equal(t, 5, s.Entities)
	assert.Equal(t, 4, s.Edges)
	assert.Equal(t, 1, s.Dangling)
	assert.Equal(t, 1, s.Roots)
	assert.Equal(t, 2, s.Leaves)
	require.Len(t, s.Types, 5)
	assert.Equal(t, "ADVANCED_FACE", s.Types[0].Type)
	require.NotNil(t, s.Cycles)
	assert.False(t, s.Cycles.Found)
}

func TestPath(t *testing.T) {
	_, g := buildGraph(t)

	p, err := Path(g, 5, 1, graph.Out)
	require.NoError(t, err)
	assert.True(t, p.Found)
	assert.Equal(t, 3, p.Hops)
	assert.Equal(t, []PathStep{
		{ID: "#5", Type: "ADVANCED_FACE"},
		{ID: "#4", Type: "PLANE"},
		{ID: "#3", Type: "AXIS2_PLACEMENT_3D"},
		{ID: "#1", Type: "CARTESIAN_POINT"},
	}, p.Path)

	back, err := Path(g, 1, 5, graph.Out)
	require.NoError(t, err)
	assert.False(t, back.Found)

	back, err = Path(g, 1, 5, graph.In)
	require.NoError(t, err)
	assert.True(t, back.Found)
	assert.Equal(t, "in", back.Direction)

	_, err = Path(g, 1, 9, graph.Out)
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	_, g := buildGraph(t)
	ms := metrics.Compute(g, metrics.DefaultPageRankConfig())

	classes := metrics.Classify(ms, metrics.DefaultThresholds())
	r := Rank("face.stp", ms, classes, 2, false)
	assert.Equal(t, 2, r.Count)
	require.Len(t, r.Results, 2)
	assert.Equal(t, "#3", r.Results[0].ID)
	assert.Equal(t, "critical", r.Results[0].Importance)
	assert.GreaterOrEqual(t, r.Results[0].PageRank, r.Results[1].PageRank)

	all := Rank("face.stp", ms, classes, 0, true)
	assert.Equal(t, 5, all.Count)
	assert.True(t, all.Cached)
}
