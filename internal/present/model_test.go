package present

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/step"
)

func build(t *testing.T, src string) *graph.Graph {
	t.Helper()
	f, err := step.Parse([]byte(src))
	require.NoError(t, err)
	g, err := graph.Build(f.Records, graph.Options{})
	require.NoError(t, err)
	return g
}

func TestColorForIsStable(t *testing.T) {
	p := DefaultPalette()
	a := ColorFor("IFCWALL", p)
	assert.Equal(t, a, ColorFor("IFCWALL", p))
	assert.Contains(t, p.Colors, a)
	assert.Equal(t, "lightgrey", ColorFor("IFCCARTESIANPOINT", p))
	assert.Equal(t, "darkkhaki", ColorFor("B_SPLINE_SURFACE_WITH_KNOTS", p))

	custom := Palette{Colors: []string{"black"}}
	assert.Equal(t, "black", ColorFor("ANYTHING", custom))

	empty := Palette{}
	assert.Contains(t, DefaultColors, ColorFor("ANYTHING", empty))
}

func TestFromViewWholeGraph(t *testing.T) {
	g := build(t, "#1=CARTESIAN_POINT('P1',(0.,0.,0.));#2=LINE('L',#1,#1);")

	m := FromView(g, DefaultOptions())
	require.Len(t, m.Nodes, 2)
	require.Len(t, m.Edges, 2)
	assert.Nil(t, m.Target)

	pt := m.Nodes[0]
	assert.Equal(t, 1, pt.ID)
	assert.Equal(t, "#1", pt.Name)
	assert.Equal(t, "CARTESIAN_POINT", pt.Label)
	assert.Equal(t, "lightgrey", pt.Color)
	assert.Equal(t, RoleEntity, pt.Role)
	assert.Equal(t, "CARTESIAN_POINT('P1', (0., 0., 0.))", pt.Tooltip)

	assert.Equal(t, Edge{From: 2, To: 1, Label: "2"}, m.Edges[0])
	assert.Equal(t, Edge{From: 2, To: 1, Label: "3"}, m.Edges[1])
}

func TestFromViewSubgraphMarksEntry(t *testing.T) {
	g := build(t, "#1=A(#2);#2=IFCCARTESIANPOINT((1.,2.));#3=C(#1);")
	sub, err := graph.Extract(g, 2, graph.DefaultExtractOptions())
	require.NoError(t, err)

	m := FromView(sub, DefaultOptions())
	require.NotNil(t, m.Target)
	assert.Equal(t, 2, *m.Target)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, RoleEntry, m.Nodes[0].Role)
	assert.Equal(t, DefaultEntryColor, m.Nodes[0].Color, "entry color wins over pinned type colors")
}

func TestFromViewShowDangling(t *testing.T) {
	g := build(t, "#1=A(#7,(#7));")

	without := FromView(g, DefaultOptions())
	assert.Len(t, without.Nodes, 1)
	assert.Empty(t, without.Edges)

	opts := DefaultOptions()
	opts.ShowDangling = true
	m := FromView(g, opts)
	require.Len(t, m.Nodes, 2)
	missing := m.Nodes[1]
	assert.Equal(t, 7, missing.ID)
	assert.Equal(t, RoleDangling, missing.Role)
	assert.Equal(t, DefaultDanglingColor, missing.Color)

	require.Len(t, m.Edges, 2)
	for _, e := range m.Edges {
		assert.True(t, e.Dangling)
		assert.Equal(t, 7, e.To)
	}
}

func TestTooltip(t *testing.T) {
	f, err := step.Parse([]byte(`#5=(NAMED_UNIT(*)SI_UNIT($,.METRE.)LENGTH_UNIT());#6=IFCWALL('M\X2\00E4\X0\uer',IFCLABEL('it''s'));`))
	require.NoError(t, err)

	assert.Equal(t, "NAMED_UNIT(*)\nSI_UNIT($, .METRE.)\nLENGTH_UNIT()", Tooltip(f.Records[0], 100))
	assert.Equal(t, "IFCWALL('Mäuer', IFCLABEL('it's'))", Tooltip(f.Records[1], 100))
}

func TestTooltipWraps(t *testing.T) {
	var params []string
	for i := 0; i < 40; i++ {
		params = append(params, "#100")
	}
	f, err := step.Parse([]byte("#1=A(" + strings.Join(params, ",") + ");"))
	require.NoError(t, err)

	tip := Tooltip(f.Records[0], 100)
	lines := strings.Split(tip, "\n")
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 100)
	}
}

func TestColorForComplexInstance(t *testing.T) {
	f, err := step.Parse([]byte("#1=(A()PCURVE());"))
	require.NoError(t, err)
	assert.Equal(t, "orange", colorForRecord(f.Records[0], DefaultPalette()))
}
