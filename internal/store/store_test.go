package store

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/step"
)

const sampleFile = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('house.ifc','2024-01-01T00:00:00',(''),(''),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCAXIS2PLACEMENT3D(#1,$,$);
#3=IFCLOCALPLACEMENT($,#2);
#4=IFCWALL('w',$,'Wall',$,$,#3,$,$);
#5=IFCSLAB('s',$,'Slab',$,$,#3,#99,$);
#6=(NAMED_UNIT(*,.LENGTHUNIT.)SI_UNIT(.MILLI.,.METRE.));
ENDSEC;
END-ISO-10303-21;
`

func loadSample(t *testing.T) (*step.File, *graph.Graph) {
	t.Helper()
	f, err := step.Parse([]byte(sampleFile))
	require.NoError(t, err)
	g, err := graph.Build(f.Records, graph.Options{})
	require.NoError(t, err)
	return f, g
}

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "out", "model.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendSQLite, "sqlite": BackendSQLite, "DOLT": BackendDolt} {
		got, err := ParseBackend(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBackend("postgres")
	assert.Error(t, err)
}

func TestSaveGraph(t *testing.T) {
	s := openSQLite(t)
	f, g := loadSample(t)

	exp, err := s.SaveGraph("house.ifc", "sha256:abc", f, g)
	require.NoError(t, err)
	assert.Equal(t, 6, exp.Entities)
	// four resolved references plus the dangling #99
	assert.Equal(t, 5, exp.References)
	assert.Equal(t, []string{"IFC4"}, exp.Schemas)

	n, err := s.EntityCount()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	refs, err := s.ReferenceCount()
	require.NoError(t, err)
	assert.Equal(t, 5, refs)

	got, err := s.GetExport()
	require.NoError(t, err)
	assert.Equal(t, "house.ifc", got.Name)
	assert.Equal(t, "sha256:abc", got.ContentHash)
	assert.Equal(t, []string{"IFC4"}, got.Schemas)
	assert.False(t, got.ExportedAt.IsZero())
}

func TestGetEntity(t *testing.T) {
	s := openSQLite(t)
	f, g := loadSample(t)
	_, err := s.SaveGraph("house.ifc", "h", f, g)
	require.NoError(t, err)

	e, err := s.GetEntity(4)
	require.NoError(t, err)
	assert.Equal(t, "IFCWALL", e.Type)
	assert.Equal(t, 11, e.Line)
	assert.Equal(t, 1, e.Column)
	assert.False(t, e.Complex)
	assert.Equal(t, "#4=IFCWALL('w',$,'Wall',$,$,#3,$,$);", e.Text)

	unit, err := s.GetEntity(6)
	require.NoError(t, err)
	assert.True(t, unit.Complex)
	assert.Equal(t, "NAMED_UNIT+SI_UNIT", unit.Type)

	var segments int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM segments WHERE entity_id = 6").Scan(&segments))
	assert.Equal(t, 2, segments)

	_, err = s.GetEntity(42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReferrers(t *testing.T) {
	s := openSQLite(t)
	f, g := loadSample(t)
	_, err := s.SaveGraph("house.ifc", "h", f, g)
	require.NoError(t, err)

	refs, err := s.Referrers(3)
	require.NoError(t, err)
	assert.Equal(t, []Reference{
		{From: 4, To: 3, Path: "6"},
		{From: 5, To: 3, Path: "6"},
	}, refs)

	out, err := s.References(5)
	require.NoError(t, err)
	assert.Equal(t, []Reference{
		{From: 5, To: 3, Path: "6"},
		{From: 5, To: 99, Path: "7", Dangling: true},
	}, out)

	walls, err := s.EntitiesByType("ifcwall")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, walls)
}

func TestSaveGraphReplaces(t *testing.T) {
	s := openSQLite(t)
	f, g := loadSample(t)
	_, err := s.SaveGraph("house.ifc", "h1", f, g)
	require.NoError(t, err)

	small, err := step.Parse([]byte("#1=IFCCARTESIANPOINT((1.,2.,3.));"))
	require.NoError(t, err)
	sg, err := graph.Build(small.Records, graph.Options{})
	require.NoError(t, err)
	_, err = s.SaveGraph("point.stp", "h2", small, sg)
	require.NoError(t, err)

	n, err := s.EntityCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exp, err := s.GetExport()
	require.NoError(t, err)
	assert.Equal(t, "point.stp", exp.Name)
	assert.Empty(t, exp.Schemas)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.db")
	s, err := Open(BackendSQLite, path)
	require.NoError(t, err)
	f, g := loadSample(t)
	_, err = s.SaveGraph("house.ifc", "h", f, g)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	again, err := Open(BackendSQLite, path)
	require.NoError(t, err)
	defer again.Close()
	n, err := again.EntityCount()
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestCommitRequiresDolt(t *testing.T) {
	s := openSQLite(t)
	_, err := s.Commit("export")
	assert.ErrorIs(t, err, ErrNotVersioned)
}

func TestDoltExport(t *testing.T) {
	if testing.Short() {
		t.Skip("embedded dolt is slow")
	}
	s, err := Open(BackendDolt, filepath.Join(t.TempDir(), "repo"))
	require.NoError(t, err)
	defer s.Close()

	f, g := loadSample(t)
	_, err = s.SaveGraph("house.ifc", "h", f, g)
	require.NoError(t, err)

	hash, err := s.Commit("export house.ifc")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	refs, err := s.Referrers(3)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	exp, err := s.GetExport()
	require.NoError(t, err)
	assert.Equal(t, []string{"IFC4"}, exp.Schemas)
}

// Column names must parse in both SQLite and Dolt's MySQL dialect without
// quoting.
func TestSchemaAvoidsReservedWords(t *testing.T) {
	reserved := []string{"SCHEMAS", "SCHEMA", "COLUMN", "KEY", "KEYS", "INDEX", "ORDER",
		"GROUP", "RANGE", "ROWS", "LINES", "DATABASES", "TABLE", "FROM", "TO", "USAGE"}
	for _, stmt := range schemaStatements {
		lines := strings.Split(stmt, "\n")
		for _, line := range lines[1:] {
			fields := strings.Fields(strings.TrimSpace(line))
			if len(fields) == 0 || fields[0] == ")" || fields[0] == "PRIMARY" {
				continue
			}
			col := strings.ToUpper(fields[0])
			assert.NotContains(t, reserved, col, "reserved column name in %q", strings.Fields(lines[0])[5])
		}
	}
}
