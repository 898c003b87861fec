package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/step"
)

// Entity is one exported instance.
type Entity struct {
	ID      int
	Type    string
	Line    int
	Column  int
	Complex bool
	Text    string // the instance re-serialized as STEP
}

// Reference is one exported reference.
type Reference struct {
	From     int
	To       int
	Path     string
	Dangling bool
}

// Export describes the file held by the database.
type Export struct {
	Name        string
	ContentHash string
	Schemas     []string
	Entities    int
	References  int
	ExportedAt  time.Time
}

// SaveGraph replaces the database content with g. f supplies the header;
// it may be nil. References include dangling ones, flagged as such.
func (s *Store) SaveGraph(name, contentHash string, f *step.File, g *graph.Graph) (*Export, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"exports", "header", "entities", "segments", "refs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	exp := &Export{Name: name, ContentHash: contentHash, ExportedAt: time.Now().UTC().Truncate(time.Second)}
	if f != nil {
		exp.Schemas = f.Schemas()
		if err := insertHeader(tx, f.Header); err != nil {
			return nil, err
		}
	}

	if err := insertEntities(tx, g); err != nil {
		return nil, err
	}
	refs, err := insertRefs(tx, g)
	if err != nil {
		return nil, err
	}
	exp.Entities = g.NodeCount()
	exp.References = refs

	_, err = tx.Exec(`
		INSERT INTO exports (name, content_hash, schema_names, entities, refs, exported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		exp.Name, exp.ContentHash, strings.Join(exp.Schemas, ","), exp.Entities, exp.References,
		exp.ExportedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction (%d entities): %w", exp.Entities, err)
	}
	return exp, nil
}

func insertHeader(tx *sql.Tx, header []step.Segment) error {
	stmt, err := tx.Prepare("INSERT INTO header (idx, type, params) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare header: %w", err)
	}
	defer stmt.Close()
	for i, seg := range header {
		if _, err := stmt.Exec(i, seg.Type, step.FormatParams(seg.Params)); err != nil {
			return fmt.Errorf("insert header %s: %w", seg.Type, err)
		}
	}
	return nil
}

func insertEntities(tx *sql.Tx, g *graph.Graph) error {
	ent, err := tx.Prepare(`
		INSERT INTO entities (id, type, line, col, complex, step_text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entities: %w", err)
	}
	defer ent.Close()
	seg, err := tx.Prepare("INSERT INTO segments (entity_id, idx, type, params) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare segments: %w", err)
	}
	defer seg.Close()

	for _, id := range g.IDs() {
		rec, _ := g.Get(id)
		if _, err := ent.Exec(id, rec.TypeName(), rec.Pos.Line, rec.Pos.Column, boolInt(rec.IsComplex()), rec.String()); err != nil {
			return fmt.Errorf("insert entity #%d: %w", id, err)
		}
		for i, sg := range rec.Segments {
			if _, err := seg.Exec(id, i, sg.Type, step.FormatParams(sg.Params)); err != nil {
				return fmt.Errorf("insert segment #%d/%d: %w", id, i, err)
			}
		}
	}
	return nil
}

func insertRefs(tx *sql.Tx, g *graph.Graph) (int, error) {
	stmt, err := tx.Prepare("INSERT INTO refs (from_id, to_id, path, dangling) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare refs: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, e := range g.Edges() {
		if _, err := stmt.Exec(e.From, e.To, e.Label, 0); err != nil {
			return n, fmt.Errorf("insert reference #%d.%s: %w", e.From, e.Label, err)
		}
		n++
	}
	for _, d := range g.Dangling() {
		if _, err := stmt.Exec(d.From, d.To, d.Label, 1); err != nil {
			return n, fmt.Errorf("insert reference #%d.%s: %w", d.From, d.Label, err)
		}
		n++
	}
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetExport returns the description of the exported file, or
// sql.ErrNoRows when nothing was exported.
func (s *Store) GetExport() (*Export, error) {
	var exp Export
	var schemas, exportedAt string
	err := s.db.QueryRow(`
		SELECT name, content_hash, schema_names, entities, refs, exported_at FROM exports`).
		Scan(&exp.Name, &exp.ContentHash, &schemas, &exp.Entities, &exp.References, &exportedAt)
	if err != nil {
		return nil, err
	}
	if schemas != "" {
		exp.Schemas = strings.Split(schemas, ",")
	}
	exp.ExportedAt, _ = time.Parse(time.RFC3339, exportedAt)
	return &exp, nil
}

// EntityCount returns the number of exported entities.
func (s *Store) EntityCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entities").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return n, nil
}

// ReferenceCount returns the number of exported references, dangling ones
// included.
func (s *Store) ReferenceCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return n, nil
}

// GetEntity returns one entity, or sql.ErrNoRows.
func (s *Store) GetEntity(id int) (*Entity, error) {
	var e Entity
	err := s.db.QueryRow(`
		SELECT id, type, line, col, complex, step_text FROM entities WHERE id = ?`, id).
		Scan(&e.ID, &e.Type, &e.Line, &e.Column, &e.Complex, &e.Text)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EntitiesByType returns the ids of entities with exactly the given type
// name, ascending.
func (s *Store) EntitiesByType(typeName string) ([]int, error) {
	return s.queryIDs("SELECT id FROM entities WHERE type = ? ORDER BY id", strings.ToUpper(typeName))
}

// Referrers returns the references pointing at id.
func (s *Store) Referrers(id int) ([]Reference, error) {
	return s.queryRefs("SELECT from_id, to_id, path, dangling FROM refs WHERE to_id = ? ORDER BY from_id, path", id)
}

// References returns the references held by id.
func (s *Store) References(id int) ([]Reference, error) {
	return s.queryRefs("SELECT from_id, to_id, path, dangling FROM refs WHERE from_id = ? ORDER BY path", id)
}

func (s *Store) queryIDs(query string, args ...any) ([]int, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) queryRefs(query string, args ...any) ([]Reference, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer rows.Close()

	var refs []Reference
	for rows.Next() {
		var r Reference
		if err := rows.Scan(&r.From, &r.To, &r.Path, &r.Dangling); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}
