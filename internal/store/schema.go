package store

import "fmt"

// The DDL stays within the subset SQLite and Dolt's MySQL dialect share.
// Tables:
//   - exports: one row describing the exported file
//   - header: FILE_DESCRIPTION, FILE_NAME and FILE_SCHEMA entries
//   - entities: one row per instance with its re-serialized STEP text
//   - segments: the typed parts of each instance (one for simple instances)
//   - refs: one row per reference, dangling ones included
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS exports (
    name VARCHAR(1024) NOT NULL,
    content_hash VARCHAR(80) NOT NULL,
    schema_names TEXT,
    entities INT NOT NULL,
    refs INT NOT NULL,
    exported_at VARCHAR(40) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS header (
    idx INT PRIMARY KEY,
    type VARCHAR(255) NOT NULL,
    params TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS entities (
    id BIGINT PRIMARY KEY,
    type VARCHAR(255) NOT NULL,
    line INT NOT NULL,
    col INT NOT NULL,
    complex INT NOT NULL DEFAULT 0,
    step_text TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS segments (
    entity_id BIGINT NOT NULL,
    idx INT NOT NULL,
    type VARCHAR(255) NOT NULL,
    params TEXT NOT NULL,
    PRIMARY KEY (entity_id, idx)
)`,
	`CREATE TABLE IF NOT EXISTS refs (
    from_id BIGINT NOT NULL,
    to_id BIGINT NOT NULL,
    path VARCHAR(255) NOT NULL,
    dangling INT NOT NULL DEFAULT 0,
    PRIMARY KEY (from_id, path)
)`,
}

// Secondary indexes differ in syntax between the backends.
var indexStatements = map[Backend][]string{
	BackendSQLite: {
		"CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type)",
		"CREATE INDEX IF NOT EXISTS idx_refs_to ON refs(to_id)",
	},
	BackendDolt: {
		"ALTER TABLE entities ADD INDEX idx_entities_type (type)",
		"ALTER TABLE refs ADD INDEX idx_refs_to (to_id)",
	},
}

func (s *Store) initSchema() error {
	var existed bool
	if err := s.db.QueryRow("SELECT COUNT(*) > 0 FROM " + tableProbe(s.backend)).Scan(&existed); err != nil {
		return fmt.Errorf("probe schema: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	if existed {
		return nil
	}
	for _, stmt := range indexStatements[s.backend] {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// tableProbe returns a query source that has a row when the entities
// table already exists.
func tableProbe(b Backend) string {
	if b == BackendDolt {
		return "information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'entities'"
	}
	return "sqlite_master WHERE type = 'table' AND name = 'entities'"
}
