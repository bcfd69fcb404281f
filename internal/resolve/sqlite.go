// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// SQLiteDirectory persists controlled vocabularies in a local SQLite
// database, keyed by entity type. It exists so vocabularies larger than a
// template comfortably carries (user registers, project lists) can be
// seeded once and reused across runs.
type SQLiteDirectory struct {
	db *sql.DB
}

// OpenSQLite opens or creates the directory database at path.
func OpenSQLite(path string) (*SQLiteDirectory, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening entity directory: %w", err)
	}

	d := &SQLiteDirectory{db: db}
	if err := d.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating directory schema: %w", err)
	}
	return d, nil
}

// Close releases the database connection.
func (d *SQLiteDirectory) Close() error {
	return d.db.Close()
}

func (d *SQLiteDirectory) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			entity_type TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (entity_type, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type)`,
		`CREATE TABLE IF NOT EXISTS entity_schemas (
			entity_type TEXT PRIMARY KEY,
			display_field TEXT NOT NULL,
			id_field TEXT NOT NULL,
			wrapper TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Lookup implements Directory.
func (d *SQLiteDirectory) Lookup(entityType string) ([]types.EntityRecord, error) {
	rows, err := d.db.Query(`SELECT id, name FROM entities WHERE entity_type = ? ORDER BY name`, entityType)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary %q: %w", entityType, err)
	}
	defer rows.Close()

	var records []types.EntityRecord
	for rows.Next() {
		var rec types.EntityRecord
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("scanning vocabulary %q: %w", entityType, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Schema implements Directory.
func (d *SQLiteDirectory) Schema(entityType string) (types.EntitySchema, error) {
	var s types.EntitySchema
	var wrapper sql.NullString
	err := d.db.QueryRow(
		`SELECT display_field, id_field, wrapper FROM entity_schemas WHERE entity_type = ?`,
		entityType,
	).Scan(&s.DisplayField, &s.IDField, &wrapper)
	if err == sql.ErrNoRows {
		return DefaultEntitySchema(), nil
	}
	if err != nil {
		return types.EntitySchema{}, fmt.Errorf("querying schema %q: %w", entityType, err)
	}
	s.Wrapper = wrapper.String
	return s, nil
}

// Seed inserts or replaces the vocabularies and shape metadata from a
// template's entity lists.
func (d *SQLiteDirectory) Seed(entities map[string][]types.EntityRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for entityType, records := range entities {
		for _, rec := range records {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO entities (entity_type, id, name) VALUES (?, ?, ?)`,
				entityType, rec.ID, rec.Name,
			); err != nil {
				return fmt.Errorf("seeding %q: %w", entityType, err)
			}
		}
	}

	return tx.Commit()
}

// SetSchema stores shape metadata for one entity type.
func (d *SQLiteDirectory) SetSchema(entityType string, s types.EntitySchema) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO entity_schemas (entity_type, display_field, id_field, wrapper) VALUES (?, ?, ?, ?)`,
		entityType, s.DisplayField, s.IDField, s.Wrapper,
	)
	if err != nil {
		return fmt.Errorf("storing schema %q: %w", entityType, err)
	}
	return nil
}

// Types lists the entity types with at least one record, sorted.
func (d *SQLiteDirectory) Types() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT entity_type FROM entities`)
	if err != nil {
		return nil, fmt.Errorf("listing entity types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var et string
		if err := rows.Scan(&et); err != nil {
			return nil, err
		}
		out = append(out, et)
	}
	sort.Strings(out)
	return out, rows.Err()
}
