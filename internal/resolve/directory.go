// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve matches free-text entity mentions against controlled
// vocabularies. The vocabularies come from a Directory collaborator, the
// stand-in for the Dmaze entity API, and matching happens in one batched
// completion call per document chunk.
package resolve

import (
	"fmt"
	"sort"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// Directory serves controlled vocabularies and their shape metadata.
// Implementations: template-embedded entities, a SQLite store, or a layered
// combination. Production deployments would back this with the Dmaze API.
type Directory interface {
	// Lookup returns the vocabulary for an entity type, or an empty slice
	// when the type has none.
	Lookup(entityType string) ([]types.EntityRecord, error)

	// Schema returns the vocabulary's shape metadata. Unknown types get
	// the default shape (display field "name", id field "id").
	Schema(entityType string) (types.EntitySchema, error)
}

// DefaultEntitySchema is the shape assumed for vocabularies without
// explicit metadata.
func DefaultEntitySchema() types.EntitySchema {
	return types.EntitySchema{DisplayField: "name", IDField: "id"}
}

// TemplateDirectory serves the vocabularies embedded in an import template.
type TemplateDirectory struct {
	entities map[string][]types.EntityRecord
	schemas  map[string]types.EntitySchema
}

// NewTemplateDirectory wraps a template's entity lists. The "people"
// vocabulary is treated as an alias for "user" records and carries a
// wrapper so resolved references are emitted with type "user".
func NewTemplateDirectory(tpl *types.Template) *TemplateDirectory {
	d := &TemplateDirectory{
		entities: tpl.Entities,
		schemas:  map[string]types.EntitySchema{},
	}
	if _, ok := tpl.Entities["people"]; ok {
		d.schemas["people"] = types.EntitySchema{DisplayField: "name", IDField: "id", Wrapper: "user"}
	}
	return d
}

// SetSchema overrides the shape metadata for one entity type.
func (d *TemplateDirectory) SetSchema(entityType string, s types.EntitySchema) {
	d.schemas[entityType] = s
}

func (d *TemplateDirectory) Lookup(entityType string) ([]types.EntityRecord, error) {
	return d.entities[entityType], nil
}

func (d *TemplateDirectory) Schema(entityType string) (types.EntitySchema, error) {
	if s, ok := d.schemas[entityType]; ok {
		return s, nil
	}
	return DefaultEntitySchema(), nil
}

// Layered consults Primary first and falls back to Secondary when the
// primary has no vocabulary (or no explicit schema) for a type.
type Layered struct {
	Primary   Directory
	Secondary Directory
}

func (l Layered) Lookup(entityType string) ([]types.EntityRecord, error) {
	records, err := l.Primary.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}
	return l.Secondary.Lookup(entityType)
}

func (l Layered) Schema(entityType string) (types.EntitySchema, error) {
	records, err := l.Primary.Lookup(entityType)
	if err == nil && len(records) > 0 {
		return l.Primary.Schema(entityType)
	}
	return l.Secondary.Schema(entityType)
}

// Vocabularies gathers the vocabularies for the given entity types from a
// directory, skipping types with no entries.
func Vocabularies(dir Directory, entityTypes []string) (map[string][]types.EntityRecord, error) {
	out := make(map[string][]types.EntityRecord, len(entityTypes))
	sorted := append([]string{}, entityTypes...)
	sort.Strings(sorted)
	for _, et := range sorted {
		records, err := dir.Lookup(et)
		if err != nil {
			return nil, fmt.Errorf("looking up vocabulary %q: %w", et, err)
		}
		if len(records) > 0 {
			out[et] = records
		}
	}
	return out, nil
}
