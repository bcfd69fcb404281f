// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"fmt"
	"sort"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// Schema is a strict, nullable-aware JSON Schema fragment. Every declared
// property is required (it may be null but must be present) and no extra
// properties are allowed, so the completion service always emits the exact
// key set the flattener traverses.
type Schema struct {
	Type                 []string           `json:"type"`
	Description          string             `json:"description,omitempty"`
	Format               string             `json:"format,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

func newObjectSchema() *Schema {
	closed := false
	return &Schema{
		Type:                 []string{"object"},
		Properties:           map[string]*Schema{},
		AdditionalProperties: &closed,
	}
}

// addProperty registers a property and marks it required, keeping the
// required list sorted for stable serialization.
func (s *Schema) addProperty(name string, prop *Schema) {
	s.Properties[name] = prop
	s.Required = append(s.Required, name)
	sort.Strings(s.Required)
}

func arrayOf(items *Schema) *Schema {
	return &Schema{Type: []string{"array"}, Items: items}
}

// wrapRoot nests the root object schema under a single top-level key named
// after the root type, which is the shape the extractor hands back.
func wrapRoot(rootName string, rootSchema *Schema) *Schema {
	wrapper := newObjectSchema()
	wrapper.addProperty(rootName, rootSchema)
	return wrapper
}

// fieldSchema derives the output schema for one template field.
func (b *builder) fieldSchema(f types.Field) *Schema {
	if f.EntityType != "" {
		if vocab, ok := b.tpl.Entities[f.EntityType]; ok && b.enumerable(f.EntityType, len(vocab)) {
			return enumSchema(f, vocab)
		}
		return freeTextSchema(f)
	}

	switch f.Type {
	case types.FieldDate, types.FieldDatetime:
		return &Schema{
			Type:        []string{"string", "null"},
			Format:      "date-time",
			Description: describe(f, fmt.Sprintf("Extract the date/time value for field '%s' as ISO 8601, or null if absent.", f.FieldName)),
		}
	default:
		return freeTextSchema(f)
	}
}

// enumerable reports whether a vocabulary is small enough to inline as an
// enum. Person-like vocabularies always stay free text so the extractor
// returns the name as written and the resolver handles matching.
func (b *builder) enumerable(entityType string, size int) bool {
	if size == 0 || size > b.cfg.EnumThreshold {
		return false
	}
	for _, person := range b.cfg.PersonEntityTypes {
		if entityType == person {
			return false
		}
	}
	return true
}

func enumSchema(f types.Field, vocab []types.EntityRecord) *Schema {
	values := make([]any, 0, len(vocab)+1)
	for _, rec := range vocab {
		values = append(values, rec.Name)
	}
	values = append(values, nil)
	return &Schema{
		Type:        []string{"string", "null"},
		Enum:        values,
		Description: fmt.Sprintf("Value for field '%s'. Must be one of the listed values, or null if absent.", f.FieldName),
	}
}

// freeTextSchema emits string-or-null. The template's own field description
// is forwarded verbatim when present; it usually carries domain-specific
// extraction instructions.
func freeTextSchema(f types.Field) *Schema {
	return &Schema{
		Type:        []string{"string", "null"},
		Description: describe(f, fmt.Sprintf("Extract the value for field '%s', or null if absent.", f.FieldName)),
	}
}

func describe(f types.Field, fallback string) string {
	if f.Description != "" {
		return f.Description
	}
	return fallback
}
