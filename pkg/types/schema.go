// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SchemaNode is one node of the compiled traversal tree. The tree mirrors
// the template's parent/child structure starting from the root type and is
// immutable once compiled.
type SchemaNode struct {
	Name     string       `json:"name"`
	Fields   []Field      `json:"fields"`
	Children []SchemaNode `json:"children,omitempty"`

	// RelationshipField is the field on the parent record that holds this
	// node's ids. Empty on the root.
	RelationshipField string `json:"relationship_field,omitempty"`
}

// EntityMap maps entity type → display name → id, built from the
// template's static vocabularies. It is a fast exact-match fallback; the
// AI-backed resolver is the primary resolution path.
type EntityMap map[string]map[string]string

// Chunk is one self-contained root-level item of the input document.
type Chunk struct {
	ItemTitle   string `json:"item_title"`
	ItemContent string `json:"item_content"`
}

// Document classification outcomes.
const (
	SingleItem    = "single_item"
	MultipleItems = "multiple_items"
)

// Confidence levels reported by the entity resolver.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Match is the resolver's verdict for one candidate text.
type Match struct {
	ID         string `json:"id"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// LookupMap holds resolver results: entity type → original text → match.
// A candidate with no acceptable match is absent from the inner map.
type LookupMap map[string]map[string]Match
