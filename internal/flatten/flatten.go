// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flatten

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Dmazeio/document-import-poc/internal/resolve"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// Flattener converts one extracted tree into flat records. The directory
// supplies vocabulary presence and shape metadata; the confidence floor
// decides which resolver matches survive.
type Flattener struct {
	dir     resolve.Directory
	minKeep string
}

// New builds a Flattener. cfg.MinKeepConfidence below defaults to Low,
// which keeps every match the resolver returns.
func New(dir resolve.Directory, cfg types.ResolverConfig) *Flattener {
	minKeep := cfg.MinKeepConfidence
	if minKeep == "" {
		minKeep = types.ConfidenceLow
	}
	return &Flattener{dir: dir, minKeep: minKeep}
}

// Result is the flattener's output: the record list with the root record
// at index 0, plus the warnings accumulated during resolution.
type Result struct {
	Records  []types.Record
	Warnings []string
}

type walkState struct {
	records   []types.Record
	warnings  []string
	lookups   types.LookupMap
	entityMap types.EntityMap
	hasVocab  map[string]bool
	schemas   map[string]types.EntitySchema
}

// Flatten walks the extracted document alongside the compiled tree and
// emits one record per node, parent links included. The root record is
// moved to index 0 afterwards; the rest keep traversal order.
func (f *Flattener) Flatten(tree types.SchemaNode, doc map[string]any, lookups types.LookupMap, entityMap types.EntityMap) (*Result, error) {
	root, ok := doc[tree.Name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("extracted document has no %q object", tree.Name)
	}

	st := &walkState{
		lookups:   lookups,
		entityMap: entityMap,
		hasVocab:  map[string]bool{},
		schemas:   map[string]types.EntitySchema{},
	}
	if _, err := f.walk(tree, root, "", "", st); err != nil {
		return nil, err
	}

	moveRootToFront(st.records, tree.Name)
	return &Result{Records: st.records, Warnings: st.warnings}, nil
}

// walk emits the record for one node and recurses into its children,
// returning the generated id for parent linking.
func (f *Flattener) walk(node types.SchemaNode, obj map[string]any, parentID, parentType string, st *walkState) (string, error) {
	rec := types.Record{
		types.KeyID:         node.Name + "-" + uuid.NewString(),
		types.KeyObjectName: node.Name,
	}
	if parentID != "" {
		rec[types.KeyParentID] = parentID
		rec[types.KeyParentType] = parentType
	}

	for _, field := range node.Fields {
		if field.EntityType == "" {
			rec[field.FieldName] = obj[field.FieldName]
			continue
		}
		value, err := f.entityValue(field, obj[field.FieldName], st)
		if err != nil {
			return "", err
		}
		rec[field.FieldName] = value
	}

	for _, child := range node.Children {
		items, _ := obj[child.RelationshipField].([]any)
		childIDs := make([]string, 0, len(items))
		for _, item := range items {
			childObj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			id, err := f.walk(child, childObj, rec.ID(), node.Name, st)
			if err != nil {
				return "", err
			}
			childIDs = append(childIDs, id)
		}
		// The key is always present, even for an empty array.
		rec[child.RelationshipField] = types.EntityRef{Type: child.Name, Values: childIDs}
	}

	st.records = append(st.records, rec)
	return rec.ID(), nil
}

// entityValue resolves one entity-typed field value. Types with no
// vocabulary anywhere keep their raw text untouched; everything else
// becomes a relationship-shaped value whose ids passed the confidence
// floor. Shortfalls surface as warnings, never as errors.
func (f *Flattener) entityValue(field types.Field, raw any, st *walkState) (any, error) {
	text, _ := raw.(string)

	hasVocab, checked := st.hasVocab[field.EntityType]
	if !checked {
		records, err := f.dir.Lookup(field.EntityType)
		if err != nil {
			return nil, fmt.Errorf("looking up vocabulary %q: %w", field.EntityType, err)
		}
		hasVocab = len(records) > 0
		st.hasVocab[field.EntityType] = hasVocab
	}
	if !hasVocab && text != "" {
		return text, nil
	}

	schema, cached := st.schemas[field.EntityType]
	if !cached {
		var err error
		schema, err = f.dir.Schema(field.EntityType)
		if err != nil {
			return nil, fmt.Errorf("looking up schema %q: %w", field.EntityType, err)
		}
		st.schemas[field.EntityType] = schema
	}
	refType := field.EntityType
	if schema.Wrapper != "" {
		refType = schema.Wrapper
	}

	multiValued := field.Type == types.FieldMultiValue
	values := []string{}
	for _, candidate := range splitCandidates(text, multiValued) {
		id, ok := f.resolveCandidate(field.EntityType, candidate, st)
		if !ok {
			continue
		}
		values = append(values, id)
	}
	if !multiValued && len(values) > 1 {
		values = values[:1]
	}
	return types.EntityRef{Type: refType, Values: values}, nil
}

// resolveCandidate consults the batched resolver results first and the
// static entity map as an exact-name fallback.
func (f *Flattener) resolveCandidate(entityType, candidate string, st *walkState) (string, bool) {
	if match, ok := st.lookups[entityType][candidate]; ok {
		if confidenceRank(match.Confidence) < confidenceRank(f.minKeep) {
			st.warnings = append(st.warnings, fmt.Sprintf(
				"Dropped %s-confidence match for '%s' (entity type '%s'): %s",
				match.Confidence, candidate, entityType, match.Reasoning))
			return "", false
		}
		if match.Confidence != types.ConfidenceHigh {
			st.warnings = append(st.warnings, fmt.Sprintf(
				"Matched '%s' (entity type '%s') to '%s' with %s confidence: %s",
				candidate, entityType, match.ID, match.Confidence, match.Reasoning))
		}
		return match.ID, true
	}

	if id, ok := st.entityMap[entityType][candidate]; ok {
		return id, true
	}

	st.warnings = append(st.warnings, fmt.Sprintf(
		"Entity '%s' not found in vocabulary for entity type '%s'", candidate, entityType))
	return "", false
}

func confidenceRank(c string) int {
	switch c {
	case types.ConfidenceHigh:
		return 3
	case types.ConfidenceMedium:
		return 2
	case types.ConfidenceLow:
		return 1
	}
	return 0
}

// moveRootToFront relocates the single root record to index 0, keeping
// the relative order of everything else.
func moveRootToFront(records []types.Record, rootName string) {
	for i, rec := range records {
		if rec.ObjectName() != rootName {
			continue
		}
		root := records[i]
		copy(records[1:i+1], records[:i])
		records[0] = root
		return
	}
}
