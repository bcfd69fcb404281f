// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flatten turns an extracted nested tree into the flat list of
// linked Dmaze import records. It owns the resolution policy: which
// candidate texts go to the resolver, which matches are kept, and which
// shortfalls become warnings.
package flatten

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Dmazeio/document-import-poc/internal/resolve"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	delimiterRe     = regexp.MustCompile(`[,;\n]|\s+og\s+|\s+and\s+`)
)

// splitCandidates turns one raw field value into candidate texts for
// resolution. Parenthetical asides are stripped first ("Ola (chair)"
// resolves as "Ola"). Multi-valued fields split on commas, semicolons,
// newlines, and the connector words "and" and "og"; single-valued fields
// yield the whole trimmed text as one candidate.
func splitCandidates(raw string, multiValued bool) []string {
	clean := parentheticalRe.ReplaceAllString(raw, "")
	if !multiValued {
		if trimmed := strings.TrimSpace(clean); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var out []string
	for _, part := range delimiterRe.Split(clean, -1) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CollectEntities walks the extracted document once and gathers every
// unique (entity type, candidate text) pair that needs resolution. Types
// whose directory vocabulary is empty are skipped entirely; their raw text
// is preserved at flattening time instead. The result feeds one batched
// resolver call per chunk.
func CollectEntities(tree types.SchemaNode, doc map[string]any, dir resolve.Directory) (map[string][]string, error) {
	root, ok := doc[tree.Name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("extracted document has no %q object", tree.Name)
	}

	seen := map[string]map[string]bool{}
	hasVocab := map[string]bool{}
	if err := collectNode(tree, root, dir, seen, hasVocab); err != nil {
		return nil, err
	}

	items := make(map[string][]string, len(seen))
	for entityType, texts := range seen {
		list := make([]string, 0, len(texts))
		for text := range texts {
			list = append(list, text)
		}
		sort.Strings(list)
		items[entityType] = list
	}
	return items, nil
}

func collectNode(node types.SchemaNode, obj map[string]any, dir resolve.Directory, seen map[string]map[string]bool, hasVocab map[string]bool) error {
	for _, field := range node.Fields {
		if field.EntityType == "" {
			continue
		}
		raw, _ := obj[field.FieldName].(string)
		if raw == "" {
			continue
		}

		known, checked := hasVocab[field.EntityType]
		if !checked {
			records, err := dir.Lookup(field.EntityType)
			if err != nil {
				return fmt.Errorf("looking up vocabulary %q: %w", field.EntityType, err)
			}
			known = len(records) > 0
			hasVocab[field.EntityType] = known
		}
		if !known {
			continue
		}

		for _, candidate := range splitCandidates(raw, field.Type == types.FieldMultiValue) {
			if seen[field.EntityType] == nil {
				seen[field.EntityType] = map[string]bool{}
			}
			seen[field.EntityType][candidate] = true
		}
	}

	for _, child := range node.Children {
		items, _ := obj[child.RelationshipField].([]any)
		for _, item := range items {
			childObj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if err := collectNode(child, childObj, dir, seen, hasVocab); err != nil {
				return err
			}
		}
	}
	return nil
}
