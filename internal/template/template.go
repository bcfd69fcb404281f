// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package template loads and normalizes Dmaze import templates. A template
// may be authored as JSON or YAML; either way the types collection is
// accepted as a name-keyed object or a plain list and normalized to a map.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// rawTemplate matches the on-disk template shape before normalization.
type rawTemplate struct {
	Types         json.RawMessage                 `json:"types"`
	Relationships []types.Relationship            `json:"relationships"`
	Entities      map[string][]types.EntityRecord `json:"entities"`
}

// Load reads a template file and parses it. Files ending in .yaml or .yml
// are decoded as YAML; everything else is treated as JSON.
func Load(path string) (*types.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse decodes template JSON, normalizes the types collection, and
// validates the result.
func Parse(data []byte) (*types.Template, error) {
	var raw rawTemplate
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing template JSON: %w", err)
	}

	typs, err := normalizeTypes(raw.Types)
	if err != nil {
		return nil, err
	}

	tpl := &types.Template{
		Types:         typs,
		Relationships: raw.Relationships,
		Entities:      raw.Entities,
	}
	if err := validate(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// ParseYAML decodes a YAML template by converting it to JSON first, so
// both formats share one normalization path.
func ParseYAML(data []byte) (*types.Template, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting template YAML: %w", err)
	}
	return Parse(jsonData)
}

// normalizeTypes accepts the raw types collection as either a name-keyed
// map or a list and returns a name-keyed map. Map entries without an
// objectname inherit the map key.
func normalizeTypes(raw json.RawMessage) (map[string]types.ObjectType, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("template has no types collection")
	}

	var asList []types.ObjectType
	if err := json.Unmarshal(raw, &asList); err == nil {
		out := make(map[string]types.ObjectType, len(asList))
		for i, t := range asList {
			if t.ObjectName == "" {
				return nil, fmt.Errorf("type entry %d has no objectname", i)
			}
			out[t.ObjectName] = t
		}
		return out, nil
	}

	var asMap map[string]types.ObjectType
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, fmt.Errorf("types collection is neither an object nor a list: %w", err)
	}
	out := make(map[string]types.ObjectType, len(asMap))
	for name, t := range asMap {
		if t.ObjectName == "" {
			t.ObjectName = name
		}
		out[t.ObjectName] = t
	}
	return out, nil
}

// validate checks the structural invariants the compiler relies on:
// exactly one root type and relationships that reference known types.
func validate(tpl *types.Template) error {
	if _, err := tpl.Root(); err != nil {
		return err
	}
	for _, rel := range tpl.Relationships {
		if _, ok := tpl.Types[rel.Parent]; !ok {
			return fmt.Errorf("relationship references unknown parent type %q", rel.Parent)
		}
		if _, ok := tpl.Types[rel.Child]; !ok {
			return fmt.Errorf("relationship references unknown child type %q", rel.Child)
		}
		if rel.ChildFieldName == "" {
			return fmt.Errorf("relationship %s→%s has no childfieldname", rel.Parent, rel.Child)
		}
	}
	return nil
}
