// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema compiles an import template into the three artifacts the
// rest of the pipeline consumes: the traversal tree, the strict validation
// schema for the extraction call, and the static name→id entity map.
package schema

import (
	"fmt"
	"sort"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// Compiled is the output of one template compilation. It is built once per
// run and treated as immutable afterwards.
type Compiled struct {
	Tree       types.SchemaNode
	Validation *Schema
	EntityMap  types.EntityMap
}

// Compile builds the schema tree, validation schema, and entity map from a
// normalized template. Both tree and validation schema come out of the same
// recursive walk so they cannot drift apart.
func Compile(tpl *types.Template, cfg types.SchemaConfig) (*Compiled, error) {
	root, err := tpl.Root()
	if err != nil {
		return nil, err
	}

	edges := relationshipSet(tpl)

	b := &builder{tpl: tpl, cfg: cfg, edges: edges}
	tree, rootSchema, err := b.build(root.ObjectName, "", map[string]bool{})
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Tree:       tree,
		Validation: wrapRoot(root.ObjectName, rootSchema),
		EntityMap:  entityMap(tpl),
	}, nil
}

// relationshipSet merges explicit relationships with implicit ones (a
// field whose entitytype names another known object type defines an edge),
// deduplicated by (parent, child). Explicit declarations win because they
// carry the authored field name.
func relationshipSet(tpl *types.Template) map[string][]types.Relationship {
	type key struct{ parent, child string }
	seen := make(map[key]bool)
	byParent := make(map[string][]types.Relationship)

	add := func(rel types.Relationship) {
		k := key{rel.Parent, rel.Child}
		if seen[k] {
			return
		}
		seen[k] = true
		byParent[rel.Parent] = append(byParent[rel.Parent], rel)
	}

	for _, rel := range tpl.Relationships {
		add(rel)
	}

	// Walk types in sorted order so implicit edges come out deterministic.
	names := make([]string, 0, len(tpl.Types))
	for name := range tpl.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, f := range tpl.Types[name].Fields {
			if f.EntityType == "" {
				continue
			}
			if _, isType := tpl.Types[f.EntityType]; !isType {
				continue
			}
			add(types.Relationship{Parent: name, Child: f.EntityType, ChildFieldName: f.FieldName})
		}
	}

	return byParent
}

type builder struct {
	tpl   *types.Template
	cfg   types.SchemaConfig
	edges map[string][]types.Relationship
}

// build produces the schema node and validation schema for one object type,
// recursing into its children. onPath guards against template cycles; the
// schema is required to be tree-shaped.
func (b *builder) build(typeName, relField string, onPath map[string]bool) (types.SchemaNode, *Schema, error) {
	if onPath[typeName] {
		return types.SchemaNode{}, nil, fmt.Errorf("type %q appears as its own ancestor; template must be tree-shaped", typeName)
	}
	onPath[typeName] = true
	defer delete(onPath, typeName)

	typ, ok := b.tpl.Types[typeName]
	if !ok {
		return types.SchemaNode{}, nil, fmt.Errorf("unknown object type %q", typeName)
	}

	childRels := b.edges[typeName]
	relFields := make(map[string]bool, len(childRels))
	for _, rel := range childRels {
		relFields[rel.ChildFieldName] = true
	}

	node := types.SchemaNode{
		Name:              typeName,
		RelationshipField: relField,
	}
	objSchema := newObjectSchema()

	for _, f := range typ.Fields {
		// Fields that carry a child relationship become child arrays, not
		// data fields.
		if relFields[f.FieldName] {
			continue
		}
		node.Fields = append(node.Fields, f)
		objSchema.addProperty(f.FieldName, b.fieldSchema(f))
	}

	for _, rel := range childRels {
		childNode, childSchema, err := b.build(rel.Child, rel.ChildFieldName, onPath)
		if err != nil {
			return types.SchemaNode{}, nil, err
		}
		node.Children = append(node.Children, childNode)
		objSchema.addProperty(rel.ChildFieldName, arrayOf(childSchema))
	}

	return node, objSchema, nil
}

// entityMap builds the static display-name→id lookup per entity type.
func entityMap(tpl *types.Template) types.EntityMap {
	m := make(types.EntityMap, len(tpl.Entities))
	for entityType, records := range tpl.Entities {
		names := make(map[string]string, len(records))
		for _, rec := range records {
			names[rec.Name] = rec.ID
		}
		m[entityType] = names
	}
	return m
}
