// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data structures shared across pipeline stages:
// the import template, the compiled schema tree, flat Dmaze records, and
// per-stage configuration.
package types

import "fmt"

// Field is one extractable field on an object type.
type Field struct {
	FieldName   string `json:"fieldname" yaml:"fieldname"`
	Type        string `json:"type" yaml:"type"`
	EntityType  string `json:"entitytype,omitempty" yaml:"entitytype,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Field type values understood by the schema compiler.
const (
	FieldString      = "string"
	FieldDatetime    = "datetime"
	FieldDate        = "date"
	FieldSingleValue = "singlevalue"
	FieldMultiValue  = "multivalue"
	FieldEntity      = "entity"
)

// ObjectType is one object definition from the template.
type ObjectType struct {
	ObjectName string  `json:"objectname" yaml:"objectname"`
	IsRoot     bool    `json:"isroot,omitempty" yaml:"isroot,omitempty"`
	Fields     []Field `json:"fields" yaml:"fields"`
}

// Relationship declares a parent→child edge and the parent field that
// carries the link ids.
type Relationship struct {
	Parent         string `json:"parent" yaml:"parent"`
	Child          string `json:"child" yaml:"child"`
	ChildFieldName string `json:"childfieldname" yaml:"childfieldname"`
}

// EntityRecord is one entry of a controlled vocabulary.
type EntityRecord struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// EntitySchema describes how a vocabulary is shaped: which field carries
// the display name, which the id, and an optional wrapper type that
// replaces the entity type name in emitted relationship values (e.g. the
// "people" vocabulary resolves to ids but is written out as type "user").
type EntitySchema struct {
	DisplayField string `json:"primary_display_field"`
	IDField      string `json:"id_field"`
	Wrapper      string `json:"dmaze_format_wrapper,omitempty"`
}

// Template is the parsed and normalized import template.
type Template struct {
	Types         map[string]ObjectType
	Relationships []Relationship
	Entities      map[string][]EntityRecord
}

// Root returns the single object type flagged isroot.
func (t *Template) Root() (ObjectType, error) {
	var root ObjectType
	found := false
	for _, typ := range t.Types {
		if !typ.IsRoot {
			continue
		}
		if found {
			return ObjectType{}, fmt.Errorf("template marks more than one root type (%s and %s)", root.ObjectName, typ.ObjectName)
		}
		root = typ
		found = true
	}
	if !found {
		return ObjectType{}, fmt.Errorf("template has no type marked isroot")
	}
	return root, nil
}
