// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

func compileValidation(t *testing.T, tpl *types.Template) *Schema {
	t.Helper()
	compiled, err := Compile(tpl, testConfig())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return compiled.Validation
}

func TestValidationRootWrapper(t *testing.T) {
	v := compileValidation(t, momTemplate())

	if len(v.Properties) != 1 {
		t.Fatalf("wrapper has %d properties, want 1", len(v.Properties))
	}
	root, ok := v.Properties["mom"]
	if !ok {
		t.Fatal("wrapper is missing the root type key")
	}
	if v.AdditionalProperties == nil || *v.AdditionalProperties {
		t.Error("wrapper allows additional properties")
	}
	if len(v.Required) != 1 || v.Required[0] != "mom" {
		t.Errorf("wrapper required = %v, want [mom]", v.Required)
	}

	// Every field and the child-array key must be required on the root node.
	want := []string{"e_agenda_ids", "meetingdate", "status", "title"}
	if len(root.Required) != len(want) {
		t.Fatalf("root required = %v, want %v", root.Required, want)
	}
	for i, name := range want {
		if root.Required[i] != name {
			t.Errorf("root required[%d] = %q, want %q", i, root.Required[i], name)
		}
	}
	if root.AdditionalProperties == nil || *root.AdditionalProperties {
		t.Error("root node allows additional properties")
	}
}

func TestValidationFieldShapes(t *testing.T) {
	v := compileValidation(t, momTemplate())
	root := v.Properties["mom"]

	t.Run("bounded vocabulary becomes enum", func(t *testing.T) {
		status := root.Properties["status"]
		if len(status.Enum) != 3 { // Draft, Open, null
			t.Fatalf("status enum = %v, want 2 names plus null", status.Enum)
		}
		if status.Enum[len(status.Enum)-1] != nil {
			t.Error("status enum does not end with null")
		}
		if !strings.Contains(status.Description, "one of") {
			t.Errorf("status description %q lacks the enum instruction", status.Description)
		}
	})

	t.Run("datetime gets format hint", func(t *testing.T) {
		date := root.Properties["meetingdate"]
		if date.Format != "date-time" {
			t.Errorf("meetingdate format = %q, want date-time", date.Format)
		}
	})

	t.Run("person vocabulary stays free text", func(t *testing.T) {
		agenda := root.Properties["e_agenda_ids"].Items
		responsible := agenda.Properties["responsible"]
		if responsible.Enum != nil {
			t.Errorf("user-typed field got an enum: %v", responsible.Enum)
		}
	})

	t.Run("child relationship is an array", func(t *testing.T) {
		agendaField := root.Properties["e_agenda_ids"]
		if agendaField.Type[0] != "array" || agendaField.Items == nil {
			t.Fatalf("e_agenda_ids is not an array schema: %+v", agendaField)
		}
		if _, ok := agendaField.Items.Properties["topic"]; !ok {
			t.Error("agenda item schema missing topic")
		}
	})

	t.Run("scalars are nullable strings", func(t *testing.T) {
		title := root.Properties["title"]
		if len(title.Type) != 2 || title.Type[0] != "string" || title.Type[1] != "null" {
			t.Errorf("title type = %v, want [string null]", title.Type)
		}
	})
}

func TestValidationDescriptionForwarding(t *testing.T) {
	tpl := momTemplate()
	typ := tpl.Types["mom"]
	typ.Fields[0].Description = "The meeting title exactly as written in the heading."
	tpl.Types["mom"] = typ

	v := compileValidation(t, tpl)
	got := v.Properties["mom"].Properties["title"].Description
	if got != "The meeting title exactly as written in the heading." {
		t.Errorf("description = %q, want the template text verbatim", got)
	}
}

func TestValidationEnumThreshold(t *testing.T) {
	tpl := momTemplate()
	big := make([]types.EntityRecord, 30)
	for i := range big {
		big[i] = types.EntityRecord{ID: string(rune('a' + i)), Name: strings.Repeat("x", i+1)}
	}
	tpl.Entities["momstatus"] = big

	v := compileValidation(t, tpl)
	status := v.Properties["mom"].Properties["status"]
	if status.Enum != nil {
		t.Errorf("oversized vocabulary still produced an enum of %d entries", len(status.Enum))
	}
}

func TestValidationSerializes(t *testing.T) {
	v := compileValidation(t, momTemplate())
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Round-trip through a generic map to confirm the JSON is well formed
	// and strict at the top level.
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ap, ok := m["additionalProperties"].(bool); !ok || ap {
		t.Errorf("serialized additionalProperties = %v, want false", m["additionalProperties"])
	}
}
