// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/internal/schema"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// scriptedClient returns one canned response per call, cycling errors and
// payloads, and counts calls for retry assertions.
type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedClient) Complete(_ context.Context, _ ai.Request) (json.RawMessage, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return json.RawMessage(s.responses[i]), nil
}

func compiledMomSchema(t *testing.T) *schema.Compiled {
	t.Helper()
	tpl := &types.Template{
		Types: map[string]types.ObjectType{
			"mom": {
				ObjectName: "mom",
				IsRoot:     true,
				Fields: []types.Field{
					{FieldName: "title", Type: types.FieldString},
				},
			},
			"agenda": {
				ObjectName: "agenda",
				Fields: []types.Field{
					{FieldName: "topic", Type: types.FieldString},
				},
			},
		},
		Relationships: []types.Relationship{
			{Parent: "mom", Child: "agenda", ChildFieldName: "e_agenda_ids"},
		},
	}
	compiled, err := schema.Compile(tpl, types.SchemaConfig{EnumThreshold: 25, PersonEntityTypes: []string{"user"}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return compiled
}

const conformant = `{"mom": {"title": "Q1 Sync", "e_agenda_ids": [{"topic": "Budget"}]}}`

func TestExtractSuccess(t *testing.T) {
	client := &scriptedClient{responses: []string{conformant}}
	e := New(client, 2)

	data, err := e.Extract(context.Background(), "# Q1 Sync\n\n- Budget", compiledMomSchema(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	mom, ok := data["mom"].(map[string]any)
	if !ok {
		t.Fatalf("root key missing or wrong shape: %v", data)
	}
	if mom["title"] != "Q1 Sync" {
		t.Errorf("title = %v", mom["title"])
	}
	agendas, ok := mom["e_agenda_ids"].([]any)
	if !ok || len(agendas) != 1 {
		t.Fatalf("e_agenda_ids = %v", mom["e_agenda_ids"])
	}
}

func TestExtractRetriesTransportFailure(t *testing.T) {
	client := &scriptedClient{
		errs:      []error{fmt.Errorf("transient"), nil},
		responses: []string{conformant, conformant},
	}
	e := New(client, 2)

	if _, err := e.Extract(context.Background(), "doc", compiledMomSchema(t)); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestExtractRejectsNonconformantOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		// Missing the required e_agenda_ids key.
		{"missing key", `{"mom": {"title": "x"}}`},
		// Extra key not in the schema.
		{"extra key", `{"mom": {"title": "x", "e_agenda_ids": [], "sneaky": 1}}`},
		// Wrong top-level wrapper.
		{"wrong root", `{"meeting": {"title": "x", "e_agenda_ids": []}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{responses: []string{tt.response}}
			e := New(client, 1)

			_, err := e.Extract(context.Background(), "doc", compiledMomSchema(t))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if client.calls != 2 {
				t.Errorf("calls = %d, want retry then failure", client.calls)
			}
		})
	}
}

func TestExtractNullsAreConformant(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"mom": {"title": null, "e_agenda_ids": []}}`}}
	e := New(client, 1)

	data, err := e.Extract(context.Background(), "doc", compiledMomSchema(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	mom := data["mom"].(map[string]any)
	if mom["title"] != nil {
		t.Errorf("title = %v, want nil", mom["title"])
	}
}
