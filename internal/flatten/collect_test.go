// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flatten

import (
	"reflect"
	"testing"

	"github.com/Dmazeio/document-import-poc/internal/resolve"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

func TestSplitCandidates(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		multiValued bool
		want        []string
	}{
		{"single value whole text", "we haven't started yet", false, []string{"we haven't started yet"}},
		{"single value strips parenthetical", "Ola Nordmann (chair)", false, []string{"Ola Nordmann"}},
		{"empty", "   ", true, nil},
		{"commas and semicolons", "a, b; c", true, []string{"a", "b", "c"}},
		{"newlines", "a\nb", true, []string{"a", "b"}},
		{"norwegian connector", "Ola og Kari", true, []string{"Ola", "Kari"}},
		{"english connector", "Ola and Kari", true, []string{"Ola", "Kari"}},
		{"connector inside a word is not a delimiter", "Randi, Brand Team", true, []string{"Randi", "Brand Team"}},
		{"mixed", "Ola Nordmann, Kari (guest) og Per", true, []string{"Ola Nordmann", "Kari", "Per"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitCandidates(tt.raw, tt.multiValued)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitCandidates(%q, %v) = %v, want %v", tt.raw, tt.multiValued, got, tt.want)
			}
		})
	}
}

func TestCollectEntities(t *testing.T) {
	doc := map[string]any{
		"mom": map[string]any{
			"title":  "Q1 Sync",
			"status": "Open",
			"e_agenda_ids": []any{
				map[string]any{"topic": "Budget", "responsible": "Ola", "attendees": "Ola, Kari"},
				map[string]any{"topic": "Hiring", "responsible": "Kari", "attendees": "Ola og Per"},
			},
		},
	}

	items, err := CollectEntities(momTree(), doc, momDirectory())
	if err != nil {
		t.Fatalf("CollectEntities() error = %v", err)
	}

	want := map[string][]string{
		"status": {"Open"},
		"people": {"Kari", "Ola", "Per"},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("CollectEntities() = %v, want %v (unique, sorted)", items, want)
	}
}

func TestCollectEntities_SkipsEmptyVocabularies(t *testing.T) {
	doc := map[string]any{
		"mom": map[string]any{"title": "x", "status": "Open", "e_agenda_ids": []any{}},
	}

	items, err := CollectEntities(momTree(), doc, resolve.NewTemplateDirectory(&types.Template{}))
	if err != nil {
		t.Fatalf("CollectEntities() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("CollectEntities() = %v, want nothing for empty vocabularies", items)
	}
}

func TestCollectEntities_MissingRoot(t *testing.T) {
	if _, err := CollectEntities(momTree(), map[string]any{}, momDirectory()); err == nil {
		t.Fatal("expected an error for a document without the root object")
	}
}
