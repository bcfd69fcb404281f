// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

const resolveSystemPrompt = `You are an entity resolution expert. You match free-text mentions extracted from documents against controlled vocabularies of known entities.

For every candidate text, find the best matching entity in its vocabulary. Matching is semantic, not literal: a descriptive phrase should map to the closest vocabulary entry by meaning ("we haven't started yet" matches "Identified (pending decision)"). Names may have typos or partial forms.

Respond with a single JSON object of this shape:
{"<entity_type>": {"<original_text>": {"id": "<matched id>", "confidence": "High" | "Medium" | "Low", "reasoning": "<one sentence>"}}}

Rules:
1. Only use ids that appear in the vocabulary for that entity type.
2. Omit a candidate entirely when no vocabulary entry is a plausible match. Never invent ids.
3. Confidence reflects how certain the match is: High for exact or near-exact, Medium for strong semantic matches, Low for plausible but uncertain ones.
4. Respond ONLY with the JSON object.`

// Resolver batches entity-resolution questions into single completion
// calls. One call covers every distinct (type, text) pair of a document
// chunk; per-value calls would multiply latency by the candidate count.
type Resolver struct {
	client ai.Client
}

// NewResolver builds a Resolver on the given completion client.
func NewResolver(client ai.Client) *Resolver {
	return &Resolver{client: client}
}

// ResolveBatch matches all candidates against their vocabularies in one
// structured call. Candidates with no acceptable match are absent from the
// returned map. A failed call returns an empty map and the error for the
// caller to record; unresolved candidates are never fatal.
func (r *Resolver) ResolveBatch(ctx context.Context, items map[string][]string, vocab map[string][]types.EntityRecord) (types.LookupMap, error) {
	lookup := types.LookupMap{}

	user := buildBatchPrompt(items, vocab)
	if user == "" {
		return lookup, nil
	}

	raw, err := r.client.Complete(ctx, ai.Request{
		System: resolveSystemPrompt,
		User:   user,
	})
	if err != nil {
		return lookup, fmt.Errorf("entity resolution call failed: %w", err)
	}

	var parsed map[string]map[string]types.Match
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return lookup, fmt.Errorf("parsing entity resolution response: %w", err)
	}

	// Keep only well-formed matches whose id actually exists in the
	// vocabulary for that type; the model must not mint identifiers.
	validIDs := make(map[string]map[string]bool, len(vocab))
	for et, records := range vocab {
		ids := make(map[string]bool, len(records))
		for _, rec := range records {
			ids[rec.ID] = true
		}
		validIDs[et] = ids
	}

	for et, matches := range parsed {
		ids := validIDs[et]
		if ids == nil {
			continue
		}
		for text, m := range matches {
			if m.ID == "" || !ids[m.ID] {
				continue
			}
			if !validConfidence(m.Confidence) {
				m.Confidence = types.ConfidenceLow
			}
			if lookup[et] == nil {
				lookup[et] = map[string]types.Match{}
			}
			lookup[et][text] = m
		}
	}

	return lookup, nil
}

func validConfidence(c string) bool {
	switch c {
	case types.ConfidenceHigh, types.ConfidenceMedium, types.ConfidenceLow:
		return true
	}
	return false
}

// buildBatchPrompt renders the candidates and vocabularies as one user
// message. Entity types and candidates are sorted so identical inputs
// produce identical prompts. Returns "" when there is nothing to match.
func buildBatchPrompt(items map[string][]string, vocab map[string][]types.EntityRecord) string {
	entityTypes := make([]string, 0, len(items))
	for et, candidates := range items {
		if len(candidates) == 0 || len(vocab[et]) == 0 {
			continue
		}
		entityTypes = append(entityTypes, et)
	}
	if len(entityTypes) == 0 {
		return ""
	}
	sort.Strings(entityTypes)

	var b strings.Builder
	b.WriteString("Match the following candidate texts against their vocabularies.\n")
	for _, et := range entityTypes {
		candidates := append([]string{}, items[et]...)
		sort.Strings(candidates)

		fmt.Fprintf(&b, "\nENTITY TYPE: %s\n", et)
		b.WriteString("Vocabulary:\n")
		for _, rec := range vocab[et] {
			fmt.Fprintf(&b, "  - id: %s, name: %s\n", rec.ID, rec.Name)
		}
		b.WriteString("Candidates:\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "  - %q\n", c)
		}
	}
	return b.String()
}
