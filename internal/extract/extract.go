// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract obtains a structurally conformant nested object from
// document text, constrained by the compiled validation schema. The schema
// is enforced twice: server-side through the strict response format, and
// locally with a JSON Schema validator before the result is accepted.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/internal/schema"
)

// systemPrompt is the stable, domain-neutral extraction instruction. The
// domain specifics all live in the schema's field descriptions.
const systemPrompt = `You are a precise data extraction system. Extract field values from the document according to the provided schema.

RULES:
1. Use null for any field whose value is not present in the document. Never fabricate or guess values.
2. Format all dates and times as ISO 8601 strings (YYYY-MM-DDTHH:MM:SSZ).
3. For fields describing people, use the person's full name exactly as written in the document.
4. Populate every key the schema declares, including empty arrays for relationships with no items.
5. Follow each field's description; it may carry domain-specific instructions.`

// backoffBase controls the delay between extraction attempts. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Extractor runs schema-constrained extraction calls.
type Extractor struct {
	client     ai.Client
	maxRetries int
}

// New builds an Extractor. maxRetries bounds re-attempts after transport
// failures or schema-nonconformant output.
func New(client ai.Client, maxRetries int) *Extractor {
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &Extractor{client: client, maxRetries: maxRetries}
}

// Extract sends the document text with the compiled validation schema and
// returns the nested object. On success the result has exactly one
// top-level key, the root type name, holding the root node's shape.
func (e *Extractor) Extract(ctx context.Context, documentText string, compiled *schema.Compiled) (map[string]any, error) {
	schemaJSON, err := json.Marshal(compiled.Validation)
	if err != nil {
		return nil, fmt.Errorf("marshaling validation schema: %w", err)
	}

	req := ai.Request{
		System:     systemPrompt,
		User:       fmt.Sprintf("Extract the data from the following document.\n\nDOCUMENT TEXT:\n---\n%s\n---", documentText),
		Schema:     schemaJSON,
		SchemaName: "dmaze_extraction",
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := e.client.Complete(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		data, err := validate(raw, schemaJSON, compiled.Tree.Name)
		if err != nil {
			lastErr = err
			continue
		}
		return data, nil
	}

	return nil, fmt.Errorf("extraction failed after %d attempts: %w", e.maxRetries+1, lastErr)
}

// validate checks the raw completion against the validation schema and the
// root-wrapper invariant, returning the parsed object.
func validate(raw json.RawMessage, schemaJSON []byte, rootName string) (map[string]any, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("running schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("extraction output violates schema: %s", strings.Join(msgs, "; "))
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing extraction output: %w", err)
	}

	if len(data) != 1 {
		return nil, fmt.Errorf("extraction output has %d top-level keys, want exactly %q", len(data), rootName)
	}
	if _, ok := data[rootName]; !ok {
		return nil, fmt.Errorf("extraction output is missing the root key %q", rootName)
	}
	return data, nil
}
