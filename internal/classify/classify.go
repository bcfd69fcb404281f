// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a document holds one root-level item or
// several, and segments multi-item documents into self-contained chunks.
package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

const truncationMarker = "\n\n... [CONTENT TRUNCATED] ...\n\n"

// analysisSchema constrains the classification answer to the two known
// document types plus a short rationale.
var analysisSchema = json.RawMessage(`{
	"type": ["object"],
	"properties": {
		"document_type": {
			"type": ["string"],
			"enum": ["single_item", "multiple_items"],
			"description": "Whether the document contains one item or multiple distinct items."
		},
		"reasoning": {
			"type": ["string"],
			"description": "A brief explanation for the classification."
		}
	},
	"required": ["document_type", "reasoning"],
	"additionalProperties": false
}`)

type analysis struct {
	DocumentType string `json:"document_type"`
	Reasoning    string `json:"reasoning"`
}

// Result is the classification verdict.
type Result struct {
	DocumentType string
	Reasoning    string
}

// Classify samples the document and asks the completion service whether it
// contains one or many root-level items. Any failure classifies as
// single_item: splitting a document that should not be split damages the
// output, not splitting one that should merely degrades it.
func Classify(ctx context.Context, client ai.Client, markdown, rootName string, cfg types.ClassifierConfig) Result {
	sample := sandwichSample(markdown, cfg.SampleSize)

	system := fmt.Sprintf(`You are a document classification expert. Determine whether a document contains a single '%s' item or multiple, distinct '%s' items.
Multiple items are usually separated by top-level Markdown headings like '# Title'.
You will receive a sample of the document which includes the beginning and the end.`, rootName, rootName)

	user := fmt.Sprintf("Analyze the structure of the following document sample and classify it.\n\nDOCUMENT SAMPLE:\n---\n%s\n---", sample)

	raw, err := client.Complete(ctx, ai.Request{
		System:     system,
		User:       user,
		Schema:     analysisSchema,
		SchemaName: "document_analysis",
	})
	if err != nil {
		return Result{
			DocumentType: types.SingleItem,
			Reasoning:    fmt.Sprintf("classification failed (%v); defaulting to single item", err),
		}
	}

	var a analysis
	if err := json.Unmarshal(raw, &a); err != nil || (a.DocumentType != types.SingleItem && a.DocumentType != types.MultipleItems) {
		return Result{
			DocumentType: types.SingleItem,
			Reasoning:    "classification returned an unexpected shape; defaulting to single item",
		}
	}
	return Result{DocumentType: a.DocumentType, Reasoning: a.Reasoning}
}

// sandwichSample bounds long documents to the head and tail, with a marker
// between, so the classifier sees both the opening and the closing
// structure without the full token cost.
func sandwichSample(markdown string, sampleSize int) string {
	if len(markdown) <= sampleSize*2 {
		return markdown
	}
	return markdown[:sampleSize] + truncationMarker + markdown[len(markdown)-sampleSize:]
}
