// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// splitSchema constrains the segmentation answer to an ordered list of
// titled chunks.
var splitSchema = json.RawMessage(`{
	"type": ["object"],
	"properties": {
		"items": {
			"type": ["array"],
			"items": {
				"type": ["object"],
				"properties": {
					"item_title": {
						"type": ["string"],
						"description": "The title of this item, taken from its heading."
					},
					"item_content": {
						"type": ["string"],
						"description": "The full content belonging to this item."
					}
				},
				"required": ["item_title", "item_content"],
				"additionalProperties": false
			}
		}
	},
	"required": ["items"],
	"additionalProperties": false
}`)

type splitResponse struct {
	Items []types.Chunk `json:"items"`
}

// Split segments the full document into self-contained chunks, one per
// root-level item. It returns an empty slice on any failure; callers treat
// that as nothing to split, never as a fatal error.
func Split(ctx context.Context, client ai.Client, markdown, rootName string) []types.Chunk {
	system := fmt.Sprintf(`You are a document analysis and segmentation expert. Split the following Markdown document into a list of distinct, self-contained '%s' items.
Each new item almost always starts with a top-level Markdown heading (a single '#').
Capture the title from the heading and all the content that belongs to that item until the next top-level heading or the end of the document.`, rootName)

	user := fmt.Sprintf("Analyze and split the following document:\n\n%s", markdown)

	raw, err := client.Complete(ctx, ai.Request{
		System:     system,
		User:       user,
		Schema:     splitSchema,
		SchemaName: "multi_item_document",
	})
	if err != nil {
		return nil
	}

	var resp splitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return resp.Items
}
