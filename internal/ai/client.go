// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai wraps the structured-completion service. Callers hand it a
// system/user prompt pair plus an optional strict output schema and get
// parsed JSON back; every pipeline stage that talks to the model goes
// through the Client interface so tests can substitute a stub.
package ai

import (
	"context"
	"encoding/json"
)

// Request is one structured completion call.
type Request struct {
	// System is the stable instruction defining the model's role.
	System string

	// User is the per-call input: document text, candidate batches, etc.
	User string

	// Schema, when set, is a strict JSON Schema the output must conform
	// to. When nil the service runs in plain JSON-object mode and the
	// caller parses the shape itself.
	Schema json.RawMessage

	// SchemaName labels the schema for the service. Required with Schema.
	SchemaName string
}

// Client is the structured-completion collaborator.
type Client interface {
	// Complete sends the request and returns the raw JSON object the
	// model produced. Implementations return an error on transport
	// failure, non-2xx responses, or unparsable output; they never panic.
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}
