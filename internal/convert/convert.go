// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns raw document bytes into Markdown text. It is the
// pipeline's conversion collaborator: backends never raise past this
// boundary, they return an error value the orchestrator's step wrapper
// records.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Converter transforms one document into Markdown. The filename carries
// the extension used to pick parsing behavior; content travels as bytes so
// callers can feed uploads as well as files.
type Converter interface {
	Convert(ctx context.Context, raw []byte, filename string) (string, error)
}

// plaintextExtensions are formats passed through without conversion.
var plaintextExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Plaintext passes Markdown and plain-text documents through unchanged.
type Plaintext struct{}

// Convert validates the bytes are text and returns them as a string.
func (Plaintext) Convert(_ context.Context, raw []byte, filename string) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("document %s is empty", filename)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("document %s is not valid UTF-8 text", filename)
	}
	return string(raw), nil
}

// IsPlaintext reports whether the filename names a passthrough format.
func IsPlaintext(filename string) bool {
	return plaintextExtensions[strings.ToLower(filepath.Ext(filename))]
}
