// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Dmazeio/document-import-poc/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// Markitdown converts office and PDF documents by piping their bytes
// through the markitdown container image.
type Markitdown struct {
	runtime container.Runtime
}

// NewMarkitdown verifies the markitdown image is available in the given
// runtime before returning a converter.
func NewMarkitdown(rt container.Runtime) (*Markitdown, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &Markitdown{runtime: rt}, nil
}

// Convert pipes the document through the container and returns Markdown.
func (m *Markitdown) Convert(ctx context.Context, raw []byte, filename string) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("document %s is empty", filename)
	}

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, bytes.NewReader(raw), &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", filename, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", filename)
	}
	return out.String(), nil
}

// ForFile picks the converter for a filename: passthrough for text-like
// formats, markitdown (via a detected container runtime) for the rest.
func ForFile(filename string) (Converter, error) {
	if IsPlaintext(filename) {
		return Plaintext{}, nil
	}
	rt, err := container.Detect()
	if err != nil {
		return nil, fmt.Errorf("document %s needs conversion: %w", filename, err)
	}
	return NewMarkitdown(rt)
}
