// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dmazeio/document-import-poc/internal/httputil"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAI calls an OpenAI-compatible chat-completions endpoint. Strict
// schemas are enforced server-side through the json_schema response format;
// without a schema the call runs in json_object mode.
type OpenAI struct {
	model      string
	apiKey     string
	baseURL    string
	maxRetries int
	client     *http.Client
}

// NewOpenAI builds a client from the shared AI configuration.
func NewOpenAI(cfg types.AIConfig) *OpenAI {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAI{
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		baseURL:    base,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Client against the chat-completions API.
func (o *OpenAI) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	format := &responseFormat{Type: "json_object"}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		format = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: name, Strict: true, Schema: req.Schema},
		}
	}

	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := httputil.DoWithRetry(ctx, o.client, httpReq, o.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("completion API returned %d: %s", resp.StatusCode, string(msg))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("completion API returned no choices")
	}

	content := parsed.Choices[0].Message.Content
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("completion content is not valid JSON")
	}
	return json.RawMessage(content), nil
}
