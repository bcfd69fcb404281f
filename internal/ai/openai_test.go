// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

func newTestClient(url string) *OpenAI {
	return NewOpenAI(types.AIConfig{
		Model:      "test-model",
		APIKey:     "test-key",
		BaseURL:    url,
		MaxRetries: 1,
	})
}

func completionHandler(t *testing.T, content string, capture *chatRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestCompleteJSONObjectMode(t *testing.T) {
	var got chatRequest
	ts := httptest.NewServer(completionHandler(t, `{"answer": 42}`, &got))
	defer ts.Close()

	out, err := newTestClient(ts.URL).Complete(context.Background(), Request{
		System: "sys",
		User:   "usr",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer": 42}`, string(out))

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "usr", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestCompleteStrictSchemaMode(t *testing.T) {
	var got chatRequest
	ts := httptest.NewServer(completionHandler(t, `{"mom": {"title": null}}`, &got))
	defer ts.Close()

	schema := json.RawMessage(`{"type": ["object"], "properties": {"mom": {"type": ["object"]}}}`)
	_, err := newTestClient(ts.URL).Complete(context.Background(), Request{
		System:     "sys",
		User:       "usr",
		Schema:     schema,
		SchemaName: "dmaze_extraction",
	})
	require.NoError(t, err)

	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	require.NotNil(t, got.ResponseFormat.JSONSchema)
	assert.Equal(t, "dmaze_extraction", got.ResponseFormat.JSONSchema.Name)
	assert.True(t, got.ResponseFormat.JSONSchema.Strict)
	assert.JSONEq(t, string(schema), string(got.ResponseFormat.JSONSchema.Schema))
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			"non-200 status",
			func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
			"returned 401",
		},
		{
			"no choices",
			func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
			"no choices",
		},
		{
			"content not JSON",
			func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"choices": [{"message": {"content": "definitely not json"}}]}`))
			},
			"not valid JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := newTestClient(ts.URL).Complete(context.Background(), Request{User: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
