// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyOpenAI, "  sk-abc123  \n")
				return dir
			},
			want: map[string]string{KeyOpenAI: "sk-abc123"},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyOpenAI, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{KeyOpenAI: "valid-key"},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeyOpenAI, "sk-real")
				return dir
			},
			want: map[string]string{KeyOpenAI: "sk-real"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAIKey(t *testing.T) {
	t.Run("environment variable wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, KeyOpenAI, "sk-from-file")
		t.Setenv(EnvOpenAI, "sk-from-env")

		key, err := OpenAIKey(dir)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-env", key)
	})

	t.Run("falls back to secrets directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, KeyOpenAI, "sk-from-file")
		t.Setenv(EnvOpenAI, "")

		key, err := OpenAIKey(dir)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-file", key)
	})

	t.Run("errors when no source has a key", func(t *testing.T) {
		t.Setenv(EnvOpenAI, "")

		_, err := OpenAIKey(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvOpenAI)
	})
}
