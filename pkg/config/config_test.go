package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, ".searchrc.yaml", `
include:
  - "*.go"
  - "*.md"
exclude:
  - "*.min.js"
archives: true
max_matches: 100
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.go", "*.md"}, cfg.Include)
	assert.Equal(t, []string{"*.min.js"}, cfg.Exclude)
	assert.True(t, cfg.Archives)
	assert.False(t, cfg.Regex)
	assert.Equal(t, 100, cfg.MaxMatches)
}

func TestLoad_HCL(t *testing.T) {
	path := writeConfig(t, ".searchrc.hcl", `
include = ["*.go"]
exclude = ["vendor*"]
whole_word = true
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.go"}, cfg.Include)
	assert.Equal(t, []string{"vendor*"}, cfg.Exclude)
	assert.True(t, cfg.WholeWord)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantError string
	}{
		{
			name:      "unknown_extension",
			file:      "defaults.toml",
			content:   "whatever",
			wantError: "no parser found",
		},
		{
			name:      "invalid_yaml",
			file:      "bad.yaml",
			content:   "include: [unclosed",
			wantError: "parsing",
		},
		{
			name:      "unknown_yaml_field",
			file:      "typo.yaml",
			content:   "inclde: []",
			wantError: "parsing",
		},
		{
			name:      "invalid_hcl",
			file:      "bad.hcl",
			content:   "include = [",
			wantError: "parsing HCL",
		},
		{
			name:      "negative_max_matches",
			file:      "neg.yaml",
			content:   "max_matches: -1",
			wantError: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading defaults file")
}
