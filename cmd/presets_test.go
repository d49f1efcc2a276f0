package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresets_RepositoryFile(t *testing.T) {
	f, err := LoadPresets(filepath.Join("..", "presets.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "high-noise", "near-deterministic", "subthreshold"}, f.Names())

	p, err := f.Get("near-deterministic")
	require.NoError(t, err)
	assert.Equal(t, 0.01, p.Model.Sigma)

	_, err = f.Get("missing")
	assert.ErrorContains(t, err, "valid: default, high-noise")
}

func TestParsePresets_Strict(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown preset key", "version: \"1\"\npresets:\n  a:\n    model: {mu: 1, sigma: 1, tau: 1}\n    color: red\n"},
		{"unknown model key", "version: \"1\"\npresets:\n  a:\n    model: {mu: 1, sigma: 1, tau: 1, gain: 2}\n"},
		{"missing version", "presets:\n  a:\n    model: {mu: 1, sigma: 1, tau: 1}\n"},
		{"invalid parameters", "version: \"1\"\npresets:\n  a:\n    model: {mu: 1, sigma: 1, tau: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresets([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestWritePresets_Text(t *testing.T) {
	f, err := ParsePresets([]byte("version: \"1\"\npresets:\n  a:\n    description: first\n    model: {mu: 1, sigma: 1, tau: 1}\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writePresets(&out, f, "text"))
	assert.Contains(t, out.String(), "mu=1 sigma=1 tau=1 refractory=0")
	assert.Contains(t, out.String(), "first")
}
