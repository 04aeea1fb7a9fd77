package proposal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompts_Embedded(t *testing.T) {
	prompts, err := LoadPrompts("")
	require.NoError(t, err)

	out, err := prompts.Render(PromptUserPTE, pteData{PartInfo: " (partea 2/2)", ChunkText: "TEXT"})
	require.NoError(t, err)
	assert.Contains(t, out, "metodologia de execuție (partea 2/2) în proceduri")
	assert.Contains(t, out, "=== METODOLOGIE ===\nTEXT")
}

func TestLoadPrompts_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_pte.tmpl"), []byte("custom {{.ChunkText}}"), 0o644))

	prompts, err := LoadPrompts(dir)
	require.NoError(t, err)

	out, err := prompts.Render(PromptUserPTE, pteData{ChunkText: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "custom abc", out)

	// Files missing from the override directory fall back to the embedded prompts
	system, err := prompts.Render(PromptSystemPTE, nil)
	require.NoError(t, err)
	assert.Contains(t, system, "inginer expert")
}

func TestLoadPrompts_InvalidOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system_rezumat.tmpl"), []byte("{{.Broken"), 0o644))

	_, err := LoadPrompts(dir)
	assert.Error(t, err)
}

func TestRender_UnknownPrompt(t *testing.T) {
	prompts, err := LoadPrompts("")
	require.NoError(t, err)

	_, err = prompts.Render("missing", nil)
	assert.Error(t, err)
}

func TestLoadReferenceStyle(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"reference_style": "Stil", "other": 1}`), 0o644))
	withoutKey := filepath.Join(dir, "nokey.json")
	require.NoError(t, os.WriteFile(withoutKey, []byte(`{"other": 1}`), 0o644))
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{`), 0o644))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "empty path", path: "", want: ""},
		{name: "missing file", path: filepath.Join(dir, "absent.json"), want: ""},
		{name: "valid", path: valid, want: "Stil"},
		{name: "no key", path: withoutKey, want: ""},
		{name: "invalid json", path: invalid, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadReferenceStyle(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
