package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oferta.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 3, config.Creatio.MaxRetries)
	assert.Equal(t, "2s", config.Creatio.RetryDelay)
	assert.Equal(t, 30000, config.Generation.ChunkThreshold)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.Equal(t, "docx", config.Document.Format)
	assert.Equal(t, "proceduri_tehnice_executie.docx", config.Generation.OutputFileName)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFiles_MergesInOrder(t *testing.T) {
	base := writeConfig(t, `
[server]
port = 9000
host = "0.0.0.0"

[creatio]
base_url = "https://crm.example.com/"
auth_secret = "base-secret"
`)
	override := writeConfig(t, `
[creatio]
auth_secret = "override-secret"
max_retries = 5
`)

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "https://crm.example.com/", config.Creatio.BaseURL)
	assert.Equal(t, "override-secret", config.Creatio.AuthSecret)
	assert.Equal(t, 5, config.Creatio.MaxRetries)
	assert.Equal(t, "2s", config.Creatio.RetryDelay, "unset keys keep defaults")
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[creatio]
auth_secret = "file-secret"
`)
	t.Setenv("OFERTA_CREATIO_AUTH_SECRET", "env-secret")
	t.Setenv("OFERTA_SERVER_PORT", "7070")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OFERTA_DOCUMENT_FORMAT", "PDF")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", config.Creatio.AuthSecret)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "sk-ant", config.Claude.APIKey)
	assert.Equal(t, "pdf", config.Document.Format)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed toml", content: "[server\nport = 1"},
		{name: "bad duration", content: "[creatio]\nretry_delay = \"soon\""},
		{name: "zero retries", content: "[creatio]\nmax_retries = 0"},
		{name: "unknown provider", content: "[llm]\ndefault_provider = \"openai\""},
		{name: "unknown document format", content: "[document]\nformat = \"odt\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFiles(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)

	ApplyFlagOverrides(config, 9999, "127.0.0.1")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestMustDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, MustDuration("2s", time.Minute))
	assert.Equal(t, time.Minute, MustDuration("", time.Minute))
	assert.Equal(t, time.Minute, MustDuration("nope", time.Minute))
}
