package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBuilder struct {
	path string
	mode interfaces.DocumentMode
}

func (b *recordingBuilder) Format() interfaces.DocumentFormat {
	return interfaces.DocumentFormatDOCX
}

func (b *recordingBuilder) BuildDocument(text string, mode interfaces.DocumentMode) ([]byte, error) {
	return []byte(text), nil
}

func (b *recordingBuilder) SaveDocument(text, path string, mode interfaces.DocumentMode) error {
	b.path = path
	b.mode = mode
	return os.WriteFile(path, []byte(text), 0o644)
}

type stubExtractor struct {
	metadata  *interfaces.PDFMetadata
	extracted []byte
}

func (e *stubExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	e.extracted = data
	return []string{"pagina unu"}, nil
}

func (e *stubExtractor) GetMetadata(ctx context.Context, data []byte) (*interfaces.PDFMetadata, error) {
	return e.metadata, nil
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metodologie.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	tests := []struct {
		name     string
		metadata *interfaces.PDFMetadata
		wantErr  error
	}{
		{name: "valid", metadata: &interfaces.PDFMetadata{PageCount: 1}},
		{name: "encrypted", metadata: &interfaces.PDFMetadata{PageCount: 1, IsEncrypted: true}, wantErr: interfaces.ErrPDFEncrypted},
		{name: "no pages", metadata: &interfaces.PDFMetadata{}, wantErr: interfaces.ErrPDFNoPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &stubExtractor{metadata: tt.metadata}

			pages, err := extractFile(t.Context(), extractor, path)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, extractor.extracted)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"pagina unu"}, pages)
			assert.Equal(t, "%PDF-1.7", string(extractor.extracted))
		})
	}

	_, err := extractFile(t.Context(), &stubExtractor{}, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestRawTextPath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{output: "pte.pdf", want: "pte_raw.txt"},
		{output: "proceduri_tehnice_executie.docx", want: "proceduri_tehnice_executie_raw.txt"},
		{output: "out/rezumat.pdf", want: "out/rezumat_raw.txt"},
		{output: "document", want: "document_raw.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.want, rawTextPath(tt.output))
		})
	}
}

func TestSaveResult(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "pte.pdf")
	builder := &recordingBuilder{}

	err := saveResult(builder, &interfaces.GenerationResult{Text: "**Procedura**", InputTokens: 5, OutputTokens: 7, Calls: 1}, output, interfaces.DocumentModePTE)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "pte_raw.txt"))
	require.NoError(t, err)
	assert.Equal(t, "**Procedura**", string(raw))
	assert.Equal(t, output, builder.path)
	assert.Equal(t, interfaces.DocumentModePTE, builder.mode)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"generate", "pte"},
		{"generate", "rezumat"},
		{"creatio", "download"},
		{"creatio", "upload"},
		{"version"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
