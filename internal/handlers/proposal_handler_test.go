package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

type fakeFiles struct {
	downloadErr error
	uploadErr   error
	downloaded  string
	recordID    string
	fileName    string
	uploaded    []byte
}

func (f *fakeFiles) DownloadFile(ctx context.Context, documentID string) ([]byte, error) {
	f.downloaded = documentID
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("%PDF-source"), nil
}

func (f *fakeFiles) UploadFile(ctx context.Context, recordID, fileName string, data []byte) (any, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.recordID = recordID
	f.fileName = fileName
	f.uploaded = data
	return map[string]any{"success": true}, nil
}

type fakeExtractor struct {
	pages       []string
	err         error
	metadata    *interfaces.PDFMetadata
	metadataErr error
	extracted   bool
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	f.extracted = true
	return f.pages, f.err
}

func (f *fakeExtractor) GetMetadata(ctx context.Context, data []byte) (*interfaces.PDFMetadata, error) {
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	if f.metadata != nil {
		return f.metadata, nil
	}
	return &interfaces.PDFMetadata{PageCount: len(f.pages), Version: "1.7"}, nil
}

type fakeGenerator struct {
	err   error
	pages []string
}

func (f *fakeGenerator) GeneratePTE(ctx context.Context, pages []string, progress interfaces.ProgressFunc) (*interfaces.GenerationResult, error) {
	f.pages = pages
	if f.err != nil {
		return nil, f.err
	}
	progress.Report("Se trimite către Claude API...")
	return &interfaces.GenerationResult{Text: "**Procedura 1**", InputTokens: 1200, OutputTokens: 800, Calls: 1}, nil
}

func (f *fakeGenerator) GenerateSummary(ctx context.Context, input *interfaces.SummaryInput, progress interfaces.ProgressFunc) (*interfaces.GenerationResult, error) {
	return nil, errors.New("not used")
}

type fakeBuilder struct {
	err  error
	mode interfaces.DocumentMode
}

func (f *fakeBuilder) Format() interfaces.DocumentFormat {
	return interfaces.DocumentFormatDOCX
}

func (f *fakeBuilder) BuildDocument(text string, mode interfaces.DocumentMode) ([]byte, error) {
	f.mode = mode
	if f.err != nil {
		return nil, f.err
	}
	return []byte("DOCX-result " + text), nil
}

func (f *fakeBuilder) SaveDocument(text, path string, mode interfaces.DocumentMode) error {
	return f.err
}

type pipeline struct {
	files     *fakeFiles
	extractor *fakeExtractor
	generator *fakeGenerator
	builder   *fakeBuilder
}

func newPipeline() *pipeline {
	return &pipeline{
		files:     &fakeFiles{},
		extractor: &fakeExtractor{pages: []string{"Metodologie pagina 1", "Metodologie pagina 2"}},
		generator: &fakeGenerator{},
		builder:   &fakeBuilder{},
	}
}

func (p *pipeline) handler(fileName string) *ProposalHandler {
	return NewProposalHandler(p.files, p.extractor, p.generator, p.builder, fileName, arbor.NewLogger())
}

func postPTE(t *testing.T, h *ProposalHandler, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cx-ai/propunere-tehnica/proceduri-tehnice-de-executie", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.GeneratePTEHandler(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec.Code, decoded
}

func TestGeneratePTEHandler_Success(t *testing.T) {
	p := newPipeline()
	status, body := postPTE(t, p.handler(""), `{"RecordId": "rec-1", "DocId": "doc-9"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1200), body["inputTokens"])
	assert.Equal(t, float64(800), body["outputTokens"])

	assert.Equal(t, "doc-9", p.files.downloaded)
	assert.Equal(t, []string{"Metodologie pagina 1", "Metodologie pagina 2"}, p.generator.pages)
	assert.Equal(t, interfaces.DocumentModePTE, p.builder.mode)
	assert.Equal(t, "rec-1", p.files.recordID)
	assert.Equal(t, "proceduri_tehnice_executie.docx", p.files.fileName)
	assert.Equal(t, "DOCX-result **Procedura 1**", string(p.files.uploaded))
}

func TestGeneratePTEHandler_ConfiguredFileName(t *testing.T) {
	p := newPipeline()
	status, _ := postPTE(t, p.handler("pte.pdf"), `{"RecordId": "rec-1", "DocId": "doc-9"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pte.pdf", p.files.fileName)
}

func TestGeneratePTEHandler_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "both missing", body: `{}`, want: "Missing required fields: RecordId, DocId"},
		{name: "record missing", body: `{"DocId": "d"}`, want: "Missing required fields: RecordId"},
		{name: "doc missing", body: `{"RecordId": "r"}`, want: "Missing required fields: DocId"},
		{name: "empty strings", body: `{"RecordId": "", "DocId": ""}`, want: "Missing required fields: RecordId, DocId"},
		{name: "empty body", body: ``, want: "Missing required fields: RecordId, DocId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline()
			status, body := postPTE(t, p.handler(""), tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.want, body["error"])
			assert.Empty(t, p.files.downloaded)
		})
	}
}

func TestGeneratePTEHandler_NonJSONBodyIsEmptyRequest(t *testing.T) {
	for _, raw := range []string{`{"RecordId":`, `RecordId=r&DocId=d`, `[]`, `null`} {
		t.Run(raw, func(t *testing.T) {
			p := newPipeline()
			status, body := postPTE(t, p.handler(""), raw)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "Missing required fields: RecordId, DocId", body["error"])
			assert.Empty(t, p.files.downloaded)
		})
	}
}

func TestGeneratePTEHandler_RejectsUnextractablePDF(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *pipeline)
		want  string
	}{
		{
			name:  "unreadable",
			setup: func(p *pipeline) { p.extractor.metadataErr = errors.New("failed to read PDF context: xref corrupted") },
			want:  "Failed to extract PDF text: failed to read PDF context: xref corrupted",
		},
		{
			name:  "encrypted",
			setup: func(p *pipeline) { p.extractor.metadata = &interfaces.PDFMetadata{PageCount: 3, IsEncrypted: true} },
			want:  "Failed to extract PDF text: PDF is encrypted",
		},
		{
			name:  "no pages",
			setup: func(p *pipeline) { p.extractor.metadata = &interfaces.PDFMetadata{} },
			want:  "Failed to extract PDF text: PDF has no pages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline()
			tt.setup(p)

			status, body := postPTE(t, p.handler(""), `{"RecordId": "rec-1", "DocId": "doc-9"}`)

			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, StepExtract, body["step"])
			assert.Equal(t, tt.want, body["error"])
			assert.False(t, p.extractor.extracted, "text extraction must not run")
			assert.Nil(t, p.generator.pages)
		})
	}
}

func TestGeneratePTEHandler_StepFailures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(p *pipeline)
		wantStep   string
		wantPrefix string
	}{
		{
			name:       "download",
			setup:      func(p *pipeline) { p.files.downloadErr = errors.New("HTTP 404") },
			wantStep:   StepDownload,
			wantPrefix: "Failed to download PDF from Creatio: HTTP 404",
		},
		{
			name:       "extract",
			setup:      func(p *pipeline) { p.extractor.err = errors.New("corrupt") },
			wantStep:   StepExtract,
			wantPrefix: "Failed to extract PDF text: corrupt",
		},
		{
			name:       "extract without text",
			setup:      func(p *pipeline) { p.extractor.pages = []string{"", " "} },
			wantStep:   StepExtract,
			wantPrefix: "Failed to extract PDF text: no text found in PDF",
		},
		{
			name:       "generate",
			setup:      func(p *pipeline) { p.generator.err = errors.New("quota") },
			wantStep:   StepGenerate,
			wantPrefix: "Failed to generate PTE: quota",
		},
		{
			name:       "build",
			setup:      func(p *pipeline) { p.builder.err = errors.New("font") },
			wantStep:   StepBuild,
			wantPrefix: "Failed to build document: font",
		},
		{
			name:       "upload",
			setup:      func(p *pipeline) { p.files.uploadErr = errors.New("HTTP 500") },
			wantStep:   StepUpload,
			wantPrefix: "Failed to upload document to Creatio: HTTP 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline()
			tt.setup(p)

			status, body := postPTE(t, p.handler(""), `{"RecordId": "rec-1", "DocId": "doc-9"}`)

			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantStep, body["step"])
			assert.Equal(t, tt.wantPrefix, body["error"])
		})
	}
}

func TestGeneratePTEHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cx-ai/propunere-tehnica/proceduri-tehnice-de-executie", nil)
	rec := httptest.NewRecorder()

	newPipeline().handler("").GeneratePTEHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAPIHandler(t *testing.T) {
	h := NewAPIHandler(arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)

	rec = httptest.NewRecorder()
	h.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/missing"`)
}
