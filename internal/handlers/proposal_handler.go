package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
)

// Pipeline steps reported on failure
const (
	StepDownload = "download"
	StepExtract  = "extract"
	StepGenerate = "generate"
	StepBuild    = "build"
	StepUpload   = "upload"
)

// DefaultOutputFileName is the name of the document attached to the Creatio record
const DefaultOutputFileName = "proceduri_tehnice_executie.docx"

// ProposalRequest is the body of the PTE endpoint
type ProposalRequest struct {
	RecordId string `json:"RecordId" validate:"required"`
	DocId    string `json:"DocId" validate:"required"`
}

// ProposalHandler runs the download, generate and upload pipeline for a Creatio record
type ProposalHandler struct {
	files     interfaces.FileTransferService
	extractor interfaces.PDFExtractor
	generator interfaces.ProposalGenerator
	builder   interfaces.DocumentBuilder
	fileName  string
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(
	files interfaces.FileTransferService,
	extractor interfaces.PDFExtractor,
	generator interfaces.ProposalGenerator,
	builder interfaces.DocumentBuilder,
	fileName string,
	logger arbor.ILogger,
) *ProposalHandler {
	if fileName == "" {
		fileName = DefaultOutputFileName
	}
	return &ProposalHandler{
		files:     files,
		extractor: extractor,
		generator: generator,
		builder:   builder,
		fileName:  fileName,
		validate:  validator.New(),
		logger:    logger,
	}
}

// missingFields lists the request fields that failed the required check, in declaration order
func (h *ProposalHandler) missingFields(req *ProposalRequest) []string {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{"RecordId", "DocId"}
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fe.Field())
	}
	return fields
}

// GeneratePTEHandler handles POST /cx-ai/propunere-tehnica/proceduri-tehnice-de-executie
func (h *ProposalHandler) GeneratePTEHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	// A body that is not a JSON object is treated as {}
	var req ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("Request body is not a JSON object")
	}

	if missing := h.missingFields(&req); len(missing) > 0 {
		WriteError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	ctx := r.Context()
	start := time.Now()
	logger := h.logger.WithCorrelationId(req.RecordId)

	logger.Info().Str("record_id", req.RecordId).Str("doc_id", req.DocId).Msg("PTE generation started")

	data, err := h.files.DownloadFile(ctx, req.DocId)
	if err != nil {
		h.fail(w, logger, StepDownload, "Failed to download PDF from Creatio", err)
		return
	}

	pages, err := h.extractPages(ctx, logger, data)
	if err != nil {
		h.fail(w, logger, StepExtract, "Failed to extract PDF text", err)
		return
	}

	progress := func(message string) {
		logger.Info().Msg(message)
	}

	result, err := h.generator.GeneratePTE(ctx, pages, progress)
	if err != nil {
		h.fail(w, logger, StepGenerate, "Failed to generate PTE", err)
		return
	}

	document, err := h.builder.BuildDocument(result.Text, interfaces.DocumentModePTE)
	if err != nil {
		h.fail(w, logger, StepBuild, "Failed to build document", err)
		return
	}

	if _, err := h.files.UploadFile(ctx, req.RecordId, h.fileName, document); err != nil {
		h.fail(w, logger, StepUpload, "Failed to upload document to Creatio", err)
		return
	}

	logger.Info().
		Int("pages", len(pages)).
		Int("document_size", len(document)).
		Int64("input_tokens", result.InputTokens).
		Int64("output_tokens", result.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("PTE generation completed")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"inputTokens":  result.InputTokens,
		"outputTokens": result.OutputTokens,
	})
}

// extractPages validates the document before extracting its text.
// Encrypted or empty documents and documents without any text are rejected.
func (h *ProposalHandler) extractPages(ctx context.Context, logger arbor.ILogger, data []byte) ([]string, error) {
	metadata, err := h.extractor.GetMetadata(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := metadata.CheckExtractable(); err != nil {
		return nil, err
	}
	logger.Debug().Int("page_count", metadata.PageCount).Str("version", metadata.Version).Msg("PDF validated")

	pages, err := h.extractor.ExtractPages(ctx, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(strings.Join(pages, "")) == "" {
		return nil, fmt.Errorf("no text found in PDF")
	}
	return pages, nil
}

func (h *ProposalHandler) fail(w http.ResponseWriter, logger arbor.ILogger, step, message string, err error) {
	logger.Error().Str("step", step).Err(err).Msg(message)
	WriteStepError(w, step, fmt.Sprintf("%s: %v", message, err))
}
