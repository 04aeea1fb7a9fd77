// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from PDF documents
// Uses ledongthuc/pdf for text and pdfcpu for validation and metadata
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	textpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
)

// Extractor implements the PDFExtractor interface
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// ExtractPages extracts the plain text of every page, in order.
// Pages without a content stream or whose text cannot be decoded yield "".
func (e *Extractor) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}

	// The text decoder panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := textpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := reader.NumPage()
	pages = make([]string, numPages)
	failed := 0

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			e.logger.Warn().Int("page", i).Err(err).Msg("Failed to extract page text")
			continue
		}
		pages[i-1] = text
	}

	e.logger.Debug().
		Int("pages", numPages).
		Int("failed_pages", failed).
		Int("total_chars", countChars(pages)).
		Msg("Extracted PDF pages")

	return pages, nil
}

// GetMetadata validates the document with pdfcpu and returns its metadata.
func (e *Extractor) GetMetadata(ctx context.Context, data []byte) (*interfaces.PDFMetadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to read PDF page tree: %w", err)
	}

	metadata := &interfaces.PDFMetadata{
		Title:       pdfCtx.Title,
		Author:      pdfCtx.Author,
		Producer:    pdfCtx.Producer,
		PageCount:   pdfCtx.PageCount,
		FileSize:    int64(len(data)),
		IsEncrypted: pdfCtx.Encrypt != nil,
	}
	if pdfCtx.HeaderVersion != nil {
		metadata.Version = pdfCtx.HeaderVersion.String()
	}

	e.logger.Debug().
		Int("page_count", metadata.PageCount).
		Int64("file_size", metadata.FileSize).
		Bool("encrypted", metadata.IsEncrypted).
		Msg("Extracted PDF metadata")

	return metadata, nil
}

// countChars returns the number of characters across all pages
func countChars(pages []string) int {
	total := 0
	for _, page := range pages {
		total += len([]rune(page))
	}
	return total
}
