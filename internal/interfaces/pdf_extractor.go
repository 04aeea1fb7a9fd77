// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text content from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrPDFEncrypted is returned for documents protected by encryption
	ErrPDFEncrypted = errors.New("PDF is encrypted")
	// ErrPDFNoPages is returned for documents whose page tree is empty
	ErrPDFNoPages = errors.New("PDF has no pages")
)

// PDFMetadata contains metadata about a PDF document
type PDFMetadata struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Producer    string `json:"producer,omitempty"`
	PageCount   int    `json:"page_count"`
	FileSize    int64  `json:"file_size"`
	IsEncrypted bool   `json:"is_encrypted"`
	Version     string `json:"version,omitempty"`
}

// CheckExtractable reports whether text can be extracted from the document
func (m *PDFMetadata) CheckExtractable() error {
	if m.IsEncrypted {
		return ErrPDFEncrypted
	}
	if m.PageCount == 0 {
		return ErrPDFNoPages
	}
	return nil
}

// PDFExtractor extracts per-page plain text from PDF documents.
// Pages are returned in document order; a page without text yields "".
type PDFExtractor interface {
	// ExtractPages extracts the text of every page of an in-memory PDF.
	ExtractPages(ctx context.Context, data []byte) ([]string, error)

	// GetMetadata validates the PDF and returns its metadata without extracting text.
	GetMetadata(ctx context.Context, data []byte) (*PDFMetadata, error)
}
