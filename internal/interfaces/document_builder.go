package interfaces

import (
	"path/filepath"
	"strings"
)

// DocumentMode selects how generated text is laid out
type DocumentMode string

const (
	// DocumentModePTE renders a single fixed title and ignores headings and tables
	DocumentModePTE DocumentMode = "pte"
	// DocumentModeGeneric renders headings (levels 1-3) and tables
	DocumentModeGeneric DocumentMode = "generic"
)

// DocumentFormat is the file format produced by a DocumentBuilder
type DocumentFormat string

const (
	DocumentFormatDOCX DocumentFormat = "docx"
	DocumentFormatPDF  DocumentFormat = "pdf"
)

// FormatFromPath returns the format implied by the file extension of path,
// or def when the extension is not a known document format.
func FormatFromPath(path string, def DocumentFormat) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return DocumentFormatDOCX
	case ".pdf":
		return DocumentFormatPDF
	}
	return def
}

// DocumentBuilder renders generated proposal text into a formatted document
type DocumentBuilder interface {
	// Format returns the format produced by BuildDocument
	Format() DocumentFormat

	// BuildDocument renders text in the builder's format and returns the document bytes
	BuildDocument(text string, mode DocumentMode) ([]byte, error)

	// SaveDocument renders text and writes the document to path.
	// The format follows the extension of path (.docx or .pdf).
	SaveDocument(text, path string, mode DocumentMode) error
}
