package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFMetadata_CheckExtractable(t *testing.T) {
	tests := []struct {
		name     string
		metadata PDFMetadata
		want     error
	}{
		{name: "readable", metadata: PDFMetadata{PageCount: 4}},
		{name: "encrypted", metadata: PDFMetadata{PageCount: 4, IsEncrypted: true}, want: ErrPDFEncrypted},
		{name: "no pages", metadata: PDFMetadata{}, want: ErrPDFNoPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.metadata.CheckExtractable())
		})
	}
}
