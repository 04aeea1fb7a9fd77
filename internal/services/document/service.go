package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/ternarybob/arbor"
)

const (
	defaultFontSize = 12.0
	defaultDocxFont = "Arial Narrow"
)

// Service implements interfaces.DocumentBuilder for Word and PDF output
type Service struct {
	config *common.DocumentConfig
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DocumentBuilder = (*Service)(nil)

// NewService creates a new document builder
func NewService(config *common.DocumentConfig, logger arbor.ILogger) *Service {
	if config == nil {
		config = &common.DocumentConfig{}
	}
	return &Service{
		config: config,
		logger: logger,
	}
}

// Format returns the configured output format, DOCX unless set to "pdf"
func (s *Service) Format() interfaces.DocumentFormat {
	if interfaces.DocumentFormat(s.config.Format) == interfaces.DocumentFormatPDF {
		return interfaces.DocumentFormatPDF
	}
	return interfaces.DocumentFormatDOCX
}

// BuildDocument renders generated text in the configured format
func (s *Service) BuildDocument(content string, mode interfaces.DocumentMode) ([]byte, error) {
	return s.build(content, mode, s.Format())
}

// SaveDocument renders text in the format implied by the extension of path
// and writes it, creating parent directories.
func (s *Service) SaveDocument(content, path string, mode interfaces.DocumentMode) error {
	data, err := s.build(content, mode, interfaces.FormatFromPath(path, s.Format()))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Document saved")
	return nil
}

func (s *Service) build(content string, mode interfaces.DocumentMode, format interfaces.DocumentFormat) ([]byte, error) {
	if mode == "" {
		mode = interfaces.DocumentModePTE
	}

	s.logger.Debug().
		Int("text_len", len(content)).
		Str("mode", string(mode)).
		Str("format", string(format)).
		Msg("Building document")

	source := []byte(normalizeText(content, mode))

	var (
		data []byte
		err  error
	)
	switch format {
	case interfaces.DocumentFormatPDF:
		data, err = s.buildPDF(source)
	default:
		data, err = s.buildDOCX(source)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("format", string(format)).Msg("Failed to render document")
		return nil, err
	}

	s.logger.Debug().Int("size", len(data)).Msg("Document built successfully")
	return data, nil
}

func (s *Service) fontSize() float64 {
	if s.config.FontSize > 0 {
		return s.config.FontSize
	}
	return defaultFontSize
}
