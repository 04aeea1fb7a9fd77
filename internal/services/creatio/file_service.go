package creatio

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

const entityFileServicePath = "/0/ServiceModel/EntityFileService.svc"

// FileService downloads and uploads files attached to Creatio records.
type FileService struct {
	gateway *Gateway
	newID   func() string
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.FileTransferService = (*FileService)(nil)

// FileServiceOption configures the FileService.
type FileServiceOption func(*FileService)

// WithIDGenerator overrides the generator used for upload file ids.
func WithIDGenerator(fn func() string) FileServiceOption {
	return func(s *FileService) {
		s.newID = fn
	}
}

// NewFileService creates a file transfer service on top of the gateway.
func NewFileService(gateway *Gateway, logger arbor.ILogger, opts ...FileServiceOption) *FileService {
	s := &FileService{
		gateway: gateway,
		newID:   uuid.NewString,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DownloadFile returns the content of the Creatio file with the given id.
func (s *FileService) DownloadFile(ctx context.Context, documentID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s%s/GetFile?id=%s", s.gateway.BaseURL(), entityFileServicePath, url.QueryEscape(documentID))

	data, err := s.gateway.GetBytes(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", documentID, err)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Int("bytes", len(data)).
		Msg("Downloaded file from Creatio")

	return data, nil
}

// UploadFile attaches data to the record as fileName. Every call uses a new file id,
// so repeating an upload creates a second attachment.
func (s *FileService) UploadFile(ctx context.Context, recordID, fileName string, data []byte) (any, error) {
	endpoint := s.gateway.BaseURL() + entityFileServicePath + "/UploadFile"
	fileID := s.newID()

	files := []FilePart{{
		FieldName:   "file",
		FileName:    fileName,
		Content:     data,
		ContentType: "application/octet-stream",
	}}
	fields := map[string]string{
		"recordId": recordID,
		"fileName": fileName,
		"fileId":   fileID,
	}

	result, err := s.gateway.PostMultipart(ctx, endpoint, files, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to record %s: %w", fileName, recordID, err)
	}

	s.logger.Info().
		Str("record_id", recordID).
		Str("file_name", fileName).
		Str("file_id", fileID).
		Int("bytes", len(data)).
		Msg("Uploaded file to Creatio")

	return result, nil
}
