package interfaces

import (
	"context"
)

// FileTransferService moves files between the service and Creatio records
type FileTransferService interface {
	// DownloadFile returns the raw content of a Creatio file
	DownloadFile(ctx context.Context, documentID string) ([]byte, error)

	// UploadFile attaches data to a record and returns the decoded Creatio response
	UploadFile(ctx context.Context, recordID, fileName string, data []byte) (any, error)
}
