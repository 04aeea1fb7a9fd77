package creatio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestFileService_DownloadFile(t *testing.T) {
	var path, query string
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.Query().Get("id")
		_, _ = io.WriteString(w, "%PDF-1.7 body")
	})

	service := NewFileService(gateway, arbor.NewLogger())
	data, err := service.DownloadFile(context.Background(), "doc-42")
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.7 body"), data)
	assert.Equal(t, "/0/ServiceModel/EntityFileService.svc/GetFile", path)
	assert.Equal(t, "doc-42", query)
}

func TestFileService_DownloadFile_NotFound(t *testing.T) {
	var calls atomic.Int32
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})

	service := NewFileService(gateway, arbor.NewLogger())
	_, err := service.DownloadFile(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, IsRemoteCallError(err, http.StatusNotFound))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFileService_UploadFile(t *testing.T) {
	type upload struct {
		path     string
		recordID string
		fileName string
		fileID   string
		partName string
		partType string
		content  string
	}
	var uploads []upload

	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		uploads = append(uploads, upload{
			path:     r.URL.Path,
			recordID: r.FormValue("recordId"),
			fileName: r.FormValue("fileName"),
			fileID:   r.FormValue("fileId"),
			partName: header.Filename,
			partType: header.Header.Get("Content-Type"),
			content:  string(data),
		})
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	service := NewFileService(gateway, arbor.NewLogger())

	for i := 0; i < 2; i++ {
		result, err := service.UploadFile(context.Background(), "rec-1", "proceduri.pdf", []byte("%PDF-data"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"success": true}, result)
	}

	require.Len(t, uploads, 2)
	for _, u := range uploads {
		assert.Equal(t, "/0/ServiceModel/EntityFileService.svc/UploadFile", u.path)
		assert.Equal(t, "rec-1", u.recordID)
		assert.Equal(t, "proceduri.pdf", u.fileName)
		assert.Equal(t, "proceduri.pdf", u.partName)
		assert.Equal(t, "application/octet-stream", u.partType)
		assert.Equal(t, "%PDF-data", u.content)
		assert.Len(t, u.fileID, 36)
	}
	assert.NotEqual(t, uploads[0].fileID, uploads[1].fileID, "each upload uses a fresh file id")
}

func TestFileService_UploadFile_CustomIDGenerator(t *testing.T) {
	var fileIDs []string
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fileIDs = append(fileIDs, r.FormValue("fileId"))
		_, _ = io.WriteString(w, `{}`)
	})

	counter := 0
	service := NewFileService(gateway, arbor.NewLogger(), WithIDGenerator(func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}))

	_, err := service.UploadFile(context.Background(), "rec", "a.pdf", []byte("x"))
	require.NoError(t, err)
	_, err = service.UploadFile(context.Background(), "rec", "a.pdf", []byte("x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"id-1", "id-2"}, fileIDs)
}
