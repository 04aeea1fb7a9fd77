// Package creatio provides authenticated, retrying access to the Creatio CRM API.
package creatio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/ternarybob/arbor"
)

// envelopeKey is the key under which Creatio nests response payloads.
// A legitimate payload with a top-level "value" field is indistinguishable
// from an envelope and will be unwrapped as well.
const envelopeKey = "value"

// RemoteCallError is returned for any non-2xx response.
type RemoteCallError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *RemoteCallError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("creatio: %s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// IsRemoteCallError reports whether err is (or wraps) a RemoteCallError with the given status.
// A status of 0 matches any RemoteCallError.
func IsRemoteCallError(err error, status int) bool {
	var rce *RemoteCallError
	if !errors.As(err, &rce) {
		return false
	}
	return status == 0 || rce.StatusCode == status
}

// FilePart is one file of a multipart request.
type FilePart struct {
	FieldName   string
	FileName    string
	Content     []byte
	ContentType string
}

// Gateway is the single point of authenticated HTTP access to Creatio.
// It holds no per-call state and is safe for concurrent use.
type Gateway struct {
	baseURL    string
	authSecret string
	httpClient *http.Client
	retrier    *Retrier
	logger     arbor.ILogger
}

// NewGateway creates a gateway for the configured Creatio instance.
func NewGateway(config *common.CreatioConfig, httpClient *http.Client, retrier *Retrier, logger arbor.ILogger) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if retrier == nil {
		retrier = NewRetrier(DefaultMaxRetries, DefaultRetryDelay, logger)
	}
	return &Gateway{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		authSecret: config.AuthSecret,
		httpClient: httpClient,
		retrier:    retrier,
		logger:     logger,
	}
}

// BaseURL returns the Creatio base URL without a trailing slash.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// GetJSON performs a GET and returns the decoded body, unwrapping the "value" envelope.
func (g *Gateway) GetJSON(ctx context.Context, url string) (any, error) {
	return Retry(ctx, g.retrier, "GetJSON", func(ctx context.Context) (any, error) {
		resp, err := g.send(ctx, http.MethodGet, url, nil, g.jsonHeaders())
		if err != nil {
			return nil, err
		}
		return decodeEnvelope(resp)
	})
}

// GetBytes performs a GET and returns the raw body. No Content-Type header is sent.
func (g *Gateway) GetBytes(ctx context.Context, url string) ([]byte, error) {
	return Retry(ctx, g.retrier, "GetBytes", func(ctx context.Context) ([]byte, error) {
		resp, err := g.send(ctx, http.MethodGet, url, nil, g.binaryHeaders())
		if err != nil {
			return nil, err
		}
		return resp.body, nil
	})
}

// PostJSON posts body as JSON (or no payload when body is nil) and returns the
// decoded response, unwrapping the "value" envelope.
func (g *Gateway) PostJSON(ctx context.Context, url string, body any) (any, error) {
	payload, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return Retry(ctx, g.retrier, "PostJSON", func(ctx context.Context) (any, error) {
		resp, err := g.send(ctx, http.MethodPost, url, payload, g.jsonHeaders())
		if err != nil {
			return nil, err
		}
		return decodeEnvelope(resp)
	})
}

// PostMultipart posts files and form fields as multipart/form-data and returns the
// decoded response as-is (no envelope unwrapping). Only the AuthSecret header and
// the multipart content type are sent.
func (g *Gateway) PostMultipart(ctx context.Context, url string, files []FilePart, fields map[string]string) (any, error) {
	payload, contentType, err := encodeMultipart(files, fields)
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	headers.Set("AuthSecret", g.authSecret)
	headers.Set("Content-Type", contentType)

	return Retry(ctx, g.retrier, "PostMultipart", func(ctx context.Context) (any, error) {
		resp, err := g.send(ctx, http.MethodPost, url, payload, headers)
		if err != nil {
			return nil, err
		}
		return resp.decode()
	})
}

// Put sends body as JSON (or no payload when body is nil) and returns the decoded
// response, unwrapping the "value" envelope.
func (g *Gateway) Put(ctx context.Context, url string, body any) (any, error) {
	payload, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return Retry(ctx, g.retrier, "Put", func(ctx context.Context) (any, error) {
		resp, err := g.send(ctx, http.MethodPut, url, payload, g.jsonHeaders())
		if err != nil {
			return nil, err
		}
		return decodeEnvelope(resp)
	})
}

// Patch sends body as JSON. It returns true for 200 and 204 responses and the
// decoded body for any other successful status.
func (g *Gateway) Patch(ctx context.Context, url string, body any) (any, error) {
	payload, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return Retry(ctx, g.retrier, "Patch", func(ctx context.Context) (any, error) {
		resp, err := g.send(ctx, http.MethodPatch, url, payload, g.jsonHeaders())
		if err != nil {
			return nil, err
		}
		return resp.noContentOrBody()
	})
}

// Delete returns true for 200 and 204 responses and the decoded body for any
// other successful status.
func (g *Gateway) Delete(ctx context.Context, url string) (any, error) {
	return Retry(ctx, g.retrier, "Delete", func(ctx context.Context) (any, error) {
		resp, err := g.send(ctx, http.MethodDelete, url, nil, g.jsonHeaders())
		if err != nil {
			return nil, err
		}
		return resp.noContentOrBody()
	})
}

func (g *Gateway) jsonHeaders() http.Header {
	headers := http.Header{}
	headers.Set("AuthSecret", g.authSecret)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	return headers
}

func (g *Gateway) binaryHeaders() http.Header {
	headers := g.jsonHeaders()
	headers.Del("Content-Type")
	return headers
}

type response struct {
	statusCode int
	body       []byte
}

// send performs a single attempt. payload may be nil; it is wrapped in a fresh
// reader so the same bytes can be resent by the next attempt.
func (g *Gateway) send(ctx context.Context, method, url string, payload []byte, headers http.Header) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if g.logger != nil {
		g.logger.Debug().
			Str("method", method).
			Str("url", url).
			Int("payload_bytes", len(payload)).
			Msg("Creatio request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteCallError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	return &response{statusCode: resp.StatusCode, body: data}, nil
}

func (r *response) decode() (any, error) {
	var result any
	if err := json.Unmarshal(r.body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

func (r *response) noContentOrBody() (any, error) {
	if r.statusCode == http.StatusOK || r.statusCode == http.StatusNoContent {
		return true, nil
	}
	if len(bytes.TrimSpace(r.body)) == 0 {
		return true, nil
	}
	return r.decode()
}

func decodeEnvelope(r *response) (any, error) {
	result, err := r.decode()
	if err != nil {
		return nil, err
	}
	if obj, ok := result.(map[string]any); ok {
		if value, found := obj[envelopeKey]; found {
			return value, nil
		}
	}
	return result, nil
}

func encodeJSON(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

func encodeMultipart(files []FilePart, fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	for _, file := range files {
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.FieldName), escapeQuotes(file.FileName)))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", file.FieldName, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %s: %w", file.FieldName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
