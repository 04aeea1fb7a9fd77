package httpclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// NewSessionClient creates an HTTP client with a cookie jar so that cookies issued
// by the remote API are replayed on later calls. The client is shared by all
// requests of the process and is safe for concurrent use.
func NewSessionClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}, nil
}
