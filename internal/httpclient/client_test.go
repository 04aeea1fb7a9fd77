package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionClient_ReplaysCookies(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("BPMSESSIONID")
		if err != nil {
			seen = append(seen, "")
			http.SetCookie(w, &http.Cookie{Name: "BPMSESSIONID", Value: "session-1", Path: "/"})
		} else {
			seen = append(seen, cookie.Value)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewSessionClient(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL + "/0/rest/FileApiService/GetFile")
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, []string{"", "session-1"}, seen)
}
