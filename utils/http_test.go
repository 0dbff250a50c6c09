package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/spotilocal/shared"
)

func TestBrowserRoundTripper_SetsEmbedHeaders(t *testing.T) {
	t.Parallel()
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewHTTPClient()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "curl/8.0")

	res, err := client.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, shared.USER_AGENT, got.Get("User-Agent"))
	assert.Equal(t, shared.ORIGIN, got.Get("Origin"))
	assert.Equal(t, shared.REFERER, got.Get("Referer"))
	// the caller's request is left untouched
	assert.Equal(t, "curl/8.0", req.Header.Get("User-Agent"))
	assert.Empty(t, req.Header.Get("Origin"))
}

func TestNewHTTPClient_HasTimeout(t *testing.T) {
	t.Parallel()
	client := NewHTTPClient()
	assert.Equal(t, DefaultTimeout, client.Timeout)
	assert.IsType(t, &BrowserRoundTripper{}, client.Transport)
}

func TestNewHTTPClient_TimesOutStalledServer(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	client := NewHTTPClient()
	client.Timeout = 50 * time.Millisecond
	_, err := client.Get(ts.URL)
	require.Error(t, err)
	assert.ErrorContains(t, err, "Client.Timeout")
}
