package webhelper

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/spotilocal/utils"
)

// fakeWebhelper stands in for both the token issuer and the local webhelper.
// Its listening port doubles as the resolver target.
type fakeWebhelper struct {
	*httptest.Server
	port int

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
}

func newFakeWebhelper(t *testing.T) *fakeWebhelper {
	t.Helper()
	f := &fakeWebhelper{handlers: map[string]http.HandlerFunc{}}
	f.handle("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"t": "bearer-token"}`))
	})
	f.handle("/simplecsrf/token.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "csrf-token"}`))
	})
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		h, ok := f.handlers[r.URL.Path]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(f.Close)
	f.port = f.Listener.Addr().(*net.TCPAddr).Port
	return f
}

func (f *fakeWebhelper) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = h
}

func (f *fakeWebhelper) httpClient() *http.Client {
	return &http.Client{Transport: &utils.BrowserRoundTripper{RT: f.Client().Transport}}
}

func (f *fakeWebhelper) handshake() *Handshake {
	return &Handshake{
		HTTPClient: f.httpClient(),
		Resolver:   &Resolver{Host: "127.0.0.1", Start: f.port, End: f.port},
		TokenURL:   f.URL + "/token",
		LocalURL:   "http://127.0.0.1",
	}
}

func (f *fakeWebhelper) connect(t *testing.T) *Client {
	t.Helper()
	client, err := Connect(context.Background(), f.handshake())
	require.NoError(t, err)
	return client
}
