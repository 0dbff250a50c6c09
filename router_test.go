package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/spotilocal/config"
	"github.com/marcus-crane/spotilocal/events"
	"github.com/marcus-crane/spotilocal/playback"
	"github.com/marcus-crane/spotilocal/webhelper"
)

const testSecret = "hunter2"

type fakeSnapshotter struct {
	status webhelper.Status
	ok     bool
}

func (f *fakeSnapshotter) Last() (webhelper.Status, bool) {
	return f.status, f.ok
}

type fakeController struct {
	played  []string
	paused  int
	resumed int
	result  bool
}

func (f *fakeController) Play(ctx context.Context, ref string) bool {
	f.played = append(f.played, ref)
	return f.result
}

func (f *fakeController) Pause(ctx context.Context) bool {
	f.paused++
	return f.result
}

func (f *fakeController) Resume(ctx context.Context) bool {
	f.resumed++
	return f.result
}

type routerFixture struct {
	handler http.Handler
	reactor *fakeSnapshotter
	control *fakeController
	history *playback.History
	storage string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	events.Init()
	f := &routerFixture{
		reactor: &fakeSnapshotter{},
		control: &fakeController{result: true},
		history: newTestHistory(t),
		storage: t.TempDir(),
	}
	cfg := config.Config{Spotilocal: config.SpotilocalConfig{
		SuperSecretToken: testSecret,
		StorageDir:       f.storage,
		AllowedOrigins:   "https://example.com",
	}}
	f.handler = RegisterRoutes(http.NewServeMux(), cfg, f.reactor, f.control, f.history)
	return f
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func signedRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(signatureHeader, sign(body))
	return req
}

func TestRouter_Index(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Spotilocal")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Status(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f.reactor.status = playingStatus("one")
	f.reactor.ok = true
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	if !cmp.Equal(f.reactor.status, got.Status) {
		t.Error(cmp.Diff(f.reactor.status, got.Status))
	}
	assert.Equal(t, "Artist - one", got.Track.String())
	assert.Empty(t, got.Playing)
}

func TestRouter_History(t *testing.T) {
	f := newRouterFixture(t)
	for _, name := range []string{"one", "two"} {
		update, _ := playback.UpdateFromStatus(playingStatus(name), "run")
		require.NoError(t, f.history.Record(update))
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []playback.FullPlaybackEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "one", entries[0].Title)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/history?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Controls(t *testing.T) {
	f := newRouterFixture(t)

	body := `{"uri": "https://open.spotify.com/track/abc"}`
	rec := f.do(signedRequest("/api/play", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
	assert.Equal(t, []string{"https://open.spotify.com/track/abc"}, f.control.played)

	rec = f.do(signedRequest("/api/pause", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(signedRequest("/api/resume", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.control.paused)
	assert.Equal(t, 1, f.control.resumed)

	f.control.result = false
	rec = f.do(signedRequest("/api/pause", ""))
	assert.JSONEq(t, `{"ok": false}`, rec.Body.String())
}

func TestRouter_ControlsRejectBadRequests(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"wrong method", httptest.NewRequest(http.MethodGet, "/api/pause", nil), http.StatusMethodNotAllowed},
		{"no signature", httptest.NewRequest(http.MethodPost, "/api/pause", nil), http.StatusUnauthorized},
		{"bad signature", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/api/pause", strings.NewReader("{}"))
			req.Header.Set(signatureHeader, sign("something else"))
			return req
		}(), http.StatusUnauthorized},
		{"missing uri", signedRequest("/api/play", `{}`), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Empty(t, f.control.played)
	assert.Equal(t, 0, f.control.paused)
}

func TestRouter_ControlsWithoutSecret(t *testing.T) {
	events.Init()
	control := &fakeController{}
	handler := RegisterRoutes(http.NewServeMux(), config.Config{}, &fakeSnapshotter{}, control, newTestHistory(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest("/api/pause", ""))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 0, control.paused)
}

func TestRouter_Static(t *testing.T) {
	f := newRouterFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.storage, "spotify.track.123.png"), []byte("png"), 0644))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/static/spotify.track.123.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/static/spotify.track.999.png", nil))
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/static/spotify.track.123.gif", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := f.do(req)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = f.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
