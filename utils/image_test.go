package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExtractImageContent_Png(t *testing.T) {
	t.Parallel()
	body := solidPNG(t, color.RGBA{R: 0xff, A: 0xff})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer ts.Close()

	got, extension, colours, err := ExtractImageContent(ts.Client(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, "png", extension)
	require.NotEmpty(t, colours)
	assert.Contains(t, colours, "#ff0000")
}

func TestExtractImageContent_NotAnImage(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	_, _, _, err := ExtractImageContent(ts.Client(), ts.URL)
	assert.Error(t, err)
}

func TestExtractImageContent_BadStatus(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, _, _, err := ExtractImageContent(ts.Client(), ts.URL)
	assert.Error(t, err)
}

func TestSaveCover_RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	location, err := SaveCover(dir, "spotify:track:123", []byte("cover"), "jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/static/spotify.track.123.jpeg", location)

	got, err := LoadCover(dir, "spotify.track.123", "jpeg")
	require.NoError(t, err)
	assert.Equal(t, []byte("cover"), got)

	_, err = LoadCover(dir, "../../etc/passwd", "jpeg")
	assert.Error(t, err)
}
