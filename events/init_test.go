package events

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_ReachesSubscribers(t *testing.T) {
	Init()
	ts := httptest.NewServer(http.HandlerFunc(Server.ServeHTTP))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"?stream="+PlaybackStream, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	// the subscription is registered once headers are flushed
	go func() {
		time.Sleep(50 * time.Millisecond)
		Publish(PlaybackStream, map[string]bool{"playing": true})
	}()

	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			assert.JSONEq(t, `{"playing": true}`, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			return
		}
	}
	t.Fatal("stream closed before an event arrived")
}

func TestPublish_Unencodable(t *testing.T) {
	Init()
	err := Publish(PlaybackStream, make(chan int))
	assert.Error(t, err)
}
