package utils

import (
	"net/http"
	"time"

	"github.com/marcus-crane/spotilocal/shared"
)

// BrowserRoundTripper presents every request as coming from the embedded web
// player. The webhelper rejects anything missing these headers.
type BrowserRoundTripper struct {
	RT http.RoundTripper
}

func (brt *BrowserRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", shared.USER_AGENT)
	req.Header.Set("Origin", shared.ORIGIN)
	req.Header.Set("Referer", shared.REFERER)
	rt := brt.RT
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}

// DefaultTimeout bounds every webhelper request, including the reactor's
// polls which carry no deadline of their own.
const DefaultTimeout = 10 * time.Second

func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &BrowserRoundTripper{},
		Timeout:   DefaultTimeout,
	}
}
