package webhelper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/marcus-crane/spotilocal/shared"
)

// Client issues signed requests against the webhelper on behalf of a Session.
// It is safe for concurrent use; requests are serialised on a single lock so
// the reactor and one-shot callers never interleave on the shared transport.
type Client struct {
	HTTPClient *http.Client

	session Session
	signer  Signer
	mu      sync.Mutex
}

func NewClient(session Session, httpClient *http.Client) *Client {
	return &Client{
		HTTPClient: httpClient,
		session:    session,
		signer:     session.Signer(),
	}
}

// Session returns the credentials this client signs requests with.
func (c *Client) Session() Session {
	return c.session
}

func (c *Client) url(path string, signed bool, params ...Param) string {
	return c.signer.Build(c.session.BaseURL(), path, signed, signed, params...)
}

// Status fetches and maps remote/status.json.
func (c *Client) Status(ctx context.Context) (Status, error) {
	body, err := c.get(ctx, c.url(shared.PATH_STATUS, true))
	if err != nil {
		return Status{}, err
	}
	return StatusFromJSON(body)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return doGet(ctx, c.HTTPClient, url)
}

func doGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	// the webhelper rejects requests that do not look like the embed player,
	// whatever transport the caller configured
	req.Header.Set("User-Agent", shared.USER_AGENT)
	req.Header.Set("Origin", shared.ORIGIN)
	req.Header.Set("Referer", shared.REFERER)
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrTransport, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return body, nil
}

func parseJSON(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: %d bytes of invalid json", ErrMalformedResponse, len(body))
	}
	return gjson.ParseBytes(body), nil
}
