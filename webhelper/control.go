package webhelper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/marcus-crane/spotilocal/shared"
)

var uriPrefixes = []string{
	"http://open.spotify.com",
	"http://play.spotify.com",
	"open.spotify.com",
	"play.spotify.com",
	"http://",
}

// NormalizeURI turns the forms people paste (web links, bare paths such as
// track/ID) into a spotify:type:id URI. Input it can't make sense of is passed
// through rather than rejected.
func NormalizeURI(ref string) string {
	uri := strings.TrimSpace(ref)
	if strings.HasPrefix(uri, "https://") {
		uri = "http://" + strings.TrimPrefix(uri, "https://")
	}
	if i := strings.Index(uri, "?"); i >= 0 {
		uri = uri[:i]
	}
	for _, prefix := range uriPrefixes {
		uri = strings.TrimPrefix(uri, prefix)
	}
	uri = strings.ReplaceAll(uri, "/", ":")
	uri = strings.TrimPrefix(uri, ":")
	if !strings.HasPrefix(uri, "spotify:") {
		uri = "spotify:" + uri
	}
	return uri
}

// Play starts playback of a track, album or playlist reference.
func (c *Client) Play(ctx context.Context, ref string) bool {
	return c.command(ctx, shared.PATH_PLAY, Param{Key: "uri", Value: NormalizeURI(ref)})
}

func (c *Client) Pause(ctx context.Context) bool {
	return c.command(ctx, shared.PATH_PAUSE, Param{Key: "pause", Value: "true"})
}

func (c *Client) Resume(ctx context.Context) bool {
	return c.command(ctx, shared.PATH_PAUSE, Param{Key: "pause", Value: "false"})
}

// Open asks the webhelper to launch the client and reports whether it is running.
func (c *Client) Open(ctx context.Context) (bool, error) {
	body, err := c.get(ctx, c.url(shared.PATH_OPEN, false))
	if err != nil {
		return false, err
	}
	payload, err := parseJSON(body)
	if err != nil {
		return false, err
	}
	return boolField(payload, "running"), nil
}

func (c *Client) command(ctx context.Context, path string, param Param) bool {
	body, err := c.get(ctx, c.url(path, true, param))
	if err == nil {
		_, err = parseJSON(body)
	}
	if err != nil {
		slog.Debug("Webhelper command failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}
