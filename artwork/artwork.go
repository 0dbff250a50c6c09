package artwork

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/marcus-crane/spotilocal/shared"
	"github.com/marcus-crane/spotilocal/utils"
)

var ErrNoArtwork = errors.New("no artwork found")

type Artwork struct {
	Image   string   // location served under /static/
	Colours []string // dominant colours as hex strings
}

// Fetcher looks up cover art for a track from its open.spotify.com page and
// stores a copy alongside the dominant colours.
type Fetcher struct {
	HTTPClient *http.Client
	StorageDir string
}

func NewFetcher(client *http.Client, storageDir string) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{HTTPClient: client, StorageDir: storageDir}
}

// Fetch downloads the cover for a track page and saves it under mediaID.
func (f *Fetcher) Fetch(ctx context.Context, pageURL, mediaID string) (Artwork, error) {
	if pageURL == "" {
		return Artwork{}, ErrNoArtwork
	}
	imageURL, err := f.coverURL(ctx, pageURL)
	if err != nil {
		return Artwork{}, err
	}
	image, extension, colours, err := utils.ExtractImageContent(f.HTTPClient, imageURL)
	if err != nil {
		return Artwork{}, err
	}
	location, err := utils.SaveCover(f.StorageDir, mediaID, image, extension)
	if err != nil {
		return Artwork{}, err
	}
	return Artwork{Image: location, Colours: colours}, nil
}

func (f *Fetcher) coverURL(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", shared.SERVICE_USER_AGENT)
	res, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code fetching track page: %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}

	coverUrl, exists := doc.Find("meta[property='og:image']").First().Attr("content")
	if !exists || coverUrl == "" {
		return "", ErrNoArtwork
	}
	return coverUrl, nil
}
