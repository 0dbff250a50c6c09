package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	color_extractor "github.com/marekm4/color-extractor"

	"github.com/marcus-crane/spotilocal/shared"
)

// ExtractImageContent downloads an image and returns its bytes, file extension
// and dominant colours as hex strings.
func ExtractImageContent(client *http.Client, imageUrl string) ([]byte, string, []string, error) {
	req, err := http.NewRequest(http.MethodGet, imageUrl, nil)
	if err != nil {
		return []byte{}, "", []string{}, err
	}
	req.Header = http.Header{
		"User-Agent": []string{shared.SERVICE_USER_AGENT},
	}
	res, err := client.Do(req)
	if err != nil {
		return []byte{}, "", []string{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return []byte{}, "", []string{}, fmt.Errorf("unexpected status code fetching image: %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return []byte{}, "", []string{}, err
	}

	extension := ""
	switch http.DetectContentType(body) {
	case "image/jpeg":
		extension = "jpeg"
	case "image/png":
		extension = "png"
	default:
		return []byte{}, "", []string{}, fmt.Errorf("unsupported image type at %s", imageUrl)
	}

	var domColours []string

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return []byte{}, "", []string{}, err
	}
	for _, c := range color_extractor.ExtractColors(img) {
		domColours = append(domColours, colorToHexString(c))
	}

	return body, extension, domColours, nil
}

func colorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}

// coverName turns a media id such as spotify:track:123 into spotify.track.123
// as colons are valid in URIs but not on all filesystems
func coverName(id string) string {
	return strings.ReplaceAll(id, ":", ".")
}

func SaveCover(storageDir, id string, image []byte, extension string) (string, error) {
	name := fmt.Sprintf("%s.%s", coverName(id), extension)
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(storageDir, name), image, 0644); err != nil {
		return "", err
	}
	return fmt.Sprintf("/static/%s", name), nil
}

func LoadCover(storageDir, filename, extension string) ([]byte, error) {
	return os.ReadFile(filepath.Join(storageDir, fmt.Sprintf("%s.%s", filepath.Base(filename), extension)))
}
