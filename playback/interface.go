package playback

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/spotilocal/shared"
	"github.com/marcus-crane/spotilocal/webhelper"
)

type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// SerializableColours stores a string slice as a comma separated value
// Example input: []string{"#020304", "#6581be"}
// Example DB value: #020304,#6581be
type SerializableColours []string

func (s SerializableColours) Value() (driver.Value, error) {
	return strings.Join(s, ","), nil
}

func (s *SerializableColours) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
	default:
		return fmt.Errorf("incompatible type for SerializableColours: %T", src)
	}
	if raw == "" {
		*s = SerializableColours{}
		return nil
	}
	*s = SerializableColours(strings.Split(raw, ","))
	return nil
}

// PlaybackEntry is a single listen of a MediaItem. Replaying a track creates a
// new entry while pausing and resuming keeps updating the same one.
type PlaybackEntry struct {
	ID        int       `db:"id"`
	MediaID   string    `db:"media_id"`
	RunID     string    `db:"run_id"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
	Elapsed   int       `db:"elapsed"` // milliseconds
	Status    Status    `db:"status"`
	IsActive  bool      `db:"is_active"`
	UpdatedAt time.Time `db:"updated_at"`
	Source    string    `db:"source"`
}

// MediaItem stores metadata about a track, shared by every time it is played.
type MediaItem struct {
	ID              string              `db:"id"`
	URI             string              `db:"uri"`
	Title           string              `db:"title"`
	Subtitle        string              `db:"subtitle"`
	Category        string              `db:"category"`
	Duration        int                 `db:"duration"` // milliseconds
	Source          string              `db:"source"`
	Image           string              `db:"image"`
	DominantColours SerializableColours `db:"dominant_colours"`
}

// FullPlaybackEntry is a PlaybackEntry with its MediaItem metadata attached.
type FullPlaybackEntry struct {
	ID              string              `db:"id" json:"id"`
	URI             string              `db:"uri" json:"uri"`
	Title           string              `db:"title" json:"title"`
	Subtitle        string              `db:"subtitle" json:"subtitle"`
	Category        string              `db:"category" json:"category"`
	Duration        int                 `db:"duration" json:"duration_ms"`
	Source          string              `db:"source" json:"source"`
	Image           string              `db:"image" json:"image"`
	DominantColours SerializableColours `db:"dominant_colours" json:"dominant_colours"`

	PlaybackID int       `db:"playback_id" json:"-"`
	RunID      string    `db:"run_id" json:"run_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Elapsed    int       `db:"elapsed" json:"elapsed_ms"`
	Status     Status    `db:"status" json:"status"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Update struct {
	MediaItem MediaItem
	RunID     string
	Elapsed   time.Duration
	Status    Status
}

// GenerateMediaID derives a stable id from the track metadata. Artwork is left
// out as it is filled in after the item is first recorded.
func GenerateMediaID(p *Update) string {
	hashString := fmt.Sprintf("%s-%s-%s-%s-%d-%s",
		p.MediaItem.URI,
		p.MediaItem.Title,
		p.MediaItem.Subtitle,
		p.MediaItem.Category,
		p.MediaItem.Duration,
		p.MediaItem.Source,
	)
	return fmt.Sprintf(
		"%s:%s:%d",
		p.MediaItem.Source,
		p.MediaItem.Category,
		xxhash.Sum64String(hashString),
	)
}

// UpdateFromStatus maps a webhelper snapshot onto a history update. It reports
// false when no track is loaded.
func UpdateFromStatus(s webhelper.Status, runID string) (Update, bool) {
	if s.Track == nil || s.Track.TrackResource.URI == "" {
		return Update{}, false
	}
	status := StatusPaused
	if s.Playing {
		status = StatusPlaying
	}
	update := Update{
		MediaItem: MediaItem{
			URI:      s.Track.TrackResource.URI,
			Title:    s.Track.TrackResource.Name,
			Subtitle: s.Track.ArtistResource.Name,
			Category: shared.CATEGORY_TRACK,
			Duration: s.Track.Length * 1000,
			Source:   shared.SOURCE_SPOTIFY,
		},
		RunID:   runID,
		Elapsed: time.Duration(s.PlayingPosition * float64(time.Second)),
		Status:  status,
	}
	update.MediaItem.ID = GenerateMediaID(&update)
	return update, true
}
