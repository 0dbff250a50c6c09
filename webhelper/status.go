package webhelper

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Status is a single read of remote/status.json.
type Status struct {
	Volume          float64        `json:"volume"` // 0.0 to 1.0
	Online          bool           `json:"online"`
	Version         int            `json:"version"`
	Running         bool           `json:"running"`
	Playing         bool           `json:"playing"`
	Shuffle         bool           `json:"shuffle"`
	ServerTime      int64          `json:"server_time"` // unix seconds
	PlayEnabled     bool           `json:"play_enabled"`
	PrevEnabled     bool           `json:"prev_enabled"`
	NextEnabled     bool           `json:"next_enabled"`
	ClientVersion   string         `json:"client_version"`
	PlayingPosition float64        `json:"playing_position"` // seconds
	OpenGraphState  OpenGraphState `json:"open_graph_state"`
	Track           *Track         `json:"track"`
}

type OpenGraphState struct {
	PrivateSession  bool `json:"private_session"`
	PostingDisabled bool `json:"posting_disabled"`
}

type Track struct {
	TrackResource  Resource `json:"track_resource"`
	AlbumResource  Resource `json:"album_resource"`
	ArtistResource Resource `json:"artist_resource"`
	Length         int      `json:"length"` // whole seconds
	URI            string   `json:"uri"`
}

// Type reports the track type. The webhelper has no dedicated field for it
// and reuses the track object's uri, so this is the same value as URI.
func (t Track) Type() string {
	return t.URI
}

// Simple projects the track onto its track, album and artist names.
func (t Track) Simple() SimpleTrack {
	return SimpleTrack{
		Name:   t.TrackResource.Name,
		Album:  t.AlbumResource.Name,
		Artist: t.ArtistResource.Name,
	}
}

type Resource struct {
	URI            string `json:"uri"`
	Name           string `json:"name"`
	OnlineLocation string `json:"online_location"`
}

// SimpleTrack is a display-friendly view of a Track.
type SimpleTrack struct {
	Name   string `json:"name"`
	Album  string `json:"album"`
	Artist string `json:"artist"`
}

func (s SimpleTrack) String() string {
	return fmt.Sprintf("%s - %s", s.Artist, s.Name)
}

// SimpleTrack returns the simple view of the current track, or an empty
// SimpleTrack when nothing is loaded.
func (s Status) SimpleTrack() SimpleTrack {
	if s.Track == nil {
		return SimpleTrack{}
	}
	return s.Track.Simple()
}

// StatusFromJSON maps a status body onto a Status. Only invalid JSON is an
// error; missing or mistyped fields take their zero value.
func StatusFromJSON(body []byte) (Status, error) {
	payload, err := parseJSON(body)
	if err != nil {
		return Status{}, err
	}
	return statusFromResult(payload), nil
}

func statusFromResult(obj gjson.Result) Status {
	return Status{
		Volume:          floatField(obj, "volume"),
		Online:          boolField(obj, "online"),
		Version:         int(intField(obj, "version")),
		Running:         boolField(obj, "running"),
		Playing:         boolField(obj, "playing"),
		Shuffle:         boolField(obj, "shuffle"),
		ServerTime:      intField(obj, "server_time"),
		PlayEnabled:     boolField(obj, "play_enabled"),
		PrevEnabled:     boolField(obj, "prev_enabled"),
		NextEnabled:     boolField(obj, "next_enabled"),
		ClientVersion:   stringField(obj, "client_version"),
		PlayingPosition: floatField(obj, "playing_position"),
		OpenGraphState:  openGraphStateFromResult(obj.Get("open_graph_state")),
		Track:           trackFromResult(obj.Get("track")),
	}
}

func openGraphStateFromResult(obj gjson.Result) OpenGraphState {
	return OpenGraphState{
		PrivateSession:  boolField(obj, "private_session"),
		PostingDisabled: boolField(obj, "posting_disabled"),
	}
}

func trackFromResult(obj gjson.Result) *Track {
	if !obj.Exists() || obj.Type == gjson.Null {
		return nil
	}
	return &Track{
		TrackResource:  resourceFromResult(obj.Get("track_resource")),
		AlbumResource:  resourceFromResult(obj.Get("album_resource")),
		ArtistResource: resourceFromResult(obj.Get("artist_resource")),
		Length:         int(intField(obj, "length")),
		URI:            stringField(obj, "uri"),
	}
}

func resourceFromResult(obj gjson.Result) Resource {
	return Resource{
		URI:            stringField(obj, "uri"),
		Name:           stringField(obj, "name"),
		OnlineLocation: stringField(obj.Get("location"), "og"),
	}
}
