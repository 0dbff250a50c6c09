package main

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcus-crane/spotilocal/artwork"
	"github.com/marcus-crane/spotilocal/events"
	"github.com/marcus-crane/spotilocal/notify"
	"github.com/marcus-crane/spotilocal/playback"
	"github.com/marcus-crane/spotilocal/webhelper"
)

type playbackEvent struct {
	Status  webhelper.Status      `json:"status"`
	Changes webhelper.ChangeSet   `json:"changes"`
	Track   webhelper.SimpleTrack `json:"track"`
}

// tracker is the reactor's handler. It fans changes out to event subscribers,
// keeps the play history current and raises a notification when Spotify quits.
type tracker struct {
	history  *playback.History
	artwork  *artwork.Fetcher
	notifier notify.Notifier
	runID    string

	stopping    atomic.Bool
	seenRunning bool
	enrichments sync.WaitGroup
}

func newTracker(history *playback.History, fetcher *artwork.Fetcher, notifier notify.Notifier) *tracker {
	return &tracker{
		history:  history,
		artwork:  fetcher,
		notifier: notifier,
	}
}

// stop asks the reactor to halt the next time it reports a snapshot.
func (t *tracker) stop() {
	t.stopping.Store(true)
}

func (t *tracker) handle(status webhelper.Status, changes webhelper.ChangeSet) bool {
	if t.stopping.Load() {
		return false
	}
	if !changes.Any() {
		return true
	}

	if err := events.Publish(events.PlaybackStream, playbackEvent{
		Status:  status,
		Changes: changes,
		Track:   status.SimpleTrack(),
	}); err != nil {
		slog.Error("Failed to publish playback event", slog.String("error", err.Error()))
	}

	if changes.Track {
		slog.Info("Track changed", slog.String("track", status.SimpleTrack().String()))
	}

	if changes.Running {
		t.runningChanged(status.Running)
	}

	if changes.Track || changes.Playing {
		t.record(status, changes.Track)
	}

	return true
}

func (t *tracker) runningChanged(running bool) {
	if running {
		t.seenRunning = true
		return
	}
	if !t.seenRunning {
		return
	}
	t.seenRunning = false
	slog.Warn("Spotify is no longer running")
	if t.history != nil {
		if err := t.history.Stop(); err != nil {
			slog.Error("Failed to stop playback history", slog.String("error", err.Error()))
		}
	}
	if t.notifier != nil {
		if err := t.notifier.Notify("Spotify stopped", "The Spotify client is no longer running"); err != nil {
			slog.Error("Failed to send notification", slog.String("error", err.Error()))
		}
	}
}

func (t *tracker) record(status webhelper.Status, trackChanged bool) {
	if t.history == nil {
		return
	}
	update, ok := playback.UpdateFromStatus(status, t.runID)
	if !ok {
		if trackChanged {
			if err := t.history.Stop(); err != nil {
				slog.Error("Failed to stop playback history", slog.String("error", err.Error()))
			}
		}
		return
	}
	if err := t.history.Record(update); err != nil {
		slog.Error("Failed to record playback",
			slog.String("media_id", update.MediaItem.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if trackChanged && t.artwork != nil {
		t.enrichments.Add(1)
		go t.enrich(status.Track.TrackResource.OnlineLocation, update.MediaItem.ID)
	}
}

// enrich runs off the polling goroutine as fetching artwork can take a while.
func (t *tracker) enrich(pageURL, mediaID string) {
	defer t.enrichments.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	art, err := t.artwork.Fetch(ctx, pageURL, mediaID)
	if err != nil {
		slog.Debug("No artwork for track",
			slog.String("media_id", mediaID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := t.history.SetArtwork(mediaID, art.Image, art.Colours); err != nil {
		slog.Error("Failed to save artwork", slog.String("error", err.Error()))
	}
}

// wait blocks until in-flight artwork lookups finish.
func (t *tracker) wait() {
	t.enrichments.Wait()
}
