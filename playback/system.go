package playback

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/marcus-crane/spotilocal/shared"
)

const fullEntryColumns = `
	m.id, m.uri, m.title, m.subtitle, m.category, m.duration, m.source, m.image, m.dominant_colours,
	p.id as playback_id, p.run_id, p.created_at, p.elapsed, p.status, p.is_active, p.updated_at`

// History records what was played and keeps the currently active entries in
// memory for cheap reads.
type History struct {
	db  *sqlx.DB
	now func() time.Time

	m     sync.RWMutex
	state []FullPlaybackEntry
}

func NewHistory(db *sqlx.DB) *History {
	return &History{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		state: []FullPlaybackEntry{},
	}
}

// Record applies an update to the history. A different track, or the same
// track after it was stopped, starts a new entry and stops the previous one.
// Otherwise the active entry's status and elapsed time are updated in place.
func (h *History) Record(update Update) error {
	// deterministic so it doesn't matter if the caller already set it
	update.MediaItem.ID = GenerateMediaID(&update)

	tx, err := h.db.Beginx()
	if err != nil {
		return err
	}

	var committed bool
	defer func() {
		if !committed {
			tx.Rollback()
			return
		}
		if err := h.Refresh(); err != nil {
			slog.Error("Failed to refresh playback state", slog.String("error", err.Error()))
		}
	}()

	now := h.now()
	elapsed := int(update.Elapsed.Milliseconds())

	var existingEntry PlaybackEntry
	err = tx.Get(&existingEntry, `
	  SELECT id, media_id, elapsed, status, is_active
	  FROM playback_entries
	  WHERE category = ? AND source = ?
	  ORDER BY updated_at DESC, id DESC LIMIT 1`,
		update.MediaItem.Category, update.MediaItem.Source)

	if err == nil {
		if existingEntry.MediaID == update.MediaItem.ID && existingEntry.Status != StatusStopped {
			if existingEntry.Status != update.Status || existingEntry.Elapsed != elapsed {
				_, err := tx.Exec(`
				  UPDATE playback_entries
				  SET elapsed = ?, status = ?, is_active = ?, updated_at = ?
				  WHERE id = ?`,
					elapsed, update.Status, update.Status == StatusPlaying, now, existingEntry.ID)
				if err != nil {
					return fmt.Errorf("failed to update entry: %w", err)
				}
				slog.Debug("Updated existing entry",
					slog.String("media_id", update.MediaItem.ID),
					slog.String("old_status", string(existingEntry.Status)),
					slog.String("new_status", string(update.Status)))
			}
			if err = tx.Commit(); err != nil {
				return err
			}
			committed = true
			return nil
		}
		if existingEntry.Status != StatusStopped {
			_, err := tx.Exec(`
			  UPDATE playback_entries
			  SET is_active = FALSE, status = ?, updated_at = ?
			  WHERE id = ?`,
				StatusStopped, now, existingEntry.ID)
			if err != nil {
				return fmt.Errorf("failed to deactivate old entry: %w", err)
			}
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// Replays of a known track reuse the existing media item
	_, err = tx.NamedExec(`
	  INSERT INTO media_items
	  (id, uri, title, subtitle, category, duration, source, image, dominant_colours)
	  VALUES (:id, :uri, :title, :subtitle, :category, :duration, :source, :image, :dominant_colours)
	  ON CONFLICT (id) DO NOTHING`,
		update.MediaItem)
	if err != nil {
		return fmt.Errorf("failed to insert new item: %w", err)
	}

	_, err = tx.Exec(`
	  INSERT INTO playback_entries
	  (media_id, run_id, category, created_at, elapsed, status, is_active, updated_at, source)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		update.MediaItem.ID, update.RunID, update.MediaItem.Category, now, elapsed,
		update.Status, update.Status == StatusPlaying, now, update.MediaItem.Source)
	if err != nil {
		return fmt.Errorf("failed to insert new playback entry: %w", err)
	}

	slog.Debug("Inserted new playback entry", slog.String("media_id", update.MediaItem.ID))

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Stop marks every unfinished Spotify entry as stopped, such as when the
// client exits.
func (h *History) Stop() error {
	_, err := h.db.Exec(`
	  UPDATE playback_entries
	  SET is_active = FALSE, status = ?, updated_at = ?
	  WHERE status != ? AND source = ?`,
		StatusStopped, h.now(), StatusStopped, shared.SOURCE_SPOTIFY)
	if err != nil {
		return err
	}
	return h.Refresh()
}

// SetArtwork attaches a cover location and its dominant colours to a media item.
func (h *History) SetArtwork(mediaID, image string, colours []string) error {
	_, err := h.db.Exec(`
	  UPDATE media_items SET image = ?, dominant_colours = ? WHERE id = ?`,
		image, SerializableColours(colours), mediaID)
	if err != nil {
		return err
	}
	return h.Refresh()
}

// Refresh reloads the in-memory copy of the active entries.
func (h *History) Refresh() error {
	entries, err := h.Active()
	if err != nil {
		return err
	}

	h.m.Lock()
	defer h.m.Unlock()

	h.state = entries

	return nil
}

// Current returns the active entries as of the last write.
func (h *History) Current() []FullPlaybackEntry {
	h.m.RLock()
	defer h.m.RUnlock()
	return append([]FullPlaybackEntry{}, h.state...)
}

func (h *History) Active() ([]FullPlaybackEntry, error) {
	results := []FullPlaybackEntry{}

	err := h.db.Select(&results, `
	  SELECT `+fullEntryColumns+`
	  FROM media_items m
	  JOIN playback_entries p ON m.id = p.media_id
	  WHERE p.is_active = TRUE
	  ORDER BY p.updated_at DESC, p.id DESC
	`)

	return results, err
}

// GetHistory returns the most recently updated entries that are no longer playing.
func (h *History) GetHistory(limit int) ([]FullPlaybackEntry, error) {
	results := []FullPlaybackEntry{}

	if limit <= 0 {
		return results, fmt.Errorf("must request at least one historical item")
	}

	err := h.db.Select(&results, `
	  SELECT `+fullEntryColumns+`
	  FROM media_items m
	  JOIN playback_entries p ON m.id = p.media_id
	  WHERE p.is_active = FALSE
	  ORDER BY p.updated_at DESC, p.id DESC
	  LIMIT ?
	`, limit)

	return results, err
}

// Prune deletes finished entries last updated before the cutoff along with
// any media items no longer referenced. It returns the number of entries removed.
func (h *History) Prune(before time.Time) (int64, error) {
	tx, err := h.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
	  DELETE FROM playback_entries
	  WHERE is_active = FALSE AND updated_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(`
	  DELETE FROM media_items
	  WHERE id NOT IN (SELECT DISTINCT media_id FROM playback_entries)`)
	if err != nil {
		return 0, err
	}

	return removed, tx.Commit()
}
