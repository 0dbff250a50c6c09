package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/marcus-crane/spotilocal/config"
	"github.com/marcus-crane/spotilocal/playback"
	"github.com/marcus-crane/spotilocal/process"
)

func SetupInBackground(cfg config.Config, history *playback.History, probe process.Probe) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	if cfg.Webhelper.CheckProcesses {
		monitor := &livenessMonitor{probe: probe}
		s.Every(30).Seconds().Do(monitor.check)
	}
	s.Every(1).Hour().Do(pruneHistory, history, cfg.Retention())

	slog.Info("Jobs scheduled. Scheduler not running yet.", slog.Int("jobs", s.Len()))

	return s
}

// livenessMonitor logs when the Spotify processes appear or disappear.
type livenessMonitor struct {
	probe process.Probe

	mu      sync.Mutex
	checked bool
	lastErr error
}

func (m *livenessMonitor) check() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := process.Check(ctx, m.probe)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checked && err == m.lastErr {
		return err
	}
	m.checked = true
	m.lastErr = err
	if err != nil {
		slog.Warn("Spotify liveness check failed", slog.String("error", err.Error()))
	} else {
		slog.Info("Spotify is running")
	}
	return err
}

func pruneHistory(history *playback.History, retention time.Duration) {
	removed, err := history.Prune(time.Now().Add(-retention))
	if err != nil {
		slog.Error("Failed to prune play history", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		slog.Info("Pruned play history", slog.Int64("removed", removed))
	}
}
