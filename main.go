package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcus-crane/spotilocal/artwork"
	"github.com/marcus-crane/spotilocal/config"
	"github.com/marcus-crane/spotilocal/db"
	"github.com/marcus-crane/spotilocal/events"
	"github.com/marcus-crane/spotilocal/migrations"
	"github.com/marcus-crane/spotilocal/notify"
	"github.com/marcus-crane/spotilocal/playback"
	"github.com/marcus-crane/spotilocal/process"
	"github.com/marcus-crane/spotilocal/utils"
	"github.com/marcus-crane/spotilocal/webhelper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.GetLogLevel()}))
	slog.SetDefault(logger)

	store, err := openStore(cfg.Spotilocal.DbPath)
	if err != nil {
		slog.Error("Failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	history := playback.NewHistory(store.Conn())
	if err := history.Refresh(); err != nil {
		slog.Error("Failed to load active playback", slog.String("error", err.Error()))
	}

	probe := process.SystemProbe{}
	if cfg.Webhelper.CheckProcesses {
		if err := process.Check(context.Background(), probe); err != nil {
			slog.Error("Spotify does not appear to be running", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	handshake := webhelper.NewHandshake(utils.NewHTTPClient())
	handshake.Resolver.Start = cfg.Webhelper.PortStart
	handshake.Resolver.End = cfg.Webhelper.PortEnd
	handshake.TokenURL = cfg.Webhelper.TokenURL
	handshake.LocalURL = cfg.Webhelper.LocalURL
	handshake.Logger = logger

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	client, err := webhelper.Connect(connectCtx, handshake)
	cancel()
	if err != nil {
		slog.Error("Failed to connect to the Spotify webhelper", slog.String("error", err.Error()))
		os.Exit(1)
	}

	events.Init()

	t := newTracker(
		history,
		artwork.NewFetcher(&http.Client{Timeout: 15 * time.Second}, cfg.Spotilocal.StorageDir),
		notify.NewPushover(cfg.Pushover.Token, cfg.Pushover.Recipient),
	)
	reactor := webhelper.NewReactor(client, t.handle,
		webhelper.WithInterval(cfg.PollInterval()),
		webhelper.WithLogger(logger),
	)
	t.runID = reactor.ID()
	if err := reactor.Start(); err != nil {
		slog.Error("Failed to start reactor", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jobScheduler := SetupInBackground(cfg, history, probe)
	if cfg.Spotilocal.BackgroundJobsEnabled {
		jobScheduler.StartAsync()
		slog.Info("Background jobs have started up in the background.")
	} else {
		slog.Info("Background jobs are disabled.")
	}

	server := &http.Server{
		Addr:    cfg.Spotilocal.ListenAddr,
		Handler: RegisterRoutes(http.NewServeMux(), cfg, reactor, client, history),
	}

	go func() {
		slog.Info("Spotilocal is running", slog.String("addr", cfg.Spotilocal.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		slog.Info("Gracefully shutting down...")
	case <-reactor.Done():
		slog.Warn("Reactor stopped unexpectedly. Shutting down...")
	}

	// The reactor only stops once it next reports a snapshot, which never
	// happens while the webhelper is unreachable
	t.stop()
	select {
	case <-reactor.Done():
	case <-time.After(5 * time.Second):
		slog.Warn("Reactor did not stop in time")
	}

	jobScheduler.Stop()
	t.wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Failed to shut down HTTP server", slog.String("error", err.Error()))
	}

	slog.Info("Spotilocal has successfully shut down.")
}

// openStore connects to the history database and brings its schema up to date.
func openStore(dsn string) (db.Store, error) {
	store, err := db.NewSqliteStore(dsn)
	if err != nil {
		return nil, err
	}
	if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
		store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}
