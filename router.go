package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	hmacext "github.com/alexellis/hmac/v2"
	"github.com/rs/cors"

	"github.com/marcus-crane/spotilocal/config"
	"github.com/marcus-crane/spotilocal/events"
	"github.com/marcus-crane/spotilocal/playback"
	"github.com/marcus-crane/spotilocal/utils"
	"github.com/marcus-crane/spotilocal/webhelper"
)

const signatureHeader = "X-Spotilocal-Signature"

// snapshotter is satisfied by *webhelper.Reactor.
type snapshotter interface {
	Last() (webhelper.Status, bool)
}

// controller is satisfied by *webhelper.Client.
type controller interface {
	Play(ctx context.Context, ref string) bool
	Pause(ctx context.Context) bool
	Resume(ctx context.Context) bool
}

type statusResponse struct {
	Status  webhelper.Status             `json:"status"`
	Track   webhelper.SimpleTrack        `json:"track"`
	Playing []playback.FullPlaybackEntry `json:"playing"`
}

type playRequest struct {
	URI string `json:"uri"`
}

func renderJSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func renderJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func RegisterRoutes(mux *http.ServeMux, cfg config.Config, reactor snapshotter, control controller, history *playback.History) http.Handler {

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Spotilocal is watching your local Spotify client.\nYou can find the source code on <a href=\"https://github.com/marcus-crane/spotilocal\">Github</a>\n")
	})

	mux.HandleFunc("/static/", func(w http.ResponseWriter, r *http.Request) {
		// spotify.track.123.jpeg
		cover := strings.TrimPrefix(r.URL.Path, "/static/")
		dot := strings.LastIndex(cover, ".")
		if dot <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		filename, extension := cover[:dot], cover[dot+1:]
		if extension != "jpeg" && extension != "png" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		image, err := utils.LoadCover(cfg.Spotilocal.StorageDir, filename, extension)
		if err != nil {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31622400")
		w.Header().Set("Content-Type", fmt.Sprintf("image/%s", extension))
		w.Write(image)
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		status, ok := reactor.Last()
		if !ok {
			renderJSONMessage(w, http.StatusServiceUnavailable, "No status has been received from Spotify yet")
			return
		}
		renderJSON(w, statusResponse{
			Status:  status,
			Track:   status.SimpleTrack(),
			Playing: history.Current(),
		})
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		limit := 7
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 50 {
				renderJSONMessage(w, http.StatusBadRequest, "limit must be between 1 and 50")
				return
			}
			limit = parsed
		}
		results, err := history.GetHistory(limit)
		if err != nil {
			slog.Error("Failed to fetch history", slog.String("error", err.Error()))
			renderJSONMessage(w, http.StatusInternalServerError, "Something went wrong fetching history")
			return
		}
		renderJSON(w, results)
	})

	mux.HandleFunc("/api/play", signed(cfg, func(w http.ResponseWriter, r *http.Request, body []byte) {
		var req playRequest
		if err := json.Unmarshal(body, &req); err != nil || req.URI == "" {
			renderJSONMessage(w, http.StatusBadRequest, "A uri must be provided")
			return
		}
		renderJSON(w, map[string]bool{"ok": control.Play(r.Context(), req.URI)})
	}))

	mux.HandleFunc("/api/pause", signed(cfg, func(w http.ResponseWriter, r *http.Request, body []byte) {
		renderJSON(w, map[string]bool{"ok": control.Pause(r.Context())})
	}))

	mux.HandleFunc("/api/resume", signed(cfg, func(w http.ResponseWriter, r *http.Request, body []byte) {
		renderJSON(w, map[string]bool{"ok": control.Resume(r.Context())})
	}))

	mux.HandleFunc("/events", events.Server.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Origins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", signatureHeader},
	})

	return c.Handler(mux)
}

// signed only lets through POST requests whose body carries a valid
// sha256=<hex> HMAC made with the configured secret.
func signed(cfg config.Config, next func(http.ResponseWriter, *http.Request, []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderJSONMessage(w, http.StatusMethodNotAllowed, "That method is invalid for this endpoint")
			return
		}
		secret := cfg.Spotilocal.SuperSecretToken
		if secret == "" {
			renderJSONMessage(w, http.StatusServiceUnavailable, "This endpoint is misconfigured and can not be used currently")
			return
		}
		signature := r.Header.Get(signatureHeader)
		if signature == "" {
			renderJSONMessage(w, http.StatusUnauthorized, "No signature was provided")
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			renderJSONMessage(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		if err := hmacext.Validate(body, signature, secret); err != nil {
			slog.Warn("Failed signature validation", slog.String("error", err.Error()))
			renderJSONMessage(w, http.StatusUnauthorized, "Your request was not authorized")
			return
		}
		next(w, r, body)
	}
}
