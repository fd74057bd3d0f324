// Package diag exposes a small, internal-only HTTP surface for health and
// runtime diagnostics — never the client control channel, which clients
// reach exclusively over RTSP (package rtsp). Intended to be bound to a
// loopback or LAN-private address by the caller.
package diag

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/melo-audio/melod/internal/player"
	"github.com/melo-audio/melod/internal/playlist"
)

// Handlers bundles the registries diag reports on.
type Handlers struct {
	players   *player.Registry
	playlists *playlist.Registry
	started   time.Time
}

// NewRouter builds the diagnostics router.
func NewRouter(players *player.Registry, playlists *playlist.Registry) http.Handler {
	h := &Handlers{players: players, playlists: playlists, started: nowFunc()}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitAll(20, time.Minute))

	r.Get("/healthz", h.healthz)
	r.Get("/debug/players", h.debugPlayers)
	r.Get("/debug/current", h.debugCurrent)

	return r
}

// nowFunc is a seam for tests.
var nowFunc = time.Now

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": nowFunc().Sub(h.started).String(),
	})
}

type playerSummary struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	StreamState string `json:"stream_state"`
	MediaName   string `json:"media_name"`
}

func (h *Handlers) debugPlayers(w http.ResponseWriter, r *http.Request) {
	var out []playerSummary
	for _, id := range h.players.IDs() {
		p := h.players.Get(id)
		if p == nil {
			continue
		}
		streamState, _ := p.StreamState()
		out = append(out, playerSummary{
			ID:          id,
			State:       p.State().String(),
			StreamState: streamState.String(),
			MediaName:   p.MediaName(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) debugCurrent(w http.ResponseWriter, r *http.Request) {
	cur := h.playlists.Current()
	if cur == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no current playlist"})
		return
	}
	e := cur.GetCurrent()
	if e == nil {
		writeJSON(w, http.StatusOK, map[string]any{"playing": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playing": true,
		"name":    e.DisplayName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
