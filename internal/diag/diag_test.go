package diag_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/melo-audio/melod/internal/diag"
	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/player"
	"github.com/melo-audio/melod/internal/playlist"
)

func TestHealthz(t *testing.T) {
	bus := eventbus.New()
	players := player.NewRegistry(bus, nil)
	playlists := playlist.NewRegistry(bus, players)

	srv := httptest.NewServer(diag.NewRouter(players, playlists))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestDebugCurrentNoPlaylist(t *testing.T) {
	bus := eventbus.New()
	players := player.NewRegistry(bus, nil)
	playlists := playlist.NewRegistry(bus, players)

	srv := httptest.NewServer(diag.NewRouter(players, playlists))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/current")
	if err != nil {
		t.Fatalf("GET /debug/current: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 with no playlists created, got %d", resp.StatusCode)
	}
}
