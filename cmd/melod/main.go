// Command melod is the melo headless media player core daemon: the
// RTSP/Airplay control engine, player registry, playlist engine, and
// settings store, wired together and advertised on the LAN.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/melo-audio/melod/internal/advertise"
	"github.com/melo-audio/melod/internal/diag"
	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/player"
	"github.com/melo-audio/melod/internal/playlist"
	"github.com/melo-audio/melod/internal/rtsp"
	"github.com/melo-audio/melod/internal/settings"
)

func main() {
	var (
		rtspAddr   = flag.String("rtsp-addr", ":5000", "RTSP control listen address")
		diagAddr   = flag.String("diag-addr", "127.0.0.1:8283", "internal diagnostics listen address")
		name       = flag.String("name", "melod", "Airplay device name")
		cfgDir     = flag.String("config-dir", "", "config directory (default: ~/.config/melod)")
		debug      = flag.Bool("debug", false, "enable debug logging")
		maxClients = flag.Int("max-clients", 0, "maximum concurrent RTSP clients (0: use the default)")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if *cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = filepath.Join(home, ".config", "melod")
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := settings.New("core", *cfgDir)
	audioGroup := store.AddGroup("audio", "Audio", "Global playback settings", nil)
	volumeEntry := store.AddF64(audioGroup, "volume", "Volume", "Last-set global volume", 0.5, nil, settings.FlagNone)
	netGroup := store.AddGroup("network", "Network", "Device identity and auth", nil)
	authPassword := store.AddString(netGroup, "password", "Airplay Password", "Optional Airplay pairing password", "", nil, settings.FlagPassword)

	if err := store.Load(); err != nil {
		slog.Error("settings load failed", "err", err)
		os.Exit(1)
	}
	stop, err := store.WatchReload(func() { slog.Info("settings: reloaded from disk") })
	if err != nil {
		slog.Warn("settings: file watch unavailable", "err", err)
	} else {
		defer stop()
	}

	bus := eventbus.New()

	players := player.NewRegistry(bus, volumeEntry)
	playlists := playlist.NewRegistry(bus, players)
	players.SetPlaylistController(playlists)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		slog.Error("failed to generate Apple-Challenge signing key", "err", err)
		os.Exit(1)
	}
	auth := rtsp.NewAuthenticator(*name, "melod", authPassword.Current().String())

	rtspServer := rtsp.NewServer(*name, key, auth, players, playlists, *maxClients)
	go func() {
		if err := rtspServer.ListenAndServe(ctx, *rtspAddr); err != nil {
			slog.Error("rtsp server error", "err", err)
		}
	}()

	adv := advertise.New(*name, rtspPort(*rtspAddr))
	go func() {
		if err := adv.Start(ctx); err != nil {
			slog.Warn("advertise failed", "err", err)
		}
	}()

	diagSrv := &http.Server{
		Addr:         *diagAddr,
		Handler:      diag.NewRouter(players, playlists),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("melod: diagnostics listening", "addr", *diagAddr)
		if err := diagSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("diagnostics server error", "err", err)
		}
	}()

	slog.Info("melod: ready", "rtsp", *rtspAddr, "name", *name, "config", *cfgDir)

	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := diagSrv.Shutdown(shutCtx); err != nil {
		slog.Warn("diagnostics shutdown error", "err", err)
	}
	if err := store.Save(); err != nil {
		slog.Warn("settings save failed", "err", err)
	}

	slog.Info("shutdown complete")
}

// rtspPort extracts the numeric port from an addr like ":5000" or
// "0.0.0.0:5000" for mDNS advertisement.
func rtspPort(addr string) int {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			port := 0
			for _, c := range addr[i+1:] {
				if c < '0' || c > '9' {
					return 5000
				}
				port = port*10 + int(c-'0')
			}
			if port == 0 {
				return 5000
			}
			return port
		}
	}
	return 5000
}
