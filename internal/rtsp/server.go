package rtsp

import (
	"context"
	"crypto/rsa"
	"errors"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/melo-audio/melod/internal/player"
	"github.com/melo-audio/melod/internal/playlist"
)

// defaultMaxClients caps concurrent RTSP sessions; beyond it Accept rejects
// new connections with 503 rather than overcommitting the audio pipeline
// (spec §4.6 Accept, §7 ResourceExhausted).
const defaultMaxClients = 5

// Server accepts RTSP connections and spawns one goroutine per client
// (spec's Go-native concurrency mapping: a cooperative event loop in the
// original becomes one goroutine per connection here, matching the
// teacher's process-per-worker supervision style).
type Server struct {
	deviceName string
	signingKey *rsa.PrivateKey
	auth       *Authenticator
	players    *player.Registry
	playlists  *playlist.Registry
	maxClients int

	listener net.Listener
	wg       sync.WaitGroup

	mu      sync.Mutex
	clients int
}

// NewServer creates a Server that will register RTSP-originated players
// under deviceName, signing Apple-Challenge handshakes with key. maxClients
// caps concurrent sessions; 0 uses defaultMaxClients.
func NewServer(deviceName string, key *rsa.PrivateKey, auth *Authenticator, players *player.Registry, playlists *playlist.Registry, maxClients int) *Server {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	return &Server{deviceName: deviceName, signingKey: key, auth: auth, players: players, playlists: playlists, maxClients: maxClients}
}

// listenConfig sets SO_REUSEADDR so a restart doesn't hit "address already
// in use" while the previous listener's sockets drain (golang.org/x/sys/unix
// is the one place in this module syscall-level socket options are needed;
// net.ListenConfig has no portable option for this).
var listenConfig = net.ListenConfig{
	Control: func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return sockErr
	},
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := listenConfig.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	slog.Info("rtsp: listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			slog.Warn("rtsp: accept error", "err", err)
			continue
		}

		if !s.acceptClient() {
			slog.Warn("rtsp: rejecting connection, too many clients", "remote", conn.RemoteAddr().String(), "max", s.maxClients)
			_, _ = conn.Write([]byte("RTSP/1.0 503 " + StatusText(503) + "\r\n\r\n"))
			_ = conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.releaseClient()
			session := newSession(conn, s.deviceName, s.signingKey, s.auth, s.players, s.playlists)
			slog.Info("rtsp: client connected", "session", session.ID, "remote", conn.RemoteAddr().String())
			session.Serve()
			slog.Info("rtsp: client disconnected", "session", session.ID)
		}()
	}
}

// acceptClient reserves a client slot, reporting false (and reserving
// nothing) if maxClients is already reached.
func (s *Server) acceptClient() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients >= s.maxClients {
		return false
	}
	s.clients++
	return true
}

func (s *Server) releaseClient() {
	s.mu.Lock()
	s.clients--
	s.mu.Unlock()
}
