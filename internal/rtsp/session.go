package rtsp

import (
	"bufio"
	"context"
	"crypto/rsa"
	"log/slog"
	"net"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/melo-audio/melod/internal/player"
	"github.com/melo-audio/melod/internal/playlist"
	"github.com/melo-audio/melod/internal/tags"
)

// Session is one client's RTSP control connection: its own player.Entity,
// request-rate limiter, and negotiated transport.
type Session struct {
	ID string

	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	limit  *rate.Limiter

	deviceName string
	signingKey *rsa.PrivateKey
	auth       *Authenticator

	players   *player.Registry
	playlists *playlist.Registry

	entity    *player.Entity
	driver    *nullDriver
	transport Transport

	aesKey []byte
	aesIV  []byte
}

// newSession wraps conn, registering a fresh player.Entity with players.
func newSession(conn net.Conn, deviceName string, key *rsa.PrivateKey, auth *Authenticator, players *player.Registry, playlists *playlist.Registry) *Session {
	id := uuid.NewString()
	driver := &nullDriver{}
	entity := player.New(player.Descriptor{
		ID:          id,
		DisplayName: deviceName,
		Description: "Airplay receiver",
	}, driver, nil)
	players.Register(entity)

	return &Session{
		ID:         id,
		conn:       conn,
		r:          bufio.NewReader(conn),
		w:          bufio.NewWriter(conn),
		limit:      rate.NewLimiter(rate.Limit(50), 10), // 50 req/s, burst 10 — guards a misbehaving client
		deviceName: deviceName,
		signingKey: key,
		auth:       auth,
		players:    players,
		playlists:  playlists,
		entity:     entity,
		driver:     driver,
	}
}

// Serve reads and dispatches requests until the connection closes or a
// fatal framing error occurs.
func (s *Session) Serve() {
	defer func() {
		s.players.Unregister(s.ID)
		_ = s.conn.Close()
	}()

	for {
		if err := s.limit.Wait(context.Background()); err != nil {
			return
		}
		req, err := ReadRequest(s.r)
		if err != nil {
			return
		}

		resp := s.handle(req)
		if err := WriteResponse(s.w, resp); err != nil {
			slog.Warn("rtsp: write response failed", "session", s.ID, "err", err)
			return
		}
		if req.Method == "TEARDOWN" {
			return
		}
	}
}

func (s *Session) handle(req *Request) *Response {
	resp := NewResponse(req)

	if s.auth != nil && s.auth.Enabled() && req.Method != "OPTIONS" {
		if !s.auth.Check(req.Header("Authorization"), req.Method, req.URI) {
			resp.SetHeader("WWW-Authenticate", s.auth.Challenge())
			return resp.Fail(401, StatusText(401))
		}
	}

	if challenge := req.Header("Apple-Challenge"); challenge != "" && s.signingKey != nil {
		localIP, localMAC := localIdentity(s.conn)
		if sig, err := SignAppleChallenge(s.signingKey, challenge, localIP, localMAC); err == nil {
			resp.SetHeader("Apple-Response", sig)
		}
	}

	switch req.Method {
	case "OPTIONS":
		return s.handleOptions(resp)
	case "ANNOUNCE":
		return s.handleAnnounce(req, resp)
	case "SETUP":
		return s.handleSetup(req, resp)
	case "RECORD":
		return s.handleRecord(req, resp)
	case "PLAY":
		return s.handlePlay(resp)
	case "PAUSE":
		return s.handlePause(resp)
	case "FLUSH":
		return s.handleFlush(resp)
	case "TEARDOWN":
		return s.handleTeardown(resp)
	case "GET_PARAMETER":
		return s.handleGetParameter(req, resp)
	case "SET_PARAMETER":
		return s.handleSetParameter(req, resp)
	default:
		return resp.Fail(405, StatusText(405))
	}
}

func (s *Session) handleOptions(resp *Response) *Response {
	resp.SetHeader("Public", "ANNOUNCE, SETUP, RECORD, PAUSE, FLUSH, TEARDOWN, OPTIONS, GET_PARAMETER, SET_PARAMETER")
	return resp
}

func (s *Session) handleAnnounce(req *Request, resp *Response) *Response {
	desc := ParseSDP(req.Body)
	s.players.UpdateMedia(s.ID, s.deviceName, tags.Tags{}, tags.SkipNone)

	if desc.RSAAESKey != "" && s.signingKey != nil {
		key, iv, err := desc.DecryptAESKey(s.signingKey)
		if err != nil {
			slog.Warn("rtsp: announce aes key decrypt failed", "session", s.ID, "err", err)
		} else {
			s.aesKey, s.aesIV = key, iv
		}
	}

	slog.Info("rtsp: announce", "session", s.ID, "format", desc.Format)
	return resp
}

func (s *Session) handleSetup(req *Request, resp *Response) *Response {
	s.transport = ParseTransport(req.Header("Transport"))
	resp.SetHeader("Session", s.ID)
	resp.SetHeader("Transport", s.transport.String())
	return resp
}

func (s *Session) handleRecord(req *Request, resp *Response) *Response {
	s.players.UpdateStatus(s.ID, player.StatePlaying, player.StreamLoading, 0)
	resp.SetHeader("Audio-Latency", "11025")
	return resp
}

func (s *Session) handlePlay(resp *Response) *Response {
	s.players.UpdateState(s.ID, player.StatePlaying)
	return resp
}

func (s *Session) handlePause(resp *Response) *Response {
	s.players.UpdateState(s.ID, player.StatePaused)
	return resp
}

func (s *Session) handleFlush(resp *Response) *Response {
	s.players.UpdatePosition(s.ID, 0)
	return resp
}

func (s *Session) handleTeardown(resp *Response) *Response {
	s.players.UpdateState(s.ID, player.StateStopped)
	return resp
}

func (s *Session) handleGetParameter(req *Request, resp *Response) *Response {
	switch req.Header("Content-Type") {
	case "text/parameters":
		resp.Headers.Set("Content-Type", "text/parameters")
		resp.Body = []byte("volume: 0.0\r\n")
	}
	return resp
}

func (s *Session) handleSetParameter(req *Request, resp *Response) *Response {
	switch {
	case req.Header("Content-Type") == "application/x-dmap-tagged":
		t := ParseDMAPTags(req.Body)
		s.players.UpdateTags(s.ID, t, tags.SkipCover)
	case req.Header("Content-Type") == "text/parameters":
		applyTextParameters(s, req.Body)
	default:
		if format, w, h, err := ValidateCoverArt(req.Body); err == nil {
			slog.Debug("rtsp: cover art received", "session", s.ID, "format", format, "w", w, "h", h)
		}
	}
	return resp
}

// applyTextParameters handles a SET_PARAMETER text/parameters body — one
// "key: value" pair per line, the only two Airplay sends outside DMAP
// metadata: live volume changes and playback progress.
func applyTextParameters(s *Session, body []byte) {
	for _, line := range splitParamLines(body) {
		key, value, ok := splitParamLine(line)
		if !ok {
			continue
		}
		switch key {
		case "volume":
			if v, ok := parseAirplayVolume(value); ok {
				s.players.UpdateVolume(s.ID, v, v <= 0)
			}
		case "progress":
			if pos, dur, ok := parseAirplayProgress(value); ok {
				s.players.UpdateDuration(s.ID, pos, dur)
			}
		}
	}
}
