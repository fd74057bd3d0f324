package player

import "errors"

var (
	ErrUnknownPlayer    = errors.New("player: unknown id")
	ErrNoCurrentPlayer  = errors.New("player: no current player")
	ErrNoPlaylist       = errors.New("player: no playlist controller wired")
	ErrMalformedRequest = errors.New("player: malformed request")
)
