package playlist

import "errors"

var (
	ErrNotFound      = errors.New("playlist: index not found")
	ErrEmptyRange    = errors.New("playlist: empty range")
	ErrRangeOverflow = errors.New("playlist: range extends past end of list")
	ErrMoveIntoSelf  = errors.New("playlist: cannot move a range into itself")
	ErrNotPlayable   = errors.New("playlist: entry is not playable")
	ErrNoPlayerSink  = errors.New("playlist: no player sink wired")
	ErrShuffleActive = errors.New("playlist: shuffle already enabled")
	ErrShuffleOff    = errors.New("playlist: shuffle is not enabled")
)
