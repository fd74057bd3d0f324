// Package player implements the player registry and playback state machine
// of spec §4.4: a process-wide table of players, arbitration over which one
// is "current", and the status/position/volume event stream that drives
// listeners via the event bus.
package player

import "github.com/melo-audio/melod/internal/tags"

// State is a player's coarse playback state.
type State int

const (
	StateNone State = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StreamState describes buffering progress distinct from playback state.
type StreamState int

const (
	StreamNone StreamState = iota
	StreamLoading
	StreamBuffering
)

func (s StreamState) String() string {
	switch s {
	case StreamNone:
		return "none"
	case StreamLoading:
		return "loading"
	case StreamBuffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// Descriptor is the player's immutable identity (spec §3).
type Descriptor struct {
	ID          string
	DisplayName string
	Description string
	Icon        string
}

// SinkHandle is an opaque reference to the audio sink a player writes to.
// The concrete decoding/mixing pipeline that backs it is out of scope for
// this module (spec §1).
type SinkHandle any

// Driver is the trait a concrete player implementation (owned by a module,
// out of scope here) satisfies so the registry can drive it. Spec §9 calls
// this the "Player trait": play, set_state, set_position, get_position,
// get_asset, settings.
type Driver interface {
	Play(path string) error
	SetState(state State) error
	SetPosition(ms int64) error
	GetPosition() (int64, error)
	// GetAsset returns an opaque handle to the player's current asset (e.g.
	// cover art bytes), used by browser glue; nil if unavailable.
	GetAsset() (any, error)
	// SetGain propagates a volume/mute change to the sink the driver
	// controls (spec §4.4: SetVolume/SetMute "propagate to the current
	// player's sink gain").
	SetGain(volume float64, mute bool) error
}

// Entity is one registered player: its identity, mutable playback state,
// and the driver that actually moves audio.
type Entity struct {
	Descriptor

	driver Driver
	sink   SinkHandle

	state       State
	streamState StreamState
	percent     int

	mediaName string
	tags      tags.Tags

	durationMs int64
	positionMs int64

	playlistEntryRef        any
	currentPlaylistEntryRef any
}

// New wraps driver as a registrable player entity.
func New(desc Descriptor, driver Driver, sink SinkHandle) *Entity {
	return &Entity{Descriptor: desc, driver: driver, sink: sink}
}

// State returns the player's current coarse state.
func (e *Entity) State() State { return e.state }

// StreamState returns the current buffering state and percent.
func (e *Entity) StreamState() (StreamState, int) { return e.streamState, e.percent }

// MediaName returns the current media display name.
func (e *Entity) MediaName() string { return e.mediaName }

// Tags returns the current tag metadata.
func (e *Entity) Tags() tags.Tags { return e.tags }

// Duration returns the current track duration, in milliseconds.
func (e *Entity) Duration() int64 { return e.durationMs }

// Position returns the last known playback position, in milliseconds.
func (e *Entity) Position() int64 { return e.positionMs }

// PlaylistEntryRef returns the opaque playlist entry this player is bound to.
func (e *Entity) PlaylistEntryRef() any { return e.playlistEntryRef }

// CurrentPlaylistEntryRef returns the opaque playlist entry currently
// playing through this player.
func (e *Entity) CurrentPlaylistEntryRef() any { return e.currentPlaylistEntryRef }

// Sink returns the player's audio sink handle.
func (e *Entity) Sink() SinkHandle { return e.sink }
