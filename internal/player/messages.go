package player

import "github.com/melo-audio/melod/internal/tags"

// Event is the Player.Event union of spec §6.
type Event struct {
	Add      *EventAdd
	Remove   *EventRemove
	Media    *EventMedia
	Status   *EventStatus
	Position *EventPosition
	Volume   *EventVolume
	Error    *EventError
	Playlist *EventPlaylist
}

type EventAdd struct{ Descriptor Descriptor }
type EventRemove struct{ Descriptor Descriptor }
type EventMedia struct {
	Name string
	Tags tags.Tags
}
type EventStatus struct {
	State       State
	StreamState StreamState
	Value       int
}
type EventPosition struct {
	PositionMs int64
	DurationMs int64
}
type EventVolume struct {
	Volume float64
	Mute   bool
}
type EventError struct{ Text string }
type EventPlaylist struct {
	Prev bool
	Next bool
}

// Request is the Player.Request union of spec §6.
type Request struct {
	SetState    *ReqSetState
	SetPosition *ReqSetPosition
	SetVolume   *ReqSetVolume
	SetMute     *ReqSetMute
	PlayPrevious bool
	PlayNext     bool
}

type ReqSetState struct{ State State }
type ReqSetPosition struct{ PositionMs int64 }
type ReqSetVolume struct{ Volume float64 }
type ReqSetMute struct{ Mute bool }
