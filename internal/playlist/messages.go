package playlist

import "github.com/melo-audio/melod/internal/tags"

// WireMedia is the wire representation of one playlist entry (spec §6:
// "media = {index, parent_indices, name, playable, sortable, tags,
// children[]}").
type WireMedia struct {
	ParentIndices []int
	Index         int
	Name          string
	Playable      bool
	Sortable      bool
	Tags          tags.Tags
	Children      []WireMedia
}

// MediaIndex locates one entry by its index chain, root to leaf.
type MediaIndex struct {
	Indices []int
}

// Range selects entries for Move/Delete, either as a contiguous run
// (FirstIndices/Length — "Linear range") or, when Paths is non-empty, as a
// non-contiguous multi-select: one full index path per selected entry,
// possibly spanning different parents and levels, in the order a client UI
// selected them ("Non-linear range", spec §4.5). Paths takes precedence
// when set.
type Range struct {
	FirstIndices []int
	Length       int
	Paths        [][]int
}

// Event is the Playlist.Event union of spec §6.
type Event struct {
	Add     *EventAdd
	Update  *EventUpdate
	Play    *EventPlay
	Move    *EventMove
	Delete  *EventDelete
	Shuffle *EventShuffle
}

type EventAdd struct{ Media WireMedia }
type EventUpdate struct{ Media WireMedia }
type EventPlay struct{ MediaIndex MediaIndex }
type EventMove struct {
	Range Range
	Dest  MediaIndex
}
type EventDelete struct{ Range Range }
type EventShuffle struct{ Enabled bool }

// Request is the Playlist.Request union of spec §6.
type ReqGetMediaList struct {
	Offset int
	Count  int
}
type ReqGetCurrent struct{}
type ReqPlay struct{ Indices []int }
type ReqMove struct {
	Range Range
	Dest  MediaIndex
}
type ReqDelete struct{ Range Range }
type ReqShuffle struct{ Enable bool }

// Response types.
type RespOK struct{}
type RespError struct{ Text string }
type RespMediaList struct {
	Items  []WireMedia
	Count  int
	Offset int
}
type RespCurrent struct{ Media WireMedia }
