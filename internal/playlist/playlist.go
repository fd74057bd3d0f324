package playlist

import (
	"math/rand"
	"sync"

	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/message"
	"github.com/melo-audio/melod/internal/request"
	"github.com/melo-audio/melod/internal/tags"
)

// PlayerSink is the subset of the player registry the playlist engine needs
// to start playback — kept as a small interface here (rather than importing
// package player) so the two packages can depend on each other's behavior
// without an import cycle: player imports PlaylistController (its own
// interface) and playlist imports PlayerSink (this one); the concrete
// player.Registry satisfies both.
type PlayerSink interface {
	PlayMedia(playerID, path, name string, t tags.Tags, entryRef any) error
	// ResetCurrent stops the current player and clears current-player
	// state, invoked when the playlist's cursor is invalidated with
	// nothing queued to take its place (spec §4.5 Delete).
	ResetCurrent() error
}

// Playlist is a hierarchical queue: its root EntryList plus an optional
// shuffle backup, the event bus it broadcasts on, and the player sink it
// drives. Requests are handed in per call to HandleRequest; the playlist
// keeps no request tracker of its own.
type Playlist struct {
	ID string

	mu      sync.Mutex
	Entries EntryList
	backup  *shuffleBackup

	bus    *eventbus.Bus
	player PlayerSink
	rng    *rand.Rand
}

// New creates an empty playlist broadcasting through bus and driving
// playback through player.
func New(id string, bus *eventbus.Bus, player PlayerSink) *Playlist {
	return &Playlist{
		ID:     id,
		bus:    bus,
		player: player,
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (p *Playlist) broadcast(ev Event) {
	p.bus.Broadcast(message.New(message.KindPlaylistEvent, ev))
}

// AddMedia prepends a new playable entry under parent (nil for root),
// broadcasting an add event. Entries go to the head — the playlist
// displays most-recently-added first (spec §4.5: "prepend(entry) inserts
// at head"). If shuffle is active, the new entry is tagged ShuffleAdded
// (spec §4.5).
func (p *Playlist) AddMedia(parent *Entry, playerID, path, name string, t tags.Tags) *Entry {
	p.mu.Lock()
	e := NewMedia(playerID, path, name, t)
	e.playlistBackRef = p

	list := p.listFor(parent)
	list.Prepend(e)
	e.Parent = parent
	if parent != nil && (parent.HasPlayer) {
		e.Flags &^= FlagPlayable | FlagSortable
	}

	if p.backup != nil {
		e.Flags |= FlagShuffleAdded
	}
	media := p.describeLocked(e)
	p.mu.Unlock()

	p.broadcast(Event{Add: &EventAdd{Media: media}})
	return e
}

// listFor returns the EntryList a new child of parent belongs in (the root
// list when parent is nil).
func (p *Playlist) listFor(parent *Entry) *EntryList {
	if parent == nil {
		return &p.Entries
	}
	return &parent.Children
}

// GetCurrent returns the deepest "current" entry, descending the cursor
// chain from the root (spec glossary: cursor chain).
func (p *Playlist) GetCurrent() *Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deepestCurrentLocked()
}

func (p *Playlist) deepestCurrentLocked() *Entry {
	cur := p.Entries.current
	for cur != nil && cur.Children.current != nil {
		cur = cur.Children.current
	}
	return cur
}

// cursorChainLocked returns the index path root-to-leaf for the current deepest
// entry, or nil if there is no cursor.
func (p *Playlist) cursorChainLocked() []int {
	if p.Entries.current == nil {
		return nil
	}
	var chain []int
	list := &p.Entries
	for list.current != nil {
		chain = append(chain, list.currentIndex)
		list = &list.current.Children
		if list.head == nil {
			break
		}
	}
	return chain
}

// HandleRequest unpacks msg as a Playlist.Request and dispatches it through
// a Request handle, delivering response(s) via cb.
func (p *Playlist) HandleRequest(r *request.Request, msg *message.Message, cb func(*message.Message)) bool {
	switch req := msg.Payload.(type) {
	case ReqGetMediaList:
		p.handleGetMediaList(req, cb)
	case ReqGetCurrent:
		p.handleGetCurrent(cb)
	case ReqPlay:
		err := p.Play(req.Indices)
		p.respondOK(cb, err)
	case ReqMove:
		err := p.Move(req.Range, req.Dest)
		p.respondOK(cb, err)
	case ReqDelete:
		err := p.Delete(req.Range)
		p.respondOK(cb, err)
	case ReqShuffle:
		var err error
		if req.Enable {
			err = p.EnableShuffle()
		} else {
			err = p.DisableShuffle()
		}
		p.respondOK(cb, err)
	default:
		return false
	}
	r.Complete()
	return true
}

func (p *Playlist) respondOK(cb func(*message.Message), err error) {
	if err != nil {
		cb(message.New(message.KindPlaylistResponse, RespError{Text: err.Error()}))
		return
	}
	cb(message.New(message.KindPlaylistResponse, RespOK{}))
}
