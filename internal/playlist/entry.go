// Package playlist implements the hierarchical, reference-counted playback
// queue of spec §4.5: a doubly-linked circular intrusive list of Entry
// nodes, a chained "current" cursor descending one level per Entry with
// children, move/delete with non-destructive shuffle backup/restore, and
// recursive next/previous navigation.
package playlist

import (
	"github.com/melo-audio/melod/internal/tags"
)

// Flags are per-entry markers.
type Flags uint8

const (
	FlagNone Flags = 0
	FlagPlayable Flags = 1 << iota
	FlagSortable
	// ShuffleInserted marks an entry already placed during the current
	// shuffle-enable pass, so the picker never re-selects it.
	FlagShuffleInserted
	// ShuffleAdded marks an entry that was added to the playlist while
	// shuffle was enabled; it is preserved, unshuffled, at restore time.
	FlagShuffleAdded
	// ShuffleDeleted marks an entry removed from the live list while a
	// shuffle backup referencing it still exists.
	FlagShuffleDeleted
)

// Entry is a node of the playlist tree: either a playable leaf (has
// PlayerID/Path) or a sortable folder (has Children). Ownership is by
// reference count — an Entry is reachable while RefCount >= 1 (spec §3).
type Entry struct {
	RefCount int

	PlayerID    string
	HasPlayer   bool
	Path        string
	DisplayName string
	Tags        tags.Tags
	Flags       Flags

	Parent   *Entry
	Children EntryList

	prev, next *Entry

	playlistBackRef *Playlist
}

// NewFolder creates a non-playable, sortable container entry.
func NewFolder(displayName string) *Entry {
	return &Entry{RefCount: 1, DisplayName: displayName, Flags: FlagSortable}
}

// NewMedia creates a playable leaf entry bound to playerID/path.
func NewMedia(playerID, path, displayName string, t tags.Tags) *Entry {
	return &Entry{
		RefCount:    1,
		PlayerID:    playerID,
		HasPlayer:   true,
		Path:        path,
		DisplayName: displayName,
		Tags:        t,
		Flags:       FlagPlayable | FlagSortable,
	}
}

// ref increments the reference count.
func (e *Entry) ref() *Entry {
	if e != nil {
		e.RefCount++
	}
	return e
}

// unref decrements the reference count and reports whether it reached zero
// (the entry is now unreachable and should be discarded by its last
// holder).
func (e *Entry) unref() bool {
	if e == nil {
		return false
	}
	e.RefCount--
	return e.RefCount <= 0
}

// applyInheritedPlayableFlag clears Playable/Sortable on e when
// ancestorHasPlayer is set, and on every descendant of e that has an
// ancestor with a player (e itself counts for its descendants) — spec §3:
// "player_id == None implies the entry is a folder... its children inherit
// a cleared Playable/Sortable flag if any ancestor has player_id set."
func (e *Entry) applyInheritedPlayableFlag(ancestorHasPlayer bool) {
	if ancestorHasPlayer {
		e.Flags &^= FlagPlayable | FlagSortable
	}
	childHasPlayer := ancestorHasPlayer || e.HasPlayer
	for c := e.Children.head; c != nil; {
		next := c.next
		c.applyInheritedPlayableFlag(childHasPlayer)
		if next == e.Children.head {
			break
		}
		c = next
	}
}

// EntryList is a circular doubly-linked ring of Entry threaded through their
// prev/next fields, plus a cursor: current/currentIndex. The list does not
// own its entries — ownership lives in each Entry's RefCount (spec §3).
type EntryList struct {
	head         *Entry
	count        int
	current      *Entry
	currentIndex int
}

// Len returns the number of entries in the list.
func (l *EntryList) Len() int { return l.count }

// Head returns the first entry, or nil if empty.
func (l *EntryList) Head() *Entry { return l.head }

// Current returns the list's current entry at this level, or nil.
func (l *EntryList) Current() *Entry { return l.current }

// CurrentIndex returns the list's current index at this level.
func (l *EntryList) CurrentIndex() int { return l.currentIndex }

// linkBefore splices standalone entry e in immediately before at, which must
// already be a member of a non-empty ring.
func linkBefore(at *Entry, e *Entry) {
	before := at.prev
	e.prev = before
	e.next = at
	before.next = e
	at.prev = e
}

// InsertAt inserts e at position idx (clamped to [0, count]), maintaining
// the ring invariant and the cursor: any current index at or after idx
// shifts forward by one to keep pointing at the same logical entry (spec
// §4.5's prepend/append/move all reduce to this).
func (l *EntryList) InsertAt(idx int, e *Entry) {
	if idx < 0 {
		idx = 0
	}
	if idx > l.count {
		idx = l.count
	}

	switch {
	case l.head == nil:
		e.next = e
		e.prev = e
		l.head = e
	case idx == 0:
		linkBefore(l.head, e)
		l.head = e
	case idx == l.count:
		linkBefore(l.head, e) // before head == at the tail of the ring
	default:
		linkBefore(l.Nth(idx), e)
	}

	l.count++
	if l.current != nil && l.currentIndex >= idx {
		l.currentIndex++
	}
}

// Prepend inserts e at the head of l.
func (l *EntryList) Prepend(e *Entry) { l.InsertAt(0, e) }

// Append inserts e at the tail of l.
func (l *EntryList) Append(e *Entry) { l.InsertAt(l.count, e) }

// removeNode unlinks e from its ring, relinking its neighbours, and
// decrements count. Does not touch e.RefCount — the caller decides whether
// the entry is being discarded (unref) or relocated (kept detached for a
// subsequent insertion).
func (l *EntryList) removeNode(e *Entry) {
	if l.count == 1 {
		l.head = nil
	} else {
		prev, next := e.prev, e.next
		prev.next = next
		next.prev = prev
		if l.head == e {
			l.head = next
		}
	}
	e.prev, e.next = nil, nil
	l.count--
}

// RemoveAt removes and returns the entry at index idx, or nil if out of
// range. The cursor surfaces idx's removal per spec §4.5: if the removed
// entry was current, the cursor clears (the caller resolves "current_out");
// otherwise an index past the removal point shifts back by one.
func (l *EntryList) RemoveAt(idx int) *Entry {
	e := l.Nth(idx)
	if e == nil {
		return nil
	}
	l.removeNode(e)
	switch {
	case l.current == e:
		l.current = nil
		l.currentIndex = 0
	case l.currentIndex > idx:
		l.currentIndex--
	}
	return e
}

// Nth returns the entry at index i, traversing from whichever end is
// closer (spec §4.5).
func (l *EntryList) Nth(i int) *Entry {
	if l.head == nil || i < 0 || i >= l.count {
		return nil
	}
	if i == l.count-1 {
		return l.head.prev
	}
	if i <= l.count/2 {
		e := l.head
		for ; i > 0; i-- {
			e = e.next
		}
		return e
	}
	e := l.head.prev
	for j := l.count - 1; j > i; j-- {
		e = e.prev
	}
	return e
}

// GetIndex returns e's position within l, or -1 if not found. O(count).
func (l *EntryList) GetIndex(e *Entry) int {
	if l.head == nil {
		return -1
	}
	cur := l.head
	for i := 0; i < l.count; i++ {
		if cur == e {
			return i
		}
		cur = cur.next
	}
	return -1
}

// Clear unrefs every entry in l and empties it.
func (l *EntryList) Clear() {
	if l.head == nil {
		return
	}
	e := l.head
	for i := 0; i < l.count; i++ {
		next := e.next
		e.unref()
		e = next
	}
	l.head = nil
	l.count = 0
	l.current = nil
	l.currentIndex = 0
}

// setCursor sets the list's current entry/index pair directly.
func (l *EntryList) setCursor(e *Entry, idx int) {
	l.current = e
	l.currentIndex = idx
}
