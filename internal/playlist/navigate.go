package playlist

// Play sets the cursor chain to the entry named by indices (root to leaf)
// and starts it playing through the wired PlayerSink (spec §4.5).
func (p *Playlist) Play(indices []int) error {
	p.mu.Lock()
	if len(indices) == 0 {
		p.mu.Unlock()
		return ErrNotFound
	}

	list := &p.Entries
	var target *Entry
	for _, idx := range indices {
		e := list.Nth(idx)
		if e == nil {
			p.mu.Unlock()
			return ErrNotFound
		}
		list.setCursor(e, idx)
		target = e
		list = &e.Children
	}

	if target.Flags&FlagPlayable == 0 {
		p.mu.Unlock()
		return ErrNotPlayable
	}
	if p.player == nil {
		p.mu.Unlock()
		return ErrNoPlayerSink
	}
	playerID, path, name, t := target.PlayerID, target.Path, target.DisplayName, target.Tags
	p.mu.Unlock()

	if err := p.player.PlayMedia(playerID, path, name, t, target); err != nil {
		return err
	}
	p.broadcast(Event{Play: &EventPlay{MediaIndex: MediaIndex{Indices: indices}}})
	return nil
}

// descendToLastLeaf walks into e's children, repeatedly choosing the last
// (tail) child, until reaching an entry with no children (spec §4.5
// Navigation step 1: "walk to the last child, deepest leaf at the tail").
func descendToLastLeaf(e *Entry) *Entry {
	for e != nil && e.Children.Len() > 0 {
		e = e.Children.Nth(e.Children.Len() - 1)
	}
	return e
}

// fullIndexChainLocked returns e's root-to-leaf index chain. Called with
// p.mu held.
func fullIndexChainLocked(e *Entry) []int {
	parents, idx := indexChain(e)
	return append(parents, idx)
}

// cursorLevel pairs an EntryList with its current entry, one per level of
// the hierarchical cursor chain.
type cursorLevel struct {
	list  *EntryList
	entry *Entry
}

// cursorLevelsLocked returns the current cursor chain as (list, entry)
// pairs, root first and deepest last. Called with p.mu held.
func (p *Playlist) cursorLevelsLocked() []cursorLevel {
	var levels []cursorLevel
	list := &p.Entries
	for list.Current() != nil {
		e := list.Current()
		levels = append(levels, cursorLevel{list: list, entry: e})
		list = &e.Children
	}
	return levels
}

// clearLevelsLocked resets the cursor to null at every level in levels.
func clearLevelsLocked(levels []cursorLevel) {
	for _, lvl := range levels {
		lvl.list.current = nil
		lvl.list.currentIndex = 0
	}
}

// clearCursorChainLocked clears the cursor at entry's own level and every
// ancestor level up to the root, used when a deletion has invalidated the
// chain below some level (spec §4.5 Delete: "reset the cursor to null at
// every level"). entry may be nil (root list already handled by the
// caller).
func (p *Playlist) clearCursorChainLocked(entry *Entry) {
	for e := entry; e != nil; e = e.Parent {
		list := p.listFor(e.Parent)
		if list.current == e {
			list.current = nil
			list.currentIndex = 0
		}
	}
}

// PlayNext advances to the next playable entry and plays it, implementing
// player.PlaylistController for the wired registry. Spec §4.5: because the
// playlist displays most-recently-added first, the media that plays next
// is the current entry's *previous* sibling — a deliberate naming
// inversion in the source this spec is drawn from.
func (p *Playlist) PlayNext() error {
	return p.playNeighbor(-1)
}

// PlayPrevious moves to the preceding playable entry and plays it,
// following each level's *next* sibling (the inverse of PlayNext, per
// spec §4.5).
func (p *Playlist) PlayPrevious() error {
	return p.playNeighbor(1)
}

// playNeighbor walks the cursor level by level, from the deepest entry up
// to the root, following each level's prev sibling (dir < 0) or next
// sibling (dir > 0). The first level with a distinct sibling whose
// deepest-last-child descendant is playable wins; a level with no
// distinct sibling (a singleton list) is skipped by ascending to its
// parent. If every level is exhausted without finding a playable entry,
// the cursor resets to empty and playback stops — reported as success
// only when the search began at the first-or-last position of the root
// list (spec §4.5 Navigation step 2), otherwise as ErrNotFound.
func (p *Playlist) playNeighbor(dir int) error {
	p.mu.Lock()
	levels := p.cursorLevelsLocked()
	if len(levels) == 0 {
		p.mu.Unlock()
		return ErrNotFound
	}

	for i := len(levels) - 1; i >= 0; i-- {
		lvl := levels[i]
		var sib *Entry
		if dir < 0 {
			sib = lvl.entry.prev
		} else {
			sib = lvl.entry.next
		}
		if sib == lvl.entry {
			continue // singleton at this level: ascend to the parent
		}

		leaf := descendToLastLeaf(sib)
		if leaf != nil && leaf.Flags&FlagPlayable != 0 {
			chain := fullIndexChainLocked(leaf)
			p.mu.Unlock()
			return p.Play(chain)
		}
		// sib's subtree has no playable leaf; keep ascending.
	}

	root := levels[0].list
	atBoundary := root.CurrentIndex() == 0 || root.CurrentIndex() == root.Len()-1
	clearLevelsLocked(levels)
	player := p.player
	p.mu.Unlock()

	if !atBoundary {
		return ErrNotFound
	}
	if player != nil {
		_ = player.ResetCurrent()
	}
	return nil
}
