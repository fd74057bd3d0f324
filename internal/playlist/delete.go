package playlist

// Delete removes the entries named by r (linear or non-linear, spec §4.5)
// from the tree and unreferences them. While a shuffle backup is active,
// deleted entries are additionally flagged ShuffleDeleted so
// DisableShuffle's restore pass skips them instead of resurrecting them.
// If the cursor fell inside the deleted selection, it is reset to null at
// every level up to the root and the current player is instructed to
// reset (spec §4.5 Delete).
func (p *Playlist) Delete(r Range) error {
	p.mu.Lock()

	var entries []*Entry
	var cursorParents []*Entry
	if len(r.Paths) > 0 {
		es, parents, _, err := p.extractPathsLocked(r.Paths)
		if err != nil {
			p.mu.Unlock()
			return err
		}
		entries, cursorParents = es, parents
	} else {
		_, parent, es, hit, err := p.extractRangeLocked(r)
		if err != nil {
			p.mu.Unlock()
			return err
		}
		entries = es
		if hit {
			cursorParents = []*Entry{parent}
		}
	}

	for _, e := range entries {
		if p.backup != nil {
			e.Flags |= FlagShuffleDeleted
		}
		e.unref()
	}
	for _, parent := range cursorParents {
		p.clearCursorChainLocked(parent)
	}
	cursorHit := len(cursorParents) > 0
	player := p.player
	p.mu.Unlock()

	if cursorHit && player != nil {
		_ = player.ResetCurrent()
	}

	p.broadcast(Event{Delete: &EventDelete{Range: r}})
	return nil
}
