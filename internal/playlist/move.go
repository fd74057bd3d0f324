package playlist

// Move relocates the entries named by r — a contiguous run or, when
// r.Paths is set, a non-linear multi-select (spec §4.5) — to sit before
// dest, threaded into the destination list in r's order. dest is resolved
// against the tree as it stands after the selection has been extracted, so
// it cannot name a position inside a moved entry's own subtree. If dest
// cannot be resolved, Move rolls the extracted entries back to their
// original positions and returns ErrMoveIntoSelf.
func (p *Playlist) Move(r Range, dest MediaIndex) error {
	p.mu.Lock()

	if len(r.Paths) > 0 {
		entries, _, removed, err := p.extractPathsLocked(r.Paths)
		if err != nil {
			p.mu.Unlock()
			return err
		}

		destList, destParent, destIdx, err := p.resolveListParent(dest.Indices)
		if err != nil {
			restorePathsLocked(removed)
			p.mu.Unlock()
			return ErrMoveIntoSelf
		}

		for i, e := range entries {
			destList.InsertAt(destIdx+i, e)
			e.Parent = destParent
			if destParent != nil && destParent.HasPlayer {
				e.applyInheritedPlayableFlag(true)
			}
		}

		p.mu.Unlock()
		p.broadcast(Event{Move: &EventMove{Range: r, Dest: dest}})
		return nil
	}

	srcList, _, entries, _, err := p.extractRangeLocked(r)
	if err != nil {
		p.mu.Unlock()
		return err
	}

	destList, destParent, destIdx, err := p.resolveListParent(dest.Indices)
	if err != nil {
		restoreRangeLocked(srcList, r.FirstIndices[len(r.FirstIndices)-1], entries)
		p.mu.Unlock()
		return ErrMoveIntoSelf
	}

	for i, e := range entries {
		destList.InsertAt(destIdx+i, e)
		e.Parent = destParent
		if destParent != nil && destParent.HasPlayer {
			e.applyInheritedPlayableFlag(true)
		}
	}

	p.mu.Unlock()
	p.broadcast(Event{Move: &EventMove{Range: r, Dest: dest}})
	return nil
}
