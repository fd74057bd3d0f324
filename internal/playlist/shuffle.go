package playlist

// shuffleBackup snapshots the root list's original order before shuffling
// so DisableShuffle can restore it (spec §4.5). Each entry in order is held
// with an extra ref for the lifetime of the backup.
type shuffleBackup struct {
	order []*Entry
}

// EnableShuffle randomizes the root list's playback order, preserving the
// original order in a backup for DisableShuffle. Entries added to the root
// while shuffle is active are tagged ShuffleAdded by AddMedia and are placed
// first by DisableShuffle, ahead of the restored backup order.
func (p *Playlist) EnableShuffle() error {
	p.mu.Lock()
	if p.backup != nil {
		p.mu.Unlock()
		return ErrShuffleActive
	}

	n := p.Entries.Len()
	order := make([]*Entry, n)
	for e, i := p.Entries.Head(), 0; i < n; e, i = e.next, i+1 {
		order[i] = e
		e.ref()
	}
	p.backup = &shuffleBackup{order: order}

	for p.Entries.Len() > 0 {
		p.Entries.RemoveAt(0)
	}

	shuffled := append([]*Entry(nil), order...)
	p.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	for _, e := range shuffled {
		e.Flags |= FlagShuffleInserted
		p.Entries.Append(e)
	}

	p.mu.Unlock()
	p.broadcast(Event{Shuffle: &EventShuffle{Enabled: true}})
	return nil
}

// DisableShuffle rebuilds the root list: entries added while shuffle was
// active come first, in live order, followed by the pre-shuffle backup
// order with any entries deleted while shuffle was active dropped
// (spec §4.5).
func (p *Playlist) DisableShuffle() error {
	p.mu.Lock()
	if p.backup == nil {
		p.mu.Unlock()
		return ErrShuffleOff
	}

	added := make([]*Entry, 0)
	for e, i, n := p.Entries.Head(), 0, p.Entries.Len(); i < n; i++ {
		next := e.next
		if e.Flags&FlagShuffleAdded != 0 {
			added = append(added, e)
		}
		e = next
	}

	for p.Entries.Len() > 0 {
		p.Entries.RemoveAt(0)
	}

	for _, e := range added {
		e.Flags &^= FlagShuffleInserted | FlagShuffleAdded
		p.Entries.Append(e)
	}
	for _, e := range p.backup.order {
		if e.Flags&FlagShuffleDeleted != 0 {
			e.Flags &^= FlagShuffleInserted | FlagShuffleDeleted | FlagShuffleAdded
			e.unref()
			continue
		}
		e.Flags &^= FlagShuffleInserted | FlagShuffleAdded
		e.unref() // drop the backup's hold ref
		p.Entries.Append(e)
	}

	p.backup = nil
	p.mu.Unlock()
	p.broadcast(Event{Shuffle: &EventShuffle{Enabled: false}})
	return nil
}
