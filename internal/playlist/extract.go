package playlist

// extractRangeLocked removes r.Length consecutive siblings starting at
// r.FirstIndices from the tree, without touching RefCount — the caller
// decides whether the entries are discarded, relocated, or staged in a
// shuffle backup. Also reports the list's owning entry (nil for the root
// list) and whether the list's cursor fell inside the removed range, so
// callers that must invalidate the cursor chain (Delete) know to act.
// Called with p.mu held.
func (p *Playlist) extractRangeLocked(r Range) (list *EntryList, parent *Entry, entries []*Entry, cursorHit bool, err error) {
	if r.Length <= 0 {
		return nil, nil, nil, false, ErrEmptyRange
	}
	list, parent, start, err := p.resolveListParent(r.FirstIndices)
	if err != nil {
		return nil, nil, nil, false, err
	}
	if start < 0 || start+r.Length > list.Len() {
		return nil, nil, nil, false, ErrRangeOverflow
	}

	cursorHit = list.current != nil && list.currentIndex >= start && list.currentIndex < start+r.Length

	entries = make([]*Entry, 0, r.Length)
	for i := 0; i < r.Length; i++ {
		entries = append(entries, list.RemoveAt(start))
	}
	return list, parent, entries, cursorHit, nil
}

// restoreRangeLocked reinserts entries (in order) at r.FirstIndices's
// trailing index within the list they were extracted from — used to
// roll back a failed Move before returning its error.
func restoreRangeLocked(list *EntryList, start int, entries []*Entry) {
	for i, e := range entries {
		list.InsertAt(start+i, e)
	}
}

// removedEntry records where a non-linearly extracted entry came from, so
// a failed Move can restore it to its exact original position.
type removedEntry struct {
	list  *EntryList
	idx   int
	entry *Entry
}

// extractPathsLocked removes one entry per path in paths — possibly at
// different parents and levels — preserving paths' input order in the
// returned slice: the "Non-linear range" case of spec §4.5 ("for each
// index path in the list, extract one entry... thread extracted entries
// into a single sublist, preserving input order"). Duplicate paths naming
// the same entry are collapsed to their first occurrence. Also reports the
// owning parent (nil for the root list) of every list whose cursor pointed
// at a removed entry, for the caller to invalidate (spec §4.5 Delete).
// Called with p.mu held.
func (p *Playlist) extractPathsLocked(paths [][]int) (entries []*Entry, cursorParents []*Entry, removed []removedEntry, err error) {
	type target struct {
		list  *EntryList
		entry *Entry
	}
	targets := make([]target, 0, len(paths))
	seen := make(map[*Entry]bool)
	for _, path := range paths {
		list, _, idx, err := p.resolveListParent(path)
		if err != nil {
			return nil, nil, nil, err
		}
		e := list.Nth(idx)
		if e == nil {
			return nil, nil, nil, ErrNotFound
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		targets = append(targets, target{list: list, entry: e})
	}

	entries = make([]*Entry, 0, len(targets))
	removed = make([]removedEntry, 0, len(targets))
	for _, t := range targets {
		if t.list.current == t.entry {
			cursorParents = append(cursorParents, t.entry.Parent)
		}
		idx := t.list.GetIndex(t.entry)
		t.list.RemoveAt(idx)
		entries = append(entries, t.entry)
		removed = append(removed, removedEntry{list: t.list, idx: idx, entry: t.entry})
	}
	return entries, cursorParents, removed, nil
}

// restorePathsLocked reinserts entries at the positions recorded in
// removed, in reverse extraction order so an earlier index in a list
// shared by two removals isn't shifted by reinserting the later one first.
func restorePathsLocked(removed []removedEntry) {
	for i := len(removed) - 1; i >= 0; i-- {
		r := removed[i]
		r.list.InsertAt(r.idx, r.entry)
	}
}
