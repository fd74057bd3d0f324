package playlist

// resolveListParent walks indices[:len-1] as a chain of child positions
// starting at the root, returning the EntryList the final index names a
// sibling in, that list's owning Entry (nil for the root list), and the
// trailing index. Called with p.mu held.
func (p *Playlist) resolveListParent(indices []int) (*EntryList, *Entry, int, error) {
	if len(indices) == 0 {
		return nil, nil, 0, ErrNotFound
	}
	list := &p.Entries
	var parent *Entry
	for _, idx := range indices[:len(indices)-1] {
		e := list.Nth(idx)
		if e == nil {
			return nil, nil, 0, ErrNotFound
		}
		parent = e
		list = &e.Children
	}
	return list, parent, indices[len(indices)-1], nil
}

// resolveList is resolveListParent without the owning-entry result.
func (p *Playlist) resolveList(indices []int) (*EntryList, int, error) {
	list, _, idx, err := p.resolveListParent(indices)
	return list, idx, err
}

// resolveEntry returns the entry named by a full root-to-leaf index chain.
// Called with p.mu held.
func (p *Playlist) resolveEntry(indices []int) (*Entry, error) {
	list, idx, err := p.resolveList(indices)
	if err != nil {
		return nil, err
	}
	e := list.Nth(idx)
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}
