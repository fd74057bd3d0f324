package playlist

import "github.com/melo-audio/melod/internal/message"

// indexChain returns the ancestor (parent) index chain and e's own index at
// its level, by walking parents and calling GetIndex at each level.
func indexChain(e *Entry) (parentIndices []int, index int) {
	if e.Parent == nil {
		return nil, e.playlistBackRef.Entries.GetIndex(e)
	}
	pIndices, pIndex := indexChain(e.Parent)
	chain := make([]int, len(pIndices), len(pIndices)+1)
	copy(chain, pIndices)
	chain = append(chain, pIndex)
	return chain, e.Parent.Children.GetIndex(e)
}

// IndexChain returns e's root-to-leaf index chain, suitable for passing to
// Play. e must belong to this playlist.
func (p *Playlist) IndexChain(e *Entry) []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fullIndexChainLocked(e)
}

// describeLocked builds the wire form of e, including its full subtree.
// Must be called with p.mu held.
func (p *Playlist) describeLocked(e *Entry) WireMedia {
	parentIndices, index := indexChain(e)
	wm := WireMedia{
		ParentIndices: parentIndices,
		Index:         index,
		Name:          e.DisplayName,
		Playable:      e.Flags&FlagPlayable != 0,
		Sortable:      e.Flags&FlagSortable != 0,
		Tags:          e.Tags,
	}
	for c, i := e.Children.head, 0; c != nil && i < e.Children.count; c, i = c.next, i+1 {
		wm.Children = append(wm.Children, p.describeLocked(c))
	}
	return wm
}

func (p *Playlist) handleGetMediaList(req ReqGetMediaList, cb func(*message.Message)) {
	p.mu.Lock()
	var items []WireMedia
	e := p.Entries.head
	for n := 0; e != nil && n < p.Entries.count; n, e = n+1, e.next {
		if n < req.Offset {
			continue
		}
		if req.Count > 0 && len(items) >= req.Count {
			break
		}
		items = append(items, p.describeLocked(e))
	}
	total := p.Entries.count
	p.mu.Unlock()

	cb(message.New(message.KindPlaylistResponse, RespMediaList{Items: items, Count: total, Offset: req.Offset}))
}

func (p *Playlist) handleGetCurrent(cb func(*message.Message)) {
	p.mu.Lock()
	cur := p.deepestCurrentLocked()
	var wm WireMedia
	if cur != nil {
		wm = p.describeLocked(cur)
	}
	p.mu.Unlock()

	cb(message.New(message.KindPlaylistResponse, RespCurrent{Media: wm}))
}
