package settings

import "github.com/melo-audio/melod/internal/message"

// WireEntry is the tagged-value representation of one Entry on the wire
// (spec §6: "an entry carries a tagged value").
type WireEntry struct {
	ID    string
	Type  Type
	Value Value
}

// WireGroup is the wire representation of a Group's current entries.
type WireGroup struct {
	ID      string
	Name    string
	Entries []WireEntry
}

// GetGroupList requests every group (GroupID == "") or a single one.
type GetGroupList struct {
	GroupID string
}

// SetGroup stages new values for some or all of a group's entries and, if
// the group's validator accepts them, commits and persists.
type SetGroup struct {
	Group WireGroup
}

// GroupListResponse carries the groups requested by GetGroupList.
type GroupListResponse struct {
	Groups []WireGroup
}

// ErrorResponse carries a human-readable rejection reason (spec §7:
// ValidationRejected).
type ErrorResponse struct {
	Text string
}

// toWire renders a Group as its exported wire form: NoExport entries are
// dropped, Password entries have their string blanked.
func toWire(g *Group) WireGroup {
	wg := WireGroup{ID: g.ID, Name: g.Name}
	for _, e := range g.entries {
		if e.Flags&FlagNoExport != 0 {
			continue
		}
		v := e.current
		if e.Flags&FlagPassword != 0 && e.Type == TypeString {
			v = stringValue("")
		}
		wg.Entries = append(wg.Entries, WireEntry{ID: e.ID, Type: e.Type, Value: v})
	}
	return wg
}

// HandleRequest unpacks msg as a Settings.Request and dispatches it,
// delivering the response(s) through cb. Returns false if msg does not carry
// a recognized settings request.
func (s *Store) HandleRequest(msg *message.Message, cb func(*message.Message)) bool {
	switch req := msg.Payload.(type) {
	case GetGroupList:
		return s.handleGetGroupList(req, cb)
	case SetGroup:
		return s.handleSetGroup(req, cb)
	default:
		return false
	}
}

func (s *Store) handleGetGroupList(req GetGroupList, cb func(*message.Message)) bool {
	s.mu.Lock()
	var wire []WireGroup
	if req.GroupID == "" {
		for _, g := range s.groups {
			wire = append(wire, toWire(g))
		}
	} else {
		for _, g := range s.groups {
			if g.ID == req.GroupID {
				wire = append(wire, toWire(g))
				break
			}
		}
	}
	s.mu.Unlock()

	cb(message.New(message.KindSettingsResponse, GroupListResponse{Groups: wire}))
	return true
}

func (s *Store) handleSetGroup(req SetGroup, cb func(*message.Message)) bool {
	s.mu.Lock()

	var g *Group
	for _, candidate := range s.groups {
		if candidate.ID == req.Group.ID {
			g = candidate
			break
		}
	}
	if g == nil {
		s.mu.Unlock()
		return false
	}

	type staged struct {
		e   *Entry
		prev Value
	}
	var touched []staged

	rollback := func() {
		for _, st := range touched {
			st.e.pending = st.prev
		}
	}

	for _, we := range req.Group.Entries {
		e := g.Entry(we.ID)
		if e == nil {
			continue
		}
		if e.Flags&FlagReadOnly != 0 {
			rollback()
			s.mu.Unlock()
			cb(message.New(message.KindSettingsResponse, ErrorResponse{Text: "entry " + we.ID + " is read-only"}))
			return true
		}
		if we.Value.Type != e.Type {
			rollback()
			s.mu.Unlock()
			cb(message.New(message.KindSettingsResponse, ErrorResponse{Text: "entry " + we.ID + " type mismatch"}))
			return true
		}
		touched = append(touched, staged{e: e, prev: e.pending})
		e.pending = we.Value
	}

	if g.Validator != nil {
		if ok, errMsg := g.Validator(g); !ok {
			rollback()
			s.mu.Unlock()
			if errMsg == "" {
				errMsg = "validation rejected"
			}
			cb(message.New(message.KindSettingsResponse, ErrorResponse{Text: errMsg}))
			return true
		}
	}

	for _, e := range g.entries {
		e.current = e.pending
	}

	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		cb(message.New(message.KindSettingsResponse, ErrorResponse{Text: err.Error()}))
		return true
	}

	s.mu.Lock()
	wire := toWire(g)
	s.mu.Unlock()
	cb(message.New(message.KindSettingsResponse, GroupListResponse{Groups: []WireGroup{wire}}))
	return true
}
