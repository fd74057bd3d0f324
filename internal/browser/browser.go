// Package browser translates generic Browser.Request traffic (spec's
// Browser/action glue) into playlist operations. The concrete content
// backends — radio directories, filesystem browsing, library search — are
// out of scope; this package only defines the Source trait they'd
// implement and the glue that turns a DoAction into playlist.AddMedia/Play.
package browser

import (
	"github.com/melo-audio/melod/internal/message"
	"github.com/melo-audio/melod/internal/playlist"
	"github.com/melo-audio/melod/internal/request"
	"github.com/melo-audio/melod/internal/tags"
)

// ItemType distinguishes a browsable folder from a playable item.
type ItemType int

const (
	TypeFolder ItemType = iota
	TypeMedia
)

// Item is one entry in a GetMediaList response.
type Item struct {
	ID        string
	Name      string
	Type      ItemType
	Favorite  bool
	Tags      tags.Tags
	ActionIDs []string
}

// ActionType is the DoAction verb.
type ActionType int

const (
	ActionPlay ActionType = iota
	ActionAdd
	ActionSetFavorite
	ActionUnsetFavorite
)

// ReqGetMediaList queries a content source for a page of items.
type ReqGetMediaList struct {
	Query  string
	Offset int
	Count  int
	Sort   []string
}

// ReqDoAction performs an action on a path item the backend previously
// listed.
type ReqDoAction struct {
	Path string
	Type ActionType
}

// RespMediaList mirrors spec §6's Browser.Response.MediaList.
type RespMediaList struct {
	Items      []Item
	ActionIDs  []string
	SortMenus  []string
	Count      int
	Offset     int
}

// RespError carries a failed request's message.
type RespError struct{ Text string }

// RespOK acknowledges a DoAction.
type RespOK struct{}

// Source is the trait a concrete content backend (radio/file/library —
// out of scope here) implements.
type Source interface {
	// GetMediaList returns a page of items matching query, plus the total
	// count available.
	GetMediaList(query string, offset, count int, sort []string) ([]Item, int, error)
	// Resolve turns a browsable path into the player/playlist data needed
	// to queue it: playerID, playback path, display name, tags.
	Resolve(path string) (playerID, playbackPath, name string, t tags.Tags, err error)
	SetFavorite(path string, favorite bool) error
}

// Glue binds one Source to the playlist it queues playback requests into.
type Glue struct {
	source   Source
	playlist *playlist.Playlist
}

// New creates a Glue translating requests against source into operations on
// pl.
func New(source Source, pl *playlist.Playlist) *Glue {
	return &Glue{source: source, playlist: pl}
}

// HandleRequest dispatches a Browser.Request, delivering its response via
// cb and completing r. Returns false if msg isn't a Browser request this
// Glue understands.
func (g *Glue) HandleRequest(r *request.Request, msg *message.Message, cb func(*message.Message)) bool {
	switch req := msg.Payload.(type) {
	case ReqGetMediaList:
		g.handleGetMediaList(req, cb)
	case ReqDoAction:
		g.handleDoAction(req, cb)
	default:
		return false
	}
	r.Complete()
	return true
}

func (g *Glue) handleGetMediaList(req ReqGetMediaList, cb func(*message.Message)) {
	items, total, err := g.source.GetMediaList(req.Query, req.Offset, req.Count, req.Sort)
	if err != nil {
		cb(message.New(message.KindBrowserResponse, RespError{Text: err.Error()}))
		return
	}
	cb(message.New(message.KindBrowserResponse, RespMediaList{Items: items, Count: total, Offset: req.Offset}))
}

func (g *Glue) handleDoAction(req ReqDoAction, cb func(*message.Message)) {
	var err error
	switch req.Type {
	case ActionPlay, ActionAdd:
		var playerID, path, name string
		var t tags.Tags
		playerID, path, name, t, err = g.source.Resolve(req.Path)
		if err == nil {
			entry := g.playlist.AddMedia(nil, playerID, path, name, t)
			if req.Type == ActionPlay {
				err = g.playlist.Play(g.playlist.IndexChain(entry))
			}
		}
	case ActionSetFavorite:
		err = g.source.SetFavorite(req.Path, true)
	case ActionUnsetFavorite:
		err = g.source.SetFavorite(req.Path, false)
	}

	if err != nil {
		cb(message.New(message.KindBrowserResponse, RespError{Text: err.Error()}))
		return
	}
	cb(message.New(message.KindBrowserResponse, RespOK{}))
}
