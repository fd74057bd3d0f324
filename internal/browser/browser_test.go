package browser_test

import (
	"errors"
	"testing"

	"github.com/melo-audio/melod/internal/browser"
	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/message"
	"github.com/melo-audio/melod/internal/playlist"
	"github.com/melo-audio/melod/internal/request"
	"github.com/melo-audio/melod/internal/tags"
)

type fakeSource struct {
	items     []browser.Item
	favorites map[string]bool
}

func (f *fakeSource) GetMediaList(query string, offset, count int, sort []string) ([]browser.Item, int, error) {
	return f.items, len(f.items), nil
}

func (f *fakeSource) Resolve(path string) (string, string, string, tags.Tags, error) {
	if path == "" {
		return "", "", "", tags.Tags{}, errors.New("empty path")
	}
	return "p1", path, "Resolved " + path, tags.Tags{Title: path}, nil
}

func (f *fakeSource) SetFavorite(path string, favorite bool) error {
	if f.favorites == nil {
		f.favorites = make(map[string]bool)
	}
	f.favorites[path] = favorite
	return nil
}

type fakeSink struct{ plays []string }

func (s *fakeSink) PlayMedia(playerID, path, name string, t tags.Tags, entryRef any) error {
	s.plays = append(s.plays, path)
	return nil
}

func (s *fakeSink) ResetCurrent() error { return nil }

func TestHandleDoActionPlay(t *testing.T) {
	sink := &fakeSink{}
	pl := playlist.New("test", eventbus.New(), sink)
	source := &fakeSource{}
	g := browser.New(source, pl)

	var resp *message.Message
	// Complete() ends the request with a nil message; keep the last real one.
	req := request.New(nil, func(msg *message.Message) bool {
		if msg != nil {
			resp = msg
		}
		return true
	})

	ok := g.HandleRequest(req, message.New(message.KindBrowserRequest, browser.ReqDoAction{Path: "/station/1", Type: browser.ActionPlay}), func(m *message.Message) { resp = m })
	if !ok {
		t.Fatal("expected HandleRequest to recognize ReqDoAction")
	}
	if _, ok := resp.Payload.(browser.RespOK); !ok {
		t.Fatalf("expected RespOK, got %+v", resp.Payload)
	}
	if len(sink.plays) != 1 || sink.plays[0] != "/station/1" {
		t.Fatalf("expected playback of /station/1, got %v", sink.plays)
	}
}

func TestHandleDoActionFavorite(t *testing.T) {
	sink := &fakeSink{}
	pl := playlist.New("test", eventbus.New(), sink)
	source := &fakeSource{}
	g := browser.New(source, pl)

	var resp *message.Message
	req := request.New(nil, func(msg *message.Message) bool { return true })
	g.HandleRequest(req, message.New(message.KindBrowserRequest, browser.ReqDoAction{Path: "/a", Type: browser.ActionSetFavorite}), func(m *message.Message) { resp = m })

	if _, ok := resp.Payload.(browser.RespOK); !ok {
		t.Fatalf("expected RespOK, got %+v", resp.Payload)
	}
	if !source.favorites["/a"] {
		t.Fatal("expected /a marked favorite")
	}
}
