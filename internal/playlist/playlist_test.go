package playlist_test

import (
	"testing"

	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/playlist"
	"github.com/melo-audio/melod/internal/tags"
)

type fakeSink struct {
	plays  []string
	err    error
	resets int
}

func (f *fakeSink) PlayMedia(playerID, path, name string, t tags.Tags, entryRef any) error {
	if f.err != nil {
		return f.err
	}
	f.plays = append(f.plays, path)
	return nil
}

func (f *fakeSink) ResetCurrent() error {
	f.resets++
	return nil
}

func newTestPlaylist() (*playlist.Playlist, *fakeSink) {
	sink := &fakeSink{}
	p := playlist.New("test", eventbus.New(), sink)
	return p, sink
}

func TestAddAndPlayMedia(t *testing.T) {
	p, sink := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{Title: "A"})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{Title: "B"})

	// AddMedia prepends: root list is [B(0), A(1)].
	if err := p.Play([]int{0}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(sink.plays) != 1 || sink.plays[0] != "/b.mp3" {
		t.Fatalf("expected /b.mp3 to play, got %v", sink.plays)
	}

	cur := p.GetCurrent()
	if cur == nil || cur.DisplayName != "B" {
		t.Fatalf("expected current entry B, got %+v", cur)
	}

	if err := p.Play([]int{1}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if cur := p.GetCurrent(); cur == nil || cur.DisplayName != "A" {
		t.Fatalf("expected current entry A, got %+v", cur)
	}
}

func TestPlayNextPrevious(t *testing.T) {
	p, sink := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{})
	p.AddMedia(nil, "p1", "/c.mp3", "C", tags.Tags{})
	// AddMedia prepends: root list is [C(0), B(1), A(2)].

	if err := p.Play([]int{0}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if cur := p.GetCurrent(); cur == nil || cur.DisplayName != "C" {
		t.Fatalf("expected current entry C, got %+v", cur)
	}

	// PlayNext follows the prev sibling, which wraps: C -> A -> B -> C.
	for _, want := range []string{"/a.mp3", "/b.mp3", "/c.mp3"} {
		if err := p.PlayNext(); err != nil {
			t.Fatalf("PlayNext: %v", err)
		}
		if got := sink.plays[len(sink.plays)-1]; got != want {
			t.Fatalf("expected PlayNext to land on %s, got %s", want, got)
		}
	}

	// PlayPrevious follows the next sibling, undoing the last step: C -> B.
	if err := p.PlayPrevious(); err != nil {
		t.Fatalf("PlayPrevious: %v", err)
	}
	if got := sink.plays[len(sink.plays)-1]; got != "/b.mp3" {
		t.Fatalf("expected previous to land on /b.mp3, got %s", got)
	}
}

func TestDeleteRange(t *testing.T) {
	p, _ := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{})
	p.AddMedia(nil, "p1", "/c.mp3", "C", tags.Tags{})

	// AddMedia prepends: root list is [C(0), B(1), A(2)].
	if err := p.Delete(playlist.Range{FirstIndices: []int{1}, Length: 1}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := p.Play([]int{1}); err != nil {
		t.Fatalf("Play after delete: %v", err)
	}
	if cur := p.GetCurrent(); cur == nil || cur.DisplayName != "A" {
		t.Fatalf("expected A to have shifted into index 1, got %+v", cur)
	}
}

func TestDeleteResetsCursor(t *testing.T) {
	p, sink := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{})
	// root list is [B(0), A(1)].

	if err := p.Play([]int{0}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := p.Delete(playlist.Range{FirstIndices: []int{0}, Length: 1}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cur := p.GetCurrent(); cur != nil {
		t.Fatalf("expected cursor cleared after deleting the current entry, got %+v", cur)
	}
	if sink.resets != 1 {
		t.Fatalf("expected ResetCurrent to be called once, got %d", sink.resets)
	}
}

func TestDeleteNonLinear(t *testing.T) {
	p, _ := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{})
	p.AddMedia(nil, "p1", "/c.mp3", "C", tags.Tags{})
	p.AddMedia(nil, "p1", "/d.mp3", "D", tags.Tags{})
	// AddMedia prepends: root list is [D(0), C(1), B(2), A(3)].

	if err := p.Delete(playlist.Range{Paths: [][]int{{0}, {2}}}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// D and B removed, leaving [C(0), A(1)].
	if err := p.Play([]int{0}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if cur := p.GetCurrent(); cur == nil || cur.DisplayName != "C" {
		t.Fatalf("expected C at index 0, got %+v", cur)
	}
	if err := p.Play([]int{1}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if cur := p.GetCurrent(); cur == nil || cur.DisplayName != "A" {
		t.Fatalf("expected A at index 1, got %+v", cur)
	}
}

func TestMoveNonLinear(t *testing.T) {
	p, _ := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{})
	p.AddMedia(nil, "p1", "/c.mp3", "C", tags.Tags{})
	// root list is [C(0), B(1), A(2)].

	// Select C and A (indices 0 and 2) and move them before B, which is at
	// index 0 once they are extracted — the threaded sublist preserves the
	// selection order C, A.
	if err := p.Move(playlist.Range{Paths: [][]int{{0}, {2}}}, playlist.MediaIndex{Indices: []int{0}}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	for i, want := range []string{"C", "A", "B"} {
		if err := p.Play([]int{i}); err != nil {
			t.Fatalf("Play(%d): %v", i, err)
		}
		if cur := p.GetCurrent(); cur == nil || cur.DisplayName != want {
			t.Fatalf("expected %s at index %d, got %+v", want, i, cur)
		}
	}
}

func TestMoveRange(t *testing.T) {
	p, _ := newTestPlaylist()
	p.AddMedia(nil, "p1", "/a.mp3", "A", tags.Tags{})
	p.AddMedia(nil, "p1", "/b.mp3", "B", tags.Tags{})
	p.AddMedia(nil, "p1", "/c.mp3", "C", tags.Tags{})

	if err := p.Move(playlist.Range{FirstIndices: []int{0}, Length: 1}, playlist.MediaIndex{Indices: []int{2}}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := p.Play([]int{1}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if cur := p.GetCurrent(); cur == nil || cur.DisplayName != "A" {
		t.Fatalf("expected A moved to index 1, got %+v", cur)
	}
}

func TestShuffleRoundTrip(t *testing.T) {
	p, _ := newTestPlaylist()
	names := []string{"A", "B", "C", "D", "E"}
	for _, n := range names {
		p.AddMedia(nil, "p1", "/"+n, n, tags.Tags{})
	}

	if err := p.EnableShuffle(); err != nil {
		t.Fatalf("EnableShuffle: %v", err)
	}
	if err := p.EnableShuffle(); err != playlist.ErrShuffleActive {
		t.Fatalf("expected ErrShuffleActive, got %v", err)
	}

	// Add and delete while shuffled to exercise the restore edge cases.
	// AddMedia prepends, so F sits at index 0; delete the shuffled entry
	// right after it.
	p.AddMedia(nil, "p1", "/F", "F", tags.Tags{})
	if err := p.Delete(playlist.Range{FirstIndices: []int{1}, Length: 1}); err != nil {
		t.Fatalf("Delete during shuffle: %v", err)
	}

	if err := p.DisableShuffle(); err != nil {
		t.Fatalf("DisableShuffle: %v", err)
	}
	if err := p.DisableShuffle(); err != playlist.ErrShuffleOff {
		t.Fatalf("expected ErrShuffleOff, got %v", err)
	}

	var got []string
	for i := 0; ; i++ {
		if err := p.Play([]int{i}); err != nil {
			break
		}
		got = append(got, p.GetCurrent().DisplayName)
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 surviving entries (one deleted), got %v", got)
	}
	if got[0] != "F" {
		t.Fatalf("expected shuffle-added entry F restored at the front, got %v", got)
	}
}
