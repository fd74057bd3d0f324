package player

import (
	"log/slog"
	"sync"
	"time"

	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/message"
	"github.com/melo-audio/melod/internal/settings"
	"github.com/melo-audio/melod/internal/tags"
)

// volumeSaveDelay is the coalescing window for persisting volume changes
// (spec §4.4: "a delayed save (10-second coalescing timer)").
const volumeSaveDelay = 10 * time.Second

// PlaylistController is the subset of the playlist engine the registry needs
// to satisfy PlayPrevious/PlayNext client requests and end-of-stream
// handling, without importing the playlist package (which itself depends on
// Registry through the PlayerSink interface below — this pairing is how the
// two packages cooperate without a cycle, per spec §2's dependency order).
type PlaylistController interface {
	PlayNext() error
	PlayPrevious() error
}

// Registry is the process-wide player table and current-player arbiter.
type Registry struct {
	mu       sync.RWMutex
	players  map[string]*Entity
	currentID string

	bus *eventbus.Bus

	playlist PlaylistController

	globalVolume float64
	globalMute   bool
	volumeEntry  *settings.Entry

	saveMu    sync.Mutex
	saveTimer *time.Timer
}

// NewRegistry creates an empty registry broadcasting through bus.
// volumeEntry, if non-nil, receives persisted volume changes (spec §4.4).
func NewRegistry(bus *eventbus.Bus, volumeEntry *settings.Entry) *Registry {
	return &Registry{
		players:     make(map[string]*Entity),
		bus:         bus,
		volumeEntry: volumeEntry,
	}
}

// SetPlaylistController wires the current-playlist delegate used by EOS
// handling and PlayPrevious/PlayNext requests.
func (r *Registry) SetPlaylistController(pc PlaylistController) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlist = pc
}

// Register inserts player into the global table, broadcasting player.add.
// A duplicate id is rejected with a logged warning (spec §4.4).
func (r *Registry) Register(p *Entity) bool {
	r.mu.Lock()
	if _, exists := r.players[p.ID]; exists {
		r.mu.Unlock()
		slog.Warn("player: duplicate registration rejected", "id", p.ID)
		return false
	}
	r.players[p.ID] = p
	r.mu.Unlock()

	r.broadcast(Event{Add: &EventAdd{Descriptor: p.Descriptor}})
	return true
}

// Unregister removes a player, broadcasting player.remove. If it was the
// current player, current is cleared.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.players, id)
	if r.currentID == id {
		r.currentID = ""
	}
	r.mu.Unlock()

	r.broadcast(Event{Remove: &EventRemove{Descriptor: p.Descriptor}})
	return true
}

// Get returns a registered player by id, or nil.
func (r *Registry) Get(id string) *Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players[id]
}

// Current returns the current player, or nil if none is set.
func (r *Registry) Current() *Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.currentID == "" {
		return nil
	}
	return r.players[r.currentID]
}

// CurrentID returns the current player's id, or "".
func (r *Registry) CurrentID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentID
}

// IDs returns every registered player's id, in no particular order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) broadcast(ev Event) {
	r.bus.Broadcast(message.New(message.KindPlayerEvent, ev))
}

// --- Status update operations (protected: called by player implementations) ---

// UpdateMedia sets the media name and merges tags, then broadcasts media.
func (r *Registry) UpdateMedia(id, name string, t tags.Tags, skip tags.SkipFlag) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	p.mediaName = name
	p.tags = tags.Merge(p.tags, t, skip)
	merged := p.tags
	r.mu.Unlock()

	r.broadcast(Event{Media: &EventMedia{Name: name, Tags: merged}})
}

// UpdateTags merges new tag values without changing the media name.
func (r *Registry) UpdateTags(id string, t tags.Tags, skip tags.SkipFlag) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	p.tags = tags.Merge(p.tags, t, skip)
	name := p.mediaName
	merged := p.tags
	r.mu.Unlock()

	r.broadcast(Event{Media: &EventMedia{Name: name, Tags: merged}})
}

// UpdateStatus sets state, stream state and percent, then broadcasts status.
func (r *Registry) UpdateStatus(id string, state State, streamState StreamState, percent int) {
	percent = clampPercent(streamState, percent)

	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	exitingBuffering := p.streamState == StreamBuffering && streamState != StreamBuffering
	p.state = state
	p.streamState = streamState
	p.percent = percent
	r.mu.Unlock()

	r.broadcast(Event{Status: &EventStatus{State: state, StreamState: streamState, Value: percent}})

	if exitingBuffering {
		r.requeryPosition(id)
	}
}

// UpdateState sets only the coarse playback state.
func (r *Registry) UpdateState(id string, state State) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	p.state = state
	streamState, percent := p.streamState, p.percent
	r.mu.Unlock()

	r.broadcast(Event{Status: &EventStatus{State: state, StreamState: streamState, Value: percent}})
}

// UpdateStreamState sets buffering progress; percent is clamped to 0..100
// and forced to 0 when streamState is None. Exiting Buffering re-queries
// position (spec §4.4).
func (r *Registry) UpdateStreamState(id string, streamState StreamState, percent int) {
	percent = clampPercent(streamState, percent)

	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	exitingBuffering := p.streamState == StreamBuffering && streamState != StreamBuffering
	p.streamState = streamState
	p.percent = percent
	state := p.state
	r.mu.Unlock()

	r.broadcast(Event{Status: &EventStatus{State: state, StreamState: streamState, Value: percent}})

	if exitingBuffering {
		r.requeryPosition(id)
	}
}

func clampPercent(streamState StreamState, percent int) int {
	if streamState == StreamNone {
		return 0
	}
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func (r *Registry) requeryPosition(id string) {
	p := r.Get(id)
	if p == nil || p.driver == nil {
		return
	}
	pos, err := p.driver.GetPosition()
	if err != nil {
		return
	}
	r.UpdatePosition(id, pos)
}

// UpdatePosition records a new playback position and broadcasts it.
func (r *Registry) UpdatePosition(id string, ms int64) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	p.positionMs = ms
	duration := p.durationMs
	r.mu.Unlock()

	r.broadcast(Event{Position: &EventPosition{PositionMs: ms, DurationMs: duration}})
}

// UpdateDuration records both position and duration and broadcasts them.
func (r *Registry) UpdateDuration(id string, positionMs, durationMs int64) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	p.positionMs = positionMs
	p.durationMs = durationMs
	r.mu.Unlock()

	r.broadcast(Event{Position: &EventPosition{PositionMs: positionMs, DurationMs: durationMs}})
}

// UpdateVolume sets a player's gain and mute, propagates it to that
// player's driver sink, broadcasts the change, and schedules a debounced
// update of the global volume settings entry. The timer only sets the
// entry's current value in memory; the value reaches disk when the
// settings store is next saved.
func (r *Registry) UpdateVolume(id string, volume float64, mute bool) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	r.mu.RLock()
	p, ok := r.players[id]
	r.mu.RUnlock()
	if ok && p.driver != nil {
		if err := p.driver.SetGain(volume, mute); err != nil {
			slog.Warn("player: set gain failed", "id", id, "err", err)
		}
	}

	r.broadcast(Event{Volume: &EventVolume{Volume: volume, Mute: mute}})
	r.scheduleVolumeSave(volume)
}

func (r *Registry) scheduleVolumeSave(volume float64) {
	if r.volumeEntry == nil {
		return
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	if r.saveTimer != nil {
		r.saveTimer.Stop()
	}
	r.saveTimer = time.AfterFunc(volumeSaveDelay, func() {
		r.volumeEntry.SetCurrent(settings.Value{Type: settings.TypeF64, F64: volume})
		r.saveMu.Lock()
		r.saveTimer = nil
		r.saveMu.Unlock()
	})
}

// --- Current-player arbitration ---

// PlayMedia makes playerID current (spec §4.4 steps 1-9) and starts it
// playing path.
func (r *Registry) PlayMedia(playerID, path, name string, t tags.Tags, entryRef any) error {
	r.mu.Lock()
	newPlayer, ok := r.players[playerID]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownPlayer
	}

	oldID := r.currentID
	var oldPlayer *Entity
	if oldID != "" {
		oldPlayer = r.players[oldID]
	}
	isNewCurrent := oldID != playerID
	r.currentID = playerID

	newPlayer.playlistEntryRef = entryRef
	newPlayer.currentPlaylistEntryRef = entryRef
	newPlayer.mediaName = name
	newPlayer.tags = t
	newPlayer.state = StatePlaying
	newPlayer.streamState = StreamLoading
	newPlayer.percent = 0
	newPlayer.durationMs = 0
	r.mu.Unlock()

	if isNewCurrent && oldPlayer != nil && oldPlayer.driver != nil {
		_ = oldPlayer.driver.SetState(StateNone)
	}

	r.broadcast(Event{Media: &EventMedia{Name: name, Tags: t}})
	r.broadcast(Event{Status: &EventStatus{State: StatePlaying, StreamState: StreamLoading, Value: 0}})
	r.broadcast(Event{Position: &EventPosition{PositionMs: 0, DurationMs: 0}})

	if isNewCurrent {
		r.broadcast(Event{Volume: &EventVolume{Volume: r.GlobalVolume(), Mute: r.GlobalMute()}})
	}

	if newPlayer.driver != nil {
		return newPlayer.driver.Play(path)
	}
	return nil
}

// ResetCurrent stops and clears the current player, satisfying
// playlist.PlayerSink for the case where a deletion invalidates the cursor
// with nothing queued to take its place (spec §4.5 Delete).
func (r *Registry) ResetCurrent() error {
	r.mu.Lock()
	id := r.currentID
	r.currentID = ""
	p, ok := r.players[id]
	r.mu.Unlock()

	if !ok || p == nil {
		return nil
	}
	if p.driver != nil {
		_ = p.driver.SetState(StateNone)
	}
	r.UpdateState(id, StateStopped)
	return nil
}

// EOS handles end-of-stream from a player: ask the playlist to advance, or
// fall back to Stopped.
func (r *Registry) EOS(id string) {
	r.mu.RLock()
	pc := r.playlist
	r.mu.RUnlock()

	if pc != nil {
		if err := pc.PlayNext(); err == nil {
			return
		}
	}
	r.UpdateState(id, StateStopped)
}

// Error broadcasts a playback error and, if id is the current player and
// not already idle, attempts to advance the playlist before falling back to
// Stopped.
func (r *Registry) Error(id, msg string) {
	r.broadcast(Event{Error: &EventError{Text: msg}})

	r.mu.RLock()
	isCurrent := r.currentID == id
	p := r.players[id]
	pc := r.playlist
	r.mu.RUnlock()

	if !isCurrent || p == nil {
		return
	}
	if p.State() == StateNone || p.State() == StateStopped {
		return
	}
	if pc != nil {
		if err := pc.PlayNext(); err == nil {
			return
		}
	}
	r.UpdateState(id, StateStopped)
}

// GlobalVolume returns the last client-set global volume.
func (r *Registry) GlobalVolume() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.globalVolume
}

// GlobalMute returns the last client-set global mute flag.
func (r *Registry) GlobalMute() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.globalMute
}

// --- Status replay on listener join (spec §4.4) ---

// ReplayStatus delivers, in order: every registered player's add, then for
// the current player media/status/position, then global volume.
func (r *Registry) ReplayStatus(deliver func(Event)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		deliver(Event{Add: &EventAdd{Descriptor: p.Descriptor}})
	}

	if r.currentID == "" {
		return
	}
	cur := r.players[r.currentID]
	deliver(Event{Media: &EventMedia{Name: cur.mediaName, Tags: cur.tags}})
	deliver(Event{Status: &EventStatus{State: cur.state, StreamState: cur.streamState, Value: cur.percent}})
	deliver(Event{Position: &EventPosition{PositionMs: cur.positionMs, DurationMs: cur.durationMs}})
	deliver(Event{Volume: &EventVolume{Volume: r.globalVolume, Mute: r.globalMute}})
}

// --- Client request dispatch (spec §4.4) ---

// Dispatch handles a Player.Request against the current player (or current
// playlist, for PlayPrevious/PlayNext).
func (r *Registry) Dispatch(req Request) error {
	cur := r.Current()

	switch {
	case req.SetState != nil:
		if cur == nil || cur.driver == nil {
			return ErrNoCurrentPlayer
		}
		return cur.driver.SetState(req.SetState.State)

	case req.SetPosition != nil:
		if cur == nil || cur.driver == nil {
			return ErrNoCurrentPlayer
		}
		return cur.driver.SetPosition(req.SetPosition.PositionMs)

	case req.SetVolume != nil:
		r.mu.Lock()
		r.globalVolume = req.SetVolume.Volume
		mute := r.globalMute
		r.mu.Unlock()
		r.UpdateVolume(r.CurrentID(), req.SetVolume.Volume, mute)
		return nil

	case req.SetMute != nil:
		r.mu.Lock()
		r.globalMute = req.SetMute.Mute
		vol := r.globalVolume
		r.mu.Unlock()
		r.UpdateVolume(r.CurrentID(), vol, req.SetMute.Mute)
		return nil

	case req.PlayPrevious:
		r.mu.RLock()
		pc := r.playlist
		r.mu.RUnlock()
		if pc == nil {
			return ErrNoPlaylist
		}
		return pc.PlayPrevious()

	case req.PlayNext:
		r.mu.RLock()
		pc := r.playlist
		r.mu.RUnlock()
		if pc == nil {
			return ErrNoPlaylist
		}
		return pc.PlayNext()
	}

	return ErrMalformedRequest
}
