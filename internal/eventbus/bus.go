// Package eventbus implements the event fan-out layer shared by the player
// registry and the playlist engine: a registry of (callback, user data)
// listener pairs and an ordered broadcast that hands the same message to
// each.
package eventbus

import (
	"errors"
	"reflect"
	"sync"

	"github.com/melo-audio/melod/internal/message"
)

// ErrAlreadyRegistered is returned by Add when the exact (callback, userData)
// pair is already listening.
var ErrAlreadyRegistered = errors.New("eventbus: listener already registered")

// Callback receives a broadcast message along with the user data it was
// registered with.
type Callback func(msg *message.Message, userData any)

type listener struct {
	cb       Callback
	userData any
}

// key identifies a listener by the same pair used at registration. userData
// must be comparable (or nil) for this to work, matching spec §3's "set of
// (callback, user_data) pairs keyed by that pair."
type key struct {
	cb       uintptr
	userData any
}

// Bus is an ordered multi-listener broadcaster. Listeners are delivered to in
// registration order. Callbacks run synchronously, so Broadcast returns only
// after every listener has returned, but they run outside any internal
// lock, so a listener added or removed mid-dispatch never affects the
// dispatch in progress (§4.1).
type Bus struct {
	mu    sync.Mutex
	order []key
	set   map[key]listener
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{set: make(map[key]listener)}
}

// Add registers a (callback, userData) pair. Returns ErrAlreadyRegistered if
// the identical pair is already present.
func (b *Bus) Add(cb Callback, userData any) error {
	k := callbackKey(cb, userData)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.set[k]; ok {
		return ErrAlreadyRegistered
	}
	b.set[k] = listener{cb: cb, userData: userData}
	b.order = append(b.order, k)
	return nil
}

// Remove unregisters a (callback, userData) pair. Returns true if it was
// present.
func (b *Bus) Remove(cb Callback, userData any) bool {
	k := callbackKey(cb, userData)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.set[k]; !ok {
		return false
	}
	delete(b.set, k)
	for i, ok := range b.order {
		if ok == k {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// Broadcast delivers msg to every listener registered at the moment
// Broadcast is called, in registration order. A listener added during this
// call will not receive msg; a listener removed during this call will not be
// skipped for msg (it was already snapshotted) but will not receive later
// broadcasts. Broadcast takes ownership of msg conceptually — callers must
// not mutate it afterward.
func (b *Bus) Broadcast(msg *message.Message) {
	b.mu.Lock()
	snapshot := make([]listener, 0, len(b.order))
	for _, k := range b.order {
		if l, ok := b.set[k]; ok {
			snapshot = append(snapshot, l)
		}
	}
	b.mu.Unlock()

	for _, l := range snapshot {
		l.cb(msg, l.userData)
	}
}

// callbackKey builds the (callback, userData) identity used by spec §3. Two
// listener registrations are the "same pair" when their callback points to
// the same function value and their userData compares equal; userData must
// therefore be a comparable type (a pointer, string, or similar), never a
// slice or map.
func callbackKey(cb Callback, userData any) key {
	return key{cb: reflect.ValueOf(cb).Pointer(), userData: userData}
}

// Len returns the current listener count.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}
