// Package request implements the handle bound to one multi-message
// asynchronous response (spec §4.2): a Request starts Pending, accepts zero
// or more SendResponse calls, and terminates exactly once via Complete or
// Cancel.
package request

import (
	"sync"

	"github.com/melo-audio/melod/internal/message"
)

// State is the request's lifecycle stage.
type State int

const (
	Pending State = iota
	Complete
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Complete:
		return "complete"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Callback is invoked with each response message while Pending, and exactly
// once more with a nil message when the request terminates. Its return value
// is only meaningful for SendResponse calls — Complete/Cancel ignore it.
type Callback func(msg *message.Message) bool

// CancelObserver is notified once when a request is cancelled, in addition
// to the terminal callback invocation (spec §4.2: "emit a cancellation
// signal to observers").
type CancelObserver func(r *Request)

// Request is the async-operation handle. The zero value is not usable; use
// New.
type Request struct {
	mu       sync.Mutex
	state    State
	cb       Callback
	object   any
	userData any
	onCancel CancelObserver
}

// New creates a Pending request bound to object (the parent playlist,
// player, or settings store that issued it) and cb.
func New(object any, cb Callback) *Request {
	return &Request{state: Pending, object: object, cb: cb}
}

// OnCancel registers a single observer invoked if this request is cancelled.
func (r *Request) OnCancel(fn CancelObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCancel = fn
}

// State returns the current lifecycle stage.
func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// GetObject returns the parent object this request was created against.
func (r *Request) GetObject() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.object
}

// SetUserData attaches caller-defined context to the request.
func (r *Request) SetUserData(ud any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userData = ud
}

// GetUserData returns the previously attached context, if any.
func (r *Request) GetUserData() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userData
}

// SendResponse delivers msg to the callback while the request is Pending.
// Returns the callback's return value, or false if the request has already
// terminated (no delivery happens in that case).
func (r *Request) SendResponse(msg *message.Message) bool {
	r.mu.Lock()
	if r.state != Pending {
		r.mu.Unlock()
		return false
	}
	cb := r.cb
	r.mu.Unlock()

	if cb == nil {
		return false
	}
	return cb(msg)
}

// Complete transitions the request to Complete. While Pending, invokes the
// callback once with a nil sentinel message. A no-op (besides being
// idempotent) once the request has already terminated.
func (r *Request) Complete() {
	r.terminate(Complete, false)
}

// Cancel transitions the request to Cancelled, invokes the callback once
// with a nil sentinel, and notifies the registered CancelObserver. A no-op
// once the request has already terminated.
func (r *Request) Cancel() {
	r.terminate(Cancelled, true)
}

func (r *Request) terminate(to State, notifyCancel bool) {
	r.mu.Lock()
	if r.state != Pending {
		r.mu.Unlock()
		return
	}
	r.state = to
	cb := r.cb
	observer := r.onCancel
	r.mu.Unlock()

	if cb != nil {
		cb(nil)
	}
	if notifyCancel && observer != nil {
		observer(r)
	}
}
