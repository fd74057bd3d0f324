package request_test

import (
	"testing"

	"github.com/melo-audio/melod/internal/message"
	"github.com/melo-audio/melod/internal/request"
)

func TestRequestLifecycle(t *testing.T) {
	var received []*message.Message
	r := request.New(nil, func(msg *message.Message) bool {
		received = append(received, msg)
		return true
	})

	m1 := message.New(message.KindPlayerEvent, "m1")
	if ok := r.SendResponse(m1); !ok {
		t.Fatal("expected SendResponse to return true while pending")
	}

	m2 := message.New(message.KindPlayerEvent, "m2")
	r.SendResponse(m2)

	r.Complete()

	if r.State() != request.Complete {
		t.Fatalf("expected Complete, got %v", r.State())
	}
	if len(received) != 3 || received[2] != nil {
		t.Fatalf("expected [m1 m2 nil], got %v", received)
	}

	m3 := message.New(message.KindPlayerEvent, "m3")
	if ok := r.SendResponse(m3); ok {
		t.Fatal("expected SendResponse after terminal state to return false")
	}
	if len(received) != 3 {
		t.Fatalf("expected no further callback invocation, got %d calls", len(received))
	}
}

func TestRequestCancelInvokesObserver(t *testing.T) {
	var cbCalls int
	var observed bool

	r := request.New("parent", func(msg *message.Message) bool {
		cbCalls++
		return msg == nil
	})
	r.OnCancel(func(req *request.Request) { observed = true })

	r.Cancel()

	if r.State() != request.Cancelled {
		t.Fatalf("expected Cancelled, got %v", r.State())
	}
	if cbCalls != 1 {
		t.Fatalf("expected exactly one callback invocation, got %d", cbCalls)
	}
	if !observed {
		t.Fatal("expected cancel observer to fire")
	}

	// Repeated terminal calls are no-ops.
	r.Cancel()
	r.Complete()
	if cbCalls != 1 {
		t.Fatalf("expected no additional callback invocations, got %d", cbCalls)
	}
}

func TestRequestUserData(t *testing.T) {
	r := request.New("obj", func(msg *message.Message) bool { return true })
	r.SetUserData(42)
	if r.GetUserData() != 42 {
		t.Fatalf("expected 42, got %v", r.GetUserData())
	}
	if r.GetObject() != "obj" {
		t.Fatalf("expected obj, got %v", r.GetObject())
	}
}
