package eventbus_test

import (
	"testing"

	"github.com/melo-audio/melod/internal/eventbus"
	"github.com/melo-audio/melod/internal/message"
)

func TestBusBroadcastOrder(t *testing.T) {
	bus := eventbus.New()

	var order []string
	mk := func(name string) eventbus.Callback {
		return func(msg *message.Message, userData any) {
			order = append(order, name)
		}
	}

	if err := bus.Add(mk("a"), "a"); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := bus.Add(mk("b"), "b"); err != nil {
		t.Fatalf("add b: %v", err)
	}

	bus.Broadcast(message.New(message.KindPlayerEvent, nil))

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected [a b], got %v", order)
	}
}

func TestBusAddDuplicateRejected(t *testing.T) {
	bus := eventbus.New()
	cb := func(msg *message.Message, userData any) {}

	if err := bus.Add(cb, "x"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := bus.Add(cb, "x"); err != eventbus.ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestBusRemoveDuringDispatchNotSkipped(t *testing.T) {
	bus := eventbus.New()

	var calls int
	var selfRemove eventbus.Callback
	selfRemove = func(msg *message.Message, userData any) {
		calls++
		bus.Remove(selfRemove, "self")
	}
	bus.Add(selfRemove, "self")

	bus.Broadcast(message.New(message.KindPlayerEvent, nil))
	if calls != 1 {
		t.Fatalf("expected listener removed mid-dispatch to still receive this message, got %d calls", calls)
	}

	bus.Broadcast(message.New(message.KindPlayerEvent, nil))
	if calls != 1 {
		t.Fatalf("expected no further delivery after removal, got %d calls", calls)
	}
}

func TestBusAddDuringDispatchNotDeliveredThisRound(t *testing.T) {
	bus := eventbus.New()

	var secondCalls int
	second := func(msg *message.Message, userData any) { secondCalls++ }

	first := func(msg *message.Message, userData any) {
		bus.Add(second, "second")
	}
	bus.Add(first, "first")

	bus.Broadcast(message.New(message.KindPlayerEvent, nil))
	if secondCalls != 0 {
		t.Fatalf("listener added mid-dispatch must not receive this message, got %d calls", secondCalls)
	}

	bus.Broadcast(message.New(message.KindPlayerEvent, nil))
	if secondCalls != 1 {
		t.Fatalf("expected listener added previously to receive next broadcast, got %d", secondCalls)
	}
}

func TestBusRemoveReturnsFalseWhenAbsent(t *testing.T) {
	bus := eventbus.New()
	cb := func(msg *message.Message, userData any) {}
	if bus.Remove(cb, "nope") {
		t.Fatal("expected Remove to return false for an unregistered pair")
	}
}

func TestBusLen(t *testing.T) {
	bus := eventbus.New()
	if bus.Len() != 0 {
		t.Fatalf("expected 0, got %d", bus.Len())
	}
	cb1 := func(msg *message.Message, userData any) {}
	cb2 := func(msg *message.Message, userData any) {}
	bus.Add(cb1, "1")
	bus.Add(cb2, "2")
	if bus.Len() != 2 {
		t.Fatalf("expected 2, got %d", bus.Len())
	}
	bus.Remove(cb1, "1")
	if bus.Len() != 1 {
		t.Fatalf("expected 1, got %d", bus.Len())
	}
}
