package ecs

import (
	"testing"

	"github.com/phanxgames/pinchzoom"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	if NewDonburiStore(world) == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []pinchzoom.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e pinchzoom.InteractionEvent) {
		received = append(received, e)
	})

	store.EmitEvent(pinchzoom.InteractionEvent{
		Type:      pinchzoom.EventPointerDown,
		EntityID:  42,
		GlobalX:   100,
		GlobalY:   200,
		PointerID: 1,
	})
	store.EmitEvent(pinchzoom.InteractionEvent{
		Type:         pinchzoom.EventGestureUpdate,
		PointerCount: 2,
		Scale:        2.0,
		ScaleDelta:   0.5,
	})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	InteractionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if e := received[0]; e.Type != pinchzoom.EventPointerDown || e.EntityID != 42 || e.PointerID != 1 {
		t.Errorf("event 0: %+v", e)
	}
	if e := received[1]; e.Type != pinchzoom.EventGestureUpdate || e.Scale != 2.0 || e.PointerCount != 2 {
		t.Errorf("event 1: %+v", e)
	}
}

func TestDonburiStore_GestureEventsOnly(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var gestures []pinchzoom.EventType
	GestureEventType.Subscribe(world, func(w donburi.World, e pinchzoom.InteractionEvent) {
		gestures = append(gestures, e.Type)
	})

	store.EmitEvent(pinchzoom.InteractionEvent{Type: pinchzoom.EventPointerDown})
	store.EmitEvent(pinchzoom.InteractionEvent{Type: pinchzoom.EventGestureStart})
	store.EmitEvent(pinchzoom.InteractionEvent{Type: pinchzoom.EventPointerMove})
	store.EmitEvent(pinchzoom.InteractionEvent{Type: pinchzoom.EventGestureEnd})
	events.ProcessAllEvents(world)

	want := []pinchzoom.EventType{pinchzoom.EventGestureStart, pinchzoom.EventGestureEnd}
	if len(gestures) != len(want) {
		t.Fatalf("gestures = %v, want %v", gestures, want)
	}
	for i := range want {
		if gestures[i] != want[i] {
			t.Errorf("gestures[%d] = %v, want %v", i, gestures[i], want[i])
		}
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	var _ pinchzoom.EntityStore = NewDonburiStore(donburi.NewWorld())
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	InteractionEventType.Subscribe(world, func(w donburi.World, e pinchzoom.InteractionEvent) {
		count1++
	})
	InteractionEventType.Subscribe(world, func(w donburi.World, e pinchzoom.InteractionEvent) {
		count2++
	})

	store.EmitEvent(pinchzoom.InteractionEvent{Type: pinchzoom.EventPointerUp})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
