// Package ecs provides ECS adapters for pinchzoom.
package ecs

import (
	"github.com/phanxgames/pinchzoom"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType carries every pointer and gesture event.
var InteractionEventType = events.NewEventType[pinchzoom.InteractionEvent]()

// GestureEventType carries only EventGestureStart, EventGestureUpdate and
// EventGestureEnd, for systems that react to zoom without filtering.
var GestureEventType = events.NewEventType[pinchzoom.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued; drain them with ProcessEvents or events.ProcessAllEvents.
func NewDonburiStore(world donburi.World) pinchzoom.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event pinchzoom.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
	if isGesture(event.Type) {
		GestureEventType.Publish(s.world, event)
	}
}

func isGesture(t pinchzoom.EventType) bool {
	switch t {
	case pinchzoom.EventGestureStart, pinchzoom.EventGestureUpdate, pinchzoom.EventGestureEnd:
		return true
	}
	return false
}
