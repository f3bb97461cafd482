// Package ecs bridges pinchzoom interaction events into a [Donburi] world.
//
// [NewDonburiStore] publishes every pointer and gesture event to
// [InteractionEventType]. Gesture events are also published to
// [GestureEventType].
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//	ecs.GestureEventType.Subscribe(world, func(w donburi.World, e pinchzoom.InteractionEvent) {
//		// e.Scale, e.PointerCount
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
