// Package ecs provides ECS adapters for birch's lifecycle events.
//
// The primary adapter is [NewDonburiSink], which publishes birch entity and
// component lifecycle events into a [Donburi] world as typed events and
// mirrors every live birch entity as a Donburi entity carrying an [EntityRef].
// Subscribe to [LifecycleEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	app.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
