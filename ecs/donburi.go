package ecs

import (
	"github.com/phanxgames/birch"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for birch lifecycle events.
var LifecycleEventType = events.NewEventType[birch.LifecycleEvent]()

// EntityRef links a Donburi entity to the birch entity it mirrors.
type EntityRef struct {
	ID   birch.EntityID
	Name string
}

// EntityRefComponent is the component every mirrored entity carries.
var EntityRefComponent = donburi.NewComponentType[EntityRef]()

// DonburiSink is a birch.EventSink backed by a Donburi world.
type DonburiSink struct {
	world  donburi.World
	mirror map[birch.EntityID]donburi.Entity
}

// NewDonburiSink creates a sink publishing to LifecycleEventType. Events are
// queued and can be consumed with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, mirror: make(map[birch.EntityID]donburi.Entity)}
}

// EmitEvent mirrors entity creation and destruction, then publishes event.
func (s *DonburiSink) EmitEvent(event birch.LifecycleEvent) {
	switch event.Type {
	case birch.EventEntityCreated:
		e := s.world.Create(EntityRefComponent)
		EntityRefComponent.SetValue(s.world.Entry(e), EntityRef{ID: event.Entity, Name: event.Name})
		s.mirror[event.Entity] = e
	case birch.EventEntityDestroyed:
		if e, ok := s.mirror[event.Entity]; ok {
			if s.world.Valid(e) {
				s.world.Remove(e)
			}
			delete(s.mirror, event.Entity)
		}
	}
	LifecycleEventType.Publish(s.world, event)
}

// Lookup returns the Donburi entity mirroring id.
func (s *DonburiSink) Lookup(id birch.EntityID) (donburi.Entity, bool) {
	e, ok := s.mirror[id]
	return e, ok
}

// Len returns the number of mirrored entities.
func (s *DonburiSink) Len() int { return len(s.mirror) }
