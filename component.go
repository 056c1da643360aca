package birch

import (
	"fmt"
	"reflect"
)

// ComponentState is the lifecycle state of a component.
type ComponentState uint8

const (
	ComponentUninitialized ComponentState = iota
	ComponentInitialized
	ComponentDestroyed
)

func (s ComponentState) String() string {
	switch s {
	case ComponentInitialized:
		return "initialized"
	case ComponentDestroyed:
		return "destroyed"
	default:
		return "uninitialized"
	}
}

// Component is a behavior unit attached to exactly one Entity. Implementations
// embed ComponentBase, which binds the owner and supplies no-op hooks, and
// override the hooks they need.
//
// OnInit runs synchronously inside AddComponent with the owner already bound.
// OnUpdate runs once per tick while the owner is alive. OnDestroy runs exactly
// once during the end-of-tick destruction flush.
type Component interface {
	OnInit()
	OnUpdate(dt float32)
	OnDestroy()

	base() *ComponentBase
}

// ComponentBase carries the owner links shared by every component.
type ComponentBase struct {
	app     *App
	owner   EntityID
	self    Component
	state   ComponentState
	pending bool
}

func (b *ComponentBase) base() *ComponentBase { return b }

// OnInit is a no-op.
func (b *ComponentBase) OnInit() {}

// OnUpdate is a no-op.
func (b *ComponentBase) OnUpdate(float32) {}

// OnDestroy is a no-op.
func (b *ComponentBase) OnDestroy() {}

// App returns the owning application, or nil before attachment.
func (b *ComponentBase) App() *App { return b.app }

// EntityID returns the owner's handle.
func (b *ComponentBase) EntityID() EntityID { return b.owner }

// Entity returns the owning entity, or nil once the owner has been destroyed.
func (b *ComponentBase) Entity() *Entity {
	if b.app == nil {
		return nil
	}
	return b.app.Entity(b.owner)
}

// Transform returns the owner's transform.
func (b *ComponentBase) Transform() *Transform {
	if e := b.Entity(); e != nil {
		return e.transform
	}
	return nil
}

// State returns the lifecycle state.
func (b *ComponentBase) State() ComponentState { return b.state }

// IsDestroyed reports whether the component has been torn down.
func (b *ComponentBase) IsDestroyed() bool { return b.state == ComponentDestroyed }

// Destroy schedules the component for removal at the end of the current tick.
// Repeated calls are no-ops.
func (b *ComponentBase) Destroy() {
	if b.app == nil || b.pending || b.state == ComponentDestroyed {
		return
	}
	b.pending = true
	b.app.destroyQueue = append(b.app.destroyQueue, destroyItem{component: b.self})
}

// componentKey identifies a component's concrete type.
type componentKey = reflect.Type

func keyOf(c Component) componentKey { return reflect.TypeOf(c) }

func keyFor[T Component]() componentKey { return reflect.TypeFor[T]() }

// AddComponent attaches c to e and runs its OnInit before returning. It fails
// with a *DuplicateComponentError when e already holds a component of the
// same concrete type. Construct c with its factory, e.g.
//
//	cam, err := birch.AddComponent(e, birch.NewCamera())
func AddComponent[T Component](e *Entity, c T) (T, error) {
	var zero T
	if e == nil || e.state == EntityDestroyed {
		return zero, ErrEntityDestroyed
	}
	if any(c) == nil || reflect.ValueOf(c).Kind() == reflect.Pointer && reflect.ValueOf(c).IsNil() {
		return zero, ErrNilComponent
	}
	b := c.base()
	if b.app != nil {
		return zero, fmt.Errorf("%w: %s", ErrComponentAttached, keyOf(c))
	}
	key := keyOf(c)
	if _, ok := e.components[key]; ok {
		return zero, &DuplicateComponentError{Entity: e.Name, Type: key.String()}
	}

	b.app = e.app
	b.owner = e.id
	b.self = c
	e.components[key] = c
	e.order = append(e.order, c)

	c.OnInit()
	b.state = ComponentInitialized
	e.app.emit(LifecycleEvent{Type: EventComponentAdded, Entity: e.id, Component: key.String()})
	return c, nil
}

// GetComponent returns the component of type T attached to e.
func GetComponent[T Component](e *Entity) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.components[keyFor[T]()]
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// HasComponent reports whether e holds a component of type T.
func HasComponent[T Component](e *Entity) bool {
	_, ok := GetComponent[T](e)
	return ok
}

// detachComponent removes c from its owner's registry without running hooks.
func (e *Entity) detachComponent(c Component) {
	key := keyOf(c)
	if cur, ok := e.components[key]; !ok || cur != c {
		return
	}
	delete(e.components, key)
	for i, o := range e.order {
		if o == c {
			copy(e.order[i:], e.order[i+1:])
			e.order[len(e.order)-1] = nil
			e.order = e.order[:len(e.order)-1]
			break
		}
	}
}

// teardownComponent runs OnDestroy once and marks c destroyed.
func (a *App) teardownComponent(c Component) {
	b := c.base()
	if b.state == ComponentDestroyed {
		return
	}
	c.OnDestroy()
	b.state = ComponentDestroyed
	b.pending = false
	a.emit(LifecycleEvent{Type: EventComponentDestroyed, Entity: b.owner, Component: keyOf(c).String()})
}
