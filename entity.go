package birch

import "go.uber.org/zap"

// EntityState is the lifecycle state of an Entity.
type EntityState uint8

const (
	EntityActive EntityState = iota
	EntityPendingDestruction
	EntityDestroyed
)

func (s EntityState) String() string {
	switch s {
	case EntityPendingDestruction:
		return "pending-destruction"
	case EntityDestroyed:
		return "destroyed"
	default:
		return "active"
	}
}

// Entity is a node of the scene tree. It owns a Transform, at most one
// component per concrete type, and its children. Parent and child links are
// arena handles, so a destroyed entity never keeps another alive.
type Entity struct {
	Name string

	id       EntityID
	app      *App
	parent   EntityID
	children []EntityID

	components map[componentKey]Component
	order      []Component // insertion order, drives update order
	transform  *Transform

	state EntityState

	updatedFrame uint64
}

// NewEntity creates an entity with an identity Transform and appends it to
// parent's children. A nil or destroyed parent attaches it to the scene root.
func (a *App) NewEntity(name string, parent *Entity) *Entity {
	if parent == nil || parent.state == EntityDestroyed || parent.app != a {
		parent = a.root
	}
	e := a.allocEntity(name)
	e.parent = parent.id
	parent.children = append(parent.children, e.id)
	if a.debug {
		a.debugCheckTreeDepth(e)
		a.debugCheckChildCount(parent)
	}
	a.emit(LifecycleEvent{Type: EventEntityCreated, Entity: e.id, Name: name})
	return e
}

func (a *App) allocEntity(name string) *Entity {
	e := &Entity{
		Name:       name,
		app:        a,
		components: make(map[componentKey]Component, 2),
	}
	e.id = a.arena.alloc(e)

	t := newTransform()
	t.app = a
	t.owner = e.id
	t.self = t
	t.state = ComponentInitialized
	e.transform = t
	e.components[keyOf(t)] = t
	e.order = append(e.order, t)
	return e
}

// Entity resolves a handle. It returns nil for stale or zero handles.
func (a *App) Entity(id EntityID) *Entity { return a.arena.get(id) }

// EntityCount returns the number of live entities, including the scene root.
func (a *App) EntityCount() int { return a.arena.len() }

// ID returns the entity's arena handle.
func (e *Entity) ID() EntityID { return e.id }

// App returns the owning application.
func (e *Entity) App() *App { return e.app }

// Transform returns the entity's transform.
func (e *Entity) Transform() *Transform { return e.transform }

// State returns the lifecycle state.
func (e *Entity) State() EntityState { return e.state }

// IsDestroyed reports whether the entity has been torn down.
func (e *Entity) IsDestroyed() bool { return e.state == EntityDestroyed }

// Parent returns the parent entity, or nil for the scene root.
func (e *Entity) Parent() *Entity { return e.app.arena.get(e.parent) }

// SetParent moves e under p, removing it from its old parent's children in
// the same step. A nil p means the scene root. The local transform is kept.
func (e *Entity) SetParent(p *Entity) error {
	a := e.app
	if e.state == EntityDestroyed {
		return ErrEntityDestroyed
	}
	if e == a.root {
		return ErrParentCycle
	}
	if p == nil {
		p = a.root
	}
	if p.state == EntityDestroyed || p.app != a {
		return ErrEntityDestroyed
	}
	if p == e || isAncestor(e, p) {
		return ErrParentCycle
	}
	old := e.Parent()
	if old == p {
		return nil
	}
	if old != nil {
		old.removeChild(e.id)
	}
	e.parent = p.id
	p.children = append(p.children, e.id)
	if a.debug {
		a.debugCheckTreeDepth(e)
		a.debugCheckChildCount(p)
	}
	return nil
}

// isAncestor reports whether anc appears on the parent chain of n.
func isAncestor(anc, n *Entity) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == anc {
			return true
		}
	}
	return false
}

func (e *Entity) removeChild(id EntityID) {
	for i, c := range e.children {
		if c == id {
			copy(e.children[i:], e.children[i+1:])
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

// NumChildren returns the number of children.
func (e *Entity) NumChildren() int { return len(e.children) }

// ChildAt returns the child at index i.
func (e *Entity) ChildAt(i int) *Entity { return e.app.arena.get(e.children[i]) }

// Children returns a snapshot of the child list.
func (e *Entity) Children() []*Entity {
	out := make([]*Entity, 0, len(e.children))
	for _, id := range e.children {
		if c := e.app.arena.get(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Components returns a snapshot of the attached components in attach order.
// The Transform is always first.
func (e *Entity) Components() []Component {
	out := make([]Component, len(e.order))
	copy(out, e.order)
	return out
}

// Find returns the first entity named name in e's subtree, depth-first,
// including e itself.
func (e *Entity) Find(name string) *Entity {
	if e.Name == name {
		return e
	}
	for _, id := range e.children {
		if c := e.app.arena.get(id); c != nil {
			if f := c.Find(name); f != nil {
				return f
			}
		}
	}
	return nil
}

// Destroy schedules the entity and its subtree for teardown at the end of the
// current tick. Until then the entity stays in the tree and keeps updating.
// Repeated calls are no-ops. The scene root cannot be destroyed.
func (e *Entity) Destroy() {
	if e.state != EntityActive || e == e.app.root {
		return
	}
	e.state = EntityPendingDestruction
	e.app.destroyQueue = append(e.app.destroyQueue, destroyItem{entity: e.id})
}

// destroyItem is one queued destruction request.
type destroyItem struct {
	entity    EntityID
	component Component
}

// flushDestroyed tears down every queued entity and component. Items queued
// by OnDestroy hooks during the flush are processed in the same pass.
func (a *App) flushDestroyed() {
	for i := 0; i < len(a.destroyQueue); i++ {
		it := a.destroyQueue[i]
		if it.component != nil {
			a.destroyComponent(it.component)
			continue
		}
		if e := a.arena.get(it.entity); e != nil && e != a.root {
			a.destroyEntity(e)
		}
	}
	clear(a.destroyQueue)
	a.destroyQueue = a.destroyQueue[:0]
}

func (a *App) destroyComponent(c Component) {
	b := c.base()
	e := a.arena.get(b.owner)
	if e == nil || b.state == ComponentDestroyed {
		return
	}
	e.detachComponent(c)
	a.teardownComponent(c)
}

// destroyEntity detaches e from its parent, then tears down its components
// and its subtree.
func (a *App) destroyEntity(e *Entity) {
	if e.state == EntityDestroyed {
		return
	}
	if p := e.Parent(); p != nil {
		p.removeChild(e.id)
	}
	a.teardownEntity(e)
	e.parent = EntityID{}
}

func (a *App) teardownEntity(e *Entity) {
	for _, c := range e.order {
		a.teardownComponent(c)
	}
	for _, id := range e.children {
		if c := a.arena.get(id); c != nil {
			a.teardownEntity(c)
		}
	}
	if a.debug {
		a.log.Debug("entity destroyed", zap.String("name", e.Name), zap.Uint32("index", e.id.Index))
	}
	id := e.id
	e.children = nil
	e.state = EntityDestroyed
	a.arena.release(id)
	a.emit(LifecycleEvent{Type: EventEntityDestroyed, Entity: id, Name: e.Name})
}
