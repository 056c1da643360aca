package birch

// EntityID is a stable handle into the App's entity arena. A handle whose
// slot has been reused resolves to nil. The zero value never resolves.
type EntityID struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether id is the zero handle.
func (id EntityID) IsZero() bool { return id.Generation == 0 }

type arenaSlot struct {
	entity *Entity
	gen    uint32
}

// entityArena stores entities by index. Freed slots are reused with a bumped
// generation so stale handles stop resolving.
type entityArena struct {
	slots []arenaSlot
	free  []uint32
	live  int
}

func (a *entityArena) alloc(e *Entity) EntityID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot{})
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.entity = e
	a.live++
	return EntityID{Index: idx, Generation: s.gen}
}

func (a *entityArena) get(id EntityID) *Entity {
	if id.Generation == 0 || int(id.Index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.Index]
	if s.gen != id.Generation {
		return nil
	}
	return s.entity
}

func (a *entityArena) release(id EntityID) {
	if a.get(id) == nil {
		return
	}
	s := &a.slots[id.Index]
	s.entity = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, id.Index)
	a.live--
}

// len returns the number of live entities.
func (a *entityArena) len() int { return a.live }
