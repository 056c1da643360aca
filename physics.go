package birch

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// PhysicsWorld is a simulation stepped once per tick after the entity tree
// has updated.
type PhysicsWorld interface {
	Step(dt float32)
}

// PhysicsBody is one body inside a PhysicsWorld.
type PhysicsBody interface {
	ApplyImpulse(j mgl32.Vec3)
	SetKinematicTransform(pos mgl32.Vec3, rot mgl32.Quat)
	ReadWorldTransform() (mgl32.Vec3, mgl32.Quat)
}

// BodyKind selects how a Rigidbody and its entity exchange transforms.
type BodyKind uint8

const (
	// BodyDynamic bodies are simulated. The entity follows the body.
	BodyDynamic BodyKind = iota
	// BodyKinematic bodies follow the entity.
	BodyKinematic
	// BodyStatic bodies never move after placement.
	BodyStatic
)

func (k BodyKind) String() string {
	switch k {
	case BodyKinematic:
		return "kinematic"
	case BodyStatic:
		return "static"
	default:
		return "dynamic"
	}
}

// Rigidbody binds an entity's transform to a PhysicsBody. Before each
// physics step kinematic bodies receive the entity's world transform. After
// the step dynamic bodies write theirs back.
type Rigidbody struct {
	ComponentBase

	Kind BodyKind
	Mass float32

	body PhysicsBody
}

// NewRigidbody wraps body. A dynamic body needs a positive mass.
func NewRigidbody(body PhysicsBody, kind BodyKind, mass float32) (*Rigidbody, error) {
	if body == nil {
		return nil, fmt.Errorf("new rigidbody: %w", ErrNilComponent)
	}
	if kind == BodyDynamic && !(mass > 0) {
		return nil, fmt.Errorf("new rigidbody: mass %v: %w", mass, ErrInvalidMass)
	}
	return &Rigidbody{Kind: kind, Mass: mass, body: body}, nil
}

// Body returns the wrapped physics body.
func (r *Rigidbody) Body() PhysicsBody { return r.body }

func (r *Rigidbody) OnInit() {
	t := r.Transform()
	r.body.SetKinematicTransform(t.WorldPosition(), t.WorldRotation())
	a := r.App()
	a.bodies = append(a.bodies, r)
}

func (r *Rigidbody) OnDestroy() {
	a := r.App()
	if i := slices.Index(a.bodies, r); i >= 0 {
		a.bodies = slices.Delete(a.bodies, i, i+1)
	}
	if rm, ok := r.body.(interface{ Remove() }); ok {
		rm.Remove()
	}
}

// ApplyImpulse forwards j to the body.
func (r *Rigidbody) ApplyImpulse(j mgl32.Vec3) { r.body.ApplyImpulse(j) }

// SetKinematicTransform places the body at the world matrix m. Scale in m is
// ignored.
func (r *Rigidbody) SetKinematicTransform(m mgl32.Mat4) {
	r.body.SetKinematicTransform(decomposeRigid(m))
}

// ReadWorldTransform returns the body's world transform as a matrix.
func (r *Rigidbody) ReadWorldTransform() mgl32.Mat4 {
	pos, rot := r.body.ReadWorldTransform()
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(rot.Mat4())
}

// decomposeRigid splits m into its translation and rotation.
func decomposeRigid(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat) {
	var basis mgl32.Mat4
	for i := 0; i < 3; i++ {
		c := m.Col(i).Vec3()
		if l := c.Len(); l > 0 {
			c = c.Mul(1 / l)
		}
		basis.SetCol(i, c.Vec4(0))
	}
	basis.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return m.Col(3).Vec3(), mgl32.Mat4ToQuat(basis).Normalize()
}

func (r *Rigidbody) pushKinematic() {
	if r.Kind != BodyKinematic || r.state != ComponentInitialized {
		return
	}
	t := r.Transform()
	r.body.SetKinematicTransform(t.WorldPosition(), t.WorldRotation())
}

func (r *Rigidbody) pullTransform() {
	if r.Kind != BodyDynamic || r.state != ComponentInitialized {
		return
	}
	t := r.Transform()
	pos, rot := r.body.ReadWorldTransform()
	t.SetWorldPosition(pos)
	t.SetWorldRotation(rot)
}

// --- Point mass world ---

// PointMassWorld integrates point masses under constant gravity with
// semi-implicit Euler. An optional ground plane stops bodies falling below
// GroundY.
type PointMassWorld struct {
	Gravity mgl32.Vec3
	Ground  bool
	GroundY float32

	bodies []*PointMass
}

// NewPointMassWorld returns a world with gravity along -Y.
func NewPointMassWorld(gravity float32) *PointMassWorld {
	return &PointMassWorld{Gravity: mgl32.Vec3{0, -gravity, 0}}
}

// NewBody adds a body. A non-positive mass makes the body immovable.
func (w *PointMassWorld) NewBody(mass float32) *PointMass {
	b := &PointMass{world: w, rot: mgl32.QuatIdent()}
	if mass > 0 {
		b.invMass = 1 / mass
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Len returns the number of bodies in the world.
func (w *PointMassWorld) Len() int { return len(w.bodies) }

// Step advances every movable body by dt seconds.
func (w *PointMassWorld) Step(dt float32) {
	for _, b := range w.bodies {
		if b.invMass == 0 || b.kinematic {
			continue
		}
		b.vel = b.vel.Add(w.Gravity.Mul(dt))
		b.pos = b.pos.Add(b.vel.Mul(dt))
		if w.Ground && b.pos[1] < w.GroundY {
			b.pos[1] = w.GroundY
			if b.vel[1] < 0 {
				b.vel[1] = 0
			}
		}
	}
}

// PointMass is a body in a PointMassWorld.
type PointMass struct {
	world     *PointMassWorld
	pos       mgl32.Vec3
	rot       mgl32.Quat
	vel       mgl32.Vec3
	invMass   float32
	kinematic bool
}

// ApplyImpulse changes the velocity by j / mass.
func (b *PointMass) ApplyImpulse(j mgl32.Vec3) {
	b.vel = b.vel.Add(j.Mul(b.invMass))
}

// SetKinematicTransform places the body.
func (b *PointMass) SetKinematicTransform(pos mgl32.Vec3, rot mgl32.Quat) {
	b.pos, b.rot = pos, rot
}

// ReadWorldTransform returns the body's position and orientation.
func (b *PointMass) ReadWorldTransform() (mgl32.Vec3, mgl32.Quat) { return b.pos, b.rot }

// SetKinematic stops the world from integrating the body.
func (b *PointMass) SetKinematic(k bool) { b.kinematic = k }

// Velocity returns the body's linear velocity.
func (b *PointMass) Velocity() mgl32.Vec3 { return b.vel }

// SetVelocity overrides the body's linear velocity.
func (b *PointMass) SetVelocity(v mgl32.Vec3) { b.vel = v }

// Remove takes the body out of its world.
func (b *PointMass) Remove() {
	if b.world == nil {
		return
	}
	if i := slices.Index(b.world.bodies, b); i >= 0 {
		b.world.bodies = slices.Delete(b.world.bodies, i, i+1)
	}
	b.world = nil
}
