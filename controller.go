package birch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// GhostKeys maps the six movement directions of a GhostController to keys.
type GhostKeys struct {
	Forward, Back, Left, Right, Up, Down Key
}

// DefaultGhostKeys is WASD plus Space and Shift.
var DefaultGhostKeys = GhostKeys{
	Forward: ebiten.KeyW,
	Back:    ebiten.KeyS,
	Left:    ebiten.KeyA,
	Right:   ebiten.KeyD,
	Up:      ebiten.KeySpace,
	Down:    ebiten.KeyShiftLeft,
}

// GhostController flies its entity along its local axes. Each held key adds
// Acceleration to the velocity. The velocity moves the entity and decays by
// Drag every tick. With LerpTranslation off, keys move the entity directly.
type GhostController struct {
	ComponentBase

	Keys            GhostKeys
	Drag            float32
	Acceleration    float32
	LerpTranslation bool
	Velocity        mgl32.Vec3
}

// NewGhostController returns a controller with drag 0.05 and acceleration 0.2.
func NewGhostController() *GhostController {
	return &GhostController{
		Keys:            DefaultGhostKeys,
		Drag:            0.05,
		Acceleration:    0.2,
		LerpTranslation: true,
	}
}

func (g *GhostController) OnUpdate(dt float32) {
	in := g.App().Input()
	t := g.Transform()
	if in.KeyDown(g.Keys.Forward) {
		g.Push(t.LocalForward())
	}
	if in.KeyDown(g.Keys.Back) {
		g.Push(t.LocalForward().Mul(-1))
	}
	if in.KeyDown(g.Keys.Right) {
		g.Push(t.LocalRight())
	}
	if in.KeyDown(g.Keys.Left) {
		g.Push(t.LocalRight().Mul(-1))
	}
	if in.KeyDown(g.Keys.Up) {
		g.Push(t.LocalUp())
	}
	if in.KeyDown(g.Keys.Down) {
		g.Push(t.LocalUp().Mul(-1))
	}
	if g.LerpTranslation {
		t.Translate(g.Velocity.Mul(dt))
		g.Velocity = g.Velocity.Mul(1 - g.Drag)
	}
}

// Push accelerates along dir, which is normalized first.
func (g *GhostController) Push(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	step := dir.Normalize().Mul(g.Acceleration)
	if g.LerpTranslation {
		g.Velocity = g.Velocity.Add(step)
		return
	}
	g.Transform().Translate(step)
}

// MouseLook turns its entity from mouse movement: horizontal motion yaws
// about world up and vertical motion pitches about the local right axis.
// When the entity has a Camera, rotation goes through it so the pitch lock
// applies.
type MouseLook struct {
	ComponentBase

	// Sensitivity is radians per pixel of mouse travel.
	Sensitivity float32
	// Button must be held for the look to apply, unless Always is set.
	Button MouseButton
	Always bool
	Invert bool
}

// NewMouseLook returns a look controller active while the right button is
// held.
func NewMouseLook() *MouseLook {
	return &MouseLook{Sensitivity: 0.003, Button: ebiten.MouseButtonRight}
}

func (m *MouseLook) OnUpdate(float32) {
	in := m.App().Input()
	if !m.Always && !in.ButtonDown(m.Button) {
		return
	}
	d := in.MouseDelta()
	if d.X == 0 && d.Y == 0 {
		return
	}
	yaw := -d.X * m.Sensitivity
	pitch := -d.Y * m.Sensitivity
	if m.Invert {
		pitch = -pitch
	}
	if cam, ok := GetComponent[*Camera](m.Entity()); ok {
		cam.Rotate(AxisUp, yaw)
		cam.RotateLocal(AxisRight, pitch)
		return
	}
	t := m.Transform()
	t.Rotate(AxisUp, yaw)
	t.RotateLocal(AxisRight, pitch)
}
