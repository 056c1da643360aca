package birch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera defaults.
const (
	DefaultFOV  = 90
	DefaultNear = 0.1
	DefaultFar  = 120
)

// moveAnim holds active per-axis tweens started by MoveTo.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a perspective camera component. The projection is rebuilt lazily
// whenever the field of view, clip planes or viewport change. The view is the
// inverse of the owning entity's world transform, ignoring scale.
//
// The first camera initialized in an App becomes the active camera.
type Camera struct {
	ComponentBase

	// PitchLock keeps the camera's up vector within 90 degrees of world up
	// after every Rotate.
	PitchLock bool

	// LerpTranslation moves the camera toward PositionTarget each tick by
	// TransAccel * dt of the remaining distance.
	LerpTranslation bool
	PositionTarget  mgl32.Vec3
	TransAccel      float32

	// Target is the surface the camera renders into. Nil means the default
	// framebuffer.
	Target *Surface

	fov    float32 // degrees
	near   float32
	far    float32
	width  int
	height int

	projection mgl32.Mat4
	projDirty  bool

	followTarget EntityID
	followOffset mgl32.Vec3
	followLerp   float32

	move *moveAnim
}

// NewCamera creates a camera with the default projection.
func NewCamera() *Camera {
	return NewCameraWith(CameraConfig{FOV: DefaultFOV, Near: DefaultNear, Far: DefaultFar, PitchLock: true})
}

// NewCameraWith creates a camera from config values.
func NewCameraWith(cfg CameraConfig) *Camera {
	return &Camera{
		PitchLock:  cfg.PitchLock,
		TransAccel: 1,
		fov:        cfg.FOV,
		near:       cfg.Near,
		far:        cfg.Far,
		width:      1,
		height:     1,
		projDirty:  true,
	}
}

func (c *Camera) OnInit() {
	a := c.App()
	c.SetViewport(a.width, a.height)
	c.PositionTarget = c.Transform().Position()
	if a.activeCamera == nil {
		a.activeCamera = c
	}
}

func (c *Camera) OnDestroy() {
	if a := c.App(); a.activeCamera == c {
		a.activeCamera = nil
	}
}

func (c *Camera) OnUpdate(dt float32) {
	t := c.Transform()
	if c.move != nil {
		c.stepMove(t, dt)
	} else if target := c.App().Entity(c.followTarget); target != nil {
		want := target.Transform().WorldPosition().Add(c.followOffset)
		cur := t.WorldPosition()
		t.SetWorldPosition(cur.Add(want.Sub(cur).Mul(c.followLerp)))
		c.PositionTarget = t.Position()
	} else if c.LerpTranslation {
		k := math32.Min(1, c.TransAccel*dt)
		p := t.Position()
		t.SetPosition(p.Add(c.PositionTarget.Sub(p).Mul(k)))
	}
}

// --- Projection ---

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 { return c.fov }

// SetFOV sets the vertical field of view in degrees.
func (c *Camera) SetFOV(deg float32) {
	if deg != c.fov {
		c.fov = deg
		c.projDirty = true
	}
}

// Clip returns the near and far clip distances.
func (c *Camera) Clip() (near, far float32) { return c.near, c.far }

// SetClip sets the near and far clip distances.
func (c *Camera) SetClip(near, far float32) {
	if near != c.near || far != c.far {
		c.near, c.far = near, far
		c.projDirty = true
	}
}

// Viewport returns the viewport size in pixels.
func (c *Camera) Viewport() (int, int) { return c.width, c.height }

// SetViewport sets the viewport size, which determines the aspect ratio.
func (c *Camera) SetViewport(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width != c.width || height != c.height {
		c.width, c.height = width, height
		c.projDirty = true
	}
}

// Aspect returns width / height.
func (c *Camera) Aspect() float32 { return float32(c.width) / float32(c.height) }

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	if c.projDirty {
		c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), c.Aspect(), c.near, c.far)
		c.projDirty = false
	}
	return c.projection
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	t := c.Transform()
	p := t.WorldPosition()
	return t.WorldRotation().Inverse().Mat4().Mul4(mgl32.Translate3D(-p[0], -p[1], -p[2]))
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 { return c.Projection().Mul4(c.View()) }

// ModelViewProjection returns Projection * View * t.Matrix(), the matrix the
// vertex stage consumes.
func (c *Camera) ModelViewProjection(t *Transform) mgl32.Mat4 {
	return c.ViewProjection().Mul4(t.Matrix())
}

// NearPlaneSize returns the world-space width and height of the near plane.
func (c *Camera) NearPlaneSize() Vec2 {
	h := 2 * c.near * math32.Tan(mgl32.DegToRad(c.fov)/2)
	return Vec2{X: h * c.Aspect(), Y: h}
}

// --- Screen mapping ---

// WorldToScreen projects a world point to viewport pixels, origin top-left.
// ok is false when the point is behind the camera.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (s Vec2, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return Vec2{}, false
	}
	nx, ny := clip[0]/clip[3], clip[1]/clip[3]
	return Vec2{
		X: (nx + 1) * 0.5 * float32(c.width),
		Y: (1 - ny) * 0.5 * float32(c.height),
	}, true
}

// ScreenToWorld returns the world point on the near plane under the given
// viewport pixel.
func (c *Camera) ScreenToWorld(s Vec2) mgl32.Vec3 {
	ndc := mgl32.Vec4{
		2*s.X/float32(c.width) - 1,
		1 - 2*s.Y/float32(c.height),
		-1,
		1,
	}
	p := c.ViewProjection().Inv().Mul4x1(ndc)
	if p[3] == 0 {
		return c.Transform().WorldPosition()
	}
	return p.Vec3().Mul(1 / p[3])
}

// ScreenToDirection returns the normalized world ray direction through the
// given viewport pixel.
func (c *Camera) ScreenToDirection(s Vec2) mgl32.Vec3 {
	d := c.ScreenToWorld(s).Sub(c.Transform().WorldPosition())
	if d.Len() == 0 {
		return c.Transform().Forward()
	}
	return d.Normalize()
}

// --- Motion ---

// Rotate rotates the camera about a world axis and applies the pitch lock.
func (c *Camera) Rotate(axis mgl32.Vec3, radians float32) {
	c.Transform().Rotate(axis, radians)
	if c.PitchLock {
		c.lockPitch()
	}
}

// RotateLocal rotates the camera about an axis in its own frame and applies
// the pitch lock.
func (c *Camera) RotateLocal(axis mgl32.Vec3, radians float32) {
	c.Transform().RotateLocal(axis, radians)
	if c.PitchLock {
		c.lockPitch()
	}
}

// lockPitch counter-rotates about the camera's right axis when its up vector
// has tipped more than 90 degrees away from world up.
func (c *Camera) lockPitch() {
	t := c.Transform()
	up := t.Up()
	cos := math32.Max(-1, math32.Min(1, up.Dot(AxisUp)))
	delta := math32.Acos(cos) - math32.Pi/2
	if delta <= 0 {
		return
	}
	sign := float32(1)
	if t.Forward().Y() > 0 {
		sign = -1
	}
	fix := mgl32.QuatRotate(delta*sign, t.Right())
	t.SetWorldRotation(fix.Mul(t.WorldRotation()))
}

// MoveForward moves along the camera's forward vector.
func (c *Camera) MoveForward(d float32) { c.move3(c.Transform().Forward().Mul(d)) }

// MoveRight moves along the camera's right vector.
func (c *Camera) MoveRight(d float32) { c.move3(c.Transform().Right().Mul(d)) }

// MoveUp moves along the camera's up vector.
func (c *Camera) MoveUp(d float32) { c.move3(c.Transform().Up().Mul(d)) }

func (c *Camera) move3(delta mgl32.Vec3) {
	if c.LerpTranslation {
		c.PositionTarget = c.PositionTarget.Add(delta)
		return
	}
	c.Transform().Translate(delta)
	c.PositionTarget = c.Transform().Position()
}

// Follow keeps the camera at target's world position plus offset, closing
// lerp of the remaining distance every tick. A lerp of 1 snaps. A nil target
// is the same as Unfollow.
func (c *Camera) Follow(target *Entity, offset mgl32.Vec3, lerp float32) {
	if target == nil {
		c.Unfollow()
		return
	}
	c.followTarget = target.ID()
	c.followOffset = offset
	c.followLerp = math32.Max(0, math32.Min(1, lerp))
}

// Unfollow stops tracking the follow target.
func (c *Camera) Unfollow() { c.followTarget = EntityID{} }

// MoveTo animates the camera's local position to p over duration seconds.
// It takes priority over Follow and LerpTranslation until it finishes.
func (c *Camera) MoveTo(p mgl32.Vec3, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	from := c.Transform().Position()
	m := &moveAnim{}
	for i := range m.tweens {
		m.tweens[i] = gween.New(from[i], p[i], duration, fn)
	}
	c.move = m
}

func (c *Camera) stepMove(t *Transform, dt float32) {
	p := t.Position()
	done := true
	for i, tw := range c.move.tweens {
		if c.move.done[i] {
			continue
		}
		v, finished := tw.Update(dt)
		p[i] = v
		c.move.done[i] = finished
		done = done && finished
	}
	t.SetPosition(p)
	c.PositionTarget = p
	if done {
		c.move = nil
	}
}
