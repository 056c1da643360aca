package birch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Unit axes in the engine's right-handed frame. Forward looks down -Z.
var (
	AxisRight   = mgl32.Vec3{1, 0, 0}
	AxisUp      = mgl32.Vec3{0, 1, 0}
	AxisForward = mgl32.Vec3{0, 0, -1}
)

// Transform is the spatial component every Entity owns. It stores the local
// position, rotation and scale relative to the parent entity and derives the
// world values by walking up the parent chain.
type Transform struct {
	ComponentBase

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

func newTransform() *Transform {
	return &Transform{
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Destroy is a no-op. A transform lives exactly as long as its entity.
func (t *Transform) Destroy() {}

func (t *Transform) parent() *Transform {
	e := t.Entity()
	if e == nil {
		return nil
	}
	if p := e.Parent(); p != nil {
		return p.transform
	}
	return nil
}

// --- Local ---

// Position returns the position relative to the parent.
func (t *Transform) Position() mgl32.Vec3 { return t.position }

// SetPosition sets the position relative to the parent.
func (t *Transform) SetPosition(p mgl32.Vec3) { t.position = p }

// Rotation returns the rotation relative to the parent.
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }

// SetRotation sets the rotation relative to the parent. The value is
// normalized.
func (t *Transform) SetRotation(q mgl32.Quat) { t.rotation = normalizeQuat(q) }

// Scale returns the local scale.
func (t *Transform) Scale() mgl32.Vec3 { return t.scale }

// SetScale sets the local scale.
func (t *Transform) SetScale(s mgl32.Vec3) { t.scale = s }

// Translate moves the transform by delta in the parent's frame.
func (t *Transform) Translate(delta mgl32.Vec3) { t.position = t.position.Add(delta) }

// TranslateLocal moves the transform by delta expressed in its own rotated
// frame.
func (t *Transform) TranslateLocal(delta mgl32.Vec3) {
	t.position = t.position.Add(t.rotation.Rotate(delta))
}

// Rotate left-multiplies the local rotation by an axis-angle rotation, so the
// axis is expressed in the parent's frame.
func (t *Transform) Rotate(axis mgl32.Vec3, radians float32) {
	if axis.Len() == 0 {
		return
	}
	q := mgl32.QuatRotate(radians, axis.Normalize())
	t.rotation = normalizeQuat(q.Mul(t.rotation))
}

// RotateLocal right-multiplies the local rotation, so the axis is expressed in
// the transform's own frame.
func (t *Transform) RotateLocal(axis mgl32.Vec3, radians float32) {
	if axis.Len() == 0 {
		return
	}
	q := mgl32.QuatRotate(radians, axis.Normalize())
	t.rotation = normalizeQuat(t.rotation.Mul(q))
}

// LocalMatrix composes the local translation, rotation and scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	return composeTRS(t.position, t.rotation, t.scale)
}

// LocalForward returns -Z rotated by the local rotation.
func (t *Transform) LocalForward() mgl32.Vec3 { return t.rotation.Rotate(AxisForward) }

// LocalRight returns +X rotated by the local rotation.
func (t *Transform) LocalRight() mgl32.Vec3 { return t.rotation.Rotate(AxisRight) }

// LocalUp returns +Y rotated by the local rotation.
func (t *Transform) LocalUp() mgl32.Vec3 { return t.rotation.Rotate(AxisUp) }

// --- World ---

// WorldPosition returns parent.WorldPosition + parent.WorldRotation * local
// position, recursively.
func (t *Transform) WorldPosition() mgl32.Vec3 {
	p := t.parent()
	if p == nil {
		return t.position
	}
	return p.WorldPosition().Add(p.WorldRotation().Rotate(t.position))
}

// SetWorldPosition solves for the local position that places the transform at
// world position w under its current parent.
func (t *Transform) SetWorldPosition(w mgl32.Vec3) {
	p := t.parent()
	if p == nil {
		t.position = w
		return
	}
	t.position = p.WorldRotation().Inverse().Rotate(w.Sub(p.WorldPosition()))
}

// WorldRotation returns parent.WorldRotation * local rotation, recursively.
func (t *Transform) WorldRotation() mgl32.Quat {
	p := t.parent()
	if p == nil {
		return t.rotation
	}
	return normalizeQuat(p.WorldRotation().Mul(t.rotation))
}

// SetWorldRotation solves for the local rotation that yields world rotation q.
func (t *Transform) SetWorldRotation(q mgl32.Quat) {
	p := t.parent()
	if p == nil {
		t.SetRotation(q)
		return
	}
	t.SetRotation(p.WorldRotation().Inverse().Mul(q))
}

// WorldScale is the component-wise product of the parent chain's scales.
// Rotation does not skew scale.
func (t *Transform) WorldScale() mgl32.Vec3 {
	p := t.parent()
	if p == nil {
		return t.scale
	}
	ps := p.WorldScale()
	return mgl32.Vec3{ps[0] * t.scale[0], ps[1] * t.scale[1], ps[2] * t.scale[2]}
}

// Matrix returns the local-to-world matrix T * R * S built from the world
// position, rotation and scale. Vertices are transformed as column vectors.
func (t *Transform) Matrix() mgl32.Mat4 {
	return composeTRS(t.WorldPosition(), t.WorldRotation(), t.WorldScale())
}

// RotationMatrix returns the world rotation as a matrix, used to transform
// normals.
func (t *Transform) RotationMatrix() mgl32.Mat4 { return t.WorldRotation().Mat4() }

// Forward returns -Z rotated by the world rotation.
func (t *Transform) Forward() mgl32.Vec3 { return t.WorldRotation().Rotate(AxisForward) }

// Right returns +X rotated by the world rotation.
func (t *Transform) Right() mgl32.Vec3 { return t.WorldRotation().Rotate(AxisRight) }

// Up returns +Y rotated by the world rotation.
func (t *Transform) Up() mgl32.Vec3 { return t.WorldRotation().Rotate(AxisUp) }

// LookAt rotates the transform so Forward points at the world-space target.
// Nothing changes when the target coincides with the transform's position.
func (t *Transform) LookAt(target, up mgl32.Vec3) {
	f := target.Sub(t.WorldPosition())
	if f.Len() < 1e-6 {
		return
	}
	t.SetWorldRotation(lookRotation(f.Normalize(), up))
}

// EulerAngles returns pitch (X), yaw (Y) and roll (Z) in radians for the local
// rotation, decomposed in yaw-pitch-roll order.
func (t *Transform) EulerAngles() mgl32.Vec3 { return quatToEuler(t.rotation) }

// SetEulerAngles sets the local rotation from pitch (X), yaw (Y) and roll (Z)
// in radians, applied roll first, then pitch, then yaw.
func (t *Transform) SetEulerAngles(e mgl32.Vec3) { t.rotation = eulerToQuat(e) }

// --- Helpers ---

func composeTRS(p mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

func normalizeQuat(q mgl32.Quat) mgl32.Quat {
	l := q.Len()
	if l < 1e-8 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
}

func eulerToQuat(e mgl32.Vec3) mgl32.Quat {
	yaw := mgl32.QuatRotate(e[1], AxisUp)
	pitch := mgl32.QuatRotate(e[0], AxisRight)
	roll := mgl32.QuatRotate(e[2], mgl32.Vec3{0, 0, 1})
	return normalizeQuat(yaw.Mul(pitch).Mul(roll))
}

func quatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := q.Mat4()
	sx := -m.At(1, 2)
	sx = math32.Max(-1, math32.Min(1, sx))
	return mgl32.Vec3{
		math32.Asin(sx),
		math32.Atan2(m.At(0, 2), m.At(2, 2)),
		math32.Atan2(m.At(1, 0), m.At(1, 1)),
	}
}

// lookRotation returns the rotation whose forward (-Z) is f and whose up is as
// close to up as possible. f must be normalized.
func lookRotation(f, up mgl32.Vec3) mgl32.Quat {
	r := f.Cross(up)
	if r.Len() < 1e-6 {
		// f is parallel to up; pick any perpendicular right vector.
		r = f.Cross(AxisRight)
		if r.Len() < 1e-6 {
			r = f.Cross(mgl32.Vec3{0, 0, 1})
		}
	}
	r = r.Normalize()
	u := r.Cross(f)
	m := mgl32.Mat4{
		r[0], r[1], r[2], 0,
		u[0], u[1], u[2], 0,
		-f[0], -f[1], -f[2], 0,
		0, 0, 0, 1,
	}
	return normalizeQuat(mgl32.Mat4ToQuat(m))
}

// RotationBetween returns the shortest rotation taking direction a onto b.
func RotationBetween(a, b mgl32.Vec3) mgl32.Quat {
	if a.Len() == 0 || b.Len() == 0 {
		return mgl32.QuatIdent()
	}
	a, b = a.Normalize(), b.Normalize()
	d := a.Dot(b)
	if d >= 1-1e-6 {
		return mgl32.QuatIdent()
	}
	if d <= -1+1e-6 {
		axis := AxisRight.Cross(a)
		if axis.Len() < 1e-6 {
			axis = AxisUp.Cross(a)
		}
		return mgl32.QuatRotate(math32.Pi, axis.Normalize())
	}
	c := a.Cross(b)
	return normalizeQuat(mgl32.Quat{W: 1 + d, V: c})
}
