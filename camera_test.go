package birch

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestCameraProjectionFromApp(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	require.NotNil(t, cam)

	w, h := cam.Viewport()
	assert.Equal(t, 32, w)
	assert.Equal(t, 24, h)
	assertNear(t, 32.0/24.0, cam.Aspect(), "aspect")

	want := mgl32.Perspective(mgl32.DegToRad(90), 32.0/24.0, 0.1, 120)
	assert.True(t, cam.Projection().ApproxEqual(want))

	cam.SetFOV(60)
	cam.SetClip(1, 50)
	want = mgl32.Perspective(mgl32.DegToRad(60), 32.0/24.0, 1, 50)
	assert.True(t, cam.Projection().ApproxEqual(want), "projection rebuilt after changes")
	near, far := cam.Clip()
	assert.Equal(t, float32(1), near)
	assert.Equal(t, float32(50), far)
}

func TestCameraViewIsInverseOfTransform(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	tr := cam.Transform()
	tr.SetPosition(mgl32.Vec3{1, 2, 3})
	tr.Rotate(AxisUp, 0.6)
	tr.RotateLocal(AxisRight, -0.3)

	world := composeTRS(tr.WorldPosition(), tr.WorldRotation(), mgl32.Vec3{1, 1, 1})
	assert.True(t, cam.View().Mul4(world).ApproxEqualThreshold(mgl32.Ident4(), 1e-5))

	tr.SetScale(mgl32.Vec3{3, 3, 3})
	assert.True(t, cam.View().Mul4(world).ApproxEqualThreshold(mgl32.Ident4(), 1e-5), "scale is ignored")
}

func TestCameraWorldToScreen(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	cam.Transform().SetPosition(mgl32.Vec3{0, 0, 5})

	s, ok := cam.WorldToScreen(mgl32.Vec3{0, 0, 0})
	require.True(t, ok)
	assertNear(t, 16, s.X, "center x")
	assertNear(t, 12, s.Y, "center y")

	// With a 90 degree vertical FOV, a point one unit up at distance one
	// lands on the top edge.
	s, ok = cam.WorldToScreen(mgl32.Vec3{0, 1, 4})
	require.True(t, ok)
	assertNear(t, 0, s.Y, "top edge")

	_, ok = cam.WorldToScreen(mgl32.Vec3{0, 0, 10})
	assert.False(t, ok, "behind the camera")
}

func TestCameraScreenToWorld(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	cam.Transform().SetPosition(mgl32.Vec3{0, 0, 5})

	p := cam.ScreenToWorld(Vec2{X: 16, Y: 12})
	assertVec3Near(t, mgl32.Vec3{0, 0, 4.9}, p, "near plane center")
	assertVec3Near(t, AxisForward, cam.ScreenToDirection(Vec2{X: 16, Y: 12}), "center ray")

	d := cam.ScreenToDirection(Vec2{X: 16, Y: 0})
	assertVec3Near(t, mgl32.Vec3{0, 1, -1}.Normalize(), d, "top edge ray")

	round, ok := cam.WorldToScreen(cam.ScreenToWorld(Vec2{X: 5, Y: 20}))
	require.True(t, ok)
	assert.InDelta(t, 5, round.X, 1e-2)
	assert.InDelta(t, 20, round.Y, 1e-2)
}

func TestCameraNearPlaneSize(t *testing.T) {
	app := newTestApp(t)
	s := app.ActiveCamera().NearPlaneSize()
	assertNear(t, 0.2, s.Y, "height")
	assertNear(t, 0.2*32/24, s.X, "width")
}

func TestCameraPitchLock(t *testing.T) {
	for _, c := range []struct {
		name    string
		angle   float32
		forward mgl32.Vec3
	}{
		{"up", 2, mgl32.Vec3{0, 1, 0}},
		{"down", -2, mgl32.Vec3{0, -1, 0}},
	} {
		t.Run(c.name, func(t *testing.T) {
			app := newTestApp(t)
			cam := app.ActiveCamera()
			require.True(t, cam.PitchLock)

			cam.RotateLocal(AxisRight, c.angle)
			tr := cam.Transform()
			assert.GreaterOrEqual(t, tr.Up().Dot(AxisUp), float32(-epsilon))
			assertVec3Near(t, c.forward, tr.Forward(), "clamped at vertical")
		})
	}
}

func TestCameraPitchLockDisabled(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	cam.PitchLock = false
	cam.RotateLocal(AxisRight, 2)
	assertNear(t, math32.Cos(2), cam.Transform().Up().Y(), "tipped over")
}

func TestCameraPitchLockKeepsYaw(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	cam.Rotate(AxisUp, math32.Pi/2)
	cam.RotateLocal(AxisRight, 0.5)
	f := cam.Transform().Forward()
	assertNear(t, math32.Sin(0.5), f.Y(), "pitch within limits untouched")
	assert.Less(t, f.X(), float32(0), "still facing -X")
}

func TestCameraMoveTo(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	cam.MoveTo(mgl32.Vec3{0, 0, 10}, 1, ease.Linear)

	app.Tick(0.5)
	assertVec3Near(t, mgl32.Vec3{0, 0, 5}, cam.Transform().Position(), "halfway")
	app.Tick(0.5)
	assertVec3Near(t, mgl32.Vec3{0, 0, 10}, cam.Transform().Position(), "arrived")
	app.Tick(0.5)
	assertVec3Near(t, mgl32.Vec3{0, 0, 10}, cam.Transform().Position(), "stays after finishing")
}

func TestCameraFollow(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	target := app.NewEntity("target", nil)
	target.Transform().SetPosition(mgl32.Vec3{4, 0, 0})

	cam.Follow(target, mgl32.Vec3{0, 2, 6}, 0.5)
	app.Tick(0.016)
	assertVec3Near(t, mgl32.Vec3{2, 1, 3}, cam.Transform().WorldPosition(), "half the distance")

	cam.Follow(target, mgl32.Vec3{0, 2, 6}, 1)
	app.Tick(0.016)
	assertVec3Near(t, mgl32.Vec3{4, 2, 6}, cam.Transform().WorldPosition(), "snapped")

	target.Destroy()
	app.Tick(0.016)
	app.Tick(0.016)
	assertVec3Near(t, mgl32.Vec3{4, 2, 6}, cam.Transform().WorldPosition(), "stays when the target is gone")
}

func TestCameraFollowNilUnfollows(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	target := app.NewEntity("target", nil)
	target.Transform().SetPosition(mgl32.Vec3{4, 0, 0})
	cam.Follow(target, mgl32.Vec3{}, 1)
	app.Tick(0.016)
	assertVec3Near(t, mgl32.Vec3{4, 0, 0}, cam.Transform().WorldPosition(), "following")

	assert.NotPanics(t, func() { cam.Follow(nil, mgl32.Vec3{}, 1) })
	target.Transform().SetPosition(mgl32.Vec3{9, 0, 0})
	app.Tick(0.016)
	assertVec3Near(t, mgl32.Vec3{4, 0, 0}, cam.Transform().WorldPosition(), "no longer tracks")
}

func TestCameraLerpTranslation(t *testing.T) {
	app := newTestApp(t)
	cam := app.ActiveCamera()
	cam.LerpTranslation = true
	cam.TransAccel = 1

	cam.MoveForward(4)
	assertVec3Near(t, mgl32.Vec3{}, cam.Transform().Position(), "target moves first")
	assertVec3Near(t, mgl32.Vec3{0, 0, -4}, cam.PositionTarget, "position target")

	app.Tick(0.5)
	assertVec3Near(t, mgl32.Vec3{0, 0, -2}, cam.Transform().Position(), "half the gap")

	cam.LerpTranslation = false
	cam.MoveRight(1)
	cam.MoveUp(1)
	assertVec3Near(t, mgl32.Vec3{1, 1, -2}, cam.Transform().Position(), "immediate moves")
}

func TestActiveCamera(t *testing.T) {
	app := newTestApp(t)
	first := app.ActiveCamera()

	e := app.NewEntity("second", nil)
	second, err := AddComponent(e, NewCamera())
	require.NoError(t, err)
	assert.Same(t, first, app.ActiveCamera(), "first camera stays active")

	app.SetActiveCamera(second)
	assert.Same(t, second, app.ActiveCamera())

	e.Destroy()
	app.Tick(0.016)
	assert.Nil(t, app.ActiveCamera())
	assert.Equal(t, RenderStats{}, app.DrawScene(0))
}
