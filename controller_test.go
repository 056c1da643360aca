package birch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGhostControllerDirect(t *testing.T) {
	app := newTestApp(t)
	e := app.NewEntity("ghost", nil)
	g := NewGhostController()
	g.LerpTranslation = false
	_, err := AddComponent(e, g)
	require.NoError(t, err)

	app.Input().PressKey(ebiten.KeyW)
	app.Tick(1)
	assertVec3Near(t, mgl32.Vec3{0, 0, -0.2}, e.Transform().Position(), "forward")

	app.Input().ReleaseKey(ebiten.KeyW)
	app.Input().PressKey(ebiten.KeySpace)
	app.Tick(1)
	assertVec3Near(t, mgl32.Vec3{0, 0.2, -0.2}, e.Transform().Position(), "up")
}

func TestGhostControllerVelocity(t *testing.T) {
	app := newTestApp(t)
	e := app.NewEntity("ghost", nil)
	g := NewGhostController()
	g.Drag = 0.5
	_, err := AddComponent(e, g)
	require.NoError(t, err)

	app.Input().PressKey(ebiten.KeyD)
	app.Tick(1)
	assertVec3Near(t, mgl32.Vec3{0.2, 0, 0}, e.Transform().Position(), "first push")
	assertVec3Near(t, mgl32.Vec3{0.1, 0, 0}, g.Velocity, "drag applied")

	app.Input().ReleaseKey(ebiten.KeyD)
	app.Tick(1)
	assertVec3Near(t, mgl32.Vec3{0.3, 0, 0}, e.Transform().Position(), "coasts")

	g.Push(mgl32.Vec3{})
	assertVec3Near(t, mgl32.Vec3{0.05, 0, 0}, g.Velocity, "zero push ignored")
}

func TestMouseLookYaw(t *testing.T) {
	app := newTestApp(t)
	e := app.NewEntity("head", nil)
	look := NewMouseLook()
	look.Sensitivity = 0.01
	_, err := AddComponent(e, look)
	require.NoError(t, err)

	in := app.Input()
	in.MoveMouse(0, 0)
	app.Tick(0.016)
	in.MoveMouse(50, 0)
	app.Tick(0.016)
	assertQuatNear(t, mgl32.QuatIdent(), e.Transform().Rotation(), "button not held")

	in.PressButton(ebiten.MouseButtonRight)
	in.MoveMouse(100, 0)
	app.Tick(0.016)
	assertQuatNear(t, mgl32.QuatRotate(-0.5, AxisUp), e.Transform().Rotation(), "yaw about up")
}

func TestMouseLookUsesCameraPitchLock(t *testing.T) {
	app := newTestApp(t)
	camEntity := app.ActiveCamera().Entity()
	look := NewMouseLook()
	look.Always = true
	look.Sensitivity = 0.01
	_, err := AddComponent(camEntity, look)
	require.NoError(t, err)

	in := app.Input()
	in.MoveMouse(0, 300)
	app.Tick(0.016)
	in.MoveMouse(0, 0)
	app.Tick(0.016)
	assertVec3Near(t, AxisUp, camEntity.Transform().Forward(), "clamped looking straight up")
	assert.GreaterOrEqual(t, camEntity.Transform().Up().Y(), float32(-epsilon))
}
