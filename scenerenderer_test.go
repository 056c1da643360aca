package birch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecordingApp(t *testing.T) (*App, *recordingDevice) {
	t.Helper()
	dev := newRecordingDevice()
	app, err := NewApp(testConfig(), dev)
	require.NoError(t, err)
	app.SetLogger(zap.NewNop())
	return app, dev
}

func populate(app *App, opaque, translucent int) {
	glass := app.Material(DefaultTranslucentMaterial)
	for i := 0; i < opaque; i++ {
		app.CreateCube("opaque", nil, nil)
	}
	for i := 0; i < translucent; i++ {
		app.CreateCube("glass", nil, glass)
	}
}

func TestRenderIssuesOnePlusTwoDrawsPerRenderer(t *testing.T) {
	cases := []struct{ opaque, translucent int }{
		{0, 0}, {1, 0}, {0, 1}, {3, 2}, {5, 5},
	}
	for _, c := range cases {
		app, dev := newRecordingApp(t)
		populate(app, c.opaque, c.translucent)
		dev.resetDraws()

		st := app.Renderer().Render(app.ActiveCamera(), 0)
		want := c.opaque + 2*c.translucent
		assert.Len(t, dev.draws, want, "opaque %d translucent %d", c.opaque, c.translucent)
		assert.Equal(t, want, st.DrawCalls)
		assert.Equal(t, c.opaque, st.OpaqueDraws)
		assert.Equal(t, 2*c.translucent, st.TranslucentDraws)
	}
}

func TestRenderPassState(t *testing.T) {
	app, dev := newRecordingApp(t)
	populate(app, 3, 2)
	dev.resetDraws()

	app.Renderer().Render(app.ActiveCamera(), 0)
	require.Len(t, dev.draws, 7)

	for i, d := range dev.draws[:3] {
		assert.True(t, d.state.colorMask, "opaque draw %d writes color", i)
		assert.True(t, d.state.depthMask, "opaque draw %d writes depth", i)
		assert.True(t, d.state.depthTest)
		assert.Equal(t, DepthLess, d.state.depthFunc)
		assert.Equal(t, float32(1), d.color[3], "opaque draw %d uses the opaque material", i)
	}
	for i, d := range dev.draws[3:5] {
		assert.False(t, d.state.colorMask, "pre-pass draw %d writes no color", i)
		assert.True(t, d.state.depthMask, "pre-pass draw %d writes depth", i)
		assert.Equal(t, DepthLess, d.state.depthFunc)
	}
	for i, d := range dev.draws[5:] {
		assert.True(t, d.state.colorMask, "color draw %d writes color", i)
		assert.False(t, d.state.depthMask, "color draw %d writes no depth", i)
		assert.Equal(t, DepthLessEqual, d.state.depthFunc)
		assert.True(t, d.state.blend)
		assert.Equal(t, BlendSrcAlpha, d.state.blendSrc)
		assert.Equal(t, BlendOneMinusSrcAlpha, d.state.blendDst)
		assert.Equal(t, float32(0.5), d.color[3])
	}

	// Defaults are restored for whoever draws next.
	assert.True(t, dev.state.colorMask)
	assert.True(t, dev.state.depthMask)
	assert.Equal(t, DepthLess, dev.state.depthFunc)
}

func TestRenderOpaqueFirstRegardlessOfRegistration(t *testing.T) {
	app, dev := newRecordingApp(t)
	populate(app, 0, 1)
	populate(app, 1, 0)
	dev.resetDraws()

	app.Renderer().Render(app.ActiveCamera(), 0)
	require.Len(t, dev.draws, 3)
	assert.Equal(t, float32(1), dev.draws[0].color[3])
	assert.True(t, dev.draws[0].state.depthMask)
	assert.False(t, dev.draws[1].state.colorMask)
	assert.False(t, dev.draws[2].state.depthMask)
}

func TestRenderBindsOncePerGroup(t *testing.T) {
	app, dev := newRecordingApp(t)
	populate(app, 5, 3)
	dev.resetDraws()

	st := app.Renderer().Render(app.ActiveCamera(), 0)
	// One opaque group, one translucent group drawn in two passes.
	assert.Equal(t, 3, dev.vertexBinds)
	assert.Equal(t, 3, dev.programBinds)
	assert.Equal(t, 2, st.Groups)
	assert.Equal(t, 11, st.DrawCalls)
}

func TestRenderGroupsByMesh(t *testing.T) {
	app, dev := newRecordingApp(t)
	app.CreateCube("a", nil, nil)
	app.CreatePlane("b", nil, nil)
	app.CreateCube("c", nil, nil)
	dev.resetDraws()

	st := app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Equal(t, 2, dev.vertexBinds)
	assert.Equal(t, 2, st.Groups)
	require.Len(t, dev.draws, 3)
	assert.Equal(t, 36, dev.draws[0].count)
	assert.Equal(t, 36, dev.draws[1].count, "cube instances draw together")
	assert.Equal(t, 6, dev.draws[2].count)
}

func TestRenderUploadsMeshOnce(t *testing.T) {
	app, dev := newRecordingApp(t)
	populate(app, 4, 0)
	app.Renderer().Render(app.ActiveCamera(), 0)
	app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Equal(t, 1, dev.vertexUploads)
	assert.Equal(t, 1, app.Primitives().Cube().Uploads())
}

func TestRenderEmptySceneAndNilCamera(t *testing.T) {
	app, dev := newRecordingApp(t)
	st := app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Equal(t, RenderStats{}, st)
	assert.Empty(t, dev.draws)

	populate(app, 1, 1)
	st = app.Renderer().Render(nil, 0)
	assert.Equal(t, RenderStats{}, st)
	assert.Empty(t, dev.draws)
}

func TestRenderSkipsUnlinkedAndEmptyGroups(t *testing.T) {
	app, dev := newRecordingApp(t)
	bad, err := CompileShader(dev, ShaderSource{Name: "broken"})
	require.Error(t, err)
	require.False(t, bad.Linked())

	app.CreateCube("broken-opaque", nil, NewMaterial("broken", bad, RenderOpaque))
	app.CreateCube("broken-glass", nil, NewMaterial("broken-glass", bad, RenderTranslucent))
	e := app.NewEntity("empty", nil)
	_, err = AddComponent(e, NewMeshRenderer(NewMesh("empty"), nil))
	require.NoError(t, err)
	populate(app, 1, 0)
	dev.resetDraws()

	st := app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Equal(t, 3, st.SkippedGroups)
	assert.Equal(t, 1, st.DrawCalls)
	assert.Len(t, dev.draws, 1)
}

func TestAddRendererIsIdempotent(t *testing.T) {
	app, _ := newRecordingApp(t)
	_, r := app.CreateCube("a", nil, nil)
	sr := app.Renderer()
	require.Equal(t, 1, sr.Len())

	sr.AddRenderer(r)
	sr.AddRenderer(r)
	assert.Equal(t, 1, sr.Len())
	assert.Len(t, sr.Renderers(r.Mesh(), r.Material()), 1)

	sr.RemoveRenderer(r)
	sr.RemoveRenderer(r)
	assert.Equal(t, 0, sr.Len())
	assert.Nil(t, sr.Renderers(r.Mesh(), r.Material()))

	sr.AddRenderer(nil)
	sr.AddRenderer(&MeshRenderer{})
	assert.Equal(t, 0, sr.Len())
}

func TestSetMaterialMovesRendererBetweenGroups(t *testing.T) {
	app, dev := newRecordingApp(t)
	_, r := app.CreateCube("a", nil, nil)
	opaque := app.Material(DefaultMaterial)
	glass := app.Material(DefaultTranslucentMaterial)
	cube := app.Primitives().Cube()

	r.SetMaterial(glass)
	assert.Nil(t, app.Renderer().Renderers(cube, opaque))
	assert.Equal(t, []*MeshRenderer{r}, app.Renderer().Renderers(cube, glass))
	assert.Equal(t, 1, app.Renderer().Len())

	dev.resetDraws()
	app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Len(t, dev.draws, 2, "now drawn in both translucent passes")

	plane := app.Primitives().Plane()
	r.SetMesh(plane)
	assert.Nil(t, app.Renderer().Renderers(cube, glass))
	assert.Equal(t, []*MeshRenderer{r}, app.Renderer().Renderers(plane, glass))
}

func TestDestroyedRendererIsUnregistered(t *testing.T) {
	app, dev := newRecordingApp(t)
	e, _ := app.CreateCube("a", nil, nil)
	populate(app, 1, 0)
	require.Equal(t, 2, app.Renderer().Len())

	e.Destroy()
	app.Tick(0.016)
	assert.Equal(t, 1, app.Renderer().Len())

	dev.resetDraws()
	app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Len(t, dev.draws, 1)
}

func TestPerInstanceParamsAreRestored(t *testing.T) {
	app, dev := newRecordingApp(t)
	_, red := app.CreateCube("red", nil, nil)
	red.Params.SetColor(UniformColor, Color{R: 1, A: 1})
	app.CreateCube("plain", nil, nil)
	dev.resetDraws()

	app.Renderer().Render(app.ActiveCamera(), 0)
	require.Len(t, dev.draws, 2)
	assert.Equal(t, Float32s{1, 0, 0, 1}, dev.draws[0].color)
	assert.Equal(t, Float32s{1, 1, 1, 1}, dev.draws[1].color)
}

func TestPerInstanceParamsDoNotLeakPastTheirInstance(t *testing.T) {
	app, dev := newRecordingApp(t)
	bare := NewMaterial("bare", app.Shader(DefaultShader), RenderOpaque)
	_, left := app.CreateCube("left", nil, bare)
	left.Params.SetColor(UniformColor, Color{R: 1, A: 1})
	left.Params.SetFloats(UniformTime, 9)
	left.Params.SetInts(UniformSamplerCount, 3)
	app.CreateCube("right", nil, bare)

	for frame := 0; frame < 2; frame++ {
		dev.resetDraws()
		app.Renderer().Render(app.ActiveCamera(), 0.5)
		require.Len(t, dev.draws, 2)
		assert.Equal(t, Float32s{1, 0, 0, 1}, dev.draws[0].color, "frame %d override", frame)
		assert.Nil(t, dev.draws[1].color, "frame %d falls back to the program default", frame)
	}
	_, set := dev.uniforms[UniformColor]
	assert.False(t, set)
	assert.Equal(t, Float32s{0.5}, dev.uniforms[UniformTime], "group value restored")
	assert.Equal(t, Int32s{0}, dev.uniforms[UniformSamplerCount], "material binding restored")
}

func TestDrawHooksRunForTranslucentOnly(t *testing.T) {
	app, _ := newRecordingApp(t)
	_, glass := app.CreateCube("glass", nil, app.Material(DefaultTranslucentMaterial))
	_, solid := app.CreateCube("solid", nil, nil)

	var pre, post, solidCalls int
	glass.OnPreDraw = func(Device) { pre++ }
	glass.OnPostDraw = func(Device) { post++ }
	solid.OnPreDraw = func(Device) { solidCalls++ }

	app.Renderer().Render(app.ActiveCamera(), 0)
	assert.Equal(t, 2, pre)
	assert.Equal(t, 2, post)
	assert.Zero(t, solidCalls)
}

func TestRenderUploadsModelViewProjection(t *testing.T) {
	app, dev := newRecordingApp(t)
	e, _ := app.CreateCube("a", nil, nil)
	e.Transform().SetPosition(mgl32.Vec3{1, 2, -5})
	dev.resetDraws()

	cam := app.ActiveCamera()
	app.Renderer().Render(cam, 0)
	require.Len(t, dev.draws, 1)
	assert.True(t, dev.draws[0].mvp.ApproxEqual(cam.ModelViewProjection(e.Transform())))
}

func TestRenderMultisampledSinglePass(t *testing.T) {
	app, dev := newRecordingApp(t)
	populate(app, 2, 3)
	dev.resetDraws()

	st := app.Renderer().RenderMultisampled(app.ActiveCamera(), 0)
	require.Len(t, dev.draws, 5)
	assert.Equal(t, 2, st.OpaqueDraws)
	assert.Equal(t, 3, st.TranslucentDraws)
	for _, d := range dev.draws {
		assert.True(t, d.state.a2c)
		assert.True(t, d.state.colorMask)
		assert.True(t, d.state.depthMask)
	}
	assert.False(t, dev.state.a2c)
}

func TestRenderToSurfaceRestoresDefault(t *testing.T) {
	app, dev := newRecordingApp(t)
	populate(app, 1, 0)
	surf := NewSurface(dev, 8, 8, 1)

	st := app.Renderer().RenderToSurface(app.ActiveCamera(), surf, 0)
	assert.Equal(t, 1, st.DrawCalls)
	assert.Equal(t, DefaultSurface, dev.surface)
}
