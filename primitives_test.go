package birch

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vertexAt returns the position and normal of vertex i of a primitive mesh.
func vertexAt(m *Mesh, i uint32) (pos, normal mgl32.Vec3) {
	v := m.Vertices()[int(i)*primitiveStride:]
	return mgl32.Vec3{v[0], v[1], v[2]}, mgl32.Vec3{v[3], v[4], v[5]}
}

// assertOutwardWinding checks every triangle winds counter-clockwise when
// seen from the side its normal points to.
func assertOutwardWinding(t *testing.T, m *Mesh) {
	t.Helper()
	idx := m.Indices()
	for i := 0; i+2 < len(idx); i += 3 {
		p0, n := vertexAt(m, idx[i])
		p1, _ := vertexAt(m, idx[i+1])
		p2, _ := vertexAt(m, idx[i+2])
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		if face.Dot(n) <= 0 {
			t.Errorf("%s: triangle %d winds away from its normal %v", m.Name, i/3, n)
		}
	}
}

func TestCubeMesh(t *testing.T) {
	m := NewCubeMesh("box", mgl32.Vec3{2, 4, 6})
	assert.Equal(t, 24, m.VertexCount())
	assert.Len(t, m.Indices(), 36)
	assert.Equal(t, primitiveStride, m.Stride())
	assertOutwardWinding(t, m)

	for i := uint32(0); i < 24; i++ {
		p, n := vertexAt(m, i)
		assertNear(t, 1, math32.Abs(p.X()), "x extent")
		assertNear(t, 2, math32.Abs(p.Y()), "y extent")
		assertNear(t, 3, math32.Abs(p.Z()), "z extent")
		assertNear(t, 1, n.Len(), "unit normal")
		assert.Greater(t, p.Dot(n), float32(0), "normal points away from center")
	}
}

func TestPlaneMesh(t *testing.T) {
	m := NewPlaneMesh("grid", 4, 2, 3, 2)
	assert.Equal(t, 12, m.VertexCount())
	assert.Len(t, m.Indices(), 36)
	assertOutwardWinding(t, m)

	first, n := vertexAt(m, 0)
	last, _ := vertexAt(m, 11)
	assertVec3Near(t, mgl32.Vec3{-2, 0, -1}, first, "first corner")
	assertVec3Near(t, mgl32.Vec3{2, 0, 1}, last, "far corner")
	assertVec3Near(t, AxisUp, n, "faces up")

	clamped := NewPlaneMesh("clamped", 1, 1, 0, -3)
	assert.Equal(t, 4, clamped.VertexCount())
	assert.Len(t, clamped.Indices(), 6)
}

func TestPrimitivesAreShared(t *testing.T) {
	app := newTestApp(t)
	p := app.Primitives()
	assert.Same(t, p.Cube(), p.Cube())
	assert.Same(t, p.Plane(), p.Plane())
	assert.Equal(t, 24, p.Cube().VertexCount())
	assert.Equal(t, 4, p.Plane().VertexCount())
}

func TestCreateCubeAndPlane(t *testing.T) {
	app := newTestApp(t)
	parent := app.NewEntity("parent", nil)

	e, r := app.CreateCube("cube", parent, nil)
	require.NotNil(t, r)
	assert.Same(t, parent, e.Parent())
	assert.Same(t, app.Primitives().Cube(), r.Mesh())
	assert.Same(t, app.Material(DefaultMaterial), r.Material(), "nil selects the default material")

	glass := app.Material(DefaultTranslucentMaterial)
	e2, r2 := app.CreatePlane("floor", nil, glass)
	assert.Same(t, app.Root(), e2.Parent())
	assert.Same(t, app.Primitives().Plane(), r2.Mesh())
	assert.Same(t, glass, r2.Material())
	assert.Equal(t, 2, app.Renderer().Len())
}
