package birch

import "github.com/go-gl/mathgl/mgl32"

// primitiveStride is the float count of one primitive vertex:
// position (3), normal (3), uv (2).
const primitiveStride = 8

// PrimitiveLayout returns the attribute layout shared by every primitive
// mesh.
func PrimitiveLayout() []VertexAttribute {
	return []VertexAttribute{
		{Name: AttribPosition, Components: 3, Stride: primitiveStride, Offset: 0},
		{Name: AttribNormal, Components: 3, Stride: primitiveStride, Offset: 3},
		{Name: AttribUV, Components: 2, Stride: primitiveStride, Offset: 6},
	}
}

// cubeFaces lists each face as normal, tangent, bitangent with
// tangent x bitangent = normal so faces wind counter-clockwise from outside.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// NewCubeMesh builds a box centered on the origin with the given edge
// lengths. Each face has its own four vertices so normals and uvs stay flat.
func NewCubeMesh(name string, size mgl32.Vec3) *Mesh {
	half := size.Mul(0.5)
	verts := make([]float32, 0, 24*primitiveStride)
	inds := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for f, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		for _, c := range corners {
			p := n.Add(u.Mul(c[0])).Add(v.Mul(c[1]))
			p = mgl32.Vec3{p[0] * half[0], p[1] * half[1], p[2] * half[2]}
			verts = append(verts,
				p[0], p[1], p[2],
				n[0], n[1], n[2],
				(c[0]+1)/2, (c[1]+1)/2,
			)
		}
		base := uint32(f * 4)
		inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	}

	m := NewMesh(name)
	m.SetVertices(verts)
	m.SetIndices(inds)
	m.SetLayout(PrimitiveLayout()...)
	return m
}

// NewPlaneMesh builds a grid in the XZ plane centered on the origin, facing
// +Y. cols and rows are cell counts, so the grid has (cols+1)*(rows+1)
// vertices.
func NewPlaneMesh(name string, width, depth float32, cols, rows int) *Mesh {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	vcols := cols + 1
	vrows := rows + 1
	verts := make([]float32, 0, vcols*vrows*primitiveStride)
	inds := make([]uint32, 0, cols*rows*6)

	for r := 0; r < vrows; r++ {
		for c := 0; c < vcols; c++ {
			u := float32(c) / float32(cols)
			v := float32(r) / float32(rows)
			verts = append(verts,
				-width/2+width*u, 0, -depth/2+depth*v,
				0, 1, 0,
				u, v,
			)
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tl := uint32(r*vcols + c)
			tr := tl + 1
			bl := uint32((r+1)*vcols + c)
			br := bl + 1
			inds = append(inds, tl, bl, tr, tr, bl, br)
		}
	}

	m := NewMesh(name)
	m.SetVertices(verts)
	m.SetIndices(inds)
	m.SetLayout(PrimitiveLayout()...)
	return m
}

// Primitives caches one shared unit cube and unit plane per App.
type Primitives struct {
	cube  *Mesh
	plane *Mesh
}

func newPrimitives() *Primitives { return &Primitives{} }

// Cube returns the shared unit cube.
func (p *Primitives) Cube() *Mesh {
	if p.cube == nil {
		p.cube = NewCubeMesh("cube", mgl32.Vec3{1, 1, 1})
	}
	return p.cube
}

// Plane returns the shared 1x1 single-cell plane.
func (p *Primitives) Plane() *Mesh {
	if p.plane == nil {
		p.plane = NewPlaneMesh("plane", 1, 1, 1, 1)
	}
	return p.plane
}

func (p *Primitives) dispose() {
	if p.cube != nil {
		p.cube.Destroy()
	}
	if p.plane != nil {
		p.plane.Destroy()
	}
}

// CreateCube creates an entity under parent rendering the shared unit cube
// with mat. A nil mat uses the default material.
func (a *App) CreateCube(name string, parent *Entity, mat *Material) (*Entity, *MeshRenderer) {
	return a.createPrimitive(name, parent, a.primitives.Cube(), mat)
}

// CreatePlane creates an entity under parent rendering the shared unit
// plane with mat.
func (a *App) CreatePlane(name string, parent *Entity, mat *Material) (*Entity, *MeshRenderer) {
	return a.createPrimitive(name, parent, a.primitives.Plane(), mat)
}

func (a *App) createPrimitive(name string, parent *Entity, mesh *Mesh, mat *Material) (*Entity, *MeshRenderer) {
	e := a.NewEntity(name, parent)
	r, err := AddComponent(e, NewMeshRenderer(mesh, mat))
	if err != nil {
		// e and the renderer are both new, so this only fails on a broken
		// invariant.
		panic(err)
	}
	return e, r
}
