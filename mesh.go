package birch

// VertexAttribute describes one attribute stream inside a Mesh's interleaved
// vertex array. Stride and Offset are measured in floats.
type VertexAttribute struct {
	Name       string
	Components int
	Stride     int
	Offset     int
	Normalize  bool
}

// Mesh is geometry shared by any number of MeshRenderers. Vertex data is an
// interleaved float array described by a layout, with an optional index
// stream. Device buffers are created on first use and re-uploaded at most
// once after each change.
//
// Mutating a shared mesh affects every renderer that references it. Clone a
// mesh for per-instance geometry.
type Mesh struct {
	Name string

	vertices []float32
	indices  []uint32
	indexed  bool
	layout   []VertexAttribute

	dev     Device
	vbo     BufferID
	ibo     BufferID
	dirty   bool
	uploads int
}

// NewMesh creates an empty mesh. An empty mesh has an element count of zero
// and is never drawn.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// SetVertices replaces the vertex data.
func (m *Mesh) SetVertices(v []float32) {
	m.vertices = v
	m.dirty = true
}

// SetIndices replaces the index data. A nil slice makes the mesh non-indexed.
func (m *Mesh) SetIndices(idx []uint32) {
	m.indices = idx
	m.indexed = idx != nil
	m.dirty = true
}

// SetLayout replaces the attribute layout.
func (m *Mesh) SetLayout(attrs ...VertexAttribute) {
	m.layout = append(m.layout[:0], attrs...)
}

// Vertices returns the vertex data. Call SetVertices after modifying it.
func (m *Mesh) Vertices() []float32 { return m.vertices }

// Indices returns the index data, or nil for non-indexed meshes.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Layout returns the attribute layout.
func (m *Mesh) Layout() []VertexAttribute { return m.layout }

// Indexed reports whether the mesh draws with an index stream.
func (m *Mesh) Indexed() bool { return m.indexed }

// Stride returns the vertex stride in floats.
func (m *Mesh) Stride() int {
	stride := 0
	for _, a := range m.layout {
		if a.Stride > stride {
			stride = a.Stride
		}
	}
	if stride == 0 {
		for _, a := range m.layout {
			stride += a.Components
		}
	}
	return stride
}

// VertexCount returns the number of whole vertices in the vertex data.
func (m *Mesh) VertexCount() int {
	s := m.Stride()
	if s == 0 {
		return 0
	}
	return len(m.vertices) / s
}

// ElementCount returns the number of elements a draw call consumes: the index
// count for indexed meshes, otherwise the vertex count. Meshes without vertex
// data or layout report zero.
func (m *Mesh) ElementCount() int {
	if len(m.vertices) == 0 || len(m.layout) == 0 {
		return 0
	}
	if m.indexed {
		return len(m.indices)
	}
	return m.VertexCount()
}

// Dirty reports whether the device buffers are out of date.
func (m *Mesh) Dirty() bool { return m.dirty || m.vbo == 0 }

// Uploads returns how many times the buffers have been uploaded.
func (m *Mesh) Uploads() int { return m.uploads }

// UpdateBuffers uploads vertex and index data to dev if it changed since the
// last upload. Buffers are created on first use.
func (m *Mesh) UpdateBuffers(dev Device) {
	if m.dev != nil && m.dev != dev {
		m.deleteBuffers()
	}
	if m.dev == dev && m.vbo != 0 && !m.dirty {
		return
	}
	m.dev = dev
	if m.vbo == 0 {
		m.vbo = dev.CreateBuffer()
	}
	dev.UploadVertices(m.vbo, m.vertices)
	if m.indexed {
		if m.ibo == 0 {
			m.ibo = dev.CreateBuffer()
		}
		dev.UploadIndices(m.ibo, m.indices)
	} else if m.ibo != 0 {
		dev.DeleteBuffer(m.ibo)
		m.ibo = 0
	}
	m.dirty = false
	m.uploads++
}

// Bind binds the mesh buffers on dev, uploading first if needed.
func (m *Mesh) Bind(dev Device) {
	m.UpdateBuffers(dev)
	dev.BindVertexBuffer(m.vbo, m.layout)
	dev.BindIndexBuffer(m.ibo)
}

// Draw issues one draw call for the whole mesh. Bind must have been called.
func (m *Mesh) Draw(dev Device, mode Topology) {
	n := m.ElementCount()
	if n == 0 {
		return
	}
	if m.indexed {
		dev.DrawElements(mode, n)
	} else {
		dev.DrawArrays(mode, 0, n)
	}
}

// Clone returns an independent copy of the geometry with no device buffers.
func (m *Mesh) Clone(name string) *Mesh {
	c := &Mesh{Name: name, indexed: m.indexed, dirty: true}
	c.vertices = append([]float32(nil), m.vertices...)
	if m.indexed {
		c.indices = append([]uint32{}, m.indices...)
	}
	c.layout = append([]VertexAttribute(nil), m.layout...)
	return c
}

// Destroy deletes the device buffers. The geometry stays in memory and is
// uploaded again if the mesh is drawn later.
func (m *Mesh) Destroy() {
	m.deleteBuffers()
	m.dirty = true
}

func (m *Mesh) deleteBuffers() {
	if m.dev == nil {
		return
	}
	if m.vbo != 0 {
		m.dev.DeleteBuffer(m.vbo)
		m.vbo = 0
	}
	if m.ibo != 0 {
		m.dev.DeleteBuffer(m.ibo)
		m.ibo = 0
	}
	m.dev = nil
}
