package birch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleMesh() *Mesh {
	m := NewMesh("tri")
	m.SetLayout(VertexAttribute{Name: AttribPosition, Components: 3})
	m.SetVertices([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	return m
}

func TestMeshElementCount(t *testing.T) {
	m := NewMesh("empty")
	assert.Zero(t, m.ElementCount())

	m = triangleMesh()
	assert.Equal(t, 3, m.Stride())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 3, m.ElementCount())
	assert.False(t, m.Indexed())

	m.SetIndices([]uint32{0, 1, 2, 2, 1, 0})
	assert.True(t, m.Indexed())
	assert.Equal(t, 6, m.ElementCount())

	m.SetIndices(nil)
	assert.False(t, m.Indexed())
	assert.Equal(t, 3, m.ElementCount())
}

func TestMeshStrideFromLayout(t *testing.T) {
	m := NewMesh("m")
	m.SetLayout(PrimitiveLayout()...)
	assert.Equal(t, 8, m.Stride())

	m.SetLayout(
		VertexAttribute{Name: AttribPosition, Components: 3},
		VertexAttribute{Name: AttribUV, Components: 2},
	)
	assert.Equal(t, 5, m.Stride(), "packed layout sums components")
}

func TestMeshUploadsOncePerChange(t *testing.T) {
	dev := newRecordingDevice()
	m := triangleMesh()
	require.True(t, m.Dirty())

	m.Bind(dev)
	m.Bind(dev)
	assert.Equal(t, 1, m.Uploads())
	assert.False(t, m.Dirty())

	m.SetVertices([]float32{0, 0, 0, 2, 0, 0, 0, 2, 0})
	assert.True(t, m.Dirty())
	m.Bind(dev)
	m.Bind(dev)
	assert.Equal(t, 2, m.Uploads())
	assert.Equal(t, 2, dev.vertexUploads)
}

func TestMeshDrawUsesIndexedPath(t *testing.T) {
	dev := newRecordingDevice()
	m := triangleMesh()
	m.Bind(dev)
	m.Draw(dev, Triangles)

	m.SetIndices([]uint32{0, 1, 2, 0, 2, 1})
	m.Bind(dev)
	m.Draw(dev, Triangles)

	require.Len(t, dev.draws, 2)
	assert.Equal(t, 3, dev.draws[0].count)
	assert.Equal(t, 6, dev.draws[1].count)

	empty := NewMesh("empty")
	empty.Draw(dev, Triangles)
	assert.Len(t, dev.draws, 2, "empty meshes never draw")
}

func TestMeshDropsIndexBufferWhenUnindexed(t *testing.T) {
	dev := newRecordingDevice()
	m := triangleMesh()
	m.SetIndices([]uint32{0, 1, 2})
	m.Bind(dev)

	m.SetIndices(nil)
	m.Bind(dev)
	assert.Equal(t, 1, dev.deletedBuffers)
}

func TestMeshClone(t *testing.T) {
	dev := newRecordingDevice()
	m := triangleMesh()
	m.SetIndices([]uint32{0, 1, 2})
	m.Bind(dev)

	c := m.Clone("copy")
	assert.Equal(t, "copy", c.Name)
	assert.True(t, c.Dirty())
	assert.Zero(t, c.Uploads())
	assert.Equal(t, m.Vertices(), c.Vertices())
	assert.Equal(t, m.Indices(), c.Indices())
	assert.Equal(t, m.Layout(), c.Layout())

	c.Vertices()[0] = 42
	assert.Equal(t, float32(0), m.Vertices()[0], "clone owns its data")
}

func TestMeshDestroyReuploadsOnNextBind(t *testing.T) {
	dev := newRecordingDevice()
	m := triangleMesh()
	m.Bind(dev)
	m.Destroy()
	assert.Equal(t, 1, dev.deletedBuffers)
	assert.True(t, m.Dirty())

	m.Bind(dev)
	assert.Equal(t, 2, m.Uploads())
}

func TestMeshMovesToNewDevice(t *testing.T) {
	a, b := newRecordingDevice(), newRecordingDevice()
	m := triangleMesh()
	m.Bind(a)
	m.Bind(b)
	assert.Equal(t, 1, a.deletedBuffers)
	assert.Equal(t, 1, b.vertexUploads)
}
