package birch

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Handles to device-side objects. Zero is never a valid handle.
type (
	BufferID  uint32
	ProgramID uint32
	TextureID uint32
	SurfaceID uint32
)

// DefaultSurface addresses the device's default framebuffer.
const DefaultSurface SurfaceID = 0

// Device is the graphics boundary the engine draws through. It mirrors the
// fixed-function state of a GL context: one bound program, one bound vertex
// and index buffer, blend/depth/color-mask state, and a bound render surface.
//
// Devices are not safe for concurrent use. All calls happen on the thread
// that drives the frame loop.
type Device interface {
	CreateBuffer() BufferID
	UploadVertices(id BufferID, data []float32)
	UploadIndices(id BufferID, data []uint32)
	DeleteBuffer(id BufferID)

	CreateProgram(src ShaderSource) (ProgramID, error)
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)
	// SetUniform sets a uniform on the program in use. Unknown names are
	// ignored. A nil value restores the program's default.
	SetUniform(name string, v ParamValue)

	CreateTexture(img image.Image) TextureID
	DeleteTexture(id TextureID)
	BindTexture(unit int, id TextureID)

	BindVertexBuffer(id BufferID, layout []VertexAttribute)
	BindIndexBuffer(id BufferID)
	DrawArrays(mode Topology, first, count int)
	DrawElements(mode Topology, count int)

	SetBlend(enabled bool)
	SetBlendFunc(src, dst BlendFactor)
	SetDepthTest(enabled bool)
	SetDepthFunc(fn DepthFunc)
	SetDepthMask(write bool)
	SetColorMask(write bool)
	SetMultisample(enabled bool)
	SetAlphaToCoverage(enabled bool)

	CreateSurface(width, height, samples int) SurfaceID
	DeleteSurface(id SurfaceID)
	BindSurface(id SurfaceID)
	// ResolveSurface averages the samples of src into dst.
	ResolveSurface(src, dst SurfaceID)
	// Viewport resizes the default framebuffer.
	Viewport(width, height int)
	// Clear clears color and depth of the bound surface.
	Clear(c Color)
	// ReadPixels returns the resolved straight-alpha pixels of a surface.
	ReadPixels(id SurfaceID) *image.NRGBA

	// Err returns and clears the first error recorded since the last call.
	Err() error
}

// ShaderSource is what a Device compiles into a program. Program carries the
// executable stages for devices that run shaders on the CPU. Sections holds
// named source sections for devices that compile text.
type ShaderSource struct {
	Name     string
	Program  Program
	Sections map[string]string
}

// Program is a pair of CPU shader stages.
//
// Vertex writes Varyings() floats into out and returns the clip-space
// position. Fragment receives the perspective-correct interpolated varyings
// and returns the fragment color, or false to discard.
type Program interface {
	Varyings() int
	Vertex(in VertexInput, u Uniforms, out []float32) mgl32.Vec4
	Fragment(in []float32, u Uniforms) (mgl32.Vec4, bool)
}

// VertexInput exposes the attributes of one vertex.
type VertexInput interface {
	// Attrib returns the components of the named attribute, or nil when the
	// bound layout has no such attribute.
	Attrib(name string) []float32
}

// Uniforms exposes the uniform values of the program in use.
type Uniforms interface {
	Float(name string) (float32, bool)
	Vec3(name string) (mgl32.Vec3, bool)
	Vec4(name string) (mgl32.Vec4, bool)
	Mat4(name string) (mgl32.Mat4, bool)
	Sampler(name string) Sampler
}

// Sampler reads a bound texture with normalized coordinates.
type Sampler interface {
	Sample(u, v float32) mgl32.Vec4
}
