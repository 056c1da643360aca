package birch

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// deviceState is the fixed-function state captured with each draw.
type deviceState struct {
	blend     bool
	blendSrc  BlendFactor
	blendDst  BlendFactor
	depthTest bool
	depthFunc DepthFunc
	depthMask bool
	colorMask bool
	a2c       bool
}

type recordedDraw struct {
	state   deviceState
	program ProgramID
	count   int
	color   Float32s
	mvp     mgl32.Mat4
}

// recordingDevice is a Device that draws nothing and records every call the
// renderer makes.
type recordingDevice struct {
	nextID      uint32
	failCompile bool

	state    deviceState
	program  ProgramID
	uniforms map[string]ParamValue
	surface  SurfaceID
	width    int
	height   int

	draws          []recordedDraw
	vertexBinds    int
	programBinds   int
	vertexUploads  int
	deletedBuffers int
	programs       map[ProgramID]bool
	surfaces       map[SurfaceID][2]int
	clears         []SurfaceID
	resolves       int
}

var _ Device = (*recordingDevice)(nil)

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{
		uniforms: make(map[string]ParamValue),
		programs: make(map[ProgramID]bool),
		surfaces: make(map[SurfaceID][2]int),
		state:    deviceState{blend: true, depthTest: true, depthMask: true, colorMask: true},
	}
}

func (d *recordingDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *recordingDevice) CreateBuffer() BufferID              { return BufferID(d.id()) }
func (d *recordingDevice) UploadVertices(BufferID, []float32)  { d.vertexUploads++ }
func (d *recordingDevice) UploadIndices(BufferID, []uint32)    {}
func (d *recordingDevice) DeleteBuffer(BufferID)               { d.deletedBuffers++ }
func (d *recordingDevice) CreateTexture(image.Image) TextureID { return TextureID(d.id()) }
func (d *recordingDevice) DeleteTexture(TextureID)             {}
func (d *recordingDevice) BindTexture(int, TextureID)          {}
func (d *recordingDevice) BindIndexBuffer(BufferID)            {}
func (d *recordingDevice) SetBlend(enabled bool)               { d.state.blend = enabled }
func (d *recordingDevice) SetDepthTest(enabled bool)           { d.state.depthTest = enabled }
func (d *recordingDevice) SetDepthFunc(fn DepthFunc)           { d.state.depthFunc = fn }
func (d *recordingDevice) SetDepthMask(write bool)             { d.state.depthMask = write }
func (d *recordingDevice) SetColorMask(write bool)             { d.state.colorMask = write }
func (d *recordingDevice) SetMultisample(bool)                 {}
func (d *recordingDevice) SetAlphaToCoverage(enabled bool)     { d.state.a2c = enabled }
func (d *recordingDevice) BindSurface(id SurfaceID)            { d.surface = id }
func (d *recordingDevice) ResolveSurface(SurfaceID, SurfaceID) { d.resolves++ }
func (d *recordingDevice) Clear(Color)                         { d.clears = append(d.clears, d.surface) }
func (d *recordingDevice) Err() error                          { return nil }
func (d *recordingDevice) DeleteSurface(id SurfaceID)          { delete(d.surfaces, id) }
func (d *recordingDevice) Viewport(width, height int)          { d.width, d.height = width, height }
func (d *recordingDevice) DeleteProgram(id ProgramID)          { delete(d.programs, id) }

func (d *recordingDevice) BindVertexBuffer(BufferID, []VertexAttribute) {
	d.vertexBinds++
}

func (d *recordingDevice) SetBlendFunc(src, dst BlendFactor) {
	d.state.blendSrc, d.state.blendDst = src, dst
}

func (d *recordingDevice) CreateProgram(src ShaderSource) (ProgramID, error) {
	if d.failCompile || src.Program == nil {
		return 0, errors.New("compile failed")
	}
	id := ProgramID(d.id())
	d.programs[id] = true
	return id, nil
}

func (d *recordingDevice) UseProgram(id ProgramID) {
	d.program = id
	d.programBinds++
}

func (d *recordingDevice) SetUniform(name string, v ParamValue) {
	if v == nil {
		delete(d.uniforms, name)
		return
	}
	d.uniforms[name] = v
}

func (d *recordingDevice) DrawArrays(_ Topology, _, count int) { d.record(count) }

func (d *recordingDevice) DrawElements(_ Topology, count int) { d.record(count) }

func (d *recordingDevice) record(count int) {
	dr := recordedDraw{state: d.state, program: d.program, count: count}
	if c, ok := d.uniforms[UniformColor].(Float32s); ok {
		dr.color = append(Float32s(nil), c...)
	}
	if m, ok := d.uniforms[UniformMVP].(Matrix4); ok {
		dr.mvp = mgl32.Mat4(m)
	}
	d.draws = append(d.draws, dr)
}

func (d *recordingDevice) CreateSurface(width, height, _ int) SurfaceID {
	id := SurfaceID(d.id())
	d.surfaces[id] = [2]int{width, height}
	return id
}

func (d *recordingDevice) ReadPixels(id SurfaceID) *image.NRGBA {
	w, h := d.width, d.height
	if s, ok := d.surfaces[id]; ok {
		w, h = s[0], s[1]
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// resetDraws forgets recorded draws and bind counters.
func (d *recordingDevice) resetDraws() {
	d.draws = d.draws[:0]
	d.vertexBinds = 0
	d.programBinds = 0
}
