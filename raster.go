package birch

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const maxTextureUnits = 16

// RasterStats counts the work a Rasterizer has done since the last
// ResetStats.
type RasterStats struct {
	DrawCalls  int
	Primitives int
	Fragments  int
}

// Rasterizer is a Device that runs CPU programs and rasterizes into in-memory
// framebuffers. It implements depth testing, depth and color write masks,
// blending, multisampled surfaces and alpha-to-coverage with GL semantics.
type Rasterizer struct {
	nextID uint32

	buffers  map[BufferID]*rasterBuffer
	programs map[ProgramID]*rasterProgram
	textures map[TextureID]*rasterTexture
	surfaces map[SurfaceID]*frameBuffer

	def    *frameBuffer
	target *frameBuffer

	vbo     BufferID
	ibo     BufferID
	layout  []VertexAttribute
	program *rasterProgram
	units   [maxTextureUnits]TextureID

	blend     bool
	blendSrc  BlendFactor
	blendDst  BlendFactor
	depthTest bool
	depthFunc DepthFunc
	depthMask bool
	colorMask bool
	msaa      bool
	a2c       bool

	stats RasterStats
	err   error

	// scratch reused across draws
	shaded  []shadedVertex
	refs    []int
	cache   map[uint32]int
	varying []float32
	frag    []float32
	clipIn  []shadedVertex
	clipOut []shadedVertex
}

type rasterBuffer struct {
	floats  []float32
	indices []uint32
}

type rasterProgram struct {
	prog     Program
	uniforms map[string]ParamValue
}

type rasterTexture struct {
	img *image.NRGBA
}

// NewRasterizer creates a device with a single-sampled default framebuffer of
// the given size.
func NewRasterizer(width, height int) *Rasterizer {
	r := &Rasterizer{
		buffers:   make(map[BufferID]*rasterBuffer),
		programs:  make(map[ProgramID]*rasterProgram),
		textures:  make(map[TextureID]*rasterTexture),
		surfaces:  make(map[SurfaceID]*frameBuffer),
		cache:     make(map[uint32]int),
		blend:     true,
		blendSrc:  BlendSrcAlpha,
		blendDst:  BlendOneMinusSrcAlpha,
		depthTest: true,
		depthFunc: DepthLess,
		depthMask: true,
		colorMask: true,
		msaa:      true,
	}
	r.def = newFrameBuffer(width, height, 1)
	r.target = r.def
	return r
}

func (r *Rasterizer) id() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Rasterizer) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidOperation}, args...)...)
	}
}

// Stats returns the counters accumulated since the last ResetStats.
func (r *Rasterizer) Stats() RasterStats { return r.stats }

// ResetStats zeroes the counters.
func (r *Rasterizer) ResetStats() { r.stats = RasterStats{} }

// Err implements Device.
func (r *Rasterizer) Err() error {
	err := r.err
	r.err = nil
	return err
}

// --- Buffers ---

func (r *Rasterizer) CreateBuffer() BufferID {
	id := BufferID(r.id())
	r.buffers[id] = &rasterBuffer{}
	return id
}

func (r *Rasterizer) UploadVertices(id BufferID, data []float32) {
	b, ok := r.buffers[id]
	if !ok {
		r.fail("upload to unknown buffer %d", id)
		return
	}
	b.floats = append(b.floats[:0], data...)
}

func (r *Rasterizer) UploadIndices(id BufferID, data []uint32) {
	b, ok := r.buffers[id]
	if !ok {
		r.fail("upload to unknown buffer %d", id)
		return
	}
	b.indices = append(b.indices[:0], data...)
}

func (r *Rasterizer) DeleteBuffer(id BufferID) {
	delete(r.buffers, id)
	if r.vbo == id {
		r.vbo = 0
	}
	if r.ibo == id {
		r.ibo = 0
	}
}

func (r *Rasterizer) BindVertexBuffer(id BufferID, layout []VertexAttribute) {
	r.vbo = id
	r.layout = layout
}

func (r *Rasterizer) BindIndexBuffer(id BufferID) { r.ibo = id }

// --- Programs ---

func (r *Rasterizer) CreateProgram(src ShaderSource) (ProgramID, error) {
	if src.Program == nil {
		return 0, ErrNoProgram
	}
	if src.Program.Varyings() < 0 {
		return 0, fmt.Errorf("program %q: negative varying count", src.Name)
	}
	id := ProgramID(r.id())
	r.programs[id] = &rasterProgram{prog: src.Program, uniforms: make(map[string]ParamValue)}
	return id, nil
}

func (r *Rasterizer) DeleteProgram(id ProgramID) {
	if p, ok := r.programs[id]; ok && r.program == p {
		r.program = nil
	}
	delete(r.programs, id)
}

func (r *Rasterizer) UseProgram(id ProgramID) {
	if id == 0 {
		r.program = nil
		return
	}
	p, ok := r.programs[id]
	if !ok {
		r.fail("use of unknown program %d", id)
		r.program = nil
		return
	}
	r.program = p
}

func (r *Rasterizer) SetUniform(name string, v ParamValue) {
	if r.program == nil {
		r.fail("uniform %q set without a program", name)
		return
	}
	if v == nil {
		delete(r.program.uniforms, name)
		return
	}
	r.program.uniforms[name] = v
}

// --- Textures ---

func (r *Rasterizer) CreateTexture(img image.Image) TextureID {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	id := TextureID(r.id())
	r.textures[id] = &rasterTexture{img: dst}
	return id
}

func (r *Rasterizer) DeleteTexture(id TextureID) {
	delete(r.textures, id)
	for i, u := range r.units {
		if u == id {
			r.units[i] = 0
		}
	}
}

func (r *Rasterizer) BindTexture(unit int, id TextureID) {
	if unit < 0 || unit >= maxTextureUnits {
		r.fail("texture unit %d out of range", unit)
		return
	}
	r.units[unit] = id
}

// Sample reads the texture with nearest filtering and repeat wrapping.
func (t *rasterTexture) Sample(u, v float32) mgl32.Vec4 {
	w, h := t.img.Rect.Dx(), t.img.Rect.Dy()
	if w == 0 || h == 0 {
		return white
	}
	x := wrapTexel(u, w)
	y := wrapTexel(v, h)
	i := t.img.PixOffset(x, y)
	p := t.img.Pix[i : i+4 : i+4]
	return mgl32.Vec4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}

func wrapTexel(c float32, n int) int {
	c -= math32.Floor(c)
	i := int(c * float32(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// --- Fixed-function state ---

func (r *Rasterizer) SetBlend(enabled bool) { r.blend = enabled }

func (r *Rasterizer) SetBlendFunc(src, dst BlendFactor) {
	r.blendSrc = src
	r.blendDst = dst
}

func (r *Rasterizer) SetDepthTest(enabled bool) { r.depthTest = enabled }

func (r *Rasterizer) SetDepthFunc(fn DepthFunc) { r.depthFunc = fn }

func (r *Rasterizer) SetDepthMask(write bool) { r.depthMask = write }

func (r *Rasterizer) SetColorMask(write bool) { r.colorMask = write }

func (r *Rasterizer) SetMultisample(enabled bool) { r.msaa = enabled }

func (r *Rasterizer) SetAlphaToCoverage(enabled bool) { r.a2c = enabled }

// --- Surfaces ---

func (r *Rasterizer) CreateSurface(width, height, samples int) SurfaceID {
	id := SurfaceID(r.id())
	r.surfaces[id] = newFrameBuffer(width, height, samples)
	return id
}

func (r *Rasterizer) DeleteSurface(id SurfaceID) {
	fb, ok := r.surfaces[id]
	if !ok {
		return
	}
	if r.target == fb {
		r.target = r.def
	}
	delete(r.surfaces, id)
}

func (r *Rasterizer) surface(id SurfaceID) *frameBuffer {
	if id == DefaultSurface {
		return r.def
	}
	return r.surfaces[id]
}

func (r *Rasterizer) BindSurface(id SurfaceID) {
	fb := r.surface(id)
	if fb == nil {
		r.fail("bind of unknown surface %d", id)
		return
	}
	r.target = fb
}

func (r *Rasterizer) ResolveSurface(src, dst SurfaceID) {
	s, d := r.surface(src), r.surface(dst)
	if s == nil || d == nil {
		r.fail("resolve %d -> %d: unknown surface", src, dst)
		return
	}
	if s == d {
		return
	}
	for y := 0; y < d.h; y++ {
		sy := y * s.h / d.h
		for x := 0; x < d.w; x++ {
			sx := x * s.w / d.w
			c := s.resolved(sx, sy)
			base := (y*d.w + x) * d.samples
			for k := 0; k < d.samples; k++ {
				d.color[base+k] = c
			}
		}
	}
}

func (r *Rasterizer) Viewport(width, height int) {
	if width == r.def.w && height == r.def.h {
		return
	}
	bound := r.target == r.def
	r.def = newFrameBuffer(width, height, r.def.samples)
	if bound {
		r.target = r.def
	}
}

func (r *Rasterizer) Clear(c Color) {
	fb := r.target
	v := c.Vec4()
	if r.colorMask {
		for i := range fb.color {
			fb.color[i] = v
		}
	}
	if r.depthMask {
		for i := range fb.depth {
			fb.depth[i] = 1
		}
	}
}

func (r *Rasterizer) ReadPixels(id SurfaceID) *image.NRGBA {
	fb := r.surface(id)
	if fb == nil {
		r.fail("read of unknown surface %d", id)
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewNRGBA(image.Rect(0, 0, fb.w, fb.h))
	for y := 0; y < fb.h; y++ {
		for x := 0; x < fb.w; x++ {
			c := fb.resolved(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = unitToByte(c[0])
			img.Pix[i+1] = unitToByte(c[1])
			img.Pix[i+2] = unitToByte(c[2])
			img.Pix[i+3] = unitToByte(c[3])
		}
	}
	return img
}

// frameBuffer stores straight-alpha color and depth per sample.
type frameBuffer struct {
	w, h    int
	samples int
	color   []mgl32.Vec4
	depth   []float32
}

func newFrameBuffer(w, h, samples int) *frameBuffer {
	w, h = max(w, 0), max(h, 0)
	samples = supportedSamples(samples)
	n := w * h * samples
	fb := &frameBuffer{
		w: w, h: h, samples: samples,
		color: make([]mgl32.Vec4, n),
		depth: make([]float32, n),
	}
	for i := range fb.depth {
		fb.depth[i] = 1
	}
	return fb
}

func (fb *frameBuffer) resolved(x, y int) mgl32.Vec4 {
	base := (y*fb.w + x) * fb.samples
	if fb.samples == 1 {
		return fb.color[base]
	}
	var sum mgl32.Vec4
	for k := 0; k < fb.samples; k++ {
		sum = sum.Add(fb.color[base+k])
	}
	return sum.Mul(1 / float32(fb.samples))
}

func supportedSamples(n int) int {
	switch {
	case n >= 8:
		return 8
	case n >= 4:
		return 4
	case n >= 2:
		return 2
	}
	return 1
}

// samplePattern returns sub-pixel sample offsets in [0,1) for a sample count.
func samplePattern(n int) [][2]float32 {
	switch n {
	case 2:
		return pattern2
	case 4:
		return pattern4
	case 8:
		return pattern8
	}
	return pattern1
}

var (
	pattern1 = [][2]float32{{0.5, 0.5}}
	pattern2 = [][2]float32{{0.75, 0.75}, {0.25, 0.25}}
	pattern4 = [][2]float32{{0.375, 0.125}, {0.875, 0.375}, {0.125, 0.625}, {0.625, 0.875}}
	pattern8 = [][2]float32{
		{0.5625, 0.3125}, {0.4375, 0.6875}, {0.8125, 0.5625}, {0.3125, 0.1875},
		{0.1875, 0.8125}, {0.0625, 0.4375}, {0.6875, 0.9375}, {0.9375, 0.0625},
	}
)
