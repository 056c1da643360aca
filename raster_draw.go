package birch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const minClipW = 1e-6

type shadedVertex struct {
	clip mgl32.Vec4
	off  int // offset of the varyings in Rasterizer.varying
}

type screenVertex struct {
	x, y, z float32
	invW    float32
	off     int
}

// vertexIn reads attributes of one vertex from an interleaved buffer.
type vertexIn struct {
	data   []float32
	index  int
	layout []VertexAttribute
}

func (v vertexIn) Attrib(name string) []float32 {
	for _, a := range v.layout {
		if a.Name != name {
			continue
		}
		stride := a.Stride
		if stride == 0 {
			stride = a.Components
		}
		start := v.index*stride + a.Offset
		end := start + a.Components
		if start < 0 || end > len(v.data) {
			return nil
		}
		return v.data[start:end:end]
	}
	return nil
}

// rasterUniforms exposes the uniforms of the program in use.
type rasterUniforms struct {
	r *Rasterizer
	p *rasterProgram
}

func (u rasterUniforms) floats(name string, n int) (Float32s, bool) {
	v, ok := u.p.uniforms[name].(Float32s)
	if !ok || len(v) < n {
		return nil, false
	}
	return v, true
}

func (u rasterUniforms) Float(name string) (float32, bool) {
	v, ok := u.floats(name, 1)
	if !ok {
		return 0, false
	}
	return v[0], true
}

func (u rasterUniforms) Vec3(name string) (mgl32.Vec3, bool) {
	v, ok := u.floats(name, 3)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, true
}

func (u rasterUniforms) Vec4(name string) (mgl32.Vec4, bool) {
	v, ok := u.floats(name, 4)
	if !ok {
		return mgl32.Vec4{}, false
	}
	return mgl32.Vec4{v[0], v[1], v[2], v[3]}, true
}

func (u rasterUniforms) Mat4(name string) (mgl32.Mat4, bool) {
	switch v := u.p.uniforms[name].(type) {
	case Matrix4:
		return mgl32.Mat4(v), true
	case Float32s:
		if len(v) >= 16 {
			var m mgl32.Mat4
			copy(m[:], v)
			return m, true
		}
	}
	return mgl32.Mat4{}, false
}

func (u rasterUniforms) Sampler(name string) Sampler {
	v, ok := u.p.uniforms[name].(Int32s)
	if !ok || len(v) == 0 || v[0] < 0 || int(v[0]) >= maxTextureUnits {
		return nil
	}
	tex, ok := u.r.textures[u.r.units[v[0]]]
	if !ok {
		return nil
	}
	return tex
}

// --- Draw entry points ---

func (r *Rasterizer) DrawArrays(mode Topology, first, count int) {
	r.draw(mode, nil, first, count)
}

func (r *Rasterizer) DrawElements(mode Topology, count int) {
	b, ok := r.buffers[r.ibo]
	if r.ibo == 0 || !ok {
		r.fail("draw elements without an index buffer")
		return
	}
	if count > len(b.indices) {
		r.fail("draw of %d elements from %d indices", count, len(b.indices))
		return
	}
	r.draw(mode, b.indices[:count], 0, count)
}

func (r *Rasterizer) draw(mode Topology, idx []uint32, first, count int) {
	p := r.program
	if p == nil {
		r.fail("draw without a program")
		return
	}
	vb, ok := r.buffers[r.vbo]
	if r.vbo == 0 || !ok {
		r.fail("draw without a vertex buffer")
		return
	}
	if count <= 0 {
		return
	}
	r.stats.DrawCalls++

	nv := p.prog.Varyings()
	u := rasterUniforms{r: r, p: p}

	r.shaded = r.shaded[:0]
	r.refs = r.refs[:0]
	r.varying = r.varying[:0]
	clear(r.cache)
	for i := 0; i < count; i++ {
		vi := uint32(first + i)
		if idx != nil {
			vi = idx[i]
		}
		k, ok := r.cache[vi]
		if !ok {
			k = r.shadeVertex(vertexIn{data: vb.floats, index: int(vi), layout: r.layout}, nv, u)
			r.cache[vi] = k
		}
		r.refs = append(r.refs, k)
	}
	if cap(r.frag) < nv {
		r.frag = make([]float32, nv)
	}
	r.frag = r.frag[:nv]

	refs := r.refs
	v := func(i int) shadedVertex { return r.shaded[refs[i]] }
	n := len(refs)
	switch mode {
	case Triangles:
		for i := 0; i+2 < n; i += 3 {
			r.triangle(v(i), v(i+1), v(i+2), nv, u)
		}
	case TriangleStrip:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				r.triangle(v(i), v(i+1), v(i+2), nv, u)
			} else {
				r.triangle(v(i+1), v(i), v(i+2), nv, u)
			}
		}
	case TriangleFan:
		for i := 1; i+1 < n; i++ {
			r.triangle(v(0), v(i), v(i+1), nv, u)
		}
	case Lines:
		for i := 0; i+1 < n; i += 2 {
			r.line(v(i), v(i+1), nv, u)
		}
	case LineStrip:
		for i := 0; i+1 < n; i++ {
			r.line(v(i), v(i+1), nv, u)
		}
	case Points:
		for i := 0; i < n; i++ {
			r.point(v(i), nv, u)
		}
	default:
		r.fail("unknown topology %d", mode)
	}
}

func (r *Rasterizer) shadeVertex(in vertexIn, nv int, u rasterUniforms) int {
	off := len(r.varying)
	for i := 0; i < nv; i++ {
		r.varying = append(r.varying, 0)
	}
	clip := r.program.prog.Vertex(in, u, r.varying[off:off+nv])
	r.shaded = append(r.shaded, shadedVertex{clip: clip, off: off})
	return len(r.shaded) - 1
}

func (r *Rasterizer) lerpVertex(a, b shadedVertex, t float32, nv int) shadedVertex {
	off := len(r.varying)
	for i := 0; i < nv; i++ {
		va, vb := r.varying[a.off+i], r.varying[b.off+i]
		r.varying = append(r.varying, va+(vb-va)*t)
	}
	return shadedVertex{clip: a.clip.Add(b.clip.Sub(a.clip).Mul(t)), off: off}
}

// --- Triangles ---

func (r *Rasterizer) triangle(a, b, c shadedVertex, nv int, u rasterUniforms) {
	r.stats.Primitives++
	in := append(r.clipIn[:0], a, b, c)
	r.clipIn = in
	poly := r.clipNear(in, nv)
	for i := 1; i+1 < len(poly); i++ {
		r.rasterTriangle(poly[0], poly[i], poly[i+1], nv, u)
	}
}

// clipNear clips a convex polygon against the near plane z >= -w.
func (r *Rasterizer) clipNear(in []shadedVertex, nv int) []shadedVertex {
	out := r.clipOut[:0]
	for i := range in {
		cur, nxt := in[i], in[(i+1)%len(in)]
		dc := cur.clip[2] + cur.clip[3]
		dn := nxt.clip[2] + nxt.clip[3]
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			out = append(out, r.lerpVertex(cur, nxt, dc/(dc-dn), nv))
		}
	}
	r.clipOut = out
	return out
}

func (r *Rasterizer) toScreen(v shadedVertex, fb *frameBuffer) screenVertex {
	invW := 1 / v.clip[3]
	return screenVertex{
		x:    (v.clip[0]*invW + 1) * 0.5 * float32(fb.w),
		y:    (1 - v.clip[1]*invW) * 0.5 * float32(fb.h),
		z:    v.clip[2]*invW*0.5 + 0.5,
		invW: invW,
		off:  v.off,
	}
}

func edgeFn(a, b screenVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// topLeft picks exactly one of the two triangles sharing an edge for samples
// lying on it.
func topLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy > 0 || (dy == 0 && dx > 0)
}

func covers(w float32, tl bool) bool { return w > 0 || (w == 0 && tl) }

func (r *Rasterizer) rasterTriangle(a, b, c shadedVertex, nv int, u rasterUniforms) {
	if a.clip[3] < minClipW || b.clip[3] < minClipW || c.clip[3] < minClipW {
		return
	}
	fb := r.target
	s0, s1, s2 := r.toScreen(a, fb), r.toScreen(b, fb), r.toScreen(c, fb)
	area := edgeFn(s0, s1, s2.x, s2.y)
	if math32.Abs(area) < 1e-12 || math32.IsNaN(area) {
		return
	}
	if area < 0 {
		s1, s2 = s2, s1
		area = -area
	}
	tl0, tl1, tl2 := topLeft(s1, s2), topLeft(s2, s0), topLeft(s0, s1)

	minX := max(0, int(math32.Floor(min(s0.x, s1.x, s2.x))))
	maxX := min(fb.w-1, int(math32.Ceil(max(s0.x, s1.x, s2.x))))
	minY := max(0, int(math32.Floor(min(s0.y, s1.y, s2.y))))
	maxY := min(fb.h-1, int(math32.Ceil(max(s0.y, s1.y, s2.y))))
	if minX > maxX || minY > maxY {
		return
	}

	pattern := samplePattern(fb.samples)
	perSample := fb.samples > 1 && r.msaa
	full := uint32(1)<<uint(fb.samples) - 1
	invArea := 1 / area

	inside := func(x, y float32) bool {
		return covers(edgeFn(s1, s2, x, y), tl0) &&
			covers(edgeFn(s2, s0, x, y), tl1) &&
			covers(edgeFn(s0, s1, x, y), tl2)
	}
	depthAt := func(x, y float32) float32 {
		b0 := edgeFn(s1, s2, x, y) * invArea
		b1 := edgeFn(s2, s0, x, y) * invArea
		return b0*s0.z + b1*s1.z + (1-b0-b1)*s2.z
	}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			fx, fy := float32(px), float32(py)
			var mask uint32
			if perSample {
				for k, o := range pattern {
					if inside(fx+o[0], fy+o[1]) {
						mask |= 1 << uint(k)
					}
				}
			} else if inside(fx+0.5, fy+0.5) {
				mask = full
			}
			if mask == 0 {
				continue
			}

			cx, cy := fx+0.5, fy+0.5
			b0 := edgeFn(s1, s2, cx, cy) * invArea
			b1 := edgeFn(s2, s0, cx, cy) * invArea
			b2 := 1 - b0 - b1
			r.interpolate(nv, s0, s1, s2, b0, b1, b2)

			color, keep := r.program.prog.Fragment(r.frag, u)
			if !keep {
				continue
			}
			r.stats.Fragments++
			if perSample && r.a2c {
				mask &= coverageMask(color[3], fb.samples)
			}
			base := (py*fb.w + px) * fb.samples
			for k := 0; k < fb.samples; k++ {
				if mask&(1<<uint(k)) == 0 {
					continue
				}
				z := depthAt(cx, cy)
				if perSample {
					z = depthAt(fx+pattern[k][0], fy+pattern[k][1])
				}
				r.writeSample(fb, base+k, z, color)
			}
		}
	}
}

// interpolate fills r.frag with perspective-correct varyings.
func (r *Rasterizer) interpolate(nv int, s0, s1, s2 screenVertex, b0, b1, b2 float32) {
	w0, w1, w2 := b0*s0.invW, b1*s1.invW, b2*s2.invW
	sum := w0 + w1 + w2
	if sum == 0 {
		sum = 1
	}
	w0, w1, w2 = w0/sum, w1/sum, w2/sum
	for i := 0; i < nv; i++ {
		r.frag[i] = w0*r.varying[s0.off+i] + w1*r.varying[s1.off+i] + w2*r.varying[s2.off+i]
	}
}

// --- Lines and points ---

func (r *Rasterizer) line(a, b shadedVertex, nv int, u rasterUniforms) {
	r.stats.Primitives++
	if a.clip[3] < minClipW || b.clip[3] < minClipW {
		return
	}
	fb := r.target
	s0, s1 := r.toScreen(a, fb), r.toScreen(b, fb)
	dx, dy := s1.x-s0.x, s1.y-s0.y
	steps := int(math32.Ceil(math32.Max(math32.Abs(dx), math32.Abs(dy))))
	for i := 0; i <= steps; i++ {
		t := float32(0)
		if steps > 0 {
			t = float32(i) / float32(steps)
		}
		for k := 0; k < nv; k++ {
			va, vb := r.varying[s0.off+k], r.varying[s1.off+k]
			r.frag[k] = va + (vb-va)*t
		}
		r.fragmentAt(s0.x+dx*t, s0.y+dy*t, s0.z+(s1.z-s0.z)*t, u)
	}
}

func (r *Rasterizer) point(a shadedVertex, nv int, u rasterUniforms) {
	r.stats.Primitives++
	if a.clip[3] < minClipW {
		return
	}
	s := r.toScreen(a, r.target)
	copy(r.frag[:nv], r.varying[s.off:s.off+nv])
	r.fragmentAt(s.x, s.y, s.z, u)
}

// fragmentAt shades one fragment and writes it to every sample of the pixel.
func (r *Rasterizer) fragmentAt(x, y, z float32, u rasterUniforms) {
	fb := r.target
	px, py := int(math32.Floor(x)), int(math32.Floor(y))
	if px < 0 || py < 0 || px >= fb.w || py >= fb.h {
		return
	}
	color, keep := r.program.prog.Fragment(r.frag, u)
	if !keep {
		return
	}
	r.stats.Fragments++
	base := (py*fb.w + px) * fb.samples
	for k := 0; k < fb.samples; k++ {
		r.writeSample(fb, base+k, z, color)
	}
}

// --- Per-sample operations ---

func (r *Rasterizer) writeSample(fb *frameBuffer, i int, z float32, src mgl32.Vec4) {
	if z < 0 || z > 1 {
		return
	}
	if r.depthTest {
		if !depthPass(r.depthFunc, z, fb.depth[i]) {
			return
		}
		if r.depthMask {
			fb.depth[i] = z
		}
	}
	if !r.colorMask {
		return
	}
	if r.blend {
		fb.color[i] = blendColor(src, fb.color[i], r.blendSrc, r.blendDst)
		return
	}
	fb.color[i] = clampVec4(src)
}

func depthPass(fn DepthFunc, z, stored float32) bool {
	switch fn {
	case DepthLess:
		return z < stored
	case DepthLessEqual:
		return z <= stored
	case DepthEqual:
		return z == stored
	case DepthGreater:
		return z > stored
	case DepthGreaterEqual:
		return z >= stored
	case DepthNotEqual:
		return z != stored
	case DepthAlways:
		return true
	}
	return false
}

func blendColor(src, dst mgl32.Vec4, sf, df BlendFactor) mgl32.Vec4 {
	fs := blendWeight(sf, src, dst)
	fd := blendWeight(df, src, dst)
	return clampVec4(mgl32.Vec4{
		src[0]*fs[0] + dst[0]*fd[0],
		src[1]*fs[1] + dst[1]*fd[1],
		src[2]*fs[2] + dst[2]*fd[2],
		src[3]*fs[3] + dst[3]*fd[3],
	})
}

func blendWeight(f BlendFactor, src, dst mgl32.Vec4) mgl32.Vec4 {
	one := mgl32.Vec4{1, 1, 1, 1}
	switch f {
	case BlendZero:
		return mgl32.Vec4{}
	case BlendOne:
		return one
	case BlendSrcColor:
		return src
	case BlendOneMinusSrcColor:
		return one.Sub(src)
	case BlendDstColor:
		return dst
	case BlendOneMinusDstColor:
		return one.Sub(dst)
	case BlendSrcAlpha:
		return one.Mul(src[3])
	case BlendOneMinusSrcAlpha:
		return one.Mul(1 - src[3])
	case BlendDstAlpha:
		return one.Mul(dst[3])
	case BlendOneMinusDstAlpha:
		return one.Mul(1 - dst[3])
	}
	return one
}

func clampVec4(v mgl32.Vec4) mgl32.Vec4 {
	for i := range v {
		v[i] = math32.Max(0, math32.Min(1, v[i]))
	}
	return v
}

// coverageMask converts fragment alpha into a sample mask for
// alpha-to-coverage.
func coverageMask(alpha float32, samples int) uint32 {
	k := int(alpha*float32(samples) + 0.5)
	k = max(0, min(samples, k))
	return uint32(1)<<uint(k) - 1
}
