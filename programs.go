package birch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Attribute and uniform names understood by the built-in programs.
const (
	AttribPosition = "_pos"
	AttribNormal   = "_normal"
	AttribUV       = "_uv"
	AttribColor    = "_vertColor"

	UniformMVP               = "_modelViewProjection"
	UniformRotation          = "_rotationMatrix"
	UniformColor             = "_color"
	UniformTexture           = "_texture"
	UniformTime              = "_time"
	UniformSamplerCount      = "_samplerCount"
	UniformAmbient           = "_ambient"
	UniformSkylightColor     = "_skylightColor"
	UniformSkylightDirection = "_skylightDirection"
)

var white = mgl32.Vec4{1, 1, 1, 1}

// UnlitProgram outputs the _color uniform multiplied by the optional vertex
// color.
type UnlitProgram struct{}

func (UnlitProgram) Varyings() int { return 4 }

func (UnlitProgram) Vertex(in VertexInput, u Uniforms, out []float32) mgl32.Vec4 {
	writeVec4(out, vertexColor(in))
	return clipPosition(in, u)
}

func (UnlitProgram) Fragment(in []float32, u Uniforms) (mgl32.Vec4, bool) {
	return mulVec4(readVec4(in), uniformVec4(u, UniformColor, white)), true
}

// TexturedProgram samples _texture at _uv and tints the result like
// UnlitProgram.
type TexturedProgram struct{}

func (TexturedProgram) Varyings() int { return 6 }

func (TexturedProgram) Vertex(in VertexInput, u Uniforms, out []float32) mgl32.Vec4 {
	writeVec4(out, vertexColor(in))
	if uv := in.Attrib(AttribUV); len(uv) >= 2 {
		out[4], out[5] = uv[0], uv[1]
	} else {
		out[4], out[5] = 0, 0
	}
	return clipPosition(in, u)
}

func (TexturedProgram) Fragment(in []float32, u Uniforms) (mgl32.Vec4, bool) {
	c := mulVec4(readVec4(in), uniformVec4(u, UniformColor, white))
	if s := u.Sampler(UniformTexture); s != nil {
		c = mulVec4(c, s.Sample(in[4], in[5]))
	}
	return c, true
}

// LitProgram shades with the scene ambient light plus one directional
// skylight using the world-space vertex normal.
type LitProgram struct{}

func (LitProgram) Varyings() int { return 7 }

func (LitProgram) Vertex(in VertexInput, u Uniforms, out []float32) mgl32.Vec4 {
	writeVec4(out, vertexColor(in))
	n := mgl32.Vec3{0, 1, 0}
	if a := in.Attrib(AttribNormal); len(a) >= 3 {
		n = mgl32.Vec3{a[0], a[1], a[2]}
	}
	if rot, ok := u.Mat4(UniformRotation); ok {
		n = rot.Mul4x1(n.Vec4(0)).Vec3()
	}
	out[4], out[5], out[6] = n[0], n[1], n[2]
	return clipPosition(in, u)
}

func (LitProgram) Fragment(in []float32, u Uniforms) (mgl32.Vec4, bool) {
	base := mulVec4(readVec4(in), uniformVec4(u, UniformColor, white))
	n := mgl32.Vec3{in[4], in[5], in[6]}
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	ambient := uniformVec4(u, UniformAmbient, mgl32.Vec4{0.2, 0.2, 0.2, 1}).Vec3()
	sky := uniformVec4(u, UniformSkylightColor, mgl32.Vec4{0.8, 0.8, 0.8, 1}).Vec3()
	dir, ok := u.Vec3(UniformSkylightDirection)
	if !ok || dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	diffuse := math32.Max(0, n.Dot(dir.Normalize().Mul(-1)))
	light := ambient.Add(sky.Mul(diffuse))
	return mgl32.Vec4{
		base[0] * math32.Min(1, light[0]),
		base[1] * math32.Min(1, light[1]),
		base[2] * math32.Min(1, light[2]),
		base[3],
	}, true
}

func clipPosition(in VertexInput, u Uniforms) mgl32.Vec4 {
	p := in.Attrib(AttribPosition)
	var pos mgl32.Vec4
	switch len(p) {
	case 0:
		pos = mgl32.Vec4{0, 0, 0, 1}
	case 1:
		pos = mgl32.Vec4{p[0], 0, 0, 1}
	case 2:
		pos = mgl32.Vec4{p[0], p[1], 0, 1}
	default:
		pos = mgl32.Vec4{p[0], p[1], p[2], 1}
	}
	if mvp, ok := u.Mat4(UniformMVP); ok {
		return mvp.Mul4x1(pos)
	}
	return pos
}

func vertexColor(in VertexInput) mgl32.Vec4 {
	c := in.Attrib(AttribColor)
	switch {
	case len(c) >= 4:
		return mgl32.Vec4{c[0], c[1], c[2], c[3]}
	case len(c) == 3:
		return mgl32.Vec4{c[0], c[1], c[2], 1}
	}
	return white
}

func uniformVec4(u Uniforms, name string, def mgl32.Vec4) mgl32.Vec4 {
	if v, ok := u.Vec4(name); ok {
		return v
	}
	if v, ok := u.Vec3(name); ok {
		return v.Vec4(1)
	}
	return def
}

func writeVec4(out []float32, v mgl32.Vec4) { copy(out[:4], v[:]) }

func readVec4(in []float32) mgl32.Vec4 { return mgl32.Vec4{in[0], in[1], in[2], in[3]} }

func mulVec4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}
