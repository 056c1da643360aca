package birch

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R float32 `yaml:"r" toml:"r"`
	G float32 `yaml:"g" toml:"g"`
	B float32 `yaml:"b" toml:"b"`
	A float32 `yaml:"a" toml:"a"`
}

// ColorWhite is the default material tint.
var ColorWhite = Color{1, 1, 1, 1}

// Vec4 returns the color as an RGBA vector.
func (c Color) Vec4() mgl32.Vec4 { return mgl32.Vec4{c.R, c.G, c.B, c.A} }

// RGBA converts to an 8-bit straight-alpha color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: unitToByte(c.R),
		G: unitToByte(c.G),
		B: unitToByte(c.B),
		A: unitToByte(c.A),
	}
}

func unitToByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Vec2 is a screen-space point in pixels, origin top-left, Y down.
type Vec2 struct {
	X, Y float32
}

// RenderMode selects the pass a material is drawn in. Fixed per material.
type RenderMode uint8

const (
	RenderOpaque      RenderMode = iota // drawn in the first pass with depth writes
	RenderTranslucent                   // depth pre-pass then blended color pass
)

func (m RenderMode) String() string {
	if m == RenderTranslucent {
		return "translucent"
	}
	return "opaque"
}

// Topology is the primitive assembly mode of a draw call.
type Topology uint8

const (
	Triangles Topology = iota
	TriangleStrip
	TriangleFan
	Lines
	LineStrip
	Points
)

// BlendFactor is a source or destination blend weight.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// DepthFunc is the comparison used by the depth test.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthEqual
	DepthGreater
	DepthGreaterEqual
	DepthNotEqual
	DepthAlways
	DepthNever
)

// BlendMode names a common pair of blend factors.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // src-alpha, one-minus-src-alpha
	BlendAdd                       // additive
	BlendMultiply                  // multiply (only darkens)
	BlendScreen                    // screen (only brightens)
	BlendNone                      // opaque copy
)

// Factors returns the source and destination factors for the mode.
func (b BlendMode) Factors() (src, dst BlendFactor) {
	switch b {
	case BlendAdd:
		return BlendSrcAlpha, BlendOne
	case BlendMultiply:
		return BlendDstColor, BlendOneMinusSrcAlpha
	case BlendScreen:
		return BlendOne, BlendOneMinusSrcColor
	case BlendNone:
		return BlendOne, BlendZero
	default:
		return BlendSrcAlpha, BlendOneMinusSrcAlpha
	}
}
