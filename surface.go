package birch

import "image"

// Surface is an offscreen render target owned by a Device.
type Surface struct {
	dev     Device
	id      SurfaceID
	width   int
	height  int
	samples int
}

// NewSurface creates a render target with the given size and sample count.
func NewSurface(dev Device, width, height, samples int) *Surface {
	samples = max(samples, 1)
	return &Surface{
		dev:     dev,
		id:      dev.CreateSurface(width, height, samples),
		width:   width,
		height:  height,
		samples: samples,
	}
}

// ID returns the device handle.
func (s *Surface) ID() SurfaceID { return s.id }

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Samples returns the sample count.
func (s *Surface) Samples() int { return s.samples }

// Multisampled reports whether the surface stores more than one sample per
// pixel.
func (s *Surface) Multisampled() bool { return s.samples > 1 }

// Resize recreates the surface at a new size. Contents are lost.
func (s *Surface) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.dev.DeleteSurface(s.id)
	s.id = s.dev.CreateSurface(width, height, s.samples)
	s.width, s.height = width, height
}

// Image reads back the resolved surface contents.
func (s *Surface) Image() *image.NRGBA { return s.dev.ReadPixels(s.id) }

// Dispose deletes the device surface.
func (s *Surface) Dispose() {
	if s.id == 0 {
		return
	}
	s.dev.DeleteSurface(s.id)
	s.id = 0
}
