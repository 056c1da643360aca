package birch

import "image"

// Texture is an image uploaded to a Device.
type Texture struct {
	Name string

	dev    Device
	id     TextureID
	width  int
	height int
}

// NewTexture uploads img to dev.
func NewTexture(dev Device, name string, img image.Image) *Texture {
	b := img.Bounds()
	return &Texture{
		Name:   name,
		dev:    dev,
		id:     dev.CreateTexture(img),
		width:  b.Dx(),
		height: b.Dy(),
	}
}

// ID returns the device handle.
func (t *Texture) ID() TextureID { return t.id }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Dispose deletes the device texture.
func (t *Texture) Dispose() {
	if t.id == 0 {
		return
	}
	t.dev.DeleteTexture(t.id)
	t.id = 0
}
