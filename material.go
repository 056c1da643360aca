package birch

// Material binds a shader, its textures and parameter values. The render mode
// is fixed at construction and picks the pass the material is drawn in.
//
// A material references its shader without owning it unless OwnsShader is
// set. Textures assigned with SetTexture are owned and released by Dispose.
type Material struct {
	Name       string
	Params     ShaderParams
	OwnsShader bool

	shader   *Shader
	mode     RenderMode
	textures []materialTexture
	disposed bool
}

type materialTexture struct {
	sampler string
	tex     *Texture
}

// NewMaterial creates a material drawing with shader in the given mode.
func NewMaterial(name string, shader *Shader, mode RenderMode) *Material {
	return &Material{Name: name, shader: shader, mode: mode}
}

// Shader returns the program the material draws with.
func (m *Material) Shader() *Shader { return m.shader }

// SetShader replaces the program.
func (m *Material) SetShader(s *Shader) { m.shader = s }

// Mode returns the render mode.
func (m *Material) Mode() RenderMode { return m.mode }

// SetTexture binds tex to the named sampler, replacing any previous binding.
// A nil tex removes the binding.
func (m *Material) SetTexture(sampler string, tex *Texture) {
	for i := range m.textures {
		if m.textures[i].sampler == sampler {
			if tex == nil {
				m.textures = append(m.textures[:i], m.textures[i+1:]...)
			} else {
				m.textures[i].tex = tex
			}
			return
		}
	}
	if tex != nil {
		m.textures = append(m.textures, materialTexture{sampler: sampler, tex: tex})
	}
}

// Texture returns the texture bound to sampler.
func (m *Material) Texture(sampler string) *Texture {
	for _, t := range m.textures {
		if t.sampler == sampler {
			return t.tex
		}
	}
	return nil
}

// Drawable reports whether the material has a linked shader.
func (m *Material) Drawable() bool { return !m.disposed && m.shader.Linked() }

// Use binds the program, the textures in sampler order, and the parameters.
func (m *Material) Use(dev Device) {
	m.shader.Use(dev)
	for i, t := range m.textures {
		dev.BindTexture(i, t.tex.id)
		dev.SetUniform(t.sampler, Int32s{int32(i)})
	}
	dev.SetUniform(UniformSamplerCount, Int32s{int32(len(m.textures))})
	m.Params.Apply(dev)
}

// boundValue returns the value Use uploads for name.
func (m *Material) boundValue(name string) (ParamValue, bool) {
	if v, ok := m.Params.Get(name); ok {
		return v, true
	}
	if name == UniformSamplerCount {
		return Int32s{int32(len(m.textures))}, true
	}
	for i, t := range m.textures {
		if t.sampler == name {
			return Int32s{int32(i)}, true
		}
	}
	return nil, false
}

// Dispose releases the textures and, when owned, the shader.
func (m *Material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for _, t := range m.textures {
		t.tex.Dispose()
	}
	m.textures = nil
	if m.OwnsShader && m.shader != nil {
		m.shader.Dispose()
	}
}
