package birch

import "github.com/go-gl/mathgl/mgl32"

// ParamValue is a typed shader parameter value.
type ParamValue interface {
	paramValue()
}

// Float32s is a float, vecN or float array uniform value.
type Float32s []float32

// Int32s is an int, ivecN or sampler uniform value.
type Int32s []int32

// Matrix4 is a mat4 uniform value.
type Matrix4 mgl32.Mat4

func (Float32s) paramValue() {}
func (Int32s) paramValue()   {}
func (Matrix4) paramValue()  {}

// ShaderParams is an ordered set of named parameter values uploaded every
// time the owner is bound. Setting an existing name replaces its value in
// place and keeps its position.
type ShaderParams struct {
	names  []string
	values []ParamValue
	index  map[string]int
}

// Set assigns a value to name.
func (p *ShaderParams) Set(name string, v ParamValue) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[name]; ok {
		p.values[i] = v
		return
	}
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	p.values = append(p.values, v)
}

// SetFloats assigns a float vector value.
func (p *ShaderParams) SetFloats(name string, v ...float32) {
	p.Set(name, Float32s(v))
}

// SetInts assigns an int vector value.
func (p *ShaderParams) SetInts(name string, v ...int32) {
	p.Set(name, Int32s(v))
}

// SetMat4 assigns a matrix value.
func (p *ShaderParams) SetMat4(name string, m mgl32.Mat4) {
	p.Set(name, Matrix4(m))
}

// SetColor assigns a color as a vec4.
func (p *ShaderParams) SetColor(name string, c Color) {
	p.Set(name, Float32s{c.R, c.G, c.B, c.A})
}

// Get returns the value stored under name.
func (p *ShaderParams) Get(name string) (ParamValue, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.values[i], true
}

// Remove deletes name. It reports whether the name was present.
func (p *ShaderParams) Remove(name string) bool {
	i, ok := p.index[name]
	if !ok {
		return false
	}
	copy(p.names[i:], p.names[i+1:])
	copy(p.values[i:], p.values[i+1:])
	p.names = p.names[:len(p.names)-1]
	p.values[len(p.values)-1] = nil
	p.values = p.values[:len(p.values)-1]
	delete(p.index, name)
	for j := i; j < len(p.names); j++ {
		p.index[p.names[j]] = j
	}
	return true
}

// Len returns the number of parameters.
func (p *ShaderParams) Len() int { return len(p.names) }

// Apply uploads every parameter to the program in use, in insertion order.
func (p *ShaderParams) Apply(dev Device) {
	for i, name := range p.names {
		dev.SetUniform(name, p.values[i])
	}
}
