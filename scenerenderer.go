package birch

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RenderStats summarizes one call to Render or RenderMultisampled.
type RenderStats struct {
	Groups           int // (mesh, material) groups drawn
	DrawCalls        int
	OpaqueDraws      int
	TranslucentDraws int
	SkippedGroups    int // groups without a linked shader or with an empty mesh
}

// SceneRenderer keeps every registered MeshRenderer grouped by mesh, then by
// material, so buffer and program binds happen once per group rather than
// once per instance.
//
// Groups keep insertion order. Renderer order inside a group is insertion
// order and may change after removals.
type SceneRenderer struct {
	AmbientLight      Color
	SkylightColor     Color
	SkylightDirection mgl32.Vec3

	// DefaultBlend is restored at the start and end of every pass.
	DefaultBlend BlendMode
	// UseAlphaToCoverage selects RenderMultisampled for cameras whose target
	// is multisampled.
	UseAlphaToCoverage bool

	dev Device
	log *zap.Logger

	meshes []*meshGroup
	byMesh map[*Mesh]*meshGroup
	count  int

	translucent []*materialGroup
	base        ShaderParams
}

type meshGroup struct {
	mesh       *Mesh
	materials  []*materialGroup
	byMaterial map[*Material]*materialGroup
}

type materialGroup struct {
	mesh      *Mesh
	material  *Material
	renderers []*MeshRenderer
}

// NewSceneRenderer creates an empty renderer drawing through dev.
func NewSceneRenderer(dev Device, log *zap.Logger) *SceneRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SceneRenderer{
		AmbientLight:       Color{0.2, 0.2, 0.2, 1},
		SkylightColor:      Color{0.8, 0.8, 0.8, 1},
		SkylightDirection:  mgl32.Vec3{-0.3, -1, -0.2}.Normalize(),
		UseAlphaToCoverage: true,
		dev:                dev,
		log:                log,
		byMesh:             make(map[*Mesh]*meshGroup),
	}
}

// Device returns the device the renderer draws through.
func (s *SceneRenderer) Device() Device { return s.dev }

// Len returns the number of registered renderers.
func (s *SceneRenderer) Len() int { return s.count }

// AddRenderer registers r under its current mesh and material. Renderers
// without a mesh or material are ignored. Registering an already registered
// renderer is a no-op.
func (s *SceneRenderer) AddRenderer(r *MeshRenderer) {
	if r == nil || r.mesh == nil || r.material == nil {
		return
	}
	if r.regMesh != nil {
		if r.regMesh == r.mesh && r.regMaterial == r.material {
			return
		}
		s.RemoveRenderer(r)
	}

	mg, ok := s.byMesh[r.mesh]
	if !ok {
		mg = &meshGroup{mesh: r.mesh, byMaterial: make(map[*Material]*materialGroup)}
		s.byMesh[r.mesh] = mg
		s.meshes = append(s.meshes, mg)
	}
	g, ok := mg.byMaterial[r.material]
	if !ok {
		g = &materialGroup{mesh: r.mesh, material: r.material}
		mg.byMaterial[r.material] = g
		mg.materials = append(mg.materials, g)
	}
	g.renderers = append(g.renderers, r)
	r.regMesh, r.regMaterial = r.mesh, r.material
	s.count++
}

// RemoveRenderer unregisters r and prunes groups left empty.
func (s *SceneRenderer) RemoveRenderer(r *MeshRenderer) {
	if r == nil || r.regMesh == nil {
		return
	}
	mesh, mat := r.regMesh, r.regMaterial
	r.regMesh, r.regMaterial = nil, nil

	mg, ok := s.byMesh[mesh]
	if !ok {
		return
	}
	g, ok := mg.byMaterial[mat]
	if !ok {
		return
	}
	for i, o := range g.renderers {
		if o == r {
			g.renderers = append(g.renderers[:i], g.renderers[i+1:]...)
			s.count--
			break
		}
	}
	if len(g.renderers) > 0 {
		return
	}
	delete(mg.byMaterial, mat)
	mg.materials = removeGroup(mg.materials, g)
	if len(mg.materials) > 0 {
		return
	}
	delete(s.byMesh, mesh)
	for i, o := range s.meshes {
		if o == mg {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			break
		}
	}
}

func removeGroup(gs []*materialGroup, g *materialGroup) []*materialGroup {
	for i, o := range gs {
		if o == g {
			return append(gs[:i], gs[i+1:]...)
		}
	}
	return gs
}

// Renderers returns the renderers registered under (mesh, material).
func (s *SceneRenderer) Renderers(mesh *Mesh, mat *Material) []*MeshRenderer {
	mg, ok := s.byMesh[mesh]
	if !ok {
		return nil
	}
	g, ok := mg.byMaterial[mat]
	if !ok {
		return nil
	}
	return append([]*MeshRenderer(nil), g.renderers...)
}

func (s *SceneRenderer) resetState() {
	src, dst := s.DefaultBlend.Factors()
	s.dev.SetBlend(true)
	s.dev.SetBlendFunc(src, dst)
	s.dev.SetDepthTest(true)
	s.dev.SetDepthFunc(DepthLess)
	s.dev.SetDepthMask(true)
	s.dev.SetColorMask(true)
}

// Render draws every registered renderer as seen by cam into the bound
// surface. Opaque groups draw first. Translucent groups then draw twice: a
// depth-only pre-pass, and a blended color pass with depth writes off and a
// less-or-equal depth test. A nil camera draws nothing.
//
// Overlapping translucent objects are not sorted against each other.
func (s *SceneRenderer) Render(cam *Camera, time float32) RenderStats {
	var st RenderStats
	if cam == nil || cam.IsDestroyed() {
		return st
	}
	vp := cam.ViewProjection()

	s.resetState()
	s.translucent = s.translucent[:0]
	for _, mg := range s.meshes {
		bound := false
		for _, g := range mg.materials {
			if g.material.Mode() == RenderTranslucent {
				s.translucent = append(s.translucent, g)
				continue
			}
			if !s.drawable(g, &st) {
				continue
			}
			if !bound {
				mg.mesh.Bind(s.dev)
				bound = true
			}
			st.OpaqueDraws += s.drawGroup(g, vp, time, false)
			st.Groups++
		}
	}

	if len(s.translucent) > 0 {
		s.dev.SetColorMask(false)
		for _, g := range s.translucent {
			if !s.drawable(g, &st) {
				continue
			}
			g.mesh.Bind(s.dev)
			st.TranslucentDraws += s.drawGroup(g, vp, time, true)
		}

		s.dev.SetColorMask(true)
		s.dev.SetDepthFunc(DepthLessEqual)
		s.dev.SetDepthMask(false)
		s.dev.SetBlendFunc(BlendSrcAlpha, BlendOneMinusSrcAlpha)
		for _, g := range s.translucent {
			if !g.material.Drawable() || g.mesh.ElementCount() == 0 {
				continue
			}
			g.mesh.Bind(s.dev)
			st.TranslucentDraws += s.drawGroup(g, vp, time, true)
			st.Groups++
		}
	}

	s.resetState()
	st.DrawCalls = st.OpaqueDraws + st.TranslucentDraws
	s.checkErrors("render")
	return st
}

// RenderMultisampled draws opaque and translucent groups in a single pass with
// alpha-to-coverage enabled. Use it with a multisampled surface bound.
func (s *SceneRenderer) RenderMultisampled(cam *Camera, time float32) RenderStats {
	var st RenderStats
	if cam == nil || cam.IsDestroyed() {
		return st
	}
	vp := cam.ViewProjection()

	s.resetState()
	s.dev.SetMultisample(true)
	s.dev.SetAlphaToCoverage(true)
	for _, mg := range s.meshes {
		bound := false
		for _, g := range mg.materials {
			if !s.drawable(g, &st) {
				continue
			}
			if !bound {
				mg.mesh.Bind(s.dev)
				bound = true
			}
			translucent := g.material.Mode() == RenderTranslucent
			n := s.drawGroup(g, vp, time, translucent)
			if translucent {
				st.TranslucentDraws += n
			} else {
				st.OpaqueDraws += n
			}
			st.Groups++
		}
	}
	s.dev.SetAlphaToCoverage(false)
	s.resetState()
	st.DrawCalls = st.OpaqueDraws + st.TranslucentDraws
	s.checkErrors("render multisampled")
	return st
}

// RenderToSurface binds surf, renders cam into it with Render, and rebinds the
// default framebuffer.
func (s *SceneRenderer) RenderToSurface(cam *Camera, surf *Surface, time float32) RenderStats {
	s.dev.BindSurface(surf.ID())
	st := s.Render(cam, time)
	s.dev.BindSurface(DefaultSurface)
	return st
}

func (s *SceneRenderer) drawable(g *materialGroup, st *RenderStats) bool {
	if !g.material.Drawable() || g.mesh.ElementCount() == 0 {
		st.SkippedGroups++
		return false
	}
	return true
}

// drawGroup binds the material once and draws every renderer of the group.
// It returns the number of draw calls issued.
func (s *SceneRenderer) drawGroup(g *materialGroup, vp mgl32.Mat4, time float32, hooks bool) int {
	dev := s.dev
	mat := g.material
	mat.Use(dev)
	s.base.SetFloats(UniformTime, time)
	s.base.SetFloats(UniformAmbient, s.AmbientLight.R, s.AmbientLight.G, s.AmbientLight.B)
	s.base.SetFloats(UniformSkylightColor, s.SkylightColor.R, s.SkylightColor.G, s.SkylightColor.B)
	d := s.SkylightDirection
	s.base.SetFloats(UniformSkylightDirection, d[0], d[1], d[2])
	s.base.Apply(dev)

	n := 0
	for _, r := range g.renderers {
		t := r.Transform()
		if t == nil {
			continue
		}
		if hooks && r.OnPreDraw != nil {
			r.OnPreDraw(dev)
		}
		dev.SetUniform(UniformMVP, Matrix4(vp.Mul4(t.Matrix())))
		dev.SetUniform(UniformRotation, Matrix4(t.RotationMatrix()))
		r.Params.Apply(dev)
		g.mesh.Draw(dev, r.Topology)
		n++
		s.restoreParams(&r.Params, mat)
		if hooks && r.OnPostDraw != nil {
			r.OnPostDraw(dev)
		}
	}
	return n
}

// restoreParams undoes the per-instance overrides in p. Each name goes back
// to the group value, then the material value, then the program default.
func (s *SceneRenderer) restoreParams(p *ShaderParams, mat *Material) {
	for _, name := range p.names {
		v, ok := s.base.Get(name)
		if !ok {
			v, _ = mat.boundValue(name)
		}
		s.dev.SetUniform(name, v)
	}
}

func (s *SceneRenderer) checkErrors(op string) {
	if err := s.dev.Err(); err != nil {
		s.log.Warn("device error", zap.String("op", op), zap.Error(err))
	}
}
