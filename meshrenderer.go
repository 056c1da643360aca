package birch

// MeshRenderer draws a Mesh with a Material at its entity's transform. It
// registers with the App's SceneRenderer on init and whenever its mesh or
// material changes, and unregisters on destroy.
type MeshRenderer struct {
	ComponentBase

	Topology Topology
	// Params are uploaded after the material's parameters for this instance
	// only.
	Params ShaderParams

	// OnPreDraw and OnPostDraw run around each translucent draw of this
	// renderer, for per-instance device state overrides. State changed in
	// OnPreDraw must be restored in OnPostDraw.
	OnPreDraw  func(dev Device)
	OnPostDraw func(dev Device)

	mesh     *Mesh
	material *Material

	regMesh     *Mesh
	regMaterial *Material
}

// NewMeshRenderer creates a renderer for mesh. A nil material selects the
// App's "unlit" material on init.
func NewMeshRenderer(mesh *Mesh, material *Material) *MeshRenderer {
	return &MeshRenderer{mesh: mesh, material: material, Topology: Triangles}
}

func (r *MeshRenderer) OnInit() {
	if r.material == nil {
		r.material = r.App().Material(DefaultMaterial)
	}
	r.register()
}

func (r *MeshRenderer) OnDestroy() {
	r.unregister()
}

// Mesh returns the geometry.
func (r *MeshRenderer) Mesh() *Mesh { return r.mesh }

// SetMesh replaces the geometry and re-registers the renderer.
func (r *MeshRenderer) SetMesh(m *Mesh) {
	r.unregister()
	r.mesh = m
	r.register()
}

// Material returns the material.
func (r *MeshRenderer) Material() *Material { return r.material }

// SetMaterial replaces the material and re-registers the renderer.
func (r *MeshRenderer) SetMaterial(m *Material) {
	r.unregister()
	r.material = m
	r.register()
}

func (r *MeshRenderer) register() {
	a := r.App()
	if a == nil || r.State() == ComponentDestroyed {
		return
	}
	a.renderer.AddRenderer(r)
}

func (r *MeshRenderer) unregister() {
	if a := r.App(); a != nil {
		a.renderer.RemoveRenderer(r)
	}
}
