package birch

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Names of the resources every App registers.
const (
	DefaultShader              = "unlit"
	DefaultMaterial            = "unlit"
	DefaultTranslucentMaterial = "unlit-translucent"
	SceneRootName              = "SceneRoot"
	DefaultCameraName          = "Camera"
)

// LifecycleEventType identifies a kind of lifecycle event.
type LifecycleEventType uint8

const (
	EventEntityCreated LifecycleEventType = iota
	EventEntityDestroyed
	EventComponentAdded
	EventComponentDestroyed
)

// LifecycleEvent reports entity and component lifecycle changes to an
// EventSink.
type LifecycleEvent struct {
	Type      LifecycleEventType
	Entity    EntityID
	Name      string
	Component string
}

// EventSink is the interface for optional ECS integration. When set on an
// App, lifecycle events are forwarded to it.
type EventSink interface {
	EmitEvent(event LifecycleEvent)
}

// App owns the entity tree, the destruction queue, the active camera, the
// scene renderer and the resource tables, and drives the per-tick
// Update, Physics, Flush sequence. Rendering is a separate step so a window
// layer can call it at its own rate.
//
// App is single-threaded. Every method must be called from the goroutine
// that drives the frame loop.
type App struct {
	cfg   Config
	dev   Device
	log   *zap.Logger
	debug bool

	arena        entityArena
	root         *Entity
	destroyQueue []destroyItem
	walkBuf      []EntityID
	worldSize    mgl32.Vec3

	renderer     *SceneRenderer
	input        *InputState
	physics      PhysicsWorld
	bodies       []*Rigidbody
	activeCamera *Camera
	sink         EventSink

	shaders    map[string]*Shader
	materials  map[string]*Material
	primitives *Primitives

	width, height int
	time          float32
	dt            float32
	fps           float32
	frame         uint64
	lastStats     RenderStats

	loadFn    func(*App) error
	updateFn  func(*App, float32)
	drawFn    func(*App, float32)
	resizeFn  func(*App, int, int)
	closingFn func(*App)

	testRunner      *TestRunner
	screenshotQueue []string
	loaded          bool
	closed          bool
	quit            bool
}

// NewApp creates an application drawing through dev. It registers the
// "unlit" shader and materials and creates the scene root and a default
// camera entity.
func NewApp(cfg Config, dev Device) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := newLogger(cfg)
	a := &App{
		cfg:       cfg,
		dev:       dev,
		log:       log,
		debug:     cfg.Debug,
		worldSize: cfg.WorldBounds(),
		input:     NewInputState(),
		shaders:   make(map[string]*Shader),
		materials: make(map[string]*Material),
		width:     cfg.Width,
		height:    cfg.Height,
	}
	a.renderer = NewSceneRenderer(dev, log)
	a.renderer.UseAlphaToCoverage = cfg.UseAlphaToCoverage
	a.primitives = newPrimitives()
	dev.Viewport(cfg.Width, cfg.Height)

	a.root = a.allocEntity(SceneRootName)

	unlit := a.LoadShader(DefaultShader, ShaderSource{Name: DefaultShader, Program: UnlitProgram{}})
	if !unlit.Linked() {
		return nil, fmt.Errorf("create default shader: %w", unlit.Err())
	}
	opaque := NewMaterial(DefaultMaterial, unlit, RenderOpaque)
	opaque.Params.SetColor(UniformColor, ColorWhite)
	a.RegisterMaterial(DefaultMaterial, opaque)
	translucent := NewMaterial(DefaultTranslucentMaterial, unlit, RenderTranslucent)
	translucent.Params.SetColor(UniformColor, Color{R: 1, G: 1, B: 1, A: 0.5})
	a.RegisterMaterial(DefaultTranslucentMaterial, translucent)

	camEntity := a.NewEntity(DefaultCameraName, nil)
	cam, err := AddComponent(camEntity, NewCameraWith(cfg.Camera))
	if err != nil {
		return nil, fmt.Errorf("create default camera: %w", err)
	}
	if cfg.Samples > 1 {
		cam.Target = NewSurface(dev, cfg.Width, cfg.Height, cfg.Samples)
	}
	return a, nil
}

// --- Accessors ---

// Config returns the configuration the App was created with.
func (a *App) Config() Config { return a.cfg }

// Device returns the graphics device.
func (a *App) Device() Device { return a.dev }

// Logger returns the App logger.
func (a *App) Logger() *zap.Logger { return a.log }

// SetLogger replaces the App logger. A nil logger disables logging.
func (a *App) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	a.log = l
	a.renderer.log = l
}

// Root returns the permanent scene root entity.
func (a *App) Root() *Entity { return a.root }

// Renderer returns the scene renderer.
func (a *App) Renderer() *SceneRenderer { return a.renderer }

// Input returns the input state.
func (a *App) Input() *InputState { return a.input }

// ActiveCamera returns the camera used by the default draw, or nil.
func (a *App) ActiveCamera() *Camera { return a.activeCamera }

// SetActiveCamera selects the camera used by the default draw.
func (a *App) SetActiveCamera(c *Camera) {
	if c != nil && c.App() != a {
		return
	}
	if c != nil {
		c.SetViewport(a.width, a.height)
	}
	a.activeCamera = c
}

// SetPhysics installs the physics world stepped once per tick.
func (a *App) SetPhysics(w PhysicsWorld) { a.physics = w }

// Physics returns the installed physics world, or nil.
func (a *App) Physics() PhysicsWorld { return a.physics }

// SetEventSink forwards lifecycle events to sink. Pass nil to disable.
func (a *App) SetEventSink(sink EventSink) { a.sink = sink }

func (a *App) emit(ev LifecycleEvent) {
	if a.sink != nil {
		a.sink.EmitEvent(ev)
	}
}

// SetDebugMode enables debug logging of per-frame stats and tree warnings.
func (a *App) SetDebugMode(enabled bool) { a.debug = enabled }

// SetWorldSize changes the culling half-extent. A zero axis disables culling
// on that axis.
func (a *App) SetWorldSize(s mgl32.Vec3) { a.worldSize = s }

// WorldSize returns the culling half-extent.
func (a *App) WorldSize() mgl32.Vec3 { return a.worldSize }

// Size returns the framebuffer size.
func (a *App) Size() (int, int) { return a.width, a.height }

// Time returns the accumulated simulation time in seconds.
func (a *App) Time() float32 { return a.time }

// DeltaTime returns the duration of the last tick in seconds.
func (a *App) DeltaTime() float32 { return a.dt }

// FPS returns an exponential moving average of the tick rate.
func (a *App) FPS() float32 { return a.fps }

// Frame returns the number of ticks run so far.
func (a *App) Frame() uint64 { return a.frame }

// LastRenderStats returns the stats of the most recent default draw.
func (a *App) LastRenderStats() RenderStats { return a.lastStats }

// Quit asks the window loop to stop after the current tick.
func (a *App) Quit() { a.quit = true }

// --- Hooks ---

// SetLoadFunc sets a callback run once before the first tick.
func (a *App) SetLoadFunc(fn func(*App) error) { a.loadFn = fn }

// SetUpdateFunc sets a callback run every tick before the entity tree updates.
func (a *App) SetUpdateFunc(fn func(*App, float32)) { a.updateFn = fn }

// SetDrawFunc replaces the default draw. The callback receives the
// accumulated time and is responsible for calling the scene renderer.
func (a *App) SetDrawFunc(fn func(*App, float32)) { a.drawFn = fn }

// SetResizeFunc sets a callback run after the framebuffer is resized.
func (a *App) SetResizeFunc(fn func(*App, int, int)) { a.resizeFn = fn }

// SetClosingFunc sets a callback run once by Close before teardown.
func (a *App) SetClosingFunc(fn func(*App)) { a.closingFn = fn }

// --- Resource tables ---

// LoadShader compiles src and registers the result under name. Compile
// failures are logged and produce an unlinked placeholder that skips draws.
func (a *App) LoadShader(name string, src ShaderSource) *Shader {
	s, err := CompileShader(a.dev, src)
	if err != nil {
		a.log.Error("shader compile failed", zap.String("op", "LoadShader"), zap.String("shader", name), zap.Error(err))
	}
	a.shaders[name] = s
	return s
}

// Shader returns a registered shader.
func (a *App) Shader(name string) *Shader { return a.shaders[name] }

// RegisterMaterial stores m under name, replacing any previous entry.
func (a *App) RegisterMaterial(name string, m *Material) { a.materials[name] = m }

// Material returns a registered material.
func (a *App) Material(name string) *Material { return a.materials[name] }

// Primitives returns the shared primitive meshes.
func (a *App) Primitives() *Primitives { return a.primitives }

// --- Frame loop ---

// Load runs the load callback once. Tick calls it automatically.
func (a *App) Load() error {
	if a.loaded {
		return nil
	}
	a.loaded = true
	if a.loadFn != nil {
		if err := a.loadFn(a); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	return nil
}

// Tick advances the simulation by dt seconds: input, update callback, entity
// tree update with boundary culling, physics step, and the destruction flush.
func (a *App) Tick(dt float32) {
	if !a.loaded {
		if err := a.Load(); err != nil {
			a.log.Error("load failed", zap.Error(err))
		}
	}
	var start time.Time
	if a.debug {
		start = time.Now()
	}

	a.dt = dt
	a.time += dt
	a.frame++
	if dt > 0 {
		if a.fps == 0 {
			a.fps = 1 / dt
		} else {
			a.fps = 0.9*a.fps + 0.1*(1/dt)
		}
	}

	if a.testRunner != nil {
		a.testRunner.step(a)
	}
	a.input.beginFrame()
	a.input.dispatch(dt)

	if a.updateFn != nil {
		a.updateFn(a, dt)
	}
	a.updateEntity(a.root, dt)

	if a.physics != nil {
		for _, b := range a.bodies {
			b.pushKinematic()
		}
		a.physics.Step(dt)
		for _, b := range a.bodies {
			b.pullTransform()
		}
	}

	a.flushDestroyed()
	a.input.endFrame()

	if a.debug {
		a.debugLogTick(time.Since(start))
	}
}

// updateEntity updates e's components and then its children, depth-first.
// Children are snapshotted into walkBuf so reparenting during the walk
// cannot skip siblings, and each entity is stamped with the frame so one
// moved under a later sibling is not updated again.
func (a *App) updateEntity(e *Entity, dt float32) {
	if e.state == EntityDestroyed || e.updatedFrame == a.frame {
		return
	}
	e.updatedFrame = a.frame
	if e != a.root && a.outOfBounds(e.transform.WorldPosition()) {
		e.Destroy()
	}
	n := len(e.order)
	for i := 0; i < n && i < len(e.order); i++ {
		c := e.order[i]
		if c.base().state == ComponentInitialized {
			c.OnUpdate(dt)
		}
	}

	start := len(a.walkBuf)
	a.walkBuf = append(a.walkBuf, e.children...)
	end := len(a.walkBuf)
	for i := start; i < end; i++ {
		if child := a.arena.get(a.walkBuf[i]); child != nil {
			a.updateEntity(child, dt)
		}
	}
	a.walkBuf = a.walkBuf[:start]
}

func (a *App) outOfBounds(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if a.worldSize[i] > 0 && math32.Abs(p[i]) >= a.worldSize[i] {
			return true
		}
	}
	return false
}

// RenderFrame clears the framebuffer, runs the draw callback (or DrawScene),
// resolves the active camera's target into the default framebuffer, and
// writes any queued screenshots.
func (a *App) RenderFrame() {
	var start time.Time
	if a.debug {
		start = time.Now()
	}
	a.dev.BindSurface(DefaultSurface)
	a.dev.Clear(a.cfg.ClearColor)

	cam := a.activeCamera
	target := (*Surface)(nil)
	if cam != nil && cam.Target != nil {
		target = cam.Target
		a.dev.BindSurface(target.ID())
		a.dev.Clear(a.cfg.ClearColor)
	}

	if a.drawFn != nil {
		a.drawFn(a, a.time)
	} else {
		a.lastStats = a.DrawScene(a.time)
	}

	if target != nil {
		a.dev.ResolveSurface(target.ID(), DefaultSurface)
		a.dev.BindSurface(DefaultSurface)
	}
	a.flushScreenshots()

	if a.debug {
		a.debugLogRender(time.Since(start), a.lastStats)
	}
}

// DrawScene renders the active camera with the scene renderer. It takes the
// multisampled path when alpha-to-coverage is enabled and the camera's
// target is multisampled.
func (a *App) DrawScene(time float32) RenderStats {
	cam := a.activeCamera
	if cam == nil {
		return RenderStats{}
	}
	if a.renderer.UseAlphaToCoverage && cam.Target != nil && cam.Target.Multisampled() {
		return a.renderer.RenderMultisampled(cam, time)
	}
	return a.renderer.Render(cam, time)
}

// Resize updates the framebuffer size, the active camera's viewport and its
// target surface.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == a.width && height == a.height) {
		return
	}
	a.width, a.height = width, height
	a.dev.Viewport(width, height)
	if cam := a.activeCamera; cam != nil {
		cam.SetViewport(width, height)
		if cam.Target != nil {
			cam.Target.Resize(width, height)
		}
	}
	if a.resizeFn != nil {
		a.resizeFn(a, width, height)
	}
}

// Close runs the closing callback, destroys the scene and releases the
// resources the App created. Calling it twice is a no-op.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.closingFn != nil {
		a.closingFn(a)
	}
	for _, c := range a.root.Children() {
		c.Destroy()
	}
	a.flushDestroyed()
	a.primitives.dispose()
	for _, m := range a.materials {
		m.Dispose()
	}
	for _, s := range a.shaders {
		s.Dispose()
	}
	_ = a.log.Sync()
}
