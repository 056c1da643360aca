// Package birch is a retained-mode 3D scene framework for [Ebitengine].
//
// Birch provides the entity tree, transform hierarchy, component lifecycle,
// batched mesh rendering with correct opaque and translucent ordering, and
// a perspective camera. Drawing goes through a [Device]; the package ships
// [Rasterizer], a software device with a depth buffer and multisampling,
// whose pixels are presented in an ebiten window.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg := birch.DefaultConfig()
//	app, err := birch.NewApp(cfg, birch.NewRasterizer(cfg.Width, cfg.Height))
//	if err != nil {
//		log.Fatal(err)
//	}
//	cube, _ := app.CreateCube("cube", nil, nil)
//	cube.Transform().SetPosition(mgl32.Vec3{0, 0, -4})
//	log.Fatal(birch.Run(app))
//
// For full control, call [App.Tick] and [App.RenderFrame] yourself and read
// the result back with [Device.ReadPixels].
//
// # Entities and components
//
// Every object is an [Entity] with a [Transform]. Entities form a tree rooted
// at [App.Root]; a child's world transform is its parent's world transform
// composed with its own local position, rotation and scale.
//
// Behavior lives in components. Embed [ComponentBase], override the hooks
// you need, and attach with [AddComponent]:
//
//	type spinner struct {
//		birch.ComponentBase
//		speed float32
//	}
//
//	func (s *spinner) OnUpdate(dt float32) {
//		s.Transform().Rotate(birch.AxisUp, s.speed*dt)
//	}
//
//	birch.AddComponent(cube, &spinner{speed: 1})
//
// Destroying an entity or component is deferred to the end of the tick, so
// everything keeps updating until then and hooks never observe a half-torn
// tree.
//
// # Rendering
//
// A [MeshRenderer] pairs a [Mesh] with a [Material]. The [SceneRenderer]
// groups renderers by mesh and material and draws every opaque group, then
// writes the depth of translucent groups, then blends their color. Binding
// work is paid per group rather than per object.
//
// # Key features
//
// Birch includes position, scale and rotation tweens (via [gween]), a fly
// camera and mouse look, a point-mass physics bridge, YAML or TOML config,
// structured logging via [zap], scripted input runs with screenshots, and
// ECS integration (via [Donburi] adapter in birch/ecs).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [zap]: https://github.com/uber-go/zap
// [Donburi]: https://github.com/yohamta/donburi
package birch
