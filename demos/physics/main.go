// physics drops cubes onto a floor through the point-mass physics bridge.
// Click to kick every cube upward. Cubes knocked past the world bounds are
// culled automatically. All shapes are procedural.
package main

import (
	"log"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/birch"
)

const (
	screenW    = 1280
	screenH    = 720
	cubeCount  = 40
	gravity    = 9.8
	kickForce  = 8.0
	spawnRange = 6.0
)

func main() {
	cfg := birch.DefaultConfig()
	cfg.Title = "Birch — Physics Demo"
	cfg.Width, cfg.Height = screenW, screenH
	cfg.ClearColor = birch.Color{R: 0.06, G: 0.06, B: 0.09, A: 1}
	cfg.ShowFPS = true

	app, err := birch.NewApp(cfg, birch.NewRasterizer(screenW, screenH))
	if err != nil {
		log.Fatal(err)
	}

	world := birch.NewPointMassWorld(gravity)
	world.Ground = true
	world.GroundY = 0.5
	app.SetPhysics(world)

	cam := app.ActiveCamera()
	cam.Transform().SetPosition(mgl32.Vec3{0, 6, 14})
	cam.Transform().LookAt(mgl32.Vec3{0, 2, 0}, birch.AxisUp)

	floor, _ := app.CreatePlane("floor", nil, nil)
	floor.Transform().SetScale(mgl32.Vec3{16, 1, 16})

	var bodies []*birch.Rigidbody
	for i := 0; i < cubeCount; i++ {
		e, r := app.CreateCube("crate", nil, nil)
		e.Transform().SetPosition(mgl32.Vec3{
			(rand.Float32()*2 - 1) * spawnRange,
			2 + rand.Float32()*8,
			(rand.Float32()*2 - 1) * spawnRange,
		})
		r.Params.SetColor(birch.UniformColor, birch.Color{
			R: 0.3 + rand.Float32()*0.7,
			G: 0.3 + rand.Float32()*0.7,
			B: 0.3 + rand.Float32()*0.7,
			A: 1,
		})

		mass := 0.5 + rand.Float32()
		rb, err := birch.NewRigidbody(world.NewBody(mass), birch.BodyDynamic, mass)
		if err != nil {
			log.Fatal(err)
		}
		if _, err := birch.AddComponent(e, rb); err != nil {
			log.Fatal(err)
		}
		bodies = append(bodies, rb)
	}

	app.SetUpdateFunc(func(a *birch.App, _ float32) {
		if !a.Input().ButtonPressed(ebiten.MouseButtonLeft) {
			return
		}
		for _, rb := range bodies {
			if rb.IsDestroyed() {
				continue
			}
			side := mgl32.Vec3{rand.Float32()*2 - 1, 0, rand.Float32()*2 - 1}
			rb.ApplyImpulse(mgl32.Vec3{0, kickForce, 0}.Add(side).Mul(rb.Mass))
		}
	})

	if err := birch.Run(app); err != nil {
		log.Fatal(err)
	}
}
