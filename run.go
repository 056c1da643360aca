package birch

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// gameShell adapts an App to ebiten.Game. Update ticks the App, Draw renders
// a frame through the App's device and copies the pixels to the screen.
type gameShell struct {
	app     *App
	keysBuf []ebiten.Key
}

// Run opens a window sized from the App's config and drives the App until
// the window closes, Quit is called or the update hook returns. Close runs
// before Run returns.
func Run(app *App) error {
	cfg := app.Config()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}

	if err := app.Load(); err != nil {
		return err
	}
	defer app.Close()
	if err := ebiten.RunGame(&gameShell{app: app}); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func (g *gameShell) Update() error {
	if ebiten.IsWindowBeingClosed() || g.app.quit {
		return ebiten.Termination
	}
	if !g.app.input.Injecting() {
		g.pollInput()
	}
	g.app.Tick(1 / float32(ebiten.TPS()))
	if g.app.quit {
		return ebiten.Termination
	}
	return nil
}

// pollInput feeds this frame's ebiten key, button, cursor and wheel edges
// into the App's InputState.
func (g *gameShell) pollInput() {
	in := g.app.input
	g.keysBuf = inpututil.AppendJustPressedKeys(g.keysBuf[:0])
	for _, k := range g.keysBuf {
		in.PressKey(k)
	}
	g.keysBuf = inpututil.AppendJustReleasedKeys(g.keysBuf[:0])
	for _, k := range g.keysBuf {
		in.ReleaseKey(k)
	}
	for b := ebiten.MouseButton(0); b <= ebiten.MouseButtonMax; b++ {
		if inpututil.IsMouseButtonJustPressed(b) {
			in.PressButton(b)
		} else if inpututil.IsMouseButtonJustReleased(b) {
			in.ReleaseButton(b)
		}
	}
	mx, my := ebiten.CursorPosition()
	in.MoveMouse(float32(mx), float32(my))
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		in.ScrollWheel(float32(wx), float32(wy))
	}
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.app.RenderFrame()

	img := g.app.dev.ReadPixels(DefaultSurface)
	if img == nil {
		return
	}
	b := screen.Bounds()
	if img.Rect.Dx() != b.Dx() || img.Rect.Dy() != b.Dy() {
		return
	}
	// The window is opaque. Forcing alpha makes straight and premultiplied
	// bytes identical.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	screen.WritePixels(img.Pix)

	if g.app.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *gameShell) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.app.Resize(outsideWidth, outsideHeight)
	return g.app.width, g.app.height
}
