package birch

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Screenshot queues a labeled screenshot to be captured at the end of the
// next RenderFrame. The PNG is written to Config.ScreenshotDir with a
// timestamped file name.
func (a *App) Screenshot(label string) {
	a.screenshotQueue = append(a.screenshotQueue, label)
}

// flushScreenshots reads back the default framebuffer once and writes it
// for every queued label.
func (a *App) flushScreenshots() {
	if len(a.screenshotQueue) == 0 {
		return
	}
	dir := a.cfg.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.log.Error("screenshot mkdir failed", zap.String("dir", dir), zap.Error(err))
		a.screenshotQueue = a.screenshotQueue[:0]
		return
	}

	img := a.dev.ReadPixels(DefaultSurface)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range a.screenshotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			a.log.Error("screenshot failed", zap.Error(err))
			continue
		}
		a.log.Info("screenshot written", zap.String("path", path))
	}
	a.screenshotQueue = a.screenshotQueue[:0]
}

// writePNG encodes img to a new file at path.
func writePNG(path string, img *image.NRGBA) (err error) {
	if img == nil {
		return fmt.Errorf("write %s: no pixels", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel maps a label to a form safe for file names. Blank labels
// become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '.', r == '_':
			return r
		}
		return '_'
	}, label)
}
