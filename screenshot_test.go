package birch

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotWritesPNG(t *testing.T) {
	cfg := testConfig()
	cfg.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	cfg.ClearColor = Color{R: 0, G: 0, B: 1, A: 1}
	app := newTestAppWith(t, cfg)

	app.Screenshot("a/b c")
	app.RenderFrame()
	assert.Empty(t, app.screenshotQueue)

	entries, err := os.ReadDir(cfg.ScreenshotDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasSuffix(name, "_a_b_c.png"), name)

	f, err := os.Open(filepath.Join(cfg.ScreenshotDir, name))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
	_, _, b, a := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestScreenshotNothingQueued(t *testing.T) {
	cfg := testConfig()
	cfg.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	app := newTestAppWith(t, cfg)
	app.RenderFrame()
	_, err := os.Stat(cfg.ScreenshotDir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSanitizeLabel(t *testing.T) {
	cases := map[string]string{
		"":       "unlabeled",
		"   ":    "unlabeled",
		"ok-1.2": "ok-1.2",
		"a/b c":  "a_b_c",
		" trim ": "trim",
		"café":   "caf_",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeLabel(in), "label %q", in)
	}
}
