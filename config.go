package birch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFormat selects the decoder used by LoadConfig.
type ConfigFormat uint8

const (
	FormatYAML ConfigFormat = iota
	FormatTOML
)

// CameraConfig holds the projection defaults applied to new cameras.
type CameraConfig struct {
	FOV       float32 `yaml:"fov" toml:"fov"`
	Near      float32 `yaml:"near" toml:"near"`
	Far       float32 `yaml:"far" toml:"far"`
	PitchLock bool    `yaml:"pitchLock" toml:"pitchLock"`
}

// Config describes the window, the simulation bounds and the renderer options
// of an App. Start from DefaultConfig and override what you need.
type Config struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	TPS    int    `yaml:"tps" toml:"tps"`

	// WorldSize is the half-extent of the simulated volume. Entities whose
	// world position reaches it on any axis are destroyed. A zero axis
	// disables culling on that axis.
	WorldSize [3]float32 `yaml:"worldSize" toml:"worldSize"`

	ClearColor         Color `yaml:"clearColor" toml:"clearColor"`
	Samples            int   `yaml:"samples" toml:"samples"`
	UseAlphaToCoverage bool  `yaml:"useAlphaToCoverage" toml:"useAlphaToCoverage"`

	Camera CameraConfig `yaml:"camera" toml:"camera"`

	Debug         bool   `yaml:"debug" toml:"debug"`
	LogLevel      string `yaml:"logLevel" toml:"logLevel"`
	ShowFPS       bool   `yaml:"showFPS" toml:"showFPS"`
	ScreenshotDir string `yaml:"screenshotDir" toml:"screenshotDir"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Title:              "birch",
		Width:              800,
		Height:             600,
		TPS:                60,
		WorldSize:          [3]float32{20, 20, 20},
		ClearColor:         Color{R: 0, G: 0, B: 0, A: 1},
		Samples:            1,
		UseAlphaToCoverage: true,
		Camera: CameraConfig{
			FOV:       90,
			Near:      0.1,
			Far:       120,
			PitchLock: true,
		},
		LogLevel:      "warn",
		ScreenshotDir: "screenshots",
	}
}

// WorldBounds returns WorldSize as a vector.
func (c Config) WorldBounds() mgl32.Vec3 {
	return mgl32.Vec3{c.WorldSize[0], c.WorldSize[1], c.WorldSize[2]}
}

// Validate reports the first field that cannot drive an App.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.TPS <= 0:
		return fmt.Errorf("%w: tps %d", ErrInvalidConfig, c.TPS)
	case c.Samples <= 0:
		return fmt.Errorf("%w: samples %d", ErrInvalidConfig, c.Samples)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: camera fov %v", ErrInvalidConfig, c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far:
		return fmt.Errorf("%w: camera near %v far %v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	for i, v := range c.WorldSize {
		if v < 0 {
			return fmt.Errorf("%w: worldSize[%d] %v", ErrInvalidConfig, i, v)
		}
	}
	return nil
}

// LoadConfig decodes a config document on top of DefaultConfig and validates
// the result.
func LoadConfig(r io.Reader, format ConfigFormat) (Config, error) {
	cfg := DefaultConfig()
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decode toml config: %w", err)
		}
	default:
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("decode yaml config: %w", err)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfigFile opens path and decodes it, choosing TOML for ".toml" files
// and YAML otherwise.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = FormatTOML
	}
	cfg, err := LoadConfig(f, format)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
