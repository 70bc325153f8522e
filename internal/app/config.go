package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"cardforge/internal/card"
	"cardforge/internal/eyedropper"
	"cardforge/internal/viewport"
	"cardforge/pkg/colorutil"
)

// EnvConfig names the environment variable that overrides the config path.
const EnvConfig = "CARDFORGE_CONFIG"

// ViewportConfig tunes pan and zoom.
type ViewportConfig struct {
	ZoomStep      float64 `toml:"zoom_step"`
	PinchDivisor  float64 `toml:"pinch_divisor"`
	DoubleClickMS int     `toml:"double_click_ms"`
}

// EyedropperConfig tunes the colour picker.
type EyedropperConfig struct {
	LoupeSize    int     `toml:"loupe_size"`
	LoupeGrid    int     `toml:"loupe_grid"`
	LoupeSpacing float64 `toml:"loupe_spacing"`
	Capture      bool    `toml:"capture"`
	// Native prefers a platform colour picker when one is available.
	Native bool `toml:"native"`
}

// ExportConfig controls PNG export.
type ExportConfig struct {
	PixelRatio float64 `toml:"pixel_ratio"`
	Directory  string  `toml:"directory"`
}

// Config is the engine configuration read from config.toml.
type Config struct {
	AssetDir   string           `toml:"asset_dir"`
	Accent     colorutil.Hex    `toml:"accent"`
	Viewport   ViewportConfig   `toml:"viewport"`
	Eyedropper EyedropperConfig `toml:"eyedropper"`
	Export     ExportConfig     `toml:"export"`

	path string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		AssetDir: "assets",
		Accent:   DefaultAccent,
		Viewport: ViewportConfig{
			ZoomStep:      viewport.DefaultZoomStep,
			PinchDivisor:  viewport.DefaultPinchDivisor,
			DoubleClickMS: int(viewport.DefaultDoubleClickWindow / time.Millisecond),
		},
		Eyedropper: EyedropperConfig{
			LoupeSize:    eyedropper.DefaultLoupeSize,
			LoupeGrid:    eyedropper.DefaultLoupeGrid,
			LoupeSpacing: eyedropper.DefaultLoupeSpacing,
			Capture:      true,
		},
		Export: ExportConfig{
			PixelRatio: card.DefaultPixelRatio,
			Directory:  filepath.Join(home, "Downloads"),
		},
	}
}

// ConfigPath resolves the config file location: the explicit path if set,
// then $CARDFORGE_CONFIG, then the user config directory.
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("cardforge", "config.toml")
	}
	return filepath.Join(dir, "cardforge", "config.toml")
}

// LoadConfig reads the config at path. A missing file yields the defaults
// without error; keys absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Printf("Config: ignoring unknown keys in %s: %v", path, undecoded)
	}

	cfg.Validate()
	return cfg, nil
}

// Validate replaces out-of-range values with the defaults.
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.Viewport.ZoomStep <= 0 || c.Viewport.ZoomStep >= 1 {
		c.Viewport.ZoomStep = def.Viewport.ZoomStep
	}
	if c.Viewport.PinchDivisor <= 0 {
		c.Viewport.PinchDivisor = def.Viewport.PinchDivisor
	}
	if c.Viewport.DoubleClickMS <= 0 {
		c.Viewport.DoubleClickMS = def.Viewport.DoubleClickMS
	}
	if c.Eyedropper.LoupeSize <= 0 {
		c.Eyedropper.LoupeSize = def.Eyedropper.LoupeSize
	}
	if c.Eyedropper.LoupeGrid <= 0 {
		c.Eyedropper.LoupeGrid = def.Eyedropper.LoupeGrid
	}
	if c.Eyedropper.LoupeSpacing <= 0 {
		c.Eyedropper.LoupeSpacing = def.Eyedropper.LoupeSpacing
	}
	if c.Export.PixelRatio <= 0 {
		c.Export.PixelRatio = def.Export.PixelRatio
	}
	if c.Export.Directory == "" {
		c.Export.Directory = def.Export.Directory
	}
	if !c.Accent.Valid() {
		c.Accent = def.Accent
	}
	if c.AssetDir == "" {
		c.AssetDir = def.AssetDir
	}
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config as TOML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.path = path
	return nil
}

// ViewportOptions converts the viewport section to engine options.
func (c *Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		ZoomStep:          c.Viewport.ZoomStep,
		PinchDivisor:      c.Viewport.PinchDivisor,
		DoubleClickWindow: time.Duration(c.Viewport.DoubleClickMS) * time.Millisecond,
	}
}

// Loupe converts the eyedropper section to a loupe geometry.
func (c *Config) Loupe() eyedropper.Loupe {
	return eyedropper.Loupe{
		Size:    c.Eyedropper.LoupeSize,
		Grid:    c.Eyedropper.LoupeGrid,
		Spacing: c.Eyedropper.LoupeSpacing,
	}
}
