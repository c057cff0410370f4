// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/meshstage/internal/engine/camera"
	"github.com/Faultbox/meshstage/internal/engine/scene"
)

// Config holds all viewer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Scene      SceneConfig      `yaml:"scene"`
	Loader     LoaderConfig     `yaml:"loader"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// SceneConfig describes the initial scene.
type SceneConfig struct {
	Camera   CameraConfig   `yaml:"camera"`
	Ambient  AmbientConfig  `yaml:"ambient"`
	Template ObjectConfig   `yaml:"template"`
	Objects  []ObjectConfig `yaml:"objects"`
	Sources  []string       `yaml:"sources"` // cycled through by the load action
}

// CameraConfig holds the starting camera.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	FovY     float32    `yaml:"fovy"`
}

// AmbientConfig holds the ambient light term.
type AmbientConfig struct {
	Color [3]float32 `yaml:"color"`
	Ka    float32    `yaml:"ka"`
}

// ObjectConfig describes one object. Angles are in degrees.
type ObjectConfig struct {
	Name        string            `yaml:"name"`
	Translation [3]float32        `yaml:"translation"`
	Rotation    [3]float32        `yaml:"rotation"`
	Rotating    [3]float32        `yaml:"rotating"`
	Scale       [3]float32        `yaml:"scale"`
	Shear       [3]float32        `yaml:"shear"`
	Animated    bool              `yaml:"animated"`
	Shading     scene.ShadingMode `yaml:"shading"`
	Source      string            `yaml:"source,omitempty"`
}

// LoaderConfig controls mesh fetching.
type LoaderConfig struct {
	BaseDir string        `yaml:"base_dir"` // relative sources resolve against it
	Timeout time.Duration `yaml:"timeout"`
}

// ScreenshotConfig controls captures.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Scale  int    `yaml:"scale"` // offscreen size multiplier over the window
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Scene: SceneConfig{
			Camera: CameraConfig{
				Position: [3]float32{0, 0, 6},
				FovY:     45,
			},
			Ambient: AmbientConfig{
				Color: [3]float32{1, 1, 1},
				Ka:    0.15,
			},
			Template: ObjectConfig{
				Name:     "object",
				Rotating: [3]float32{15, 30, 0},
				Scale:    [3]float32{1, 1, 1},
				Shear:    [3]float32{90, 90, 90},
				Animated: true,
				Shading:  scene.ShadingPhong,
			},
		},
		Loader: LoaderConfig{
			BaseDir: ".",
			Timeout: 30 * time.Second,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "meshstage",
			Scale:  1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting the viewer cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: window size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height))
	}
	if fov := c.Scene.Camera.FovY; fov < camera.MinFovY || fov > camera.MaxFovY {
		errs = append(errs, fmt.Errorf("scene.camera: fovy %v outside [%v, %v]", fov, camera.MinFovY, camera.MaxFovY))
	}
	if ka := c.Scene.Ambient.Ka; ka < 0 || ka > 1 {
		errs = append(errs, fmt.Errorf("scene.ambient: ka %v outside [0, 1]", ka))
	}
	if s := c.Screenshot.Scale; s < 1 || s > 4 {
		errs = append(errs, fmt.Errorf("screenshot: scale %d outside [1, 4]", s))
	}
	if c.Loader.Timeout <= 0 {
		errs = append(errs, errors.New("loader: timeout must be positive"))
	}
	return errors.Join(errs...)
}
