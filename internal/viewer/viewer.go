// Package viewer runs the interactive mesh viewer: window, input, frame loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshstage/internal/assets"
	"github.com/Faultbox/meshstage/internal/config"
	"github.com/Faultbox/meshstage/internal/engine/debug"
	"github.com/Faultbox/meshstage/internal/engine/framebuffer"
	"github.com/Faultbox/meshstage/internal/engine/input"
	"github.com/Faultbox/meshstage/internal/engine/mesh"
	"github.com/Faultbox/meshstage/internal/engine/renderer"
	"github.com/Faultbox/meshstage/internal/engine/scene"
	"github.com/Faultbox/meshstage/internal/engine/window"
	"github.com/Faultbox/meshstage/internal/logger"
)

const title = "meshstage"

// Viewer owns the window, the GL renderer and the world.
type Viewer struct {
	cfg       *config.Config
	running   bool
	window    *window.Window
	renderer  *renderer.Renderer
	input     *input.Input
	registry  *assets.Registry
	world     *World
	shots     *debug.Screenshots
	offscreen *framebuffer.Framebuffer

	screenshotPending bool
	log               *zap.Logger
}

// New opens the window, initializes GL and builds the initial scene.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		input: input.New(),
		shots: debug.NewScreenshots(cfg.Screenshot.Dir, cfg.Screenshot.Prefix),
		log:   logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("sources", len(cfg.Scene.Sources)),
	)

	// The window creates the GL context everything below depends on
	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	device := mesh.GLDevice{}
	v.renderer, err = renderer.New(device)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	fetcher := assets.NewSourceFetcher(cfg.Loader.BaseDir, cfg.Loader.Timeout)
	v.registry = assets.NewRegistry(device, fetcher)
	v.world = NewWorld(cfg, v.registry)

	v.log.Info("viewer initialized", zap.Int("objects", v.world.Objects.Len()))
	return v, nil
}

// Run drives the frame loop until the window closes or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleInput()

		snap := v.world.Step(float32(dt))

		width, height := v.window.DrawableSize()
		v.renderer.Draw(snap, v.registry, renderer.Viewport{Width: width, Height: height})

		if v.screenshotPending {
			v.screenshotPending = false
			v.captureScreenshot(snap, width, height)
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := v.registry.Stats()
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Int("objects", v.world.Objects.Len()),
				zap.Int("loading", stats.Loading),
				zap.Int("failed", stats.Failed),
				zap.Int("loaded", stats.Loaded),
				zap.Int("evicted", stats.Evicted),
				zap.Int("gpu_meshes", stats.LiveMeshes),
			)
			v.window.SetTitle(fmt.Sprintf("%s | %d fps | %d objects", title, frameCount, v.world.Objects.Len()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// actions maps single key presses to world edits.
var actions = map[sdl.Scancode]func(*World){
	sdl.SCANCODE_N: func(w *World) { w.Spawn() },
	sdl.SCANCODE_C: (*World).Clear,
	sdl.SCANCODE_M: (*World).CycleShading,
	sdl.SCANCODE_L: func(w *World) { w.LoadNext() },
	sdl.SCANCODE_R: (*World).ToggleAnimation,

	sdl.SCANCODE_EQUALS:   func(w *World) { w.Zoom(1) },
	sdl.SCANCODE_KP_PLUS:  func(w *World) { w.Zoom(1) },
	sdl.SCANCODE_MINUS:    func(w *World) { w.Zoom(-1) },
	sdl.SCANCODE_KP_MINUS: func(w *World) { w.Zoom(-1) },
}

// panKeys move the camera every frame they are held.
var panKeys = []struct {
	key             sdl.Scancode
	right, up, back float32
}{
	{sdl.SCANCODE_A, -1, 0, 0},
	{sdl.SCANCODE_D, 1, 0, 0},
	{sdl.SCANCODE_W, 0, 0, -1},
	{sdl.SCANCODE_S, 0, 0, 1},
	{sdl.SCANCODE_E, 0, 1, 0},
	{sdl.SCANCODE_Q, 0, -1, 0},
}

func (v *Viewer) handleInput() {
	for _, event := range v.input.Events() {
		if event.Type != input.EventKeyDown || event.Repeat {
			continue
		}
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			v.running = false
		case sdl.SCANCODE_F12:
			v.screenshotPending = true
		default:
			if action, ok := actions[event.Key]; ok {
				action(v.world)
			}
		}
	}

	for _, p := range panKeys {
		if input.KeyHeld(p.key) {
			v.world.Pan(p.right, p.up, p.back)
		}
	}
}

// captureScreenshot redraws snap into an offscreen target scaled from the
// window size and writes it out.
func (v *Viewer) captureScreenshot(snap *scene.Snapshot, width, height int32) {
	scale := int32(max(v.cfg.Screenshot.Scale, 1))
	width, height = width*scale, height*scale

	if v.offscreen == nil {
		fb, err := framebuffer.New(width, height)
		if err != nil {
			v.log.Error("screenshot target unavailable", zap.Error(err))
			return
		}
		v.offscreen = fb
	}
	v.offscreen.Resize(width, height)
	width, height = v.offscreen.Size()

	v.renderer.Draw(snap, v.registry, renderer.Viewport{
		Framebuffer: v.offscreen.FBO(),
		Width:       width,
		Height:      height,
	})

	path, err := v.shots.Capture(v.offscreen.ReadPixels(), int(width), int(height))
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved",
		zap.String("path", path),
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
}

// Close releases GPU meshes, the renderer and the window, in that order.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.registry != nil {
		v.registry.Close()
	}
	if v.offscreen != nil {
		v.offscreen.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
