// Package viewer runs the interactive camera viewer: window, input, the
// control system and the reference scene.
package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/config"
	"github.com/Faultbox/midgard-vr/internal/controls"
	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/input"
	"github.com/Faultbox/midgard-vr/internal/engine/renderer"
	"github.com/Faultbox/midgard-vr/internal/engine/window"
	"github.com/Faultbox/midgard-vr/internal/sensor"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

const title = "Midgard VR"

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FreeCamera
	controls *controls.System

	stream  *sensor.Stream
	devices *input.PollSource
}

// New creates the window and wires the control system to the camera.
func New(cfg *config.Config, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	v := &Viewer{cfg: cfg, log: log}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, log.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:         w,
		Height:        h,
		GridHalfCells: 20,
		GridSpacing:   1,
	}, log.Named("renderer"))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if cfg.Sensor.Listen != "" {
		v.stream, err = sensor.Listen(cfg.Sensor.Listen, cfg.Sensor.StaleAfter, log.Named("sensor"))
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("failed to open sensor stream: %w", err)
		}
	}

	settings := cfg.ControlSettings()
	opts := []controls.Option{
		controls.WithLogger(log.Named("controls")),
		controls.WithReady(v.onSensorReady),
	}

	provider, ambient := sensor.Feeds(v.stream, sensor.Role(cfg.Sensor.Role))
	if provider != nil {
		opts = append(opts, controls.WithSensorProvider(provider))
	}
	if ambient != nil {
		opts = append(opts, controls.WithAmbientSource(ambient))
	}

	// Controller axes are sampled on this thread every frame; in polling mode
	// the poller only discovers devices from the last cached sample.
	eventsSupported := v.window.ControllerEvents()
	strategy := settings.Strategy.Resolve(eventsSupported)
	v.input = input.New(strategy == controls.StrategyEvents, log.Named("input"))
	if strategy == controls.StrategyPolling {
		v.devices = input.NewPollSource()
		opts = append(opts,
			controls.WithDeviceSource(v.devices, eventsSupported),
			controls.WithFrameSampler(v.devices),
		)
	} else {
		opts = append(opts,
			controls.WithDeviceSource(nil, eventsSupported),
			controls.WithFrameSampler(v.input),
		)
	}

	v.camera = camera.NewFreeCamera(math.Vec3{X: 0, Y: 1.6, Z: 5})
	v.controls = controls.New(v.camera, settings, opts...)
	v.window.SetTitle(StatusTitle(settings.Groups))

	log.Info("viewer initialized successfully")
	return v, nil
}

func (v *Viewer) onSensorReady(err error) {
	if err != nil {
		v.log.Info("no dedicated orientation sensor", zap.Error(err))
		return
	}
	v.log.Info("orientation sensor ready")
}

// Run starts the main loop. It returns when the window closes or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if v.stream != nil {
		go func() {
			if err := v.stream.Run(ctx); err != nil {
				v.log.Warn("sensor stream stopped", zap.Error(err))
			}
		}()
	}
	v.controls.Start(ctx)

	v.running = true
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}
		frameStart := time.Now()

		// 1. Process input
		if v.input.Update() {
			// Quit event received
			v.running = false
			break
		}
		v.handleEvents(v.input.Events())

		// 2. Refresh controller axes and advance the camera
		v.controls.Update(frameStart)

		// 3. Render
		w, h := v.renderer.Size()
		v.renderer.Draw(v.camera.ViewProjection(w, h))

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		if d := FrameDelay(v.cfg.Graphics.FPSLimit, time.Since(frameStart)); d > 0 {
			sdl.Delay(uint32(d / time.Millisecond))
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents(events []input.Event) {
	for _, event := range events {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			v.renderer.Resize(w, h)
		case input.EventControllerAdded:
			v.controls.Registry.Connect(event.Device)
		case input.EventControllerRemoved:
			v.controls.Registry.Disconnect(event.Device.Index)
		case input.EventKeyDown:
			if !event.Repeat && v.hotkey(event.Key) {
				continue
			}
		}

		if key, pressed, ok := input.Edge(event); ok {
			v.controls.OnEdge(key, pressed)
		}
	}
}

// hotkey runs viewer commands. It returns true when the key was consumed.
func (v *Viewer) hotkey(sc sdl.Scancode) bool {
	switch sc {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_R:
		if !v.controls.ResetSensor() {
			v.log.Debug("no sensor to re-center")
		}
	case sdl.SCANCODE_BACKSPACE:
		v.controls.ResetRotation()
	default:
		g, ok := ToggleGroup(v.controls.Controls.Groups(), sc)
		if !ok {
			return false
		}
		v.controls.SetGroups(g)
		v.window.SetTitle(StatusTitle(g))
		v.log.Info("input groups changed",
			zap.Bool("gamepad", g.Gamepad),
			zap.Bool("arrows", g.Arrows),
			zap.Bool("wasd", g.WASD),
		)
	}
	return true
}

// ToggleGroup flips the input group bound to a function key: F1 gamepad,
// F2 arrows, F3 WASD.
func ToggleGroup(g controls.Groups, sc sdl.Scancode) (controls.Groups, bool) {
	switch sc {
	case sdl.SCANCODE_F1:
		g.Gamepad = !g.Gamepad
	case sdl.SCANCODE_F2:
		g.Arrows = !g.Arrows
	case sdl.SCANCODE_F3:
		g.WASD = !g.WASD
	default:
		return g, false
	}
	return g, true
}

// FrameDelay returns how long to sleep so a frame that took elapsed does not
// exceed fpsLimit frames per second. A non-positive limit means uncapped.
func FrameDelay(fpsLimit int, elapsed time.Duration) time.Duration {
	if fpsLimit <= 0 {
		return 0
	}
	budget := time.Second / time.Duration(fpsLimit)
	if elapsed >= budget {
		return 0
	}
	return budget - elapsed
}

// StatusTitle renders the window title listing the enabled input groups.
func StatusTitle(g controls.Groups) string {
	var on []string
	if g.Gamepad {
		on = append(on, "gamepad")
	}
	if g.Arrows {
		on = append(on, "arrows")
	}
	if g.WASD {
		on = append(on, "wasd")
	}
	if len(on) == 0 {
		return title + " [no manual input]"
	}
	return title + " [" + strings.Join(on, " ") + "]"
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.stream != nil {
		_ = v.stream.Close()
	}
	if v.devices != nil {
		v.devices.Close()
	}
	if v.input != nil {
		v.input.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
