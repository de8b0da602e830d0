package input

import (
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-vr/internal/controls"
)

const axisMax = 32767

// stickValue scales a raw stick reading to [-1, 1].
func stickValue(raw int16) float32 {
	v := float32(raw) / axisMax
	if v < -1 {
		return -1
	}
	return v
}

// triggerValue scales a raw trigger reading from [0, 32767] to [-1, 1],
// where -1 is released.
func triggerValue(raw int16) float32 {
	if raw < 0 {
		raw = 0
	}
	return float32(raw)/axisMax*2 - 1
}

// Axes reorders SDL controller axes into the control layout:
// left X, left Y, left trigger, right X, right Y, right trigger.
func Axes(leftX, leftY, rightX, rightY, triggerLeft, triggerRight int16) []float32 {
	axes := make([]float32, 6)
	axes[controls.PadLeftX] = stickValue(leftX)
	axes[controls.PadLeftY] = stickValue(leftY)
	axes[controls.PadLeftTrigger] = triggerValue(triggerLeft)
	axes[controls.PadRightX] = stickValue(rightX)
	axes[controls.PadRightY] = stickValue(rightY)
	axes[controls.PadRightTrigger] = triggerValue(triggerRight)
	return axes
}

// Sample reads the current axes of gc.
func Sample(index int, gc *sdl.GameController) controls.DeviceSample {
	return controls.DeviceSample{
		Index: index,
		Name:  gc.Name(),
		Axes: Axes(
			gc.Axis(sdl.CONTROLLER_AXIS_LEFTX),
			gc.Axis(sdl.CONTROLLER_AXIS_LEFTY),
			gc.Axis(sdl.CONTROLLER_AXIS_RIGHTX),
			gc.Axis(sdl.CONTROLLER_AXIS_RIGHTY),
			gc.Axis(sdl.CONTROLLER_AXIS_TRIGGERLEFT),
			gc.Axis(sdl.CONTROLLER_AXIS_TRIGGERRIGHT),
		),
	}
}

// PollSource lists controllers by scanning SDL device indices. SDL is only
// touched from Samples, which runs on the main thread each frame; Devices
// hands the polling goroutine the list cached by the last Samples call.
// Controllers stay open once seen.
type PollSource struct {
	open map[int]*sdl.GameController // main thread only

	mu     sync.Mutex
	latest []controls.DeviceSample
}

// NewPollSource creates an empty poll source.
func NewPollSource() *PollSource {
	return &PollSource{open: make(map[int]*sdl.GameController)}
}

// Samples implements controls.FrameSampler. Call it from the main thread.
func (p *PollSource) Samples() []controls.DeviceSample {
	sdl.GameControllerUpdate()

	var out []controls.DeviceSample
	for i := 0; i < sdl.NumJoysticks(); i++ {
		if !sdl.IsGameController(i) {
			continue
		}
		gc, ok := p.open[i]
		if !ok {
			if gc = sdl.GameControllerOpen(i); gc == nil {
				continue
			}
			p.open[i] = gc
		}
		if !gc.Attached() {
			continue
		}
		out = append(out, Sample(i, gc))
	}

	p.store(out)
	return out
}

// store caches samples for Devices.
func (p *PollSource) store(samples []controls.DeviceSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = samples
}

// Devices implements controls.DeviceSource without calling into SDL, so the
// poller may run it from any goroutine.
func (p *PollSource) Devices() []controls.DeviceSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]controls.DeviceSample(nil), p.latest...)
}

// Close releases every controller the source opened. Call it from the main thread.
func (p *PollSource) Close() {
	for i, gc := range p.open {
		gc.Close()
		delete(p.open, i)
	}
	p.store(nil)
}
