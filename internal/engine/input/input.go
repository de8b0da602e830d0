// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/controls"
)

// Event types for viewer use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventControllerAdded
	EventControllerRemoved
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	Device controls.DeviceSample // controller events only
}

// Input handles all input processing.
type Input struct {
	events []Event

	// Controllers opened in response to device events, by instance ID.
	// Nil when controllers are polled instead.
	controllers map[sdl.JoystickID]*sdl.GameController

	log *zap.Logger
}

// New creates a new input handler. With trackControllers set, controller
// added/removed events open and close devices and are reported as events.
func New(trackControllers bool, log *zap.Logger) *Input {
	if log == nil {
		log = zap.NewNop()
	}
	i := &Input{
		events: make([]Event, 0, 16),
		log:    log,
	}
	if trackControllers {
		i.controllers = make(map[sdl.JoystickID]*sdl.GameController)
	}
	return i
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			typ := EventKeyDown
			if e.Type == sdl.KEYUP {
				typ = EventKeyUp
			}
			i.events = append(i.events, Event{
				Type:   typ,
				Key:    e.Keysym.Scancode,
				Repeat: e.Repeat != 0,
			})

		case *sdl.ControllerDeviceEvent:
			i.handleControllerEvent(e)
		}
	}

	return false
}

// handleControllerEvent opens or closes a controller. For ADDED, Which is
// the device index; for REMOVED it is the instance ID.
func (i *Input) handleControllerEvent(e *sdl.ControllerDeviceEvent) {
	if i.controllers == nil {
		return
	}

	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		gc := sdl.GameControllerOpen(int(e.Which))
		if gc == nil {
			i.log.Warn("failed to open controller", zap.Int32("device", int32(e.Which)))
			return
		}
		id := gc.Joystick().InstanceID()
		if _, open := i.controllers[id]; open {
			gc.Close() // duplicate notification for a device we hold
			return
		}
		i.controllers[id] = gc
		i.events = append(i.events, Event{
			Type:   EventControllerAdded,
			Device: Sample(int(id), gc),
		})

	case sdl.CONTROLLERDEVICEREMOVED:
		id := e.Which
		gc, ok := i.controllers[id]
		if !ok {
			return
		}
		gc.Close()
		delete(i.controllers, id)
		i.events = append(i.events, Event{
			Type:   EventControllerRemoved,
			Device: controls.DeviceSample{Index: int(id)},
		})
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Samples implements controls.FrameSampler for event-tracked controllers.
func (i *Input) Samples() []controls.DeviceSample {
	return i.Controllers()
}

// Controllers returns the latest axis samples of every open controller.
func (i *Input) Controllers() []controls.DeviceSample {
	out := make([]controls.DeviceSample, 0, len(i.controllers))
	for id, gc := range i.controllers {
		out = append(out, Sample(int(id), gc))
	}
	return out
}

// Close releases every open controller.
func (i *Input) Close() {
	for id, gc := range i.controllers {
		gc.Close()
		delete(i.controllers, id)
	}
}
