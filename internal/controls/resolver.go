package controls

import (
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// PositionalSensor is a dedicated head-tracking device.
type PositionalSensor interface {
	// Orientation returns the current reading, or false when there is none.
	Orientation() (math.Quat, bool)
	// ResetSensor re-centers the device.
	ResetSensor()
}

// AmbientSource is a built-in device orientation feed, such as a phone.
type AmbientSource interface {
	CurrentOrientation() (math.Quat, bool)
}

// Resolver picks the orientation feed for the current frame: the dedicated
// sensor first, then the ambient source, then nothing.
type Resolver struct {
	sensor  PositionalSensor
	ambient AmbientSource
}

// NewResolver creates a resolver. Either feed may be nil.
func NewResolver(sensor PositionalSensor, ambient AmbientSource) *Resolver {
	return &Resolver{sensor: sensor, ambient: ambient}
}

// Resolve returns this frame's external orientation sample. The sample is
// passed through as reported, including the all-zero "no data yet" value.
func (r *Resolver) Resolve() (math.Quat, bool) {
	if r.sensor != nil {
		if q, ok := r.sensor.Orientation(); ok {
			return q, true
		}
	}
	if r.ambient != nil {
		if q, ok := r.ambient.CurrentOrientation(); ok {
			return q, true
		}
	}
	return math.Quat{}, false
}

// Reset forwards a re-center request to the dedicated sensor. It returns
// false when there is no such sensor.
func (r *Resolver) Reset() bool {
	if r.sensor == nil {
		return false
	}
	r.sensor.ResetSensor()
	return true
}

// HasSensor reports whether a dedicated sensor is attached.
func (r *Resolver) HasSensor() bool {
	return r.sensor != nil
}
