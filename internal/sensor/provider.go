package sensor

import (
	"github.com/Faultbox/midgard-vr/internal/controls"
)

// Role says which orientation slot a stream fills.
type Role string

const (
	// RoleHMD treats the stream as a dedicated head tracker.
	RoleHMD Role = "hmd"
	// RolePhone treats the stream as an ambient device orientation.
	RolePhone Role = "phone"
)

// Feeds splits a stream into the controls' sensor provider and ambient
// source according to role. A nil stream yields a nil provider, which the
// controls report as unsupported.
func Feeds(s *Stream, role Role) (controls.SensorProvider, controls.AmbientSource) {
	if s == nil {
		return nil, nil
	}
	if role == RoleHMD {
		return controls.SensorProviderFunc(func() []controls.PositionalSensor {
			return []controls.PositionalSensor{s}
		}), nil
	}
	none := controls.SensorProviderFunc(func() []controls.PositionalSensor { return nil })
	return none, s
}
