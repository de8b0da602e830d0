package controls

import "math"

// Analog axis layout expected in DeviceSample.Axes.
const (
	PadLeftX = iota
	PadLeftY
	PadLeftTrigger
	PadRightX
	PadRightY
	PadRightTrigger
)

// Aggregator combines key-driven rates with analog controller state.
type Aggregator struct {
	registry *DeviceRegistry
	controls *ControlMap
}

// NewAggregator reads devices from registry and key state from controls.
func NewAggregator(registry *DeviceRegistry, controls *ControlMap) *Aggregator {
	return &Aggregator{registry: registry, controls: controls}
}

// Rates returns this frame's rotation and translation rates. Connected
// controllers overwrite the components they drive; with several connected,
// the highest index wins. The key-driven counters are left untouched.
func (a *Aggregator) Rates() Rates {
	r := a.controls.Rates()
	if !a.controls.Groups().Gamepad {
		return r
	}

	snap := a.registry.Snapshot()
	for _, idx := range sortedIndices(snap) {
		d := snap[idx]

		// sticks: fwd/back and strafe
		r.Translation[AxisRight.slot()] = -roundHalfUp(d.Axis(PadLeftX)) - roundHalfUp(d.Axis(PadRightX))
		r.Translation[AxisForward.slot()] = roundHalfUp(d.Axis(PadLeftY)) + roundHalfUp(d.Axis(PadRightY))

		// left trigger turns left, right trigger turns right
		r.Rotation[AxisYaw.slot()] = (roundHalfUp(d.Axis(PadLeftTrigger))+1)/3 -
			(roundHalfUp(d.Axis(PadRightTrigger))+1)/3
	}
	return r
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(v float32) float32 {
	return float32(math.Floor(float64(v) + 0.5))
}
