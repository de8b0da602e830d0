package controls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// restingPad is a controller with centered sticks and released triggers.
func restingPad(index int) DeviceSample {
	return DeviceSample{Index: index, Axes: []float32{0, 0, -1, 0, 0, -1}}
}

func TestAggregatorKeysOnly(t *testing.T) {
	m := NewControlMap(DefaultBindings(), AllGroups(), nil)
	a := NewAggregator(NewDeviceRegistry(nil), m)

	m.OnEdge(KeyW, true)
	m.OnEdge(KeyQ, true)

	r := a.Rates()
	assert.Equal(t, [3]float32{-1, 0, 0}, r.Translation)
	assert.Equal(t, [3]float32{0, 1, 0}, r.Rotation)
}

func TestAggregatorAnalogMapping(t *testing.T) {
	tests := []struct {
		name        string
		axes        []float32
		translation [3]float32
		rotation    [3]float32
	}{
		{"resting", []float32{0, 0, -1, 0, 0, -1}, [3]float32{0, 0, 0}, [3]float32{0, 0, 0}},
		{"left stick forward", []float32{0, -1, -1, 0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{}},
		{"left stick right", []float32{1, 0, -1, 0, 0, -1}, [3]float32{0, -1, 0}, [3]float32{}},
		{"both sticks back", []float32{0, 1, -1, 0, 1, -1}, [3]float32{2, 0, 0}, [3]float32{}},
		{"deadzone below half", []float32{0.4, -0.49, -1, -0.3, 0.2, -1}, [3]float32{}, [3]float32{}},
		{"half rounds up", []float32{-0.5, 0.5, -1, 0, 0, -1}, [3]float32{1, 0, 0}, [3]float32{}},
		{"left trigger", []float32{0, 0, 1, 0, 0, -1}, [3]float32{}, [3]float32{0, 2.0 / 3, 0}},
		{"right trigger", []float32{0, 0, -1, 0, 0, 1}, [3]float32{}, [3]float32{0, -2.0 / 3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewDeviceRegistry(nil)
			reg.Connect(DeviceSample{Index: 0, Axes: tt.axes})
			a := NewAggregator(reg, NewControlMap(DefaultBindings(), AllGroups(), nil))

			r := a.Rates()
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.translation[i], r.Translation[i], 1e-6, "translation[%d]", i)
				assert.InDelta(t, tt.rotation[i], r.Rotation[i], 1e-6, "rotation[%d]", i)
			}
		})
	}
}

func TestAggregatorAnalogOverwritesKeys(t *testing.T) {
	reg := NewDeviceRegistry(nil)
	m := NewControlMap(DefaultBindings(), AllGroups(), nil)
	a := NewAggregator(reg, m)

	m.OnEdge(KeyW, true)
	reg.Connect(restingPad(0))
	assert.Equal(t, float32(0), a.Rates().Translation[0], "connected pad overrides key rate")

	// Key counters survive the override
	reg.Disconnect(0)
	assert.Equal(t, float32(-1), a.Rates().Translation[0])
	m.OnEdge(KeyW, false)
	assert.True(t, a.Rates().IsZero())
}

func TestAggregatorHighestIndexWins(t *testing.T) {
	reg := NewDeviceRegistry(nil)
	reg.Connect(DeviceSample{Index: 5, Axes: []float32{0, 1, -1, 0, 0, -1}})
	reg.Connect(DeviceSample{Index: 1, Axes: []float32{0, -1, -1, 0, 0, -1}})
	a := NewAggregator(reg, NewControlMap(DefaultBindings(), AllGroups(), nil))

	assert.Equal(t, float32(1), a.Rates().Translation[0])
}

func TestAggregatorGamepadDisabled(t *testing.T) {
	reg := NewDeviceRegistry(nil)
	reg.Connect(DeviceSample{Index: 0, Axes: []float32{0, -1, 1, 0, 0, -1}})

	groups := AllGroups()
	groups.Gamepad = false
	m := NewControlMap(DefaultBindings(), groups, nil)
	a := NewAggregator(reg, m)

	m.OnEdge(KeyS, true)
	r := a.Rates()
	assert.Equal(t, float32(1), r.Translation[0])
	assert.Equal(t, float32(0), r.Rotation[1])
}

func TestAggregatorShortAxes(t *testing.T) {
	reg := NewDeviceRegistry(nil)
	reg.Connect(DeviceSample{Index: 0, Axes: []float32{0, -1}})
	a := NewAggregator(reg, NewControlMap(DefaultBindings(), AllGroups(), nil))

	r := a.Rates()
	assert.Equal(t, float32(-1), r.Translation[0])
	assert.InDelta(t, 0, r.Rotation[1], 1e-6, "missing triggers cancel out")
}

func TestDisconnectRemovesFromAggregation(t *testing.T) {
	reg := NewDeviceRegistry(nil)
	a := NewAggregator(reg, NewControlMap(DefaultBindings(), AllGroups(), nil))

	reg.Connect(DeviceSample{Index: 0, Axes: []float32{0, -1, -1, 0, 0, -1}})
	assert.Equal(t, float32(-1), a.Rates().Translation[0])

	reg.Disconnect(0)
	assert.True(t, a.Rates().IsZero())
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float32]float32{
		0.49: 0, 0.5: 1, -0.5: 0, -0.51: -1, 1: 1, -1: -1, 0: 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, roundHalfUp(in), "roundHalfUp(%v)", in)
	}
}
