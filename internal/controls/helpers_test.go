package controls

import (
	"sync"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

// testPose is an in-memory camera.
type testPose struct {
	position    math.Vec3
	orientation math.Quat
	writes      int
}

func newTestPose() *testPose {
	return &testPose{orientation: math.QuatIdentity()}
}

func (p *testPose) Position() math.Vec3        { return p.position }
func (p *testPose) SetPosition(v math.Vec3)    { p.position = v; p.writes++ }
func (p *testPose) Orientation() math.Quat     { return p.orientation }
func (p *testPose) SetOrientation(q math.Quat) { p.orientation = q }

// fixedRates returns the same rates every frame.
type fixedRates struct {
	rates Rates
}

func (f *fixedRates) Rates() Rates { return f.rates }

// fakeSensor is a dedicated sensor with a settable reading.
type fakeSensor struct {
	q      math.Quat
	ok     bool
	resets int
}

func (s *fakeSensor) Orientation() (math.Quat, bool) { return s.q, s.ok }
func (s *fakeSensor) ResetSensor()                   { s.resets++ }

// fakeAmbient is an ambient feed with a settable reading.
type fakeAmbient struct {
	q  math.Quat
	ok bool
}

func (a *fakeAmbient) CurrentOrientation() (math.Quat, bool) { return a.q, a.ok }

// staticSource reports a fixed device list.
type staticSource struct {
	devices []DeviceSample
}

func (s *staticSource) Devices() []DeviceSample { return s.devices }

// padFeed serves both discovery and per-frame sampling from one settable list.
type padFeed struct {
	mu      sync.Mutex
	devices []DeviceSample
	samples int
}

func (f *padFeed) set(devices ...DeviceSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = devices
}

func (f *padFeed) Devices() []DeviceSample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DeviceSample(nil), f.devices...)
}

func (f *padFeed) Samples() []DeviceSample {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples++
	return append([]DeviceSample(nil), f.devices...)
}
