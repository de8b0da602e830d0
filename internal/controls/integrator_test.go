package controls

import (
	gomath "math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func assertQuat(t *testing.T, want, got math.Quat, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.W, got.W, 1e-5, msgAndArgs...)
}

func assertVec(t *testing.T, want, got math.Vec3, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-5, msgAndArgs...)
}

func newTestIntegrator(rates *fixedRates, res *Resolver) (*Integrator, *testPose) {
	pose := newTestPose()
	in := NewIntegrator(pose, rates, res, IntegratorConfig{MaxFrameGap: DefaultMaxFrameGap}, nil)
	return in, pose
}

func TestIntegratorIdleIsStable(t *testing.T) {
	in, pose := newTestIntegrator(&fixedRates{}, NewResolver(nil, nil))
	pose.position = math.Vec3{X: 1, Y: 2, Z: 3}

	for i := 0; i < 100; i++ {
		in.Update(epoch.Add(time.Duration(i) * 16 * time.Millisecond))
	}

	assert.Equal(t, math.QuatIdentity(), in.Rotation())
	assert.Equal(t, math.QuatIdentity(), pose.orientation)
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, pose.position)
	assert.Equal(t, 0, pose.writes, "idle frames must not touch the position")
}

func TestIntegratorFirstFrameIsBaseline(t *testing.T) {
	rates := &fixedRates{rates: Rates{Rotation: [3]float32{0, 1, 0}, Translation: [3]float32{1, 0, 0}}}
	in, pose := newTestIntegrator(rates, NewResolver(nil, nil))

	in.Update(epoch)
	assert.Equal(t, math.QuatIdentity(), in.Rotation())
	assert.Equal(t, math.Vec3{}, pose.position)
}

func TestIntegratorForwardExample(t *testing.T) {
	m := NewControlMap(DefaultBindings(), AllGroups(), nil)
	agg := NewAggregator(NewDeviceRegistry(nil), m)
	pose := newTestPose()
	in := NewIntegrator(pose, agg, NewResolver(nil, nil), IntegratorConfig{TimeScale: 0.008}, nil)

	in.Update(epoch)
	m.OnEdge(KeyW, true)
	in.Update(epoch.Add(100 * time.Millisecond))

	// interval = 100ms * 0.008 = 0.8 along negative local forward (0,0,1)
	assertVec(t, math.Vec3{Z: -0.8}, pose.position)
	assert.InDelta(t, 0.8, pose.position.Length(), 1e-5)

	m.OnEdge(KeyW, false)
	in.Update(epoch.Add(200 * time.Millisecond))
	in.Update(epoch.Add(300 * time.Millisecond))
	assertVec(t, math.Vec3{Z: -0.8}, pose.position, "released key produces no further offset")
}

func TestIntegratorTranslationUsesCurrentOrientation(t *testing.T) {
	rates := &fixedRates{rates: Rates{Translation: [3]float32{1, 0, 0}}}
	in, pose := newTestIntegrator(rates, NewResolver(nil, nil))

	in.Update(epoch)

	// Camera yawed 90 degrees: local forward (0,0,1) points to world +X
	pose.orientation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/2))
	in.Update(epoch.Add(100 * time.Millisecond))

	assertVec(t, math.Vec3{X: 0.8}, pose.position)
}

func TestIntegratorRightAndUpAxes(t *testing.T) {
	rates := &fixedRates{rates: Rates{Translation: [3]float32{0, 1, 1}}}
	in, pose := newTestIntegrator(rates, NewResolver(nil, nil))

	in.Update(epoch)
	in.Update(epoch.Add(125 * time.Millisecond)) // interval = 1

	assertVec(t, math.Vec3{X: -1, Y: -1}, pose.position)
}

func TestIntegratorRotationConvergesMonotonically(t *testing.T) {
	m := NewControlMap(DefaultBindings(), AllGroups(), nil)
	agg := NewAggregator(NewDeviceRegistry(nil), m)
	pose := newTestPose()
	in := NewIntegrator(pose, agg, NewResolver(nil, nil), IntegratorConfig{}, nil)

	m.OnEdge(KeyQ, true) // yaw, sign +1
	in.Update(epoch)

	prevAngle := 0.0
	for i := 1; i <= 50; i++ {
		in.Update(epoch.Add(time.Duration(i) * 50 * time.Millisecond))
		q := in.Rotation()

		assert.InDelta(t, 0, q.X, 1e-6)
		assert.InDelta(t, 0, q.Z, 1e-6)
		require.Greater(t, q.Y, float32(0), "rotation follows the binding sign")

		angle := 2 * gomath.Atan2(float64(q.Y), float64(q.W))
		require.Greater(t, angle, prevAngle, "frame %d", i)
		prevAngle = angle
	}

	// Each step is the normalized (0, interval/10, 0, 1) quaternion
	step := 2 * gomath.Atan(50*0.008/10)
	assert.InDelta(t, 50*step, prevAngle, 1e-3)
	assertQuat(t, in.Rotation(), pose.orientation, "no sensor: camera equals manual rotation")
}

func TestIntegratorNegativeSignRotatesOtherWay(t *testing.T) {
	rates := &fixedRates{rates: Rates{Rotation: [3]float32{0, -1, 0}}}
	in, _ := newTestIntegrator(rates, NewResolver(nil, nil))

	in.Update(epoch)
	in.Update(epoch.Add(100 * time.Millisecond))
	assert.Less(t, in.Rotation().Y, float32(0))
}

func TestIntegratorComposesSensorOnTheRight(t *testing.T) {
	rates := &fixedRates{rates: Rates{Rotation: [3]float32{1, 0, 0}}}
	sensor := &fakeSensor{}
	in, pose := newTestIntegrator(rates, NewResolver(sensor, nil))

	in.Update(epoch)
	in.Update(epoch.Add(100 * time.Millisecond))
	manual := in.Rotation()
	require.NotEqual(t, math.QuatIdentity(), manual)

	sensor.q = math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.9)
	sensor.ok = true
	rates.rates = Rates{}
	in.Update(epoch.Add(200 * time.Millisecond))

	want := manual.Mul(sensor.q)
	assertQuat(t, want, pose.orientation)

	wrong := sensor.q.Mul(manual)
	assert.Greater(t, gomath.Abs(float64(wrong.X-pose.orientation.X))+
		gomath.Abs(float64(wrong.Z-pose.orientation.Z)), 1e-4, "order matters")
}

func TestIntegratorZeroSampleFallsBack(t *testing.T) {
	rates := &fixedRates{rates: Rates{Rotation: [3]float32{0, 1, 0}}}
	sensor := &fakeSensor{ok: true} // all-zero sentinel
	in, pose := newTestIntegrator(rates, NewResolver(sensor, nil))

	in.Update(epoch)
	in.Update(epoch.Add(100 * time.Millisecond))

	assert.Equal(t, in.Rotation(), pose.orientation)
}

func TestIntegratorIgnoresNonFiniteSample(t *testing.T) {
	sensor := &fakeSensor{q: math.Quat{X: float32(gomath.NaN()), W: 1}, ok: true}
	in, pose := newTestIntegrator(&fixedRates{rates: Rates{Translation: [3]float32{-1, 0, 0}}}, NewResolver(sensor, nil))

	in.Update(epoch)
	in.Update(epoch.Add(100 * time.Millisecond))
	in.Update(epoch.Add(200 * time.Millisecond))

	assert.True(t, pose.orientation.IsFinite())
	assertVec(t, math.Vec3{Z: -1.6}, pose.position)
}

func TestIntegratorAmbientSample(t *testing.T) {
	phone := math.QuatFromAxisAngle(math.Vec3{X: 1}, 0.4)
	in, pose := newTestIntegrator(&fixedRates{}, NewResolver(nil, &fakeAmbient{q: phone, ok: true}))

	in.Update(epoch)
	assertQuat(t, phone, pose.orientation)
}

func TestIntegratorClampsTime(t *testing.T) {
	tests := []struct {
		name   string
		gap    time.Duration
		maxGap time.Duration
		want   float32
	}{
		{"normal frame", 100 * time.Millisecond, DefaultMaxFrameGap, -0.8},
		{"stall clamped", 10 * time.Second, DefaultMaxFrameGap, -2},
		{"backwards clock", -time.Second, DefaultMaxFrameGap, 0},
		{"clamp disabled", time.Second, 0, -8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := &fixedRates{rates: Rates{Translation: [3]float32{-1, 0, 0}}}
			pose := newTestPose()
			in := NewIntegrator(pose, rates, NewResolver(nil, nil), IntegratorConfig{MaxFrameGap: tt.maxGap}, nil)

			in.Update(epoch)
			in.Update(epoch.Add(tt.gap))
			assert.InDelta(t, tt.want, pose.position.Z, 1e-4)
		})
	}
}

func TestIntegratorBackwardsClockResetsBaseline(t *testing.T) {
	rates := &fixedRates{rates: Rates{Translation: [3]float32{-1, 0, 0}}}
	in, pose := newTestIntegrator(rates, NewResolver(nil, nil))

	in.Update(epoch)
	in.Update(epoch.Add(-time.Second))
	in.Update(epoch.Add(-time.Second + 100*time.Millisecond))
	assert.InDelta(t, -0.8, pose.position.Z, 1e-4)
}

func TestIntegratorReset(t *testing.T) {
	rates := &fixedRates{rates: Rates{Rotation: [3]float32{0, 0, 1}}}
	in, _ := newTestIntegrator(rates, NewResolver(nil, nil))

	in.Update(epoch)
	in.Update(epoch.Add(100 * time.Millisecond))
	require.NotEqual(t, math.QuatIdentity(), in.Rotation())

	in.Reset()
	assert.Equal(t, math.QuatIdentity(), in.Rotation())
}

func TestIntegratorResetSensor(t *testing.T) {
	in, _ := newTestIntegrator(&fixedRates{}, NewResolver(nil, nil))
	assert.False(t, in.ResetSensor())

	s := &fakeSensor{}
	in, _ = newTestIntegrator(&fixedRates{}, NewResolver(s, nil))
	assert.True(t, in.ResetSensor())
	assert.Equal(t, 1, s.resets)
}

func TestBasisVectors(t *testing.T) {
	id := math.QuatIdentity()
	assertVec(t, math.Vec3{Z: 1}, Forward(id))
	assertVec(t, math.Vec3{X: -1}, Right(id))
	assertVec(t, math.Vec3{Y: -1}, Up(id))

	yaw := math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/2))
	assertVec(t, math.Vec3{X: 1}, Forward(yaw))
	assertVec(t, math.Vec3{Z: 1}, Right(yaw))
}
