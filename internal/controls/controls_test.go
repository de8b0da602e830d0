package controls

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

func TestNewReadyCallback(t *testing.T) {
	first := &fakeSensor{q: math.QuatIdentity(), ok: true}

	tests := []struct {
		name      string
		opts      []Option
		wantErr   error
		hasSensor bool
	}{
		{"no provider", nil, ErrSensorsUnsupported, false},
		{
			"provider without sensors",
			[]Option{WithSensorProvider(SensorProviderFunc(func() []PositionalSensor { return nil }))},
			ErrNoSensor, false,
		},
		{
			"first sensor kept",
			[]Option{WithSensorProvider(SensorProviderFunc(func() []PositionalSensor {
				return []PositionalSensor{first, &fakeSensor{}}
			}))},
			nil, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			var got error
			opts := append(tt.opts, WithReady(func(err error) {
				calls++
				got = err
			}))

			s := New(newTestPose(), DefaultSettings(), opts...)
			assert.Equal(t, 1, calls)
			assert.ErrorIs(t, got, tt.wantErr)
			assert.Equal(t, tt.hasSensor, s.Resolver.HasSensor())
			assert.Equal(t, tt.hasSensor, s.ResetSensor())
		})
	}
}

func TestSystemManualOnly(t *testing.T) {
	pose := newTestPose()
	s := New(pose, DefaultSettings())

	s.Update(epoch)
	s.OnEdge(KeyS, true)
	s.Update(epoch.Add(100 * time.Millisecond))
	assert.InDelta(t, 0.8, pose.position.Z, 1e-5)

	s.OnEdge(KeyS, false)
	s.OnEdge(KeyE, true)
	s.Update(epoch.Add(200 * time.Millisecond))
	assert.Less(t, s.Rotation().Y, float32(0))
	assert.Equal(t, s.Rotation(), pose.orientation)

	s.ResetRotation()
	assert.Equal(t, math.QuatIdentity(), s.Rotation())
}

func TestSystemSetGroups(t *testing.T) {
	pose := newTestPose()
	s := New(pose, DefaultSettings())

	g := AllGroups()
	g.Arrows = false
	s.SetGroups(g)

	s.Update(epoch)
	s.OnEdge(KeyW, true)
	s.Update(epoch.Add(100 * time.Millisecond))
	assert.Equal(t, math.Vec3{}, pose.position)
}

func TestSystemEventStrategyHasNoPoller(t *testing.T) {
	src := &staticSource{devices: []DeviceSample{{Index: 0}}}
	s := New(newTestPose(), DefaultSettings(), WithDeviceSource(src, true))
	assert.Equal(t, StrategyEvents, s.Strategy())

	s.Start(context.Background())
	assert.Equal(t, 0, s.Registry.Len())
}

func TestSystemPollingStrategy(t *testing.T) {
	settings := DefaultSettings()
	settings.PollInterval = 5 * time.Millisecond
	src := &staticSource{devices: []DeviceSample{{Index: 4, Axes: []float32{0, -1, -1, 0, 0, -1}}}}

	s := New(newTestPose(), settings, WithDeviceSource(src, false))
	require.Equal(t, StrategyPolling, s.Strategy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool { return s.Registry.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, float32(-1), s.Aggregator.Rates().Translation[0])
}

func TestPollingAxisChangeAppliesOnNextUpdate(t *testing.T) {
	settings := DefaultSettings()
	settings.PollInterval = time.Hour // discovery only happens on the first scan

	feed := &padFeed{}
	feed.set(DeviceSample{Index: 2, Axes: make([]float32, 6)})

	pose := newTestPose()
	s := New(pose, settings, WithDeviceSource(feed, false), WithFrameSampler(feed))
	require.Equal(t, StrategyPolling, s.Strategy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	require.Eventually(t, func() bool { return s.Registry.Len() == 1 }, time.Second, time.Millisecond)

	s.Update(epoch)

	// Push the left stick fully forward; no rescan happens in between
	feed.set(DeviceSample{Index: 2, Axes: []float32{0, -1, 0, 0, 0, 0}})
	s.Update(epoch.Add(100 * time.Millisecond))
	assertVec(t, math.Vec3{Z: -0.8}, pose.position)

	// Releasing the stick stops the camera on the very next frame
	feed.set(DeviceSample{Index: 2, Axes: make([]float32, 6)})
	s.Update(epoch.Add(200 * time.Millisecond))
	assertVec(t, math.Vec3{Z: -0.8}, pose.position)
	assert.Equal(t, 3, feed.samples)
}

func TestFrameSamplerDoesNotDiscover(t *testing.T) {
	feed := &padFeed{}
	feed.set(DeviceSample{Index: 7, Axes: []float32{0, -1}})

	s := New(newTestPose(), DefaultSettings(), WithDeviceSource(nil, true), WithFrameSampler(feed))
	s.Update(epoch)
	assert.Equal(t, 0, s.Registry.Len(), "unknown devices wait for a connect event or scan")

	s.Registry.Connect(DeviceSample{Index: 7})
	s.Update(epoch.Add(10 * time.Millisecond))
	snap := s.Registry.Snapshot()
	assert.Equal(t, float32(-1), snap[7].Axis(PadLeftY))
}

func TestWithBindings(t *testing.T) {
	table := map[Key]Binding{Key(32): {Axis: AxisUp, Sign: 1}}
	s := New(newTestPose(), DefaultSettings(), WithBindings(table))

	s.OnEdge(KeyW, true)
	s.OnEdge(Key(32), true)
	assert.Equal(t, [3]float32{0, 0, 1}, s.Controls.Rates().Translation)
}
