// Package controls fuses keyboard, gamepad and orientation sensor input into
// a continuously updated camera pose.
//
// Each frame the host refreshes the DeviceRegistry, then calls System.Update.
// The Aggregator merges key-driven rates with analog axes, the Integrator
// advances the manual rotation and position by the elapsed time, and the
// Resolver supplies the external orientation composed on top of it.
package controls

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

// Readiness errors reported through the ready callback. Both are advisory:
// the system keeps working with manual controls only.
var (
	ErrSensorsUnsupported = errors.New("sensor capability not ready")
	ErrNoSensor           = errors.New("no orientation sensor found")
)

// SensorProvider enumerates the dedicated sensors available at startup.
type SensorProvider interface {
	Sensors() []PositionalSensor
}

// SensorProviderFunc adapts a function to SensorProvider.
type SensorProviderFunc func() []PositionalSensor

// Sensors calls f.
func (f SensorProviderFunc) Sensors() []PositionalSensor { return f() }

// Settings holds the tunables of a System.
type Settings struct {
	Groups       Groups
	TimeScale    float32
	MaxFrameGap  time.Duration
	Strategy     Strategy
	PollInterval time.Duration
}

// DefaultSettings returns the stock tuning with every group enabled.
func DefaultSettings() Settings {
	return Settings{
		Groups:       AllGroups(),
		TimeScale:    DefaultTimeScale,
		MaxFrameGap:  DefaultMaxFrameGap,
		Strategy:     StrategyAuto,
		PollInterval: DefaultPollInterval,
	}
}

// Option configures a System.
type Option func(*options)

type options struct {
	log             *zap.Logger
	provider        SensorProvider
	ambient         AmbientSource
	ready           func(error)
	source          DeviceSource
	sampler         FrameSampler
	eventsSupported bool
	bindings        map[Key]Binding
}

// WithLogger sets the logger. Components log under named children.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSensorProvider enables dedicated sensor discovery.
func WithSensorProvider(p SensorProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithAmbientSource sets the fallback orientation feed.
func WithAmbientSource(a AmbientSource) Option {
	return func(o *options) { o.ambient = a }
}

// WithReady registers a callback invoked once when sensor discovery ends.
func WithReady(fn func(error)) Option {
	return func(o *options) { o.ready = fn }
}

// WithDeviceSource sets the platform controller source and whether the
// platform also delivers connect/disconnect events.
func WithDeviceSource(src DeviceSource, eventsSupported bool) Option {
	return func(o *options) {
		o.source = src
		o.eventsSupported = eventsSupported
	}
}

// WithFrameSampler sets the per-frame axis source. Update refreshes known
// devices from it before integrating, in either device strategy.
func WithFrameSampler(fs FrameSampler) Option {
	return func(o *options) { o.sampler = fs }
}

// WithBindings replaces the default key table.
func WithBindings(table map[Key]Binding) Option {
	return func(o *options) { o.bindings = table }
}

// System owns every control component for one camera.
type System struct {
	Registry   *DeviceRegistry
	Controls   *ControlMap
	Aggregator *Aggregator
	Resolver   *Resolver
	Integrator *Integrator

	strategy Strategy
	poller   *Poller
	sampler  FrameSampler
	log      *zap.Logger
}

// New wires a System around pose and runs sensor discovery.
func New(pose Pose, settings Settings, opts ...Option) *System {
	o := options{bindings: DefaultBindings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	s := &System{log: o.log, sampler: o.sampler}
	s.Registry = NewDeviceRegistry(o.log.Named("devices"))
	s.Controls = NewControlMap(o.bindings, settings.Groups, o.log.Named("keys"))
	s.Aggregator = NewAggregator(s.Registry, s.Controls)

	sensor, err := discover(o.provider)
	if err != nil {
		o.log.Warn("orientation sensor unavailable, using manual controls", zap.Error(err))
	} else {
		o.log.Info("orientation sensor attached")
	}
	if o.ready != nil {
		o.ready(err)
	}

	s.Resolver = NewResolver(sensor, o.ambient)
	s.Integrator = NewIntegrator(pose, s.Aggregator, s.Resolver, IntegratorConfig{
		TimeScale:   settings.TimeScale,
		MaxFrameGap: settings.MaxFrameGap,
	}, o.log.Named("integrator"))

	s.strategy = settings.Strategy.Resolve(o.eventsSupported)
	if s.strategy == StrategyPolling && o.source != nil {
		s.poller = NewPoller(s.Registry, o.source, settings.PollInterval, o.log.Named("poller"))
	}
	o.log.Info("controls initialized", zap.String("device_strategy", string(s.strategy)))

	return s
}

// discover keeps the first sensor the provider reports.
func discover(p SensorProvider) (PositionalSensor, error) {
	if p == nil {
		return nil, ErrSensorsUnsupported
	}
	for _, s := range p.Sensors() {
		if s != nil {
			return s, nil
		}
	}
	return nil, ErrNoSensor
}

// Start launches device discovery polling when the polling strategy is in
// use. It returns immediately; polling stops when ctx is done. Axis values
// of discovered devices are refreshed every frame by Update.
func (s *System) Start(ctx context.Context) {
	if s.poller == nil {
		return
	}
	go s.poller.Run(ctx)
}

// Strategy returns the device strategy chosen at initialization.
func (s *System) Strategy() Strategy {
	return s.strategy
}

// OnEdge forwards a key edge to the control map.
func (s *System) OnEdge(key Key, pressed bool) {
	s.Controls.OnEdge(key, pressed)
}

// SetGroups enables or disables input groups from the next edge or frame on.
func (s *System) SetGroups(g Groups) {
	s.Controls.SetGroups(g)
}

// Update refreshes controller axes and advances the pose to now.
func (s *System) Update(now time.Time) {
	if s.sampler != nil {
		s.Registry.Refresh(s.sampler.Samples())
	}
	s.Integrator.Update(now)
}

// ResetSensor re-centers the dedicated sensor. It returns false when none is attached.
func (s *System) ResetSensor() bool {
	return s.Integrator.ResetSensor()
}

// ResetRotation discards the accumulated manual rotation.
func (s *System) ResetRotation() {
	s.Integrator.Reset()
}

// Rotation returns the accumulated manual rotation.
func (s *System) Rotation() math.Quat {
	return s.Integrator.Rotation()
}
