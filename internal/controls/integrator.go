package controls

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

const (
	// DefaultTimeScale converts elapsed milliseconds into integration units.
	DefaultTimeScale float32 = 0.008
	// DefaultMaxFrameGap bounds a single integration step.
	DefaultMaxFrameGap = 250 * time.Millisecond
	// rotationDamping divides the interval for the rotation step.
	rotationDamping = 10
)

// Camera-local basis vectors before rotation.
var (
	localForward = math.Vec3{X: 0, Y: 0, Z: 1}
	localRight   = math.Vec3{X: -1, Y: 0, Z: 0}
	localUp      = math.Vec3{X: 0, Y: -1, Z: 0}
)

// Pose is the host-owned camera the integrator writes to.
type Pose interface {
	Position() math.Vec3
	SetPosition(math.Vec3)
	Orientation() math.Quat
	SetOrientation(math.Quat)
}

// RateSource yields the per-frame control rates.
type RateSource interface {
	Rates() Rates
}

// OrientationSource yields the per-frame external orientation sample.
type OrientationSource interface {
	Resolve() (math.Quat, bool)
	Reset() bool
}

// IntegratorConfig tunes the integration step.
type IntegratorConfig struct {
	// TimeScale multiplies elapsed milliseconds. Zero uses DefaultTimeScale.
	TimeScale float32
	// MaxFrameGap caps dt after a stall. Zero disables the cap.
	MaxFrameGap time.Duration
}

// Integrator advances the camera pose once per frame.
type Integrator struct {
	pose        Pose
	rates       RateSource
	orientation OrientationSource
	cfg         IntegratorConfig
	log         *zap.Logger

	rotation   math.Quat
	lastUpdate time.Time
	started    bool
}

// NewIntegrator creates an integrator with an identity manual rotation.
func NewIntegrator(pose Pose, rates RateSource, orientation OrientationSource, cfg IntegratorConfig, log *zap.Logger) *Integrator {
	if cfg.TimeScale == 0 {
		cfg.TimeScale = DefaultTimeScale
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Integrator{
		pose:        pose,
		rates:       rates,
		orientation: orientation,
		cfg:         cfg,
		log:         log,
		rotation:    math.QuatIdentity(),
	}
}

// Update integrates the rates over the time since the previous call and
// writes the resulting pose. The first call only establishes the baseline.
func (in *Integrator) Update(now time.Time) {
	dt := in.frameDelta(now)
	rates := in.rates.Rates()

	interval := float32(float64(dt)/float64(time.Millisecond)) * in.cfg.TimeScale
	step := interval / rotationDamping

	increment := math.Quat{
		X: rates.Rotation[0] * step,
		Y: rates.Rotation[1] * step,
		Z: rates.Rotation[2] * step,
		W: 1,
	}.Normalize()
	in.rotation = in.rotation.Mul(increment)

	current := in.pose.Orientation()
	if move := rates.Translation; move != [3]float32{} {
		offset := Forward(current).Scale(interval * move[0]).
			Add(Right(current).Scale(interval * move[1])).
			Add(Up(current).Scale(interval * move[2]))
		in.pose.SetPosition(in.pose.Position().Add(offset))
	}

	final := in.rotation
	if sample, ok := in.orientation.Resolve(); ok && !sample.IsZero() {
		if sample.IsFinite() {
			final = in.rotation.Mul(sample)
		} else {
			in.log.Debug("ignoring non-finite orientation sample")
		}
	}
	in.pose.SetOrientation(final)
}

// frameDelta returns the clamped time since the previous update and records now.
func (in *Integrator) frameDelta(now time.Time) time.Duration {
	if !in.started {
		in.started = true
		in.lastUpdate = now
		return 0
	}

	dt := now.Sub(in.lastUpdate)
	in.lastUpdate = now

	if dt < 0 {
		in.log.Debug("clock went backwards", zap.Duration("dt", dt))
		return 0
	}
	if in.cfg.MaxFrameGap > 0 && dt > in.cfg.MaxFrameGap {
		in.log.Debug("frame gap clamped",
			zap.Duration("dt", dt),
			zap.Duration("max", in.cfg.MaxFrameGap),
		)
		return in.cfg.MaxFrameGap
	}
	return dt
}

// Rotation returns the accumulated manual rotation.
func (in *Integrator) Rotation() math.Quat {
	return in.rotation
}

// Reset discards the accumulated manual rotation.
func (in *Integrator) Reset() {
	in.rotation = math.QuatIdentity()
	in.log.Info("manual rotation reset")
}

// ResetSensor re-centers the dedicated sensor. It returns false when none is attached.
func (in *Integrator) ResetSensor() bool {
	ok := in.orientation.Reset()
	if !ok {
		in.log.Debug("sensor reset requested without a sensor")
	}
	return ok
}

// Forward returns the camera's forward axis in world space.
func Forward(orientation math.Quat) math.Vec3 {
	return orientation.Rotate(localForward)
}

// Right returns the camera's right axis in world space.
func Right(orientation math.Quat) math.Vec3 {
	return orientation.Rotate(localRight)
}

// Up returns the camera's up axis in world space.
func Up(orientation math.Quat) math.Vec3 {
	return orientation.Rotate(localUp)
}
