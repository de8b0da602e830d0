// Package sensor provides orientation feeds for the camera controls.
//
// A Stream receives orientation quaternions over UDP, one per datagram, as
// four little-endian float32 values in x, y, z, w order. Phone tracking apps
// and head-tracker bridges can push samples at any rate; the stream keeps
// only the latest one.
package sensor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

// SampleSize is the size in bytes of one encoded sample.
const SampleSize = 16

// DefaultStaleAfter is how long a sample stays valid without a fresh one.
const DefaultStaleAfter = time.Second

// Sample decoding and validation errors.
var (
	ErrShortSample   = errors.New("sample too short")
	ErrInvalidSample = errors.New("sample is not a rotation")
)

const (
	// minSampleLength rejects near-zero quaternions other than the exact
	// all-zero "no data" sample.
	minSampleLength = 1e-4
	// unitTolerance is how far a sample's norm may drift before it is renormalized.
	unitTolerance = 1e-5
)

// Stream holds the latest orientation received from a remote tracker.
type Stream struct {
	mu        sync.Mutex
	latest    math.Quat
	received  time.Time
	hasSample bool
	reference math.Quat // inverse of the re-centered pose

	staleAfter time.Duration
	now        func() time.Time
	conn       net.PacketConn
	log        *zap.Logger
}

// NewStream creates a stream without a network listener. Samples are fed
// with Push. A non-positive staleAfter uses DefaultStaleAfter.
func NewStream(staleAfter time.Duration, log *zap.Logger) *Stream {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stream{
		reference:  math.QuatIdentity(),
		staleAfter: staleAfter,
		now:        time.Now,
		log:        log,
	}
}

// Listen opens a UDP socket on addr and returns a stream reading from it.
// Call Run to start receiving.
func Listen(addr string, staleAfter time.Duration, log *zap.Logger) (*Stream, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for orientation on %s: %w", addr, err)
	}
	s := NewStream(staleAfter, log)
	s.conn = conn
	s.log.Info("orientation stream listening", zap.String("addr", conn.LocalAddr().String()))
	return s, nil
}

// Addr returns the local listening address, or nil for a stream without a socket.
func (s *Stream) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Run receives samples until ctx is done or the socket fails.
func (s *Stream) Run(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("stream has no socket")
	}

	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	buf := make([]byte, 512)
	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading orientation sample: %w", err)
		}

		q, err := DecodeSample(buf[:n])
		if err == nil {
			err = s.Push(q)
		}
		if err != nil {
			s.log.Debug("dropping datagram", zap.Stringer("from", from), zap.Int("size", n), zap.Error(err))
		}
	}
}

// Close releases the socket, if any.
func (s *Stream) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Push records q as the latest sample. Non-unit samples are normalized; the
// all-zero sample is kept as is. Samples that cannot be a rotation are
// rejected with ErrInvalidSample and the previous sample stays current.
func (s *Stream) Push(q math.Quat) error {
	q, err := unitSample(q)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSample {
		s.log.Info("first orientation sample received")
	}
	s.latest = q
	s.received = s.now()
	s.hasSample = true
	return nil
}

// unitSample validates q and scales it to unit length.
func unitSample(q math.Quat) (math.Quat, error) {
	if q.IsZero() {
		return q, nil
	}
	if !q.IsFinite() {
		return math.Quat{}, fmt.Errorf("%w: non-finite component in %v", ErrInvalidSample, q)
	}
	l := q.Length()
	if l < minSampleLength || gomath.IsInf(float64(l), 0) {
		return math.Quat{}, fmt.Errorf("%w: norm %v", ErrInvalidSample, l)
	}
	if d := l - 1; d > unitTolerance || d < -unitTolerance {
		q = q.Normalize()
	}
	return q, nil
}

// Orientation returns the re-centered latest sample. It reports false when
// nothing was received or the last sample is older than the stale limit.
// The all-zero sample is returned unchanged.
func (s *Stream) Orientation() (math.Quat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSample || s.now().Sub(s.received) > s.staleAfter {
		return math.Quat{}, false
	}
	if s.latest.IsZero() {
		return s.latest, true
	}
	return s.reference.Mul(s.latest), true
}

// CurrentOrientation is Orientation under the ambient source name.
func (s *Stream) CurrentOrientation() (math.Quat, bool) {
	return s.Orientation()
}

// ResetSensor makes the current sample the new forward direction.
func (s *Stream) ResetSensor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSample || s.latest.IsZero() {
		s.log.Debug("sensor reset ignored, no sample yet")
		return
	}
	s.reference = s.latest.Normalize().Conjugate()
	s.log.Info("sensor re-centered")
}

// DecodeSample parses one datagram. Datagrams with NaN or infinite
// components are rejected with ErrInvalidSample.
func DecodeSample(b []byte) (math.Quat, error) {
	if len(b) < SampleSize {
		return math.Quat{}, fmt.Errorf("%w: %d bytes", ErrShortSample, len(b))
	}
	f := func(off int) float32 {
		return gomath.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	q := math.Quat{X: f(0), Y: f(4), Z: f(8), W: f(12)}
	if !q.IsFinite() {
		return math.Quat{}, fmt.Errorf("%w: non-finite component", ErrInvalidSample)
	}
	return q, nil
}

// EncodeSample is the inverse of DecodeSample.
func EncodeSample(q math.Quat) []byte {
	b := make([]byte, SampleSize)
	binary.LittleEndian.PutUint32(b[0:], gomath.Float32bits(q.X))
	binary.LittleEndian.PutUint32(b[4:], gomath.Float32bits(q.Y))
	binary.LittleEndian.PutUint32(b[8:], gomath.Float32bits(q.Z))
	binary.LittleEndian.PutUint32(b[12:], gomath.Float32bits(q.W))
	return b
}
