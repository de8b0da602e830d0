package controls

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DeviceSample is the latest analog state of one controller.
type DeviceSample struct {
	Index int
	Name  string
	Axes  []float32
}

// Axis returns axis i, or 0 when the device reports fewer axes.
func (d DeviceSample) Axis(i int) float32 {
	if i < 0 || i >= len(d.Axes) {
		return 0
	}
	return d.Axes[i]
}

func (d DeviceSample) clone() DeviceSample {
	d.Axes = append([]float32(nil), d.Axes...)
	return d
}

// DeviceSource lists the controllers currently visible to the platform.
// The polling strategy calls it from its own goroutine.
type DeviceSource interface {
	Devices() []DeviceSample
}

// FrameSampler re-reads the axes of attached controllers. It is called once
// per frame from the goroutine that calls System.Update, so implementations
// may use thread-bound platform APIs.
type FrameSampler interface {
	Samples() []DeviceSample
}

// DeviceRegistry tracks connected controllers by platform index. Writes may
// come from connect events and from a polling goroutine at the same time, so
// all access is serialized.
type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[int]DeviceSample
	log     *zap.Logger
}

// NewDeviceRegistry creates an empty registry.
func NewDeviceRegistry(log *zap.Logger) *DeviceRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeviceRegistry{
		devices: make(map[int]DeviceSample),
		log:     log,
	}
}

// Connect registers d under its index, replacing any stale entry.
func (r *DeviceRegistry) Connect(d DeviceSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.Index] = d.clone()
	r.log.Info("controller connected", zap.Int("index", d.Index), zap.String("name", d.Name))
}

// Disconnect removes the entry for index.
func (r *DeviceRegistry) Disconnect(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[index]; !ok {
		return
	}
	delete(r.devices, index)
	r.log.Info("controller disconnected", zap.Int("index", index))
}

// Update refreshes the axes of an already connected device. It returns false
// if no device is registered under d.Index.
func (r *DeviceRegistry) Update(d DeviceSample) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[d.Index]; !ok {
		return false
	}
	r.devices[d.Index] = d.clone()
	return true
}

// Refresh applies fresh axis samples to known devices and returns how many
// matched. Unknown indices are ignored; discovery is left to Connect and Scan.
func (r *DeviceRegistry) Refresh(samples []DeviceSample) int {
	n := 0
	for _, d := range samples {
		if r.Update(d) {
			n++
		}
	}
	return n
}

// Scan inserts or updates every device src currently reports. Devices that
// vanished without a disconnect are kept until Disconnect is called.
func (r *DeviceRegistry) Scan(src DeviceSource) {
	for _, d := range src.Devices() {
		r.mu.Lock()
		_, known := r.devices[d.Index]
		r.devices[d.Index] = d.clone()
		r.mu.Unlock()

		if !known {
			r.log.Info("controller found by scan", zap.Int("index", d.Index), zap.String("name", d.Name))
		}
	}
}

// Snapshot returns a copy of the registry contents keyed by device index.
func (r *DeviceRegistry) Snapshot() map[int]DeviceSample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int]DeviceSample, len(r.devices))
	for idx, d := range r.devices {
		out[idx] = d.clone()
	}
	return out
}

// Len returns the number of registered devices.
func (r *DeviceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// sortedIndices returns the keys of snap in ascending order.
func sortedIndices(snap map[int]DeviceSample) []int {
	idx := make([]int, 0, len(snap))
	for i := range snap {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
