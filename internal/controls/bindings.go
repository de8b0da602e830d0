package controls

import (
	"sort"

	"go.uber.org/zap"
)

// Key is a virtual key code as delivered by the host keyboard layer.
type Key int

// Recognised key codes.
const (
	KeyLeft  Key = 37
	KeyUp    Key = 38
	KeyRight Key = 39
	KeyDown  Key = 40
	KeyA     Key = 65
	KeyD     Key = 68
	KeyE     Key = 69
	KeyQ     Key = 81
	KeyS     Key = 83
	KeyW     Key = 87
	KeySlash Key = 191
	KeyQuote Key = 222
)

// Axis indexes a control axis. Axes 0-2 are rotation, 3-5 translation.
type Axis int

const (
	AxisPitch Axis = iota
	AxisYaw
	AxisRoll
	AxisForward
	AxisRight
	AxisUp
)

// IsRotation reports whether the axis belongs to the rotation group.
func (a Axis) IsRotation() bool {
	return a >= AxisPitch && a <= AxisRoll
}

// slot returns the component index within the group's rate vector.
func (a Axis) slot() int {
	if a.IsRotation() {
		return int(a)
	}
	return int(a - AxisForward)
}

// Binding ties a key to a signed control axis.
type Binding struct {
	Axis   Axis
	Sign   float32
	Active bool
}

// Rates holds per-axis rates in camera-local axes.
type Rates struct {
	Rotation    [3]float32
	Translation [3]float32
}

// IsZero reports whether every rate component is zero.
func (r Rates) IsZero() bool {
	return r == Rates{}
}

// Groups selects which input families drive the rates. WASD gates the
// rotation axes, Arrows gates the translation axes and Gamepad gates analog
// refresh.
type Groups struct {
	Gamepad bool `yaml:"gamepad_enabled"`
	Arrows  bool `yaml:"arrows_enabled"`
	WASD    bool `yaml:"wasd_enabled"`
}

// AllGroups enables every input family.
func AllGroups() Groups {
	return Groups{Gamepad: true, Arrows: true, WASD: true}
}

// enabled reports whether the given axis group may change the rates.
func (g Groups) enabled(a Axis) bool {
	if a.IsRotation() {
		return g.WASD
	}
	return g.Arrows
}

// DefaultBindings returns the stock key table.
func DefaultBindings() map[Key]Binding {
	return map[Key]Binding{
		KeyA: {Axis: AxisRight, Sign: 1},
		KeyD: {Axis: AxisRight, Sign: -1},
		KeyW: {Axis: AxisForward, Sign: -1},
		KeyS: {Axis: AxisForward, Sign: 1},
		KeyQ: {Axis: AxisYaw, Sign: 1},
		KeyE: {Axis: AxisYaw, Sign: -1},

		KeyUp:    {Axis: AxisForward, Sign: -1},
		KeyDown:  {Axis: AxisForward, Sign: 1},
		KeyLeft:  {Axis: AxisYaw, Sign: 1},
		KeyRight: {Axis: AxisYaw, Sign: -1},
		KeySlash: {Axis: AxisYaw, Sign: 1},
		KeyQuote: {Axis: AxisYaw, Sign: -1},
	}
}

// ControlMap turns key edges into accumulated per-axis rates.
// It is driven from the frame thread and is not safe for concurrent use.
type ControlMap struct {
	bindings map[Key]*Binding
	keys     []Key // sorted, for deterministic re-derivation
	groups   Groups
	rates    Rates
	log      *zap.Logger
}

// NewControlMap builds a control map from a binding table. The table is copied.
func NewControlMap(table map[Key]Binding, groups Groups, log *zap.Logger) *ControlMap {
	if log == nil {
		log = zap.NewNop()
	}
	m := &ControlMap{
		bindings: make(map[Key]*Binding, len(table)),
		keys:     make([]Key, 0, len(table)),
		groups:   groups,
		log:      log,
	}
	for k, b := range table {
		b.Active = false
		m.bindings[k] = &b
		m.keys = append(m.keys, k)
	}
	sort.Slice(m.keys, func(i, j int) bool { return m.keys[i] < m.keys[j] })
	return m
}

// OnEdge records a press or release of key. Unknown keys and repeated edges
// that do not change the binding state are ignored.
func (m *ControlMap) OnEdge(key Key, pressed bool) {
	b, ok := m.bindings[key]
	if !ok || b.Active == pressed {
		return
	}
	b.Active = pressed

	if !m.groups.enabled(b.Axis) {
		m.log.Debug("edge on disabled group",
			zap.Int("key", int(key)),
			zap.Bool("pressed", pressed),
		)
		return
	}

	delta := b.Sign
	if !pressed {
		delta = -delta
	}
	*m.component(b.Axis) += delta
}

// SetGroups changes which groups are enabled and re-derives the rates from
// the keys currently held, so a group re-enabled mid-hold reflects live state.
func (m *ControlMap) SetGroups(g Groups) {
	if g == m.groups {
		return
	}
	m.groups = g
	m.rates = Rates{}
	for _, k := range m.keys {
		b := m.bindings[k]
		if b.Active && g.enabled(b.Axis) {
			*m.component(b.Axis) += b.Sign
		}
	}
	m.log.Debug("control groups changed",
		zap.Bool("gamepad", g.Gamepad),
		zap.Bool("arrows", g.Arrows),
		zap.Bool("wasd", g.WASD),
	)
}

// Groups returns the enabled groups.
func (m *ControlMap) Groups() Groups {
	return m.groups
}

// Rates returns the rates accumulated from key edges.
func (m *ControlMap) Rates() Rates {
	return m.rates
}

// Binding returns the current state of the binding for key.
func (m *ControlMap) Binding(key Key) (Binding, bool) {
	b, ok := m.bindings[key]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

func (m *ControlMap) component(a Axis) *float32 {
	if a.IsRotation() {
		return &m.rates.Rotation[a.slot()]
	}
	return &m.rates.Translation[a.slot()]
}
