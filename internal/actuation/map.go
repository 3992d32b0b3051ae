// Package actuation maps held keys to logical actions and turns actions
// into forces applied before every physics step.
package actuation

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/physics"
)

type Action string

const (
	Forward  Action = "forward"
	Backward Action = "backward"
	Left     Action = "left"
	Right    Action = "right"
	Jump     Action = "jump"
	Boost    Action = "boost"
	Reset    Action = "reset"
	Spawn    Action = "spawn"
)

// Map tracks which keys are held. An action is held while any key bound to
// it is held.
type Map struct {
	actions   map[string][]Action
	keys      map[Action][]string
	held      map[string]bool
	listeners []func(a Action, down bool)
	logger    *log.Logger
}

func NewMap() *Map {
	return &Map{
		actions: make(map[string][]Action),
		keys:    make(map[Action][]string),
		held:    make(map[string]bool),
		logger:  log.New(io.Discard),
	}
}

// DefaultBindings binds the driving and movement actions.
func DefaultBindings() *Map {
	m := NewMap()
	m.Bind(Forward, "w", "up")
	m.Bind(Backward, "s", "down")
	m.Bind(Left, "a", "left")
	m.Bind(Right, "d", "right")
	m.Bind(Jump, "space")
	m.Bind(Boost, "shift")
	return m
}

func (m *Map) SetLogger(l *log.Logger) { m.logger = l }

// Bind adds keys to an action. Binding the same key twice is a no-op.
func (m *Map) Bind(action Action, keys ...string) {
	for _, k := range keys {
		k = input.NormalizeKey(k)
		if slices.Contains(m.keys[action], k) {
			continue
		}
		m.keys[action] = append(m.keys[action], k)
		m.actions[k] = append(m.actions[k], action)
	}
}

func (m *Map) Keys(action Action) []string {
	return slices.Clone(m.keys[action])
}

// OnAction registers fn for action transitions: down when the first key of
// an action is pressed, up when the last one is released.
func (m *Map) OnAction(fn func(a Action, down bool)) {
	m.listeners = append(m.listeners, fn)
}

// HandleKey records a key transition. Unbound keys are ignored.
func (m *Map) HandleKey(key string, down bool) {
	key = input.NormalizeKey(key)
	actions, ok := m.actions[key]
	if !ok || m.held[key] == down {
		return
	}
	before := make([]bool, len(actions))
	for i, a := range actions {
		before[i] = m.Held(a)
	}
	if down {
		m.held[key] = true
	} else {
		delete(m.held, key)
	}
	for i, a := range actions {
		if now := m.Held(a); now != before[i] {
			m.logger.Debug("action", "action", a, "down", now, "key", key)
			for _, fn := range m.listeners {
				fn(a, now)
			}
		}
	}
}

func (m *Map) Held(action Action) bool {
	for _, k := range m.keys[action] {
		if m.held[k] {
			return true
		}
	}
	return false
}

// Axis is +1 when only pos is held, -1 when only neg is held, else 0.
func (m *Map) Axis(pos, neg Action) float64 {
	v := 0.0
	if m.Held(pos) {
		v++
	}
	if m.Held(neg) {
		v--
	}
	return v
}

// ReleaseAll releases every held key, firing the matching transitions.
func (m *Map) ReleaseAll() {
	keys := make([]string, 0, len(m.held))
	for k := range m.held {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		m.HandleKey(k, false)
	}
}

// Actuator turns the current action state into world changes. It runs once
// per fixed step.
type Actuator interface {
	Actuate(m *Map, h float64)
}

// Attach runs a before every fixed step of w.
func (m *Map) Attach(w *physics.World, a Actuator) {
	w.OnPreStep(func(h float64) { a.Actuate(m, h) })
}
