// Package metrics summarises a running world: energy, constraint stretch,
// peak heights and impacts.
package metrics

import (
	"sort"

	"github.com/san-kum/physlab/internal/physics"
)

type Metric interface {
	Name() string
	Observe(w *physics.World, t float64)
	Value() float64
	Reset()
}

// Set feeds its metrics after every fixed step of the world it is attached
// to. Metrics that also implement physics.ImpactObserver receive impacts.
type Set struct {
	world   *physics.World
	metrics []Metric
}

func Attach(w *physics.World, ms ...Metric) *Set {
	s := &Set{world: w, metrics: ms}
	w.AddObserver(s)
	return s
}

func (s *Set) OnStep(_ int, t float64) {
	for _, m := range s.metrics {
		m.Observe(s.world, t)
	}
}

func (s *Set) OnImpact(ev physics.Impact) {
	for _, m := range s.metrics {
		if o, ok := m.(physics.ImpactObserver); ok {
			o.OnImpact(ev)
		}
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.metrics))
	for _, m := range s.metrics {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}
