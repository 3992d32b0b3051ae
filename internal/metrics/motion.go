package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/physics"
)

// MaxStretch is the largest constraint error seen on enabled distance
// constraints, relative to their target length.
type MaxStretch struct {
	max float64
}

func NewMaxStretch() *MaxStretch { return &MaxStretch{} }

func (m *MaxStretch) Name() string { return "max_stretch" }

func (m *MaxStretch) Observe(w *physics.World, _ float64) {
	for _, c := range w.Constraints() {
		if !c.Enabled() || c.Kind() != physics.ConstraintDistance {
			continue
		}
		m.max = math.Max(m.max, w.ConstraintError(c))
	}
}

func (m *MaxStretch) Value() float64 { return m.max }
func (m *MaxStretch) Reset()         { m.max = 0 }

// PeakHeight tracks how far a body rises above a baseline.
type PeakHeight struct {
	name     string
	body     physics.BodyID
	baseline float64
	peak     float64
	seen     bool
}

func NewPeakHeight(label string, body physics.BodyID, baseline float64) *PeakHeight {
	return &PeakHeight{name: fmt.Sprintf("peak_%s", label), body: body, baseline: baseline}
}

func (p *PeakHeight) Name() string { return p.name }

func (p *PeakHeight) Observe(w *physics.World, _ float64) {
	b, ok := w.Body(p.body)
	if !ok {
		return
	}
	h := b.Position().Y() - p.baseline
	if !p.seen || h > p.peak {
		p.peak = h
		p.seen = true
	}
}

func (p *PeakHeight) Value() float64 { return p.peak }

func (p *PeakHeight) Reset() {
	p.peak = 0
	p.seen = false
}

// Impacts counts contact starts at or above a minimum approach speed.
type Impacts struct {
	MinSpeed float64
	count    int
	maxSpeed float64
	last     physics.Impact
}

func NewImpacts(minSpeed float64) *Impacts { return &Impacts{MinSpeed: minSpeed} }

func (i *Impacts) Name() string { return "impacts" }

func (i *Impacts) Observe(*physics.World, float64) {}

func (i *Impacts) OnImpact(ev physics.Impact) {
	if ev.Speed < i.MinSpeed {
		return
	}
	i.count++
	i.maxSpeed = math.Max(i.maxSpeed, ev.Speed)
	i.last = ev
}

func (i *Impacts) Value() float64       { return float64(i.count) }
func (i *Impacts) MaxSpeed() float64    { return i.maxSpeed }
func (i *Impacts) Last() physics.Impact { return i.last }

func (i *Impacts) Reset() {
	i.count = 0
	i.maxSpeed = 0
	i.last = physics.Impact{}
}
