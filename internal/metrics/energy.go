package metrics

import (
	"math"

	"github.com/san-kum/physlab/internal/physics"
)

// TotalEnergy is the kinetic plus gravitational potential energy of the
// dynamic bodies, with zero potential at the origin.
func TotalEnergy(w *physics.World) float64 {
	g := w.Gravity()
	total := 0.0
	for _, b := range w.Bodies() {
		if b.IsStatic() {
			continue
		}
		total += b.KineticEnergy() - b.Mass()*g.Dot(b.Position())
	}
	return total
}

// Energy is the mean total energy over the observed steps.
type Energy struct {
	sum  float64
	n    int
	last float64
}

func NewEnergy() *Energy { return &Energy{} }

func (*Energy) Name() string { return "energy" }

func (e *Energy) Observe(w *physics.World, _ float64) {
	e.last = TotalEnergy(w)
	e.sum += e.last
	e.n++
}

func (e *Energy) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return e.sum / float64(e.n)
}

// Last is the energy at the most recent step.
func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() { *e = Energy{} }

// EnergyDrift is the largest relative change from the first observed
// energy. A zero reference energy reports no drift.
type EnergyDrift struct {
	ref    float64
	seeded bool
	worst  float64
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (*EnergyDrift) Name() string { return "energy_drift" }

func (d *EnergyDrift) Observe(w *physics.World, _ float64) {
	now := TotalEnergy(w)
	if !d.seeded {
		d.ref, d.seeded = now, true
		return
	}
	if d.ref != 0 {
		d.worst = math.Max(d.worst, math.Abs((now-d.ref)/d.ref))
	}
}

func (d *EnergyDrift) Value() float64 { return d.worst }

func (d *EnergyDrift) Reset() { *d = EnergyDrift{} }
