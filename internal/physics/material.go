package physics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Material tags a body for contact lookups. Friction and Restitution are
// only used when no ContactMaterial is registered for a pair and both
// bodies carry a named material; a negative value means "not set".
type Material struct {
	Name        string
	Friction    float64
	Restitution float64
}

func NewMaterial(name string) Material {
	return Material{Name: name, Friction: -1, Restitution: -1}
}

// ContactMaterial holds the contact parameters for a pair of material names.
type ContactMaterial struct {
	A, B        string
	Friction    float64
	Restitution float64
	Stiffness   float64
	Relaxation  float64
}

// DefaultContactMaterial matches the soft contact regime used when a pair
// has no registered entry.
func DefaultContactMaterial() ContactMaterial {
	return ContactMaterial{
		Friction:    0.3,
		Restitution: 0,
		Stiffness:   1e7,
		Relaxation:  3,
	}
}

func (c ContactMaterial) Validate() error {
	if math.IsNaN(c.Friction) || c.Friction < 0 {
		return dynamo.Invalid("friction", c.Friction, "must be >= 0")
	}
	if math.IsNaN(c.Restitution) || c.Restitution < 0 || c.Restitution > 1 {
		return dynamo.Invalid("restitution", c.Restitution, "must be within [0, 1]")
	}
	if !(c.Stiffness > 0) || math.IsInf(c.Stiffness, 0) {
		return dynamo.Invalid("contact stiffness", c.Stiffness, "must be positive and finite")
	}
	if !(c.Relaxation > 0) {
		return dynamo.Invalid("contact relaxation", c.Relaxation, "must be positive")
	}
	return nil
}

type materialPair struct{ a, b string }

func pairKey(a, b string) materialPair {
	if b < a {
		a, b = b, a
	}
	return materialPair{a, b}
}

type materialTable struct {
	fallback ContactMaterial
	pairs    map[materialPair]ContactMaterial
}

func newMaterialTable(fallback ContactMaterial) *materialTable {
	return &materialTable{fallback: fallback, pairs: make(map[materialPair]ContactMaterial)}
}

func (t *materialTable) add(cm ContactMaterial) {
	t.pairs[pairKey(cm.A, cm.B)] = cm
}

// lookup resolves the contact parameters for two materials. Unregistered
// pairs start from the fallback and take the product of the body values
// when both named materials set them.
func (t *materialTable) lookup(a, b Material) ContactMaterial {
	if cm, ok := t.pairs[pairKey(a.Name, b.Name)]; ok {
		return cm
	}
	cm := t.fallback
	cm.A, cm.B = a.Name, b.Name
	if a.Name == "" || b.Name == "" {
		return cm
	}
	if a.Friction >= 0 && b.Friction >= 0 {
		cm.Friction = a.Friction * b.Friction
	}
	if a.Restitution >= 0 && b.Restitution >= 0 {
		cm.Restitution = a.Restitution * b.Restitution
	}
	return cm
}
