package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/physlab/internal/dynamo"
)

// GetParams exposes the tunable world settings by name.
func (w *World) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity_x":         w.cfg.Gravity[0],
		"gravity_y":         w.cfg.Gravity[1],
		"gravity_z":         w.cfg.Gravity[2],
		"fixed_timestep":    w.cfg.FixedTimestep,
		"max_sub_steps":     float64(w.cfg.MaxSubSteps),
		"solver_iterations": float64(w.cfg.SolverIterations),
		"solver_tolerance":  w.cfg.SolverTolerance,
		"max_frame_delta":   w.cfg.MaxFrameDelta,
	}
}

// SetParam updates one setting. The new configuration is validated as a
// whole and rejected without change when invalid.
func (w *World) SetParam(name string, value float64) error {
	cfg := w.cfg
	switch name {
	case "gravity_x":
		cfg.Gravity[0] = value
	case "gravity_y":
		cfg.Gravity[1] = value
	case "gravity_z":
		cfg.Gravity[2] = value
	case "fixed_timestep":
		cfg.FixedTimestep = value
	case "max_sub_steps":
		cfg.MaxSubSteps = int(value)
	case "solver_iterations":
		cfg.SolverIterations = int(value)
	case "solver_tolerance":
		cfg.SolverTolerance = value
	case "max_frame_delta":
		cfg.MaxFrameDelta = value
	default:
		return fmt.Errorf("unknown param: %s: %w", name, dynamo.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	w.cfg = cfg
	w.solver = gaussSeidel{iterations: cfg.SolverIterations, tolerance: cfg.SolverTolerance}
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, 8)
	for k := range (&World{}).GetParams() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
