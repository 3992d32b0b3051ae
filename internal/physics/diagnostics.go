package physics

import "github.com/san-kum/physlab/internal/dynamo"

const recentWarnings = 32

// Diagnostics summarises numerical health since the world was created.
type Diagnostics struct {
	Warnings       int
	Penetrations   int
	Stretches      int
	NonFinite      int
	MaxPenetration float64
	MaxStretch     float64
	LastIterations int
	Recent         []dynamo.Warning
}

func (w *World) Diagnostics() Diagnostics {
	d := w.diag
	d.Recent = append([]dynamo.Warning(nil), w.diag.Recent...)
	return d
}

// warn records a numerical instability. The first occurrence per subject
// and kind is logged, then every 500th.
func (w *World) warn(wr dynamo.Warning) {
	d := &w.diag
	d.Warnings++
	switch wr.Kind {
	case dynamo.WarnPenetration:
		d.Penetrations++
		if wr.Magnitude > d.MaxPenetration {
			d.MaxPenetration = wr.Magnitude
		}
	case dynamo.WarnStretch:
		d.Stretches++
		if wr.Magnitude > d.MaxStretch {
			d.MaxStretch = wr.Magnitude
		}
	case dynamo.WarnNonFinite:
		d.NonFinite++
	}
	if len(d.Recent) == recentWarnings {
		copy(d.Recent, d.Recent[1:])
		d.Recent = d.Recent[:recentWarnings-1]
	}
	d.Recent = append(d.Recent, wr)

	key := wr.Kind.String() + "/" + wr.Subject
	w.warnCount[key]++
	if n := w.warnCount[key]; n == 1 || n%500 == 0 {
		w.logger.Warn("numerical instability",
			"kind", wr.Kind,
			"subject", wr.Subject,
			"magnitude", wr.Magnitude,
			"step", wr.Step,
			"t", wr.Time,
			"count", n,
		)
	}
}
