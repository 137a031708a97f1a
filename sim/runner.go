package sim

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hubbard-sim/hubbard-sim/sim/trace"
)

// ctxCheckInterval is how many steps Run performs between context checks.
const ctxCheckInterval = 1024

// Runner drives an initialized Engine for a fixed number of steps, feeding
// every outcome to Metrics and, when set, to Trace.
type Runner struct {
	Engine  *Engine
	Metrics *Metrics
	Trace   *trace.SimulationTrace // optional
}

// NewRunner wraps an initialized engine with fresh Metrics.
func NewRunner(e *Engine, tr *trace.SimulationTrace) *Runner {
	return &Runner{
		Engine:  e,
		Metrics: NewMetrics(e.Config().Size),
		Trace:   tr,
	}
}

// Run performs steps calls of Engine.Step. It stops early with ctx.Err() if
// the context is cancelled; steps already taken remain applied.
func (r *Runner) Run(ctx context.Context, steps int64) error {
	for i := int64(0); i < steps; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				logrus.Debugf("run cancelled after %d of %d steps", i, steps)
				return err
			}
		}
		o, err := r.Engine.Step()
		if err != nil {
			return err
		}
		r.Metrics.Observe(o)
		r.Trace.Record(stepRecord(r.Engine.Steps(), o))
	}
	logrus.Infof("completed %d steps: accepted=%d rate=%.4f", steps, r.Metrics.Accepted, r.Metrics.AcceptanceRate())
	return nil
}

func stepRecord(step int64, o MoveOutcome) trace.StepRecord {
	rec := trace.StepRecord{
		Step:        step,
		Accepted:    o.Accepted,
		Reason:      string(o.Reason),
		DeltaEnergy: o.DeltaEnergy,
	}
	if m := o.Move; m != nil {
		rec.HasMove = true
		rec.Spin = int(m.Spin)
		rec.SourceX, rec.SourceY = m.Source.X, m.Source.Y
		rec.TargetX, rec.TargetY = m.Target.X, m.Target.Y
		rec.Biased = m.Biased
	}
	return rec
}
