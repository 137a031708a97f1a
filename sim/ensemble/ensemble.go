// Package ensemble runs independent replicas of a simulation concurrently.
// Every replica owns its own Engine and RandomSource; replicas share no
// mutable state, so the Markov chains themselves stay sequential.
package ensemble

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	sim "github.com/hubbard-sim/hubbard-sim/sim"
)

// Spec describes an ensemble run.
type Spec struct {
	Config   sim.SimulationConfig // Seed is the master seed; nil = wall clock
	Policy   sim.InitPolicy
	Replicas int
	Steps    int64
	Workers  int // max concurrent replicas; <= 0 means one per replica
}

// ReplicaResult is the final state of one replica.
type ReplicaResult struct {
	Replica  int
	Seed     int64
	Metrics  *sim.Metrics
	Counters sim.PairingCounters
}

// Validate checks the ensemble-level fields.
func (s Spec) Validate() error {
	if s.Replicas < 1 {
		return fmt.Errorf("replicas must be >= 1, got %d", s.Replicas)
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps must be >= 0, got %d", s.Steps)
	}
	if !sim.IsValidInitPolicy(string(s.Policy)) {
		return fmt.Errorf("unknown init policy %q", s.Policy)
	}
	return s.Config.Validate()
}

// ReplicaSeeds derives one seed per replica from master.
func ReplicaSeeds(master int64, replicas int) []int64 {
	p := sim.NewPartitionedRNG(sim.NewSimulationKey(master))
	seeds := make([]int64, replicas)
	for i := range seeds {
		seeds[i] = p.SeedFor(sim.SubsystemReplica(i))
	}
	return seeds
}

// Run executes all replicas and returns their results in replica order.
// The first replica error cancels the rest.
func Run(ctx context.Context, spec Spec) ([]ReplicaResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var master int64
	if spec.Config.Seed != nil {
		master = *spec.Config.Seed
	} else {
		master = time.Now().UnixNano()
	}
	seeds := ReplicaSeeds(master, spec.Replicas)
	results := make([]ReplicaResult, spec.Replicas)

	g, gctx := errgroup.WithContext(ctx)
	if spec.Workers > 0 {
		g.SetLimit(spec.Workers)
	}
	for i := range seeds {
		g.Go(func() error {
			res, err := runReplica(gctx, spec, i, seeds[i])
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logrus.Infof("ensemble complete: %d replicas x %d steps (master seed %d)", spec.Replicas, spec.Steps, master)
	return results, nil
}

func runReplica(ctx context.Context, spec Spec, id int, seed int64) (ReplicaResult, error) {
	cfg := spec.Config
	cfg.Seed = &seed

	e := sim.NewEngine()
	if err := e.Initialize(spec.Policy, cfg); err != nil {
		return ReplicaResult{}, err
	}
	r := sim.NewRunner(e, nil)
	if err := r.Run(ctx, spec.Steps); err != nil {
		return ReplicaResult{}, err
	}
	logrus.Debugf("replica %d done: accepted=%d flux=%d", id, r.Metrics.Accepted, r.Metrics.Flux)
	return ReplicaResult{
		Replica:  id,
		Seed:     seed,
		Metrics:  r.Metrics,
		Counters: e.Counters(),
	}, nil
}

// Summary aggregates replica results.
type Summary struct {
	Replicas           int
	MeanAcceptanceRate float64
	MeanFlux           float64
	MeanFluxPercentage float64
	MeanTotalPaired    float64
}

// Aggregate averages the per-replica statistics. Safe for empty input.
func Aggregate(results []ReplicaResult) Summary {
	s := Summary{Replicas: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		s.MeanAcceptanceRate += r.Metrics.AcceptanceRate()
		s.MeanFlux += float64(r.Metrics.Flux)
		s.MeanFluxPercentage += r.Metrics.FluxPercentage()
		s.MeanTotalPaired += float64(r.Counters.TotalPaired)
	}
	n := float64(len(results))
	s.MeanAcceptanceRate /= n
	s.MeanFlux /= n
	s.MeanFluxPercentage /= n
	s.MeanTotalPaired /= n
	return s
}
