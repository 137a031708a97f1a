// Package sim provides a single-particle-hop Metropolis Monte Carlo engine for
// a two-dimensional Hubbard-model lattice gas.
//
// # Reading Guide
//
// Start with engine.go: Engine owns the lattice, configuration, and pairing
// counters and exposes Initialize* and Step. One Step runs:
//   - proposer.go: pick a uniformly random occupied cell and a periodic neighbor,
//     optionally from the rightward-biased direction list
//   - acceptance.go: hard-core exclusion, then the Metropolis test on ΔE
//   - pairing.go: incremental double-occupancy bookkeeping
//
// lattice.go holds the occupation grid, initializer.go the three starting
// configurations, and rng.go the seedable RandomSource.
//
// # Derived Statistics
//
// Metrics (metrics.go) and the sim/trace package consume the MoveOutcome
// stream; Runner (runner.go) wires an engine to both for batch runs.
//
// # Sub-packages
//   - sim/trace/: per-step outcome recording and summaries
//   - sim/ensemble/: independent replicas with derived seeds, run concurrently
//   - sim/results/: SQLite store of finished run summaries
package sim
