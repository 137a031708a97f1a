package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hubbard-sim/hubbard-sim/sim"
	"github.com/hubbard-sim/hubbard-sim/sim/results"
	"github.com/hubbard-sim/hubbard-sim/sim/trace"
)

var (
	// CLI flags shared by run and ensemble
	seed               int64   // Seed for the engine RNG
	randomSeed         bool    // Ignore --seed and seed from the wall clock
	logLevel           string  // Log verbosity level
	latticeSize        int     // Lattice edge N
	onSiteRepulsion    float64 // U
	hopping            float64 // T
	requestedElectrons int     // Target particle count for random init
	fieldStrength      float64 // Probability per step of a rightward-biased proposal
	initPolicy         string  // random, af or localized
	numSteps           int64   // Steps per run
	presetName         string  // Named preset from the presets file
	presetsFilePath    string  // Path to presets.yaml
	resultsDBPath      string  // SQLite results database (optional)

	// run-only flags
	traceLevel  string // Step trace verbosity
	resultsPath string // JSON summary output (optional)
	showLattice bool   // Print the final lattice
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hubbard-sim",
	Short: "Metropolis Monte Carlo simulator for a 2D Hubbard-model lattice gas",
}

// runCmd executes a single simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run one simulation",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		policy, cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			return fmt.Errorf("unknown trace level %q", traceLevel)
		}

		logrus.Infof("Starting %s simulation: size=%d U=%v T=%v electrons=%d field=%v steps=%d",
			policy, cfg.Size, cfg.U, cfg.T, cfg.RequestedElectrons, cfg.FieldStrength, numSteps)

		e := sim.NewEngine()
		if err := e.Initialize(policy, cfg); err != nil {
			return err
		}
		tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		runner := sim.NewRunner(e, tr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := runner.Run(ctx, numSteps); err != nil {
			if ctx.Err() == nil {
				return err
			}
			logrus.Warnf("interrupted after %d steps; reporting partial results", e.Steps())
		}

		out := cmd.OutOrStdout()
		counters := e.Counters()
		runner.Metrics.Print(out, counters)
		if tr.Enabled() {
			printTraceSummary(cmd, trace.Summarize(tr))
		}
		if showLattice {
			view, err := e.Lattice()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "=== Final Lattice ===")
			fmt.Fprint(out, view.String())
		}

		if resultsPath != "" {
			if err := sim.SaveResults(resultsPath, sim.NewRunSummary(policy, e.Config(), runner.Metrics, counters)); err != nil {
				return err
			}
		}
		if resultsDBPath != "" {
			rec := results.NewRunRecord(policy, e.Config(), runner.Metrics, counters)
			if err := saveRecords(cmd.Context(), resultsDBPath, rec); err != nil {
				return err
			}
		}

		logrus.Info("Simulation complete.")
		return nil
	},
}

func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)
	return nil
}

// resolveConfig merges preset values with explicitly set flags.
// Flags the user passed always win over the preset (checked via Changed).
func resolveConfig(cmd *cobra.Command) (sim.InitPolicy, sim.SimulationConfig, error) {
	if presetName != "" {
		presets, err := loadPresets(presetsFilePath)
		if err != nil {
			return "", sim.SimulationConfig{}, err
		}
		p, ok := presets.Presets[presetName]
		if !ok {
			return "", sim.SimulationConfig{}, fmt.Errorf("preset %q not found in %s", presetName, presetsFilePath)
		}
		applyPreset(cmd, p)
	}

	if !sim.IsValidInitPolicy(initPolicy) {
		return "", sim.SimulationConfig{}, fmt.Errorf("unknown init policy %q (want random, af or localized)", initPolicy)
	}
	if numSteps < 0 {
		return "", sim.SimulationConfig{}, fmt.Errorf("steps must be >= 0, got %d", numSteps)
	}

	var seedPtr *int64
	if !randomSeed {
		seedPtr = sim.Int64Ptr(seed)
	}
	cfg := sim.NewSimulationConfig(latticeSize, onSiteRepulsion, hopping, requestedElectrons, seedPtr)
	cfg.FieldStrength = fieldStrength
	return sim.InitPolicy(initPolicy), cfg, nil
}

func printTraceSummary(cmd *cobra.Command, s *trace.TraceSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Trace Summary ===")
	fmt.Fprintf(out, "Recorded Steps       : %d\n", s.TotalSteps)
	fmt.Fprintf(out, "Accepted / Rejected  : %d / %d\n", s.AcceptedCount, s.RejectedCount)
	fmt.Fprintf(out, "Accepted Up / Down   : %d / %d\n", s.AcceptedBySpin[int(sim.SpinUp)], s.AcceptedBySpin[int(sim.SpinDown)])
	fmt.Fprintf(out, "Mean Accepted dE     : %.4f\n", s.MeanAcceptedDeltaE)
}

func saveRecords(ctx context.Context, path string, recs ...results.RunRecord) error {
	store, err := results.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, rec := range recs {
		id, err := store.SaveRun(ctx, rec)
		if err != nil {
			return err
		}
		logrus.Debugf("saved run %d to %s", id, path)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerSimFlags binds the engine and output flags shared by run and ensemble.
func registerSimFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for the engine RNG")
	c.Flags().BoolVar(&randomSeed, "random-seed", false, "Seed from the wall clock instead of --seed")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Lattice and physics
	c.Flags().IntVar(&latticeSize, "size", 10, "Lattice edge N (lattice is NxN, periodic)")
	c.Flags().Float64Var(&onSiteRepulsion, "u", 1.0, "On-site repulsion U")
	c.Flags().Float64Var(&hopping, "t", 1.0, "Hopping/temperature parameter T")
	c.Flags().IntVar(&requestedElectrons, "electrons", 50, "Number of electrons for random initialization")
	c.Flags().Float64Var(&fieldStrength, "field", 0.0, "Field strength: probability per step of a rightward-biased proposal, in [0,1]")
	c.Flags().StringVar(&initPolicy, "init", string(sim.InitRandom), "Initialization: random, af, localized")
	c.Flags().Int64Var(&numSteps, "steps", 10000, "Number of Monte Carlo steps")

	// Presets and persistence
	c.Flags().StringVar(&presetName, "preset", "", "Named preset from the presets file")
	c.Flags().StringVar(&presetsFilePath, "presets-file", "presets.yaml", "Path to presets YAML")
	c.Flags().StringVar(&resultsDBPath, "results-db", "", "SQLite database to append run summaries to")
}

// init sets up CLI flags and subcommands
func init() {
	registerSimFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Step trace level (none, steps, accepted)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "File to write the JSON run summary to")
	runCmd.Flags().BoolVar(&showLattice, "show-lattice", false, "Print the final lattice")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ensembleCmd)
}
