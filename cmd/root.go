package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lifsim/lifsim/sim"
)

var (
	// Model parameters
	mu         float64 // mean drive relative to threshold
	sigma      float64 // input noise standard deviation
	tau        float64 // membrane time constant
	refractory float64 // absolute refractory period

	// Ensemble sizing
	populationSize int     // number of realizations
	duration       float64 // simulated time per realization
	timeStep       float64 // Euler step
	seed           int64   // seed for the per-realization streams
	workers        int     // concurrent workers, 0 = GOMAXPROCS
	traceCount     int     // realizations whose voltage is reported
	traceWindow    float64 // length of each reported voltage trace

	// Inputs and output
	specPath      string // YAML run spec
	presetName    string // named parameter set from presetsPath
	presetsPath   string // presets file
	histogramBins int    // ISI histogram bins
	logLevel      string // log verbosity
	outputFormat  string // text or json
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lifsim",
	Short: "Stochastic LIF ensemble simulator with a diffusion-approximation reference",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(l)
	return nil
}

// signalContext is canceled on interrupt so a long ensemble aborts cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// registerModelFlags binds the model and input-source flags to cmd.
func registerModelFlags(cmd *cobra.Command) {
	p := sim.DefaultModelParameters()
	cmd.Flags().Float64Var(&mu, "mu", p.Mu, "Mean drive relative to threshold")
	cmd.Flags().Float64Var(&sigma, "sigma", p.Sigma, "Input noise standard deviation")
	cmd.Flags().Float64Var(&tau, "tau", p.Tau, "Membrane time constant (ms)")
	cmd.Flags().Float64Var(&refractory, "refractory", p.Refractory, "Absolute refractory period (ms)")
	cmd.Flags().StringVar(&specPath, "spec", "", "YAML run spec; explicitly set flags override it")
	cmd.Flags().StringVar(&presetName, "preset", "", "Named parameter set from the presets file")
	cmd.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json)")
}

// registerSimulationFlags binds the ensemble sizing flags to cmd.
func registerSimulationFlags(cmd *cobra.Command, population int) {
	c := sim.DefaultSimulationConfig()
	cmd.Flags().IntVar(&populationSize, "population", population, "Number of independent realizations")
	cmd.Flags().Float64Var(&duration, "duration", c.Duration, "Simulated time per realization (ms)")
	cmd.Flags().Float64Var(&timeStep, "dt", c.TimeStep, "Euler integration step (ms)")
	cmd.Flags().Int64Var(&seed, "seed", c.Seed, "Seed for the per-realization random streams")
	cmd.Flags().IntVar(&workers, "workers", c.Workers, "Concurrent workers (0 = GOMAXPROCS)")
}

// resolveRunSpec builds the run from defaults, then --spec, then --preset,
// then any flag the user set explicitly.
func resolveRunSpec(cmd *cobra.Command) (*sim.RunSpec, error) {
	spec := sim.DefaultRunSpec()
	if specPath != "" {
		loaded, err := sim.LoadRunSpec(specPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
		logrus.Infof("Loaded run spec %s", specPath)
	}
	if presetName != "" {
		presets, err := LoadPresets(presetsPath)
		if err != nil {
			return nil, err
		}
		preset, err := presets.Get(presetName)
		if err != nil {
			return nil, err
		}
		spec.Model = preset.Model
		logrus.Infof("Applied preset %q: %s", presetName, preset.Description)
	}

	changed := cmd.Flags().Changed
	if changed("mu") {
		spec.Model.Mu = mu
	}
	if changed("sigma") {
		spec.Model.Sigma = sigma
	}
	if changed("tau") {
		spec.Model.Tau = tau
	}
	if changed("refractory") {
		spec.Model.Refractory = refractory
	}
	if changed("population") {
		spec.Simulation.PopulationSize = populationSize
	}
	if changed("duration") {
		spec.Simulation.Duration = duration
	}
	if changed("dt") {
		spec.Simulation.TimeStep = timeStep
	}
	if changed("seed") {
		spec.Seed = seed
	}
	if changed("workers") {
		spec.Simulation.Workers = workers
	}
	if changed("trace-count") {
		spec.Simulation.TraceCount = traceCount
	}
	if changed("trace-window") {
		spec.Simulation.TraceWindow = traceWindow
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	for _, w := range sim.CheckRanges(spec.Params()) {
		logrus.Warn(w)
	}
	return spec, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&presetsPath, "presets", "presets.yaml", "Presets file used by --preset")
}
