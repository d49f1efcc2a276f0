package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lifsim/lifsim/sim"
	"github.com/lifsim/lifsim/sim/analytic"
	"github.com/lifsim/lifsim/sim/ensemble"
	"github.com/lifsim/lifsim/sim/stats"
)

// runCmd simulates an ensemble and compares it with the analytical prediction
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate an LIF ensemble and compare it with the analytical rate and CV",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := resolveRunSpec(cmd)
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}
		ctx, cancel := signalContext()
		defer cancel()

		report, err := executeRun(ctx, spec, histogramBins)
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		if err := writeRunReport(cmd.OutOrStdout(), report, outputFormat); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		logrus.Info("Run complete.")
	},
}

// executeRun evaluates the analytical prediction and the ensemble for spec.
// When the prediction is undefined (sigma = 0) only the empirical side is
// reported.
func executeRun(ctx context.Context, spec *sim.RunSpec, bins int) (*RunReport, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram bins must be positive, got %d", bins)
	}
	p, cfg := spec.Params(), spec.Config()
	report := &RunReport{Params: p, Config: cfg}

	a, err := analytic.NewSolverFromSpec(spec.Solver).ComputeRateAndCV(p)
	switch {
	case err == nil:
		report.Analytic = &a
	case errors.Is(err, sim.ErrInvalidParameter):
		logrus.Warnf("Analytical prediction unavailable: %v", err)
	default:
		return nil, err
	}

	res, err := ensemble.Run(ctx, p, cfg)
	if err != nil {
		return nil, err
	}
	emp, err := stats.FromEnsemble(res)
	if err != nil {
		return nil, err
	}
	if emp.ISICount == 0 {
		logrus.Warnf("No interspike intervals in %d realizations; CV reported as 0", cfg.PopulationSize)
	}
	report.Empirical = emp
	if report.Analytic != nil {
		c := stats.Compare(a, emp)
		report.Comparison = &c
	}

	isis := stats.PooledISIs(res.Trains)
	report.Histogram, err = stats.ISIHistogram(isis, bins, 0)
	if err != nil {
		return nil, err
	}
	report.Raster = rasterExcerpt(res, len(res.Traces), cfg.TraceWindow)
	report.Traces = res.Traces
	return report, nil
}

// rasterExcerpt returns the spikes of the first n realizations up to window.
func rasterExcerpt(res *sim.EnsembleResult, n int, window float64) []sim.SpikeTrain {
	out := make([]sim.SpikeTrain, 0, n)
	for _, t := range res.Trains[:n] {
		k := 0
		for k < len(t.Times) && t.Times[k] <= window {
			k++
		}
		out = append(out, sim.SpikeTrain{Realization: t.Realization, Times: t.Times[:k]})
	}
	return out
}

func writeRunReport(w io.Writer, r *RunReport, format string) error {
	switch format {
	case "json":
		return writeJSON(w, r)
	case "text":
		return r.WriteText(w)
	}
	return errUnknownFormat(format)
}

func init() {
	registerModelFlags(runCmd)
	registerSimulationFlags(runCmd, sim.DefaultSimulationConfig().PopulationSize)
	c := sim.DefaultSimulationConfig()
	runCmd.Flags().IntVar(&traceCount, "trace-count", c.TraceCount, "Realizations whose voltage trace and spikes are reported")
	runCmd.Flags().Float64Var(&traceWindow, "trace-window", c.TraceWindow, "Length of each reported trace (ms)")
	runCmd.Flags().IntVar(&histogramBins, "histogram-bins", 20, "ISI histogram bins")

	rootCmd.AddCommand(runCmd)
}
