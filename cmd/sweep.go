package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/lifsim/lifsim/sim"
	"github.com/lifsim/lifsim/sim/analytic"
	"github.com/lifsim/lifsim/sim/ensemble"
	"github.com/lifsim/lifsim/sim/stats"
)

// sweepPopulation is the default ensemble size per sweep point.
const sweepPopulation = 200

var (
	muFrom     float64 // first mu of the sweep grid
	muTo       float64 // last mu of the sweep grid
	sweepSteps int     // number of grid points
	empirical  bool    // also simulate each point
)

// SweepPoint is one grid point. Error is set when the analytical evaluation
// failed at that point; the sweep continues.
type SweepPoint struct {
	Mu         float64               `json:"mu"`
	Analytic   *sim.AnalyticalResult `json:"analytic,omitempty"`
	Empirical  *sim.EmpiricalResult  `json:"empirical,omitempty"`
	Comparison *stats.Comparison     `json:"comparison,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// sweepCmd evaluates the analytical rate and CV over a grid of mean drives
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the mean drive and report rate and CV at each point",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := resolveRunSpec(cmd)
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}
		if !cmd.Flags().Changed("population") && specPath == "" {
			spec.Simulation.PopulationSize = sweepPopulation
		}
		grid, err := muGrid(muFrom, muTo, sweepSteps)
		if err != nil {
			logrus.Fatalf("Invalid sweep: %v", err)
		}
		ctx, cancel := signalContext()
		defer cancel()

		points, err := executeSweep(ctx, spec, grid, empirical)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		if err := writeSweep(cmd.OutOrStdout(), points, outputFormat); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
	},
}

// muGrid returns n evenly spaced values from lo to hi inclusive.
func muGrid(lo, hi float64, n int) ([]float64, error) {
	switch {
	case n <= 0:
		return nil, fmt.Errorf("steps must be positive, got %d", n)
	case n == 1:
		return []float64{lo}, nil
	case !(hi > lo):
		return nil, fmt.Errorf("mu-to %g must exceed mu-from %g", hi, lo)
	}
	grid := floats.Span(make([]float64, n), lo, hi)
	grid[n-1] = hi
	return grid, nil
}

// executeSweep evaluates the analytical result at every grid point
// concurrently. With withEnsemble each point is also simulated, one point
// at a time, each ensemble using the configured workers.
func executeSweep(ctx context.Context, spec *sim.RunSpec, grid []float64, withEnsemble bool) ([]SweepPoint, error) {
	solver := analytic.NewSolverFromSpec(spec.Solver)
	base := spec.Params()
	points := make([]SweepPoint, len(grid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range grid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := base
			p.Mu = m
			points[i].Mu = m
			a, err := solver.ComputeRateAndCV(p)
			if err != nil {
				logrus.Warnf("Sweep point mu=%g: %v", m, err)
				points[i].Error = err.Error()
				return nil
			}
			points[i].Analytic = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !withEnsemble {
		return points, nil
	}

	cfg := spec.Config()
	cfg.TraceCount = 0
	for i := range points {
		p := base
		p.Mu = points[i].Mu
		res, err := ensemble.Run(ctx, p, cfg)
		if err != nil {
			return nil, fmt.Errorf("sweep point mu=%g: %w", p.Mu, err)
		}
		e, err := stats.FromEnsemble(res)
		if err != nil {
			return nil, err
		}
		points[i].Empirical = &e
		if points[i].Analytic != nil {
			c := stats.Compare(*points[i].Analytic, e)
			points[i].Comparison = &c
		}
		logrus.Infof("Sweep point %d/%d done: mu=%g rate=%g", i+1, len(points), p.Mu, e.FiringRate)
	}
	return points, nil
}

func writeSweep(w io.Writer, points []SweepPoint, format string) error {
	switch format {
	case "json":
		return writeJSON(w, points)
	case "text":
		var b strings.Builder
		fmt.Fprintln(&b, "=== Mean-drive Sweep ===")
		fmt.Fprintf(&b, "%10s %14s %10s %14s %10s\n", "mu", "rate (/ms)", "cv", "sim rate", "sim cv")
		for _, pt := range points {
			fmt.Fprintf(&b, "%10.4g ", pt.Mu)
			if pt.Analytic != nil {
				fmt.Fprintf(&b, "%14.6g %10.4f", pt.Analytic.FiringRate, pt.Analytic.CV)
			} else {
				fmt.Fprintf(&b, "%14s %10s", "n/a", "n/a")
			}
			if pt.Empirical != nil {
				fmt.Fprintf(&b, " %14.6g %10.4f", pt.Empirical.FiringRate, pt.Empirical.CV)
			}
			fmt.Fprintln(&b)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}
	return errUnknownFormat(format)
}

func init() {
	registerModelFlags(sweepCmd)
	registerSimulationFlags(sweepCmd, sweepPopulation)
	sweepCmd.Flags().Float64Var(&muFrom, "mu-from", 0, "First mean drive of the grid")
	sweepCmd.Flags().Float64Var(&muTo, "mu-to", 3, "Last mean drive of the grid")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 13, "Number of grid points")
	sweepCmd.Flags().BoolVar(&empirical, "empirical", false, "Also simulate an ensemble at every grid point")

	rootCmd.AddCommand(sweepCmd)
}
