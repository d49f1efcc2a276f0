package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lifsim/lifsim/sim"
	"github.com/lifsim/lifsim/sim/analytic"
)

// AnalyticReport is what `lifsim analytic` prints. NoiselessRate is set for
// suprathreshold drive only.
type AnalyticReport struct {
	Params        sim.ModelParameters  `json:"params"`
	Analytic      sim.AnalyticalResult `json:"analytic"`
	NoiselessRate *float64             `json:"noiseless_rate,omitempty"`
}

// analyticCmd prints the diffusion-approximation rate and CV without simulating
var analyticCmd = &cobra.Command{
	Use:   "analytic",
	Short: "Evaluate the analytical firing rate and ISI CV",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := resolveRunSpec(cmd)
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}
		report, err := executeAnalytic(spec)
		if err != nil {
			logrus.Fatalf("Analytical evaluation failed: %v", err)
		}
		if err := writeAnalyticReport(cmd.OutOrStdout(), report, outputFormat); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
	},
}

func executeAnalytic(spec *sim.RunSpec) (*AnalyticReport, error) {
	p := spec.Params()
	a, err := analytic.NewSolverFromSpec(spec.Solver).ComputeRateAndCV(p)
	if err != nil {
		return nil, err
	}
	report := &AnalyticReport{Params: p, Analytic: a}
	if p.Mu > 1 {
		r, err := analytic.NoiselessRate(p)
		if err != nil {
			return nil, err
		}
		report.NoiselessRate = &r
	}
	return report, nil
}

func writeAnalyticReport(w io.Writer, r *AnalyticReport, format string) error {
	switch format {
	case "json":
		return writeJSON(w, r)
	case "text":
		var b strings.Builder
		fmt.Fprintln(&b, "=== Parameters ===")
		fmt.Fprintln(&b, r.Params)
		fmt.Fprintln(&b, "\n=== Analytical (diffusion approximation) ===")
		writeRateCV(&b, r.Analytic)
		if r.NoiselessRate != nil {
			fmt.Fprintf(&b, "Noiseless rate       : %s\n", formatRate(*r.NoiselessRate))
		}
		_, err := io.WriteString(w, b.String())
		return err
	}
	return errUnknownFormat(format)
}

func init() {
	registerModelFlags(analyticCmd)
	rootCmd.AddCommand(analyticCmd)
}
