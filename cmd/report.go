package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lifsim/lifsim/sim"
	"github.com/lifsim/lifsim/sim/stats"
)

// histogramBarWidth is the length of the longest histogram bar in text output.
const histogramBarWidth = 40

// RunReport is everything `lifsim run` prints.
// Analytic and Comparison are nil when the prediction is undefined.
type RunReport struct {
	Params     sim.ModelParameters   `json:"params"`
	Config     sim.SimulationConfig  `json:"config"`
	Analytic   *sim.AnalyticalResult `json:"analytic,omitempty"`
	Empirical  sim.EmpiricalResult   `json:"empirical"`
	Comparison *stats.Comparison     `json:"comparison,omitempty"`
	Histogram  stats.Histogram       `json:"isi_histogram"`
	Raster     []sim.SpikeTrain      `json:"raster,omitempty"`
	Traces     []sim.Trajectory      `json:"traces,omitempty"`
}

func errUnknownFormat(format string) error {
	return fmt.Errorf("unknown output format %q; valid: text, json", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteText prints the report as "=== Section ===" blocks.
func (r *RunReport) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, "=== Parameters ===")
	fmt.Fprintf(&b, "%s\n%s seed=%d\n", r.Params, r.Config, r.Config.Seed)

	if r.Analytic != nil {
		fmt.Fprintln(&b, "\n=== Analytical (diffusion approximation) ===")
		writeRateCV(&b, *r.Analytic)
	}

	fmt.Fprintln(&b, "\n=== Ensemble ===")
	fmt.Fprintf(&b, "Firing Rate          : %s\n", formatRate(r.Empirical.FiringRate))
	fmt.Fprintf(&b, "CV                   : %.4f\n", r.Empirical.CV)
	fmt.Fprintf(&b, "Spikes               : %d\n", r.Empirical.SpikeCount)
	fmt.Fprintf(&b, "Pooled ISIs          : %d\n", r.Empirical.ISICount)

	if r.Comparison != nil {
		fmt.Fprintln(&b, "\n=== Comparison ===")
		fmt.Fprintf(&b, "Rate relative error  : %+.2f%%\n", 100*r.Comparison.RateRelErr)
		fmt.Fprintf(&b, "CV relative error    : %+.2f%%\n", 100*r.Comparison.CVRelErr)
	}

	fmt.Fprintln(&b, "\n=== ISI Histogram ===")
	writeHistogram(&b, r.Histogram)

	if len(r.Traces) > 0 {
		fmt.Fprintln(&b, "\n=== Traces ===")
		for i, tr := range r.Traces {
			var spikes []float64
			if i < len(r.Raster) {
				spikes = r.Raster[i].Times
			}
			writeTrace(&b, tr, spikes)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRateCV(b *strings.Builder, a sim.AnalyticalResult) {
	fmt.Fprintf(b, "Firing Rate          : %s\n", formatRate(a.FiringRate))
	fmt.Fprintf(b, "CV                   : %.4f\n", a.CV)
	fmt.Fprintf(b, "Rate w/o refractory  : %s\n", formatRate(a.BaseFiringRate))
	fmt.Fprintf(b, "CV w/o refractory    : %.4f\n", a.BaseCV)
}

// formatRate prints a per-ms rate together with its value in Hz.
func formatRate(perMs float64) string {
	return fmt.Sprintf("%.6g /ms (%.2f Hz)", perMs, 1000*perMs)
}

func writeHistogram(b *strings.Builder, h stats.Histogram) {
	if h.Total() == 0 {
		fmt.Fprintln(b, "(no intervals)")
		return
	}
	peak := floats.Max(h.Counts)
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(histogramBarWidth * c / peak))
		}
		fmt.Fprintf(b, "[%8.3f, %8.3f) %8d %s\n", h.Edges[i], h.Edges[i+1], int(c), strings.Repeat("#", bar))
	}
	if h.Overflow > 0 {
		fmt.Fprintf(b, "overflow             : %d\n", h.Overflow)
	}
}

func writeTrace(b *strings.Builder, tr sim.Trajectory, spikes []float64) {
	if len(tr.Samples) == 0 {
		return
	}
	window := float64(len(tr.Samples)) * tr.TimeStep
	fmt.Fprintf(b, "realization %d: %d samples over %g ms, v in [%.3f, %.3f], mean %.3f\n",
		tr.Realization, len(tr.Samples), window,
		floats.Min(tr.Samples), floats.Max(tr.Samples), stat.Mean(tr.Samples, nil))
	times := make([]string, len(spikes))
	for i, t := range spikes {
		times[i] = fmt.Sprintf("%g", t)
	}
	fmt.Fprintf(b, "  spikes: [%s]\n", strings.Join(times, " "))
}
