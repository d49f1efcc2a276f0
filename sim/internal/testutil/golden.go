// Package testutil provides shared test infrastructure for lifsim.
// It consolidates the golden baseline types and assertion helpers used across
// the sim/analytic, sim/ensemble and sim/stats test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/lifsim/lifsim/sim"
)

// GoldenBaseline represents the structure of testdata/goldenbaseline.json.
type GoldenBaseline struct {
	Description string                `json:"description"`
	Analytic    []GoldenAnalyticCase  `json:"analytic"`
	Empirical   []GoldenEmpiricalCase `json:"empirical"`
}

// GoldenAnalyticCase is one frozen analytical evaluation.
type GoldenAnalyticCase struct {
	Name           string  `json:"name"`
	Mu             float64 `json:"mu"`
	Sigma          float64 `json:"sigma"`
	Tau            float64 `json:"tau"`
	Refractory     float64 `json:"refractory"`
	FiringRate     float64 `json:"firing_rate"`
	CV             float64 `json:"cv"`
	BaseFiringRate float64 `json:"base_firing_rate"`
	BaseCV         float64 `json:"base_cv"`
}

// Params returns the model parameters of the case.
func (c GoldenAnalyticCase) Params() sim.ModelParameters {
	return sim.ModelParameters{Mu: c.Mu, Sigma: c.Sigma, Tau: c.Tau, Refractory: c.Refractory}
}

// GoldenEmpiricalCase is an ensemble run whose statistics must stay within
// relative bounds of the matching analytic case.
type GoldenEmpiricalCase struct {
	Name           string  `json:"name"`
	Mu             float64 `json:"mu"`
	Sigma          float64 `json:"sigma"`
	Tau            float64 `json:"tau"`
	Refractory     float64 `json:"refractory"`
	PopulationSize int     `json:"population_size"`
	Duration       float64 `json:"duration"`
	TimeStep       float64 `json:"time_step"`
	Seed           int64   `json:"seed"`
	RateRelTol     float64 `json:"rate_rel_tol"`
	CVRelTol       float64 `json:"cv_rel_tol"`
}

// Params returns the model parameters of the case.
func (c GoldenEmpiricalCase) Params() sim.ModelParameters {
	return sim.ModelParameters{Mu: c.Mu, Sigma: c.Sigma, Tau: c.Tau, Refractory: c.Refractory}
}

// Config returns the simulation config of the case, with traces disabled.
func (c GoldenEmpiricalCase) Config() sim.SimulationConfig {
	return sim.SimulationConfig{
		PopulationSize: c.PopulationSize,
		Duration:       c.Duration,
		TimeStep:       c.TimeStep,
		Seed:           c.Seed,
	}
}

// LoadGoldenBaseline loads the golden baseline from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenBaseline(t *testing.T) *GoldenBaseline {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldenbaseline.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden baseline: %v", err)
	}

	var baseline GoldenBaseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		t.Fatalf("Failed to parse golden baseline: %v", err)
	}
	return &baseline
}

// AnalyticCase returns the named analytic case or fails the test.
func (g *GoldenBaseline) AnalyticCase(t *testing.T, name string) GoldenAnalyticCase {
	t.Helper()
	for _, c := range g.Analytic {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("golden analytic case %q not found", name)
	return GoldenAnalyticCase{}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// RelDiff returns |a-b| / |b|.
func RelDiff(a, b float64) float64 {
	return math.Abs(a-b) / math.Abs(b)
}
