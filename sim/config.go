package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RunSpec is the YAML form of one comparison run.
// Loaded via LoadRunSpec(path); unset sections keep their defaults.
type RunSpec struct {
	Version    string         `yaml:"version"`
	Seed       int64          `yaml:"seed"`
	Model      ModelSpec      `yaml:"model"`
	Simulation SimulationSpec `yaml:"simulation"`
	Solver     SolverSpec     `yaml:"solver"`
}

// ModelSpec mirrors ModelParameters.
type ModelSpec struct {
	Mu         float64 `yaml:"mu" json:"mu"`
	Sigma      float64 `yaml:"sigma" json:"sigma"`
	Tau        float64 `yaml:"tau" json:"tau"`
	Refractory float64 `yaml:"refractory" json:"refractory"`
}

// SimulationSpec mirrors SimulationConfig (seed lives at the top level).
type SimulationSpec struct {
	PopulationSize int     `yaml:"population_size"`
	Duration       float64 `yaml:"duration"`
	TimeStep       float64 `yaml:"time_step"`
	TraceCount     int     `yaml:"trace_count"`
	TraceWindow    float64 `yaml:"trace_window"`
	Workers        int     `yaml:"workers"`
}

// SolverSpec carries quadrature settings for the analytical solver.
type SolverSpec struct {
	RelTol       float64 `yaml:"rel_tol"`
	InnerRelTol  float64 `yaml:"inner_rel_tol"`
	InnerCutoff  float64 `yaml:"inner_cutoff"`
	MaxIntervals int     `yaml:"max_intervals"`
}

// Default quadrature settings.
const (
	DefaultRelTol       = 1e-8
	DefaultInnerRelTol  = 1e-10
	DefaultInnerCutoff  = 20.0
	DefaultMaxIntervals = 2000
)

// DefaultRunSpec returns the regression-baseline run.
func DefaultRunSpec() *RunSpec {
	p := DefaultModelParameters()
	c := DefaultSimulationConfig()
	return &RunSpec{
		Version: "1",
		Seed:    c.Seed,
		Model:   ModelSpec{Mu: p.Mu, Sigma: p.Sigma, Tau: p.Tau, Refractory: p.Refractory},
		Simulation: SimulationSpec{
			PopulationSize: c.PopulationSize,
			Duration:       c.Duration,
			TimeStep:       c.TimeStep,
			TraceCount:     c.TraceCount,
			TraceWindow:    c.TraceWindow,
			Workers:        c.Workers,
		},
		Solver: SolverSpec{
			RelTol:       DefaultRelTol,
			InnerRelTol:  DefaultInnerRelTol,
			InnerCutoff:  DefaultInnerCutoff,
			MaxIntervals: DefaultMaxIntervals,
		},
	}
}

// LoadRunSpec reads and parses a YAML run spec on top of DefaultRunSpec.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadRunSpec(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run spec: %w", err)
	}
	return ParseRunSpec(data)
}

// ParseRunSpec decodes YAML bytes on top of DefaultRunSpec.
func ParseRunSpec(data []byte) (*RunSpec, error) {
	spec := DefaultRunSpec()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing run spec: %w", err)
	}
	if spec.Version != "1" {
		return nil, fmt.Errorf("unsupported run spec version %q; valid: 1", spec.Version)
	}
	return spec, nil
}

// Params returns the model parameters described by the run spec.
func (s *RunSpec) Params() ModelParameters {
	return s.Model.Params()
}

// Params converts the YAML form to ModelParameters.
func (m ModelSpec) Params() ModelParameters {
	return ModelParameters{Mu: m.Mu, Sigma: m.Sigma, Tau: m.Tau, Refractory: m.Refractory}
}

// Config returns the simulation config described by the run spec.
func (s *RunSpec) Config() SimulationConfig {
	return SimulationConfig{
		PopulationSize: s.Simulation.PopulationSize,
		Duration:       s.Simulation.Duration,
		TimeStep:       s.Simulation.TimeStep,
		TraceCount:     s.Simulation.TraceCount,
		TraceWindow:    s.Simulation.TraceWindow,
		Workers:        s.Simulation.Workers,
		Seed:           s.Seed,
	}
}

// Validate checks the model, the simulation sizing and the solver settings.
func (s *RunSpec) Validate() error {
	if err := s.Params().Validate(); err != nil {
		return err
	}
	if err := s.Config().Validate(); err != nil {
		return err
	}
	if !(s.Solver.RelTol > 0) || !(s.Solver.InnerRelTol > 0) {
		return fmt.Errorf("solver tolerances must be positive, got rel_tol=%g inner_rel_tol=%g", s.Solver.RelTol, s.Solver.InnerRelTol)
	}
	if !(s.Solver.InnerCutoff > 0) {
		return fmt.Errorf("solver inner_cutoff must be positive, got %g", s.Solver.InnerCutoff)
	}
	if s.Solver.MaxIntervals <= 0 {
		return fmt.Errorf("solver max_intervals must be positive, got %d", s.Solver.MaxIntervals)
	}
	return nil
}
