package sim

import (
	"fmt"
	"math"
)

// ModelParameters describes one LIF population. Voltages are dimensionless
// (threshold 1, reset 0); Tau and Refractory share the simulation time unit (ms).
// Values are passed by copy and never mutated after construction.
type ModelParameters struct {
	Mu         float64 `json:"mu"`         // mean drive relative to threshold
	Sigma      float64 `json:"sigma"`      // input noise standard deviation (>= 0)
	Tau        float64 `json:"tau"`        // membrane time constant (> 0)
	Refractory float64 `json:"refractory"` // absolute refractory period (>= 0)
}

// DefaultModelParameters returns the default slider positions.
func DefaultModelParameters() ModelParameters {
	return ModelParameters{Mu: 1.5, Sigma: 0.5, Tau: 10, Refractory: 0.1}
}

func (p ModelParameters) String() string {
	return fmt.Sprintf("mu=%g sigma=%g tau=%g refractory=%g", p.Mu, p.Sigma, p.Tau, p.Refractory)
}

// Validate checks the domain shared by the simulator and the solver.
// Sigma == 0 is allowed here (a noiseless simulation is well defined);
// the analytical solver rejects it separately.
func (p ModelParameters) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"mu", p.Mu}, {"sigma", p.Sigma}, {"tau", p.Tau}, {"refractory", p.Refractory}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ParameterError{Params: p, Field: f.name, Reason: "must be finite"}
		}
	}
	if p.Sigma < 0 {
		return &ParameterError{Params: p, Field: "sigma", Reason: "must be >= 0"}
	}
	if p.Tau <= 0 {
		return &ParameterError{Params: p, Field: "tau", Reason: "must be > 0"}
	}
	if p.Refractory < 0 {
		return &ParameterError{Params: p, Field: "refractory", Reason: "must be >= 0"}
	}
	return nil
}

// SimulationConfig sizes an ensemble run.
type SimulationConfig struct {
	PopulationSize int     `json:"population_size"` // number of independent realizations (> 0)
	Duration       float64 `json:"duration"`        // simulated time per realization (> 0)
	TimeStep       float64 `json:"time_step"`       // Euler step (> 0, must be << Tau)
	TraceCount     int     `json:"trace_count"`     // realizations whose voltage is sampled for display
	TraceWindow    float64 `json:"trace_window"`    // length of each sampled voltage trace
	Workers        int     `json:"workers"`         // max concurrent workers; 0 = GOMAXPROCS
	Seed           int64   `json:"seed"`            // keys the per-realization random streams
}

// DefaultSimulationConfig returns the regression-baseline sizing.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		PopulationSize: 1000,
		Duration:       1000,
		TimeStep:       0.05,
		TraceCount:     5,
		TraceWindow:    100,
		Seed:           42,
	}
}

func (c SimulationConfig) String() string {
	return fmt.Sprintf("population=%d duration=%g dt=%g", c.PopulationSize, c.Duration, c.TimeStep)
}

// Validate checks the sizing on its own. Validation against the refractory
// period lives in the ensemble package, which knows both values.
func (c SimulationConfig) Validate() error {
	if c.PopulationSize <= 0 {
		return &ConfigError{Config: c, Field: "population_size", Reason: "must be > 0"}
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return &ConfigError{Config: c, Field: "duration", Reason: "must be finite and > 0"}
	}
	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0) {
		return &ConfigError{Config: c, Field: "time_step", Reason: "must be finite and > 0"}
	}
	if c.TimeStep > c.Duration {
		return &ConfigError{Config: c, Field: "time_step", Reason: "must not exceed duration"}
	}
	if c.TraceCount < 0 {
		return &ConfigError{Config: c, Field: "trace_count", Reason: "must be >= 0"}
	}
	if c.TraceWindow < 0 || math.IsNaN(c.TraceWindow) {
		return &ConfigError{Config: c, Field: "trace_window", Reason: "must be >= 0"}
	}
	if c.Workers < 0 {
		return &ConfigError{Config: c, Field: "workers", Reason: "must be >= 0"}
	}
	return nil
}

// Steps returns the number of Euler steps covering Duration.
func (c SimulationConfig) Steps() int {
	return int(math.Round(c.Duration / c.TimeStep))
}
