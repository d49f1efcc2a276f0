package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lifsim/lifsim/sim"
)

// PooledISIs concatenates the interspike intervals of every train in
// realization order. Trains with fewer than two spikes contribute nothing.
func PooledISIs(trains []sim.SpikeTrain) []float64 {
	n := 0
	for _, t := range trains {
		if len(t.Times) > 1 {
			n += len(t.Times) - 1
		}
	}
	isis := make([]float64, 0, n)
	for _, t := range trains {
		for k := 1; k < len(t.Times); k++ {
			isis = append(isis, t.Times[k]-t.Times[k-1])
		}
	}
	return isis
}

// Empirical computes the ensemble firing rate and the CV of the pooled ISIs.
// The rate is total spikes divided by populationSize·duration. When no train
// has two spikes the CV is undefined; it is reported as 0 with ISICount 0.
func Empirical(trains []sim.SpikeTrain, populationSize int, duration float64) (sim.EmpiricalResult, error) {
	if populationSize <= 0 {
		return sim.EmpiricalResult{}, &sim.ConfigError{
			Config: sim.SimulationConfig{PopulationSize: populationSize, Duration: duration},
			Field:  "population_size", Reason: "must be positive"}
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return sim.EmpiricalResult{}, &sim.ConfigError{
			Config: sim.SimulationConfig{PopulationSize: populationSize, Duration: duration},
			Field:  "duration", Reason: "must be positive and finite"}
	}
	if len(trains) > populationSize {
		return sim.EmpiricalResult{}, fmt.Errorf("%d spike trains for population of %d: %w",
			len(trains), populationSize, sim.ErrInvalidConfig)
	}

	spikes := 0
	for _, t := range trains {
		spikes += len(t.Times)
	}
	res := sim.EmpiricalResult{
		FiringRate: float64(spikes) / (float64(populationSize) * duration),
		SpikeCount: spikes,
	}

	isis := PooledISIs(trains)
	res.ISICount = len(isis)
	if len(isis) == 0 {
		return res, nil
	}
	mean, std := stat.PopMeanStdDev(isis, nil)
	if mean > 0 {
		res.CV = std / mean
	}
	return res, nil
}

// FromEnsemble is Empirical applied to a finished run.
func FromEnsemble(r *sim.EnsembleResult) (sim.EmpiricalResult, error) {
	return Empirical(r.Trains, r.Config.PopulationSize, r.Config.Duration)
}
