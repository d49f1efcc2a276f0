// Package sim provides the shared model types for comparing a stochastic
// leaky-integrate-and-fire (LIF) population against its diffusion-approximation
// firing rate and interspike-interval CV.
//
// # Reading Guide
//
// Start with these files:
//   - params.go: ModelParameters and SimulationConfig with validation
//   - result.go: AnalyticalResult, EmpiricalResult, SpikeTrain, Trajectory
//   - rng.go: PartitionedRNG, the per-realization random stream resource
//   - errors.go: the three error kinds and their typed carriers
//
// # Architecture
//
// The sim package defines types only; the two numerical cores live in
// sub-packages and never share state:
//   - sim/analytic/: adaptive Gauss-Kronrod evaluation of the rate and CV integrals
//   - sim/ensemble/: Euler-Maruyama integration of independent realizations
//   - sim/stats/: pooled ISI statistics, histograms, analytic vs empirical comparison
//
// Voltages are dimensionless (threshold 1, reset 0). All times, including
// Tau, Refractory, Duration and TimeStep, share one unit (ms by convention),
// and rates are spikes per that unit.
package sim
