package ensemble

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lifsim/lifsim/sim"
)

// cancelCheckEvery is how many steps a realization runs between context checks.
const cancelCheckEvery = 1024

// Simulator runs one validated ensemble. Realizations never interact; each
// draws from its own stream derived from the seed and its index, so the result
// does not depend on the number of workers.
type Simulator struct {
	params   sim.ModelParameters
	config   sim.SimulationConfig
	rng      *sim.PartitionedRNG
	dynamics Dynamics
	steps    int

	traceCount int
	traceSteps int
}

// NewSimulator validates p and cfg together and prepares a run.
func NewSimulator(p sim.ModelParameters, cfg sim.SimulationConfig) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Refractory > 0 && cfg.TimeStep >= p.Refractory:
		return nil, &sim.ConfigError{Config: cfg, Field: "time_step",
			Reason: fmt.Sprintf("must be smaller than refractory %g", p.Refractory)}
	case p.Refractory == 0:
		logrus.Warnf("refractory period is 0; spikes reset without a hold (dt=%g)", cfg.TimeStep)
	}
	if cfg.TimeStep > p.Tau/10 {
		logrus.Warnf("time step %g is not much smaller than tau %g; Euler integration may be inaccurate", cfg.TimeStep, p.Tau)
	}

	s := &Simulator{
		params:   p,
		config:   cfg,
		rng:      sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
		dynamics: NewDynamics(p.Mu, p.Sigma, p.Tau, p.Refractory, cfg.TimeStep),
		steps:    cfg.Steps(),
	}
	s.traceCount = min(cfg.TraceCount, cfg.PopulationSize)
	s.traceSteps = s.steps
	if cfg.TraceWindow < cfg.Duration {
		s.traceSteps = min(int(math.Round(cfg.TraceWindow/cfg.TimeStep)), s.steps)
	}
	if s.traceSteps == 0 {
		s.traceCount = 0
	}
	return s, nil
}

// Run validates and runs an ensemble in one call.
func Run(ctx context.Context, p sim.ModelParameters, cfg sim.SimulationConfig) (*sim.EnsembleResult, error) {
	s, err := NewSimulator(p, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// Dynamics returns the per-step coefficients used by the run.
func (s *Simulator) Dynamics() Dynamics {
	return s.dynamics
}

// Run integrates every realization for the configured duration and returns
// one spike train per realization plus the sampled voltage traces.
// Realizations are split into disjoint contiguous blocks, one per worker.
// Any error aborts the whole ensemble; no partial result is returned.
func (s *Simulator) Run(ctx context.Context) (*sim.EnsembleResult, error) {
	n := s.config.PopulationSize
	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, n)
	block := (n + workers - 1) / workers

	logrus.Debugf("ensemble %s %s: %d steps, refractory hold %d steps, %d workers",
		s.params, s.config, s.steps, s.dynamics.RefractorySteps, workers)
	start := time.Now()

	trains := make([]sim.SpikeTrain, n)
	traces := make([]sim.Trajectory, s.traceCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += block {
		hi := min(lo+block, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				var trace []float64
				if i < s.traceCount {
					trace = make([]float64, 0, s.traceSteps)
				}
				times, trace, err := s.runRealization(gctx, i, trace)
				if err != nil {
					return err
				}
				trains[i] = sim.SpikeTrain{Realization: i, Times: times}
				if i < s.traceCount {
					traces[i] = sim.Trajectory{Realization: i, TimeStep: s.config.TimeStep, Samples: trace}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ensemble aborted: %w", err)
	}

	result := &sim.EnsembleResult{
		Params:          s.params,
		Config:          s.config,
		Trains:          trains,
		Traces:          traces,
		Steps:           s.steps,
		RefractorySteps: s.dynamics.RefractorySteps,
	}
	logrus.Debugf("ensemble finished: %d spikes in %v", result.TotalSpikes(), time.Since(start))
	return result, nil
}

// runRealization integrates realization i from reset. When trace is non-nil
// the voltage after each of the first traceSteps steps is appended to it.
func (s *Simulator) runRealization(ctx context.Context, i int, trace []float64) ([]float64, []float64, error) {
	rng := s.rng.ForRealization(i)
	dt := s.config.TimeStep
	state := State{Phase: Integrating, V: Reset}
	times := []float64{}

	for k := 0; k < s.steps; k++ {
		if k%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, fmt.Errorf("realization %d at step %d: %w", i, k, err)
			}
		}
		v, spiked := state.Step(s.dynamics, rng)
		if spiked {
			// spike time snapped to the end of the step that crossed threshold
			times = append(times, float64(k+1)*dt)
		}
		if trace != nil && k < s.traceSteps {
			trace = append(trace, v)
		}
	}
	return times, trace, nil
}
