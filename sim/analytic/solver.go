package analytic

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/lifsim/lifsim/sim"
)

// ErrRateUnderflow is wrapped when the base firing rate is too small to be
// represented as a positive float64.
var ErrRateUnderflow = errors.New("base firing rate underflows float64")

// Solver evaluates the diffusion-approximation firing rate and CV.
//
// Both integrands are evaluated pre-scaled by exp(-s) (rate) and exp(-2s) (CV)
// with s = max(upper, 0)². The factor cancels in the CV and is restored in the
// base rate. This keeps strongly sub-threshold, low-noise inputs finite.
type Solver struct {
	RelTol      float64 // outer integrals
	InnerRelTol float64 // inner integral J(x), evaluated per outer node
	// InnerCutoff stands in for -∞ as the lower limit of J(x): the inner
	// integral runs from min(x, 0) - InnerCutoff. The integrand decays like
	// exp(-y²) below zero, so 20 is far beyond double precision.
	InnerCutoff  float64
	MaxIntervals int // per integral
}

// NewSolver returns a Solver with the default tolerances.
func NewSolver() *Solver {
	return &Solver{
		RelTol:       sim.DefaultRelTol,
		InnerRelTol:  sim.DefaultInnerRelTol,
		InnerCutoff:  sim.DefaultInnerCutoff,
		MaxIntervals: sim.DefaultMaxIntervals,
	}
}

// NewSolverFromSpec returns a Solver configured from a run spec.
func NewSolverFromSpec(spec sim.SolverSpec) *Solver {
	return &Solver{
		RelTol:       spec.RelTol,
		InnerRelTol:  spec.InnerRelTol,
		InnerCutoff:  spec.InnerCutoff,
		MaxIntervals: spec.MaxIntervals,
	}
}

// ComputeRateAndCV evaluates p with the default Solver.
func ComputeRateAndCV(p sim.ModelParameters) (sim.AnalyticalResult, error) {
	return NewSolver().ComputeRateAndCV(p)
}

// ComputeRateAndCV returns the firing rate and CV predicted for p, with and
// without the refractory correction.
func (s *Solver) ComputeRateAndCV(p sim.ModelParameters) (sim.AnalyticalResult, error) {
	if err := p.Validate(); err != nil {
		return sim.AnalyticalResult{}, err
	}
	if p.Sigma <= 0 {
		return sim.AnalyticalResult{}, &sim.ParameterError{Params: p, Field: "sigma", Reason: "must be > 0 for the diffusion approximation"}
	}

	lower := -p.Mu / p.Sigma
	upper := (1 - p.Mu) / p.Sigma
	shift := math.Max(upper, 0)
	shift *= shift

	outer := Options{RelTol: s.RelTol, MaxIntervals: s.MaxIntervals}

	// I1 = ∫ e^{x²}(1+erf x) dx, scaled by e^{-shift}
	i1, err := Integrate(func(x float64) float64 { return rateIntegrand(x, shift) }, lower, upper, outer)
	if err != nil {
		return sim.AnalyticalResult{}, &sim.DivergenceError{Params: p, Stage: "rate", Intervals: i1.Intervals, Err: err}
	}
	if !(i1.Value > 0) {
		return sim.AnalyticalResult{}, &sim.DivergenceError{Params: p, Stage: "rate", Intervals: i1.Intervals,
			Err: fmt.Errorf("non-positive integral %g", i1.Value)}
	}

	// C = ∫ e^{x²} J(x) dx, scaled by e^{-2·shift}; J is re-integrated per node
	var innerErr error
	var innerIntervals int
	inner := Options{RelTol: s.InnerRelTol, MaxIntervals: s.MaxIntervals}
	cvIntegrand := func(x float64) float64 {
		if innerErr != nil {
			return math.NaN()
		}
		j, err := Integrate(func(y float64) float64 { return cvInnerIntegrand(x, y, shift) }, math.Min(x, 0)-s.InnerCutoff, x, inner)
		if err != nil {
			innerErr = fmt.Errorf("inner integral at x=%g: %w", x, err)
			innerIntervals = j.Intervals
			return math.NaN()
		}
		return j.Value
	}
	c, err := Integrate(cvIntegrand, lower, upper, outer)
	if innerErr != nil {
		return sim.AnalyticalResult{}, &sim.DivergenceError{Params: p, Stage: "cv-inner", Intervals: innerIntervals, Err: innerErr}
	}
	if err != nil {
		return sim.AnalyticalResult{}, &sim.DivergenceError{Params: p, Stage: "cv", Intervals: c.Intervals, Err: err}
	}

	// rate0 and cv0 on the scaled integrals; cv0² = 2π τ² rate0² C is scale-free
	scaledRate0 := 1 / (p.Tau * math.SqrtPi * i1.Value)
	cv0sq := 2 * math.Pi * p.Tau * p.Tau * scaledRate0 * scaledRate0 * c.Value
	cv0 := math.Sqrt(math.Max(cv0sq, 0))
	rate0 := scaledRate0 * math.Exp(-shift)
	if rate0 == 0 || !finite(rate0) || !finite(cv0) {
		return sim.AnalyticalResult{}, &sim.DivergenceError{Params: p, Stage: "rate", Intervals: i1.Intervals,
			Err: fmt.Errorf("rate0=%g cv0=%g: %w", rate0, cv0, ErrRateUnderflow)}
	}

	rate := 1 / (1/rate0 + p.Refractory)
	cv := cv0 * rate / rate0

	logrus.Debugf("analytic %s: rate0=%.6g cv0=%.6g rate=%.6g cv=%.6g (intervals rate=%d cv=%d)",
		p, rate0, cv0, rate, cv, i1.Intervals, c.Intervals)

	return sim.AnalyticalResult{
		FiringRate:     rate,
		CV:             cv,
		BaseFiringRate: rate0,
		BaseCV:         cv0,
	}, nil
}

// rateIntegrand returns e^{x²}(1+erf x)·e^{-shift}.
func rateIntegrand(x, shift float64) float64 {
	if x >= 0 {
		return math.Exp(x*x-shift) * math.Erfc(-x)
	}
	return Erfcx(-x) * math.Exp(-shift)
}

// cvInnerIntegrand returns e^{x²}·e^{y²}(1+erf y)²·e^{-2·shift}, written so
// that no intermediate overflows for y <= x <= upper.
func cvInnerIntegrand(x, y, shift float64) float64 {
	if y >= 0 {
		e := math.Erfc(-y)
		return math.Exp(x*x+y*y-2*shift) * e * e
	}
	g := Erfcx(-y)
	return math.Exp(x*x-y*y-2*shift) * g * g
}

// NoiselessRate returns the deterministic LIF rate 1/(τ ln(μ/(μ-1)) + t_ref),
// the σ → 0 limit of the diffusion approximation. Defined only for μ > 1.
func NoiselessRate(p sim.ModelParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.Mu <= 1 {
		return 0, &sim.ParameterError{Params: p, Field: "mu", Reason: "must be > 1 for deterministic firing"}
	}
	return 1 / (p.Tau*math.Log(p.Mu/(p.Mu-1)) + p.Refractory), nil
}
