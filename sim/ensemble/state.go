package ensemble

import "math"

// Phase is the refractory state of one realization.
type Phase int

const (
	// Integrating: drift and noise are applied every step.
	Integrating Phase = iota
	// Refractory: clamped at reset for the remaining hold steps, no integration
	// and no random draws.
	Refractory
)

func (p Phase) String() string {
	switch p {
	case Integrating:
		return "integrating"
	case Refractory:
		return "refractory"
	}
	return "unknown"
}

// NormalSource supplies standard-normal draws. *rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// Dynamics holds the per-step Euler-Maruyama coefficients of
// dv = ((μ - v)/τ) dt + σ dW/√τ.
type Dynamics struct {
	Mu              float64
	Decay           float64 // dt/τ
	NoiseScale      float64 // σ·√(dt/τ), the exact Wiener increment scale
	RefractorySteps int     // round(t_ref/dt)
}

// NewDynamics derives the step coefficients for time step dt.
func NewDynamics(mu, sigma, tau, refractory, dt float64) Dynamics {
	return Dynamics{
		Mu:              mu,
		Decay:           dt / tau,
		NoiseScale:      sigma * math.Sqrt(dt/tau),
		RefractorySteps: int(math.Round(refractory / dt)),
	}
}

// Threshold and reset potentials in the dimensionless voltage.
const (
	Threshold = 1.0
	Reset     = 0.0
)

// State is one realization's voltage and refractory countdown.
// Transitions: Integrating → Refractory on a threshold crossing (when the hold
// is at least one step), Refractory → Integrating when Remaining reaches zero.
type State struct {
	Phase     Phase
	V         float64
	Remaining int
}

// Step advances the state by one time step. It returns the voltage reached by
// the update (before any reset) and whether that crossed threshold.
// Exactly one normal draw is consumed per Integrating step.
func (s *State) Step(d Dynamics, rng NormalSource) (v float64, spiked bool) {
	if s.Phase == Refractory {
		s.Remaining--
		if s.Remaining <= 0 {
			s.Phase = Integrating
			s.Remaining = 0
		}
		return s.V, false
	}

	s.V += d.Decay*(d.Mu-s.V) + d.NoiseScale*rng.NormFloat64()
	v = s.V
	if v < Threshold {
		return v, false
	}
	s.V = Reset
	if d.RefractorySteps > 0 {
		s.Phase = Refractory
		s.Remaining = d.RefractorySteps
	}
	return v, true
}
