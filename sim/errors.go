package sim

import (
	"errors"
	"fmt"
)

// Error kinds. Validation and solver failures match exactly one of these
// under errors.Is; cancellation surfaces the context error instead.
var (
	// ErrInvalidParameter indicates an out-of-domain μ, σ, τ or refractory value.
	ErrInvalidParameter = errors.New("lifsim: invalid model parameter")

	// ErrInvalidConfig indicates bad simulation sizing (population, duration, time step).
	ErrInvalidConfig = errors.New("lifsim: invalid simulation config")

	// ErrNumericalDivergence indicates adaptive quadrature failed to converge
	// or produced a non-finite value.
	ErrNumericalDivergence = errors.New("lifsim: numerical divergence")
)

// ParameterError reports the model parameters that failed validation.
type ParameterError struct {
	Params ModelParameters
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s %s (%s)", ErrInvalidParameter, e.Field, e.Reason, e.Params)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// ConfigError reports the simulation config that failed validation.
type ConfigError struct {
	Config SimulationConfig
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s (%s)", ErrInvalidConfig, e.Field, e.Reason, e.Config)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// DivergenceError reports a quadrature failure together with the parameters
// that caused it. Stage names the integral that failed ("rate", "cv").
type DivergenceError struct {
	Params    ModelParameters
	Stage     string
	Intervals int
	Err       error
}

func (e *DivergenceError) Error() string {
	msg := fmt.Sprintf("%v: %s integral after %d intervals (%s)", ErrNumericalDivergence, e.Stage, e.Intervals, e.Params)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrNumericalDivergence) hold while Unwrap still
// exposes the underlying quadrature error.
func (e *DivergenceError) Is(target error) bool {
	return target == ErrNumericalDivergence
}

func (e *DivergenceError) Unwrap() error {
	return e.Err
}
