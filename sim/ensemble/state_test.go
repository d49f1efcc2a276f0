package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource returns a fixed draw and counts calls.
type countingSource struct {
	value float64
	calls int
}

func (c *countingSource) NormFloat64() float64 {
	c.calls++
	return c.value
}

func TestNewDynamics(t *testing.T) {
	d := NewDynamics(1.5, 0.5, 10, 0.1, 0.05)
	assert.Equal(t, 1.5, d.Mu)
	assert.InEpsilon(t, 0.005, d.Decay, 1e-15)
	assert.InEpsilon(t, 0.5*math.Sqrt(0.005), d.NoiseScale, 1e-15)
	assert.Equal(t, 2, d.RefractorySteps)

	// hold rounds to the nearest whole step
	assert.Equal(t, 3, NewDynamics(1, 1, 10, 0.14, 0.05).RefractorySteps)
	assert.Equal(t, 0, NewDynamics(1, 1, 10, 0, 0.05).RefractorySteps)
}

func TestState_DriftAndNoise(t *testing.T) {
	d := NewDynamics(1.5, 0.5, 10, 0.1, 0.05)
	src := &countingSource{value: 2}
	s := State{Phase: Integrating, V: 0.2}

	v, spiked := s.Step(d, src)

	want := 0.2 + 0.005*(1.5-0.2) + 0.5*math.Sqrt(0.005)*2
	assert.False(t, spiked)
	assert.InEpsilon(t, want, v, 1e-15)
	assert.Equal(t, v, s.V)
	assert.Equal(t, 1, src.calls)
}

func TestState_SpikeResetAndRefractoryHold(t *testing.T) {
	// GIVEN a realization just below threshold and a hold of two steps
	d := Dynamics{Mu: 3, Decay: 0.5, RefractorySteps: 2}
	src := &countingSource{}
	s := State{Phase: Integrating, V: 0.999}

	// WHEN the update crosses threshold
	v, spiked := s.Step(d, src)

	// THEN the crossing voltage is returned and the state resets into refractory
	require.True(t, spiked)
	assert.GreaterOrEqual(t, v, Threshold)
	assert.Equal(t, Reset, s.V)
	assert.Equal(t, Refractory, s.Phase)
	assert.Equal(t, 2, s.Remaining)
	assert.Equal(t, 1, src.calls)

	// AND the hold steps are clamped at reset without consuming draws
	for i := 0; i < 2; i++ {
		v, spiked = s.Step(d, src)
		assert.False(t, spiked)
		assert.Equal(t, Reset, v)
	}
	assert.Equal(t, Integrating, s.Phase)
	assert.Equal(t, 0, s.Remaining)
	assert.Equal(t, 1, src.calls)

	// AND integration resumes on the next step
	v, _ = s.Step(d, src)
	assert.InEpsilon(t, 1.5, v, 1e-15)
	assert.Equal(t, 2, src.calls)
}

func TestState_NoHoldWithZeroRefractory(t *testing.T) {
	d := Dynamics{Mu: 3, Decay: 0.5}
	s := State{Phase: Integrating, V: 0.9}

	_, spiked := s.Step(d, &countingSource{})

	assert.True(t, spiked)
	assert.Equal(t, Integrating, s.Phase)
	assert.Equal(t, Reset, s.V)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "integrating", Integrating.String())
	assert.Equal(t, "refractory", Refractory.String())
	assert.Equal(t, "unknown", Phase(7).String())
}
