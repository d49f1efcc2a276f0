package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifsim/lifsim/sim"
)

// newTestCommand returns a command with fresh run flags bound to the package
// variables, so no flag starts out Changed.
func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	registerModelFlags(c)
	registerSimulationFlags(c, sim.DefaultSimulationConfig().PopulationSize)
	c.Flags().IntVar(&traceCount, "trace-count", 5, "")
	c.Flags().Float64Var(&traceWindow, "trace-window", 100, "")
	presetsPath = filepath.Join("..", "presets.yaml")
	return c
}

func setFlags(t *testing.T, c *cobra.Command, kv ...string) {
	t.Helper()
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, c.Flags().Set(kv[i], kv[i+1]))
	}
}

func TestResolveRunSpec_DefaultsWhenNothingChanged(t *testing.T) {
	c := newTestCommand(t)
	spec, err := resolveRunSpec(c)
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultRunSpec(), spec)
}

func TestResolveRunSpec_ChangedFlagsOverrideSpecFile(t *testing.T) {
	// GIVEN a run spec on disk
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: "1"
seed: 9
model: {mu: 2.0, sigma: 0.3}
simulation: {population_size: 50}
`), 0o644))
	c := newTestCommand(t)

	// WHEN only --sigma and --dt are set explicitly
	setFlags(t, c, "spec", path, "sigma", "0.8", "dt", "0.02")
	spec, err := resolveRunSpec(c)
	require.NoError(t, err)

	// THEN the explicit flags win and everything else comes from the file
	assert.Equal(t, 2.0, spec.Model.Mu)
	assert.Equal(t, 0.8, spec.Model.Sigma)
	assert.Equal(t, 0.02, spec.Simulation.TimeStep)
	assert.Equal(t, 50, spec.Simulation.PopulationSize)
	assert.Equal(t, int64(9), spec.Seed)
	// AND unchanged flag defaults do not clobber file values
	assert.Equal(t, 10.0, spec.Model.Tau)
}

func TestResolveRunSpec_PresetThenFlags(t *testing.T) {
	c := newTestCommand(t)
	setFlags(t, c, "preset", "high-noise", "refractory", "1", "seed", "5", "trace-count", "2")

	spec, err := resolveRunSpec(c)
	require.NoError(t, err)
	assert.Equal(t, sim.ModelSpec{Mu: 1.5, Sigma: 2, Tau: 10, Refractory: 1}, spec.Model)
	assert.Equal(t, int64(5), spec.Seed)
	assert.Equal(t, 2, spec.Simulation.TraceCount)
}

func TestResolveRunSpec_Errors(t *testing.T) {
	tests := []struct {
		name string
		kv   []string
		kind error
	}{
		{"negative tau", []string{"tau", "-1"}, sim.ErrInvalidParameter},
		{"zero population", []string{"population", "0"}, sim.ErrInvalidConfig},
		{"unknown preset", []string{"preset", "nope"}, nil},
		{"missing spec file", []string{"spec", "does-not-exist.yaml"}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCommand(t)
			setFlags(t, c, tt.kv...)
			_, err := resolveRunSpec(c)
			require.Error(t, err)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
		})
	}
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("error"))
	assert.Error(t, setupLogging("loud"))
}
