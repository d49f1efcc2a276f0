package sim

// AnalyticalResult holds the diffusion-approximation prediction with the
// refractory correction applied (FiringRate, CV) and without it
// (BaseFiringRate, BaseCV). Rates are spikes per time unit.
type AnalyticalResult struct {
	FiringRate     float64 `json:"firing_rate"`
	CV             float64 `json:"cv"`
	BaseFiringRate float64 `json:"base_firing_rate"`
	BaseCV         float64 `json:"base_cv"`
}

// EmpiricalResult holds statistics estimated from an ensemble run.
// CV is computed over ISIs pooled across all realizations; it is 0 when
// ISICount is 0.
type EmpiricalResult struct {
	FiringRate float64 `json:"firing_rate"`
	CV         float64 `json:"cv"`
	SpikeCount int     `json:"spike_count"`
	ISICount   int     `json:"isi_count"`
}

// SpikeTrain is the ordered spike times of one realization.
type SpikeTrain struct {
	Realization int       `json:"realization"`
	Times       []float64 `json:"times"`
}

// Trajectory is a bounded voltage trace of one realization, sampled once per
// step starting at t = TimeStep.
type Trajectory struct {
	Realization int       `json:"realization"`
	TimeStep    float64   `json:"time_step"`
	Samples     []float64 `json:"samples"`
}

// EnsembleResult is the complete output of one ensemble run.
// Trains is indexed by realization.
type EnsembleResult struct {
	Params          ModelParameters  `json:"params"`
	Config          SimulationConfig `json:"config"`
	Trains          []SpikeTrain     `json:"trains"`
	Traces          []Trajectory     `json:"traces"`
	Steps           int              `json:"steps"`
	RefractorySteps int              `json:"refractory_steps"`
}

// TotalSpikes returns the spike count summed over all realizations.
func (r *EnsembleResult) TotalSpikes() int {
	n := 0
	for _, t := range r.Trains {
		n += len(t.Times)
	}
	return n
}
