package stats

import (
	"math"

	"github.com/lifsim/lifsim/sim"
)

// Comparison pairs an analytical prediction with an ensemble estimate.
// Relative errors are signed, (empirical - analytic) / analytic.
type Comparison struct {
	Analytic   sim.AnalyticalResult `json:"analytic"`
	Empirical  sim.EmpiricalResult  `json:"empirical"`
	RateRelErr float64              `json:"rate_rel_err"`
	CVRelErr   float64              `json:"cv_rel_err"`
}

// Compare computes the relative errors of the empirical rate and CV.
func Compare(a sim.AnalyticalResult, e sim.EmpiricalResult) Comparison {
	return Comparison{
		Analytic:   a,
		Empirical:  e,
		RateRelErr: relErr(a.FiringRate, e.FiringRate),
		CVRelErr:   relErr(a.CV, e.CV),
	}
}

// Within reports whether both relative errors are inside their bounds.
func (c Comparison) Within(rateTol, cvTol float64) bool {
	return math.Abs(c.RateRelErr) <= rateTol && math.Abs(c.CVRelErr) <= cvTol
}

// relErr falls back to the absolute error when want is zero.
func relErr(want, got float64) float64 {
	if want == 0 {
		return got
	}
	return (got - want) / want
}
