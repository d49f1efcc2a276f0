package sim

import "fmt"

// Range is a recognized slider interval. Open bounds exclude the endpoint.
type Range struct {
	Name     string
	Min, Max float64
	OpenMin  bool
	OpenMax  bool
	Units    string
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	if v < r.Min || (r.OpenMin && v == r.Min) {
		return false
	}
	if v > r.Max || (r.OpenMax && v == r.Max) {
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := "[", "]"
	if r.OpenMin {
		lo = "("
	}
	if r.OpenMax {
		hi = ")"
	}
	return fmt.Sprintf("%s%g, %g%s", lo, r.Min, r.Max, hi)
}

// Recognized parameter ranges exposed by the interactive front end.
var (
	TauRange        = Range{Name: "tau", Min: 0.1, Max: 20, OpenMin: true, Units: "ms"}
	RefractoryRange = Range{Name: "refractory", Min: 0, Max: 5, Units: "ms"}
	MuRange         = Range{Name: "mu", Min: 0, Max: 5}
	SigmaRange      = Range{Name: "sigma", Min: 0, Max: 5}
)

// CheckRanges returns one message per parameter outside its recognized range.
// Such values are still valid model inputs; callers log the messages as warnings.
func CheckRanges(p ModelParameters) []string {
	var out []string
	for _, c := range []struct {
		r Range
		v float64
	}{{TauRange, p.Tau}, {RefractoryRange, p.Refractory}, {MuRange, p.Mu}, {SigmaRange, p.Sigma}} {
		if !c.r.Contains(c.v) {
			out = append(out, fmt.Sprintf("%s=%g outside recognized range %s", c.r.Name, c.v, c.r))
		}
	}
	return out
}
