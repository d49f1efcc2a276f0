package analytic

import "math"

// asymptoticFrom is where Erfcx switches from exp(x²)·erfc(x) to its
// asymptotic series; erfc(x) approaches the subnormal range just above 26.
const asymptoticFrom = 25.0

// Erfcx returns the scaled complementary error function exp(x²)·erfc(x).
//
// It is finite for every x above about -26.6 (where exp(x²) overflows) and
// decays like 1/(x√π) for large positive x instead of underflowing. The rate
// integrand e^{x²}(1+erf x) equals Erfcx(-x).
func Erfcx(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x < asymptoticFrom:
		return math.Exp(x*x) * math.Erfc(x)
	}
	// erfcx(x) ~ 1/(x√π) · Σ (-1)^n (2n-1)!! / (2x²)^n
	z2 := 2 * x * x
	sum, term := 1.0, 1.0
	for n := 1; n <= 8; n++ {
		term *= -float64(2*n-1) / z2
		sum += term
	}
	return sum / (x * math.SqrtPi)
}
