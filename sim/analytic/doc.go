// Package analytic evaluates the diffusion-approximation firing rate and
// interspike-interval CV of a leaky integrate-and-fire neuron driven by
// Gaussian white noise, with an absolute refractory correction.
//
// With lower = -μ/σ and upper = (1-μ)/σ:
//
//	rate0 = 1 / (τ √π ∫ e^{x²}(1+erf x) dx)
//	cv0²  = 2π τ² rate0² ∫ e^{x²} ∫_{-∞}^{x} e^{y²}(1+erf y)² dy dx
//	rate  = 1 / (1/rate0 + t_ref),  cv = cv0 · rate / rate0
//
// Integrals are computed with globally adaptive Gauss-Kronrod quadrature
// (Integrate). The inner integral is a pure closure over the outer variable
// and is re-evaluated at every outer node.
package analytic
