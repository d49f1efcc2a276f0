package analytic

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

// Quadrature errors. The solver wraps them in a sim.DivergenceError.
var (
	ErrMaxIntervals = errors.New("quadrature: interval budget exhausted before reaching tolerance")
	ErrNonFinite    = errors.New("quadrature: integrand or estimate is not finite")
)

// Gauss-Kronrod 7/15 nodes and weights on [-1, 1]. xgk[1], xgk[3], xgk[5]
// are the 7-point Gauss nodes; xgk[7] is the centre.
var (
	xgk = [8]float64{
		0.991455371120812639206854697526329,
		0.949107912342758524526189684047851,
		0.864864423359769072789712788640926,
		0.741531185599394439863864773280788,
		0.586087235467691130294144845693013,
		0.405845151377397166906606412076961,
		0.207784955007898467600689403773245,
		0.000000000000000000000000000000000,
	}
	wgk = [8]float64{
		0.022935322010529224963732008058970,
		0.063092092629978553290700663189204,
		0.104790010322250183839876322541518,
		0.140653259715525918745189590510238,
		0.169004726639267902826583426598550,
		0.190350578064785409913256402421014,
		0.204432940075298892414161999234649,
		0.209482141084727828012999174891714,
	}
	wg = [4]float64{
		0.129484966168869693270611432679082,
		0.279705391489276667901467771423780,
		0.381830050505118944950369775488975,
		0.417959183673469387755102040816327,
	}
)

// Options bounds one adaptive integration.
type Options struct {
	RelTol       float64 // stop when the summed error estimate is <= RelTol·|value|
	AbsTol       float64 // or when it is <= AbsTol
	MaxIntervals int     // subinterval budget; exceeding it is a failure
}

// Result is the outcome of an adaptive integration.
type Result struct {
	Value     float64
	AbsErr    float64
	Intervals int
}

type segment struct {
	a, b  float64
	value float64
	err   float64
}

// segments is a max-heap on error estimate.
type segments []segment

func (s segments) Len() int            { return len(s) }
func (s segments) Less(i, j int) bool  { return s[i].err > s[j].err }
func (s segments) Swap(i, j int)       { s[i], s[j] = s[j], s[i] }
func (s *segments) Push(x interface{}) { *s = append(*s, x.(segment)) }
func (s *segments) Pop() interface{} {
	old := *s
	n := len(old)
	seg := old[n-1]
	*s = old[:n-1]
	return seg
}

// gk15 applies the 15-point Kronrod rule on [a, b], using the embedded
// 7-point Gauss rule for the error estimate.
func gk15(f func(float64) float64, a, b float64) (value, absErr float64) {
	c := 0.5 * (a + b)
	h := 0.5 * (b - a)
	fc := f(c)
	resK := fc * wgk[7]
	resG := fc * wg[3]
	for j := 0; j < 7; j++ {
		dx := h * xgk[j]
		pair := f(c-dx) + f(c+dx)
		resK += wgk[j] * pair
		if j%2 == 1 {
			resG += wg[j/2] * pair
		}
	}
	return resK * h, math.Abs((resK - resG) * h)
}

// Integrate computes ∫_a^b f(x) dx by globally adaptive Gauss-Kronrod
// quadrature: the subinterval with the largest error estimate is bisected
// until the total estimate meets the tolerance. f must be pure; it is never
// called concurrently.
func Integrate(f func(float64) float64, a, b float64, opts Options) (Result, error) {
	if a == b {
		return Result{}, nil
	}
	if b < a {
		r, err := Integrate(f, b, a, opts)
		r.Value = -r.Value
		return r, err
	}
	if opts.MaxIntervals <= 0 {
		opts.MaxIntervals = 1
	}

	v, e := gk15(f, a, b)
	if !finite(v) || !finite(e) {
		return Result{Value: v, AbsErr: e, Intervals: 1}, fmt.Errorf("on [%g, %g]: %w", a, b, ErrNonFinite)
	}
	queue := &segments{{a: a, b: b, value: v, err: e}}
	total, totalErr := v, e

	for !converged(total, totalErr, opts) {
		if queue.Len() >= opts.MaxIntervals {
			return Result{Value: total, AbsErr: totalErr, Intervals: queue.Len()},
				fmt.Errorf("%d intervals, error estimate %.3g on value %.6g: %w", queue.Len(), totalErr, total, ErrMaxIntervals)
		}
		worst := heap.Pop(queue).(segment)
		m := 0.5 * (worst.a + worst.b)
		if m <= worst.a || m >= worst.b {
			// interval can no longer be split in floating point
			return Result{Value: total, AbsErr: totalErr, Intervals: queue.Len() + 1},
				fmt.Errorf("interval [%g, %g] collapsed: %w", worst.a, worst.b, ErrMaxIntervals)
		}
		v1, e1 := gk15(f, worst.a, m)
		v2, e2 := gk15(f, m, worst.b)
		if !finite(v1) || !finite(v2) || !finite(e1) || !finite(e2) {
			return Result{Value: total, AbsErr: totalErr, Intervals: queue.Len() + 1},
				fmt.Errorf("on [%g, %g]: %w", worst.a, worst.b, ErrNonFinite)
		}
		heap.Push(queue, segment{a: worst.a, b: m, value: v1, err: e1})
		heap.Push(queue, segment{a: m, b: worst.b, value: v2, err: e2})
		total += v1 + v2 - worst.value
		totalErr += e1 + e2 - worst.err
	}

	// resum to drop the drift accumulated by incremental updates
	total, totalErr = 0, 0
	for _, s := range *queue {
		total += s.value
		totalErr += s.err
	}
	return Result{Value: total, AbsErr: totalErr, Intervals: queue.Len()}, nil
}

func converged(total, totalErr float64, opts Options) bool {
	return totalErr <= opts.AbsTol || totalErr <= opts.RelTol*math.Abs(total)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
