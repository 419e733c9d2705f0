// Package root1d finds roots of scalar functions using the secant or
// Newton method.
//
// Non-convergence is an expected outcome, not an error: when the iteration
// budget is exhausted the Result carries a NaN root together with the last
// residual and the number of iterations used, so callers can distinguish
// "converged" from "gave up" without an error channel.
package root1d

import (
	"math"

	"github.com/meenmo/qflib/mathx"
)

const (
	// DefaultTolerance is the residual tolerance |f(x)| below which a
	// solve is considered converged.
	DefaultTolerance = mathx.SqrtEpsilon
	// DefaultMaxIterations bounds every solve loop.
	DefaultMaxIterations = 100
)

// Result is the outcome of a solve.
type Result struct {
	// Root is the approximate root, NaN if the iteration budget ran out.
	Root float64
	// Residual is f(Root) at the final iterate.
	Residual float64
	// Iterations is the number of iterations used.
	Iterations int
}

// Converged reports whether the solve produced a usable root.
func (r Result) Converged() bool {
	return !math.IsNaN(r.Root)
}

// Bracket moves x toward a bracketed root in [a, b] given the last
// in-bounds iterate x0. Out-of-bounds steps are replaced by the midpoint of
// x0 and the violated bound. An ill-posed bracket (a >= b, or x0 outside
// (a, b)) yields NaN.
func Bracket(x, x0, a, b float64) float64 {
	if a >= b || a >= x0 || x0 >= b {
		return math.NaN()
	}
	if x < a {
		return (x0 + a) / 2
	}
	if x > b {
		return (x0 + b) / 2
	}
	return x
}

// Secant finds a root from two seed points.
//
// Plain secant replacement is used until the two iterates straddle the root;
// once a sign change is seen only the endpoint matching the new iterate's
// sign is replaced, so the bracket is never lost (a secant/false-position
// hybrid).
type Secant struct {
	X0, X1        float64
	Tolerance     float64
	MaxIterations int
}

// NewSecant returns a secant solver with default tolerance and budget.
func NewSecant(x0, x1 float64) Secant {
	return Secant{X0: x0, X1: x1, Tolerance: DefaultTolerance, MaxIterations: DefaultMaxIterations}
}

// Solve iterates until |f(x1)| <= Tolerance or the budget is exhausted.
func (s Secant) Solve(f func(float64) float64) Result {
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	budget := s.MaxIterations
	if budget <= 0 {
		budget = DefaultMaxIterations
	}

	x0, x1 := s.X0, s.X1
	y0, y1 := f(x0), f(x1)
	bounded := !mathx.SameSign(y0, y1)

	n := 1
	for ; n < budget && math.Abs(y1) > tol; n++ {
		x := (x0*y1 - x1*y0) / (y1 - y0)
		y := f(x)
		if bounded && mathx.SameSign(y, y1) {
			// Keep the opposite-sign endpoint so the root stays bracketed.
			x1, y1 = x, y
		} else {
			x0, y0 = x1, y1
			x1, y1 = x, y
			bounded = !mathx.SameSign(y0, y1)
		}
	}

	root := x1
	if n == budget {
		root = math.NaN()
	}
	return Result{Root: root, Residual: y1, Iterations: n}
}

// Newton finds a root from one seed point and a derivative oracle,
// optionally constrained to the interval [Lower, Upper].
type Newton struct {
	X0            float64
	Tolerance     float64
	MaxIterations int
	Lower, Upper  float64
}

// NewNewton returns a Newton solver with default tolerance, budget and an
// unbounded interval.
func NewNewton(x0 float64) Newton {
	return Newton{
		X0:            x0,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Lower:         math.Inf(-1),
		Upper:         math.Inf(1),
	}
}

// Solve iterates x - f(x)/df(x), bisecting toward a violated bound, until
// |f(x)| <= Tolerance or the budget is exhausted.
func (nw Newton) Solve(f, df func(float64) float64) Result {
	tol := nw.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	budget := nw.MaxIterations
	if budget <= 0 {
		budget = DefaultMaxIterations
	}
	a, b := nw.Lower, nw.Upper
	if a == 0 && b == 0 {
		a, b = math.Inf(-1), math.Inf(1)
	}

	x0 := nw.X0
	y0 := f(x0)

	n := 1
	for ; n < budget && math.Abs(y0) > tol; n++ {
		x := x0 - y0/df(x0)
		x0 = Bracket(x, x0, a, b)
		y0 = f(x0)
	}

	root := x0
	if n == budget {
		root = math.NaN()
	}
	return Result{Root: root, Residual: y0, Iterations: n}
}
