// Package black prices European options under the Black (forward) model,
// F = f*exp(s*Z - s^2/2) with Z standard normal.
//
// Invalid parameters (non-positive forward, vol or strike) are programmer
// errors and surface on the error channel immediately. Implied-volatility
// non-convergence, by contrast, is an expected numerical outcome reported
// through the root finder's NaN convention.
package black

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/qflib/root1d"
	"github.com/meenmo/qflib/variate"
)

// ErrNotPositive is returned when a price-like parameter is not strictly
// positive.
var ErrNotPositive = errors.New("black: parameter must be positive")

func checkPositive(f, s, k float64) error {
	if f <= 0 || s <= 0 || k <= 0 {
		return fmt.Errorf("%w: f=%v, s=%v, k=%v", ErrNotPositive, f, s, k)
	}
	return nil
}

// Moneyness returns the standardized log-distance z = (log(k/f) + s^2/2)/s,
// so that F <= k exactly when Z <= z.
func Moneyness(f, s, k float64) (float64, error) {
	if err := checkPositive(f, s, k); err != nil {
		return 0, err
	}
	return (math.Log(k/f) + s*s/2) / s, nil
}

// PutValue returns the forward put value E[max(k - F, 0)]
// = k*N(z) - f*N(z - s).
func PutValue(f, s, k float64) (float64, error) {
	z, err := Moneyness(f, s, k)
	if err != nil {
		return 0, err
	}
	return k*variate.NormalCDF(z) - f*variate.NormalCDF(z-s), nil
}

// PutDelta returns (d/df) E[max(k - F, 0)] = -N(z - s).
func PutDelta(f, s, k float64) (float64, error) {
	z, err := Moneyness(f, s, k)
	if err != nil {
		return 0, err
	}
	return -variate.NormalCDF(z - s), nil
}

// PutGamma returns (d/df)^2 E[max(k - F, 0)] = phi(z - s)/(f*s).
func PutGamma(f, s, k float64) (float64, error) {
	z, err := Moneyness(f, s, k)
	if err != nil {
		return 0, err
	}
	return variate.NormalPDF(z-s) / (f * s), nil
}

// PutVega returns (d/ds) E[max(k - F, 0)] = f*phi(z - s).
func PutVega(f, s, k float64) (float64, error) {
	z, err := Moneyness(f, s, k)
	if err != nil {
		return 0, err
	}
	return f * variate.NormalPDF(z-s), nil
}

// CallValue returns E[max(F - k, 0)] via forward put-call parity
// E[F - k] = f - k.
func CallValue(f, s, k float64) (float64, error) {
	p, err := PutValue(f, s, k)
	if err != nil {
		return 0, err
	}
	return p + f - k, nil
}

// CallDelta returns (d/df) E[max(F - k, 0)] = 1 + put delta.
func CallDelta(f, s, k float64) (float64, error) {
	d, err := PutDelta(f, s, k)
	if err != nil {
		return 0, err
	}
	return 1 + d, nil
}

// PutImplied returns the vol s recovering put price p, solved by Newton
// iteration with vega as the derivative, constrained to positive vols.
// A NaN result means the iteration budget ran out.
func PutImplied(f, p, k float64, opts ...ImpliedOption) (float64, error) {
	if f <= 0 || k <= 0 {
		return 0, fmt.Errorf("%w: f=%v, k=%v", ErrNotPositive, f, k)
	}
	// Intrinsic bound: E[max(k - F, 0)] >= max(k - f, 0) and < k.
	if p <= math.Max(k-f, 0) || p >= k {
		return 0, fmt.Errorf("black: put price %v outside (max(k-f,0), k) for f=%v, k=%v", p, f, k)
	}

	nw := root1d.Newton{
		X0:            0.2,
		Tolerance:     1e-10,
		MaxIterations: root1d.DefaultMaxIterations,
		Lower:         0,
		Upper:         math.Inf(1),
	}
	for _, opt := range opts {
		opt(&nw)
	}

	res := nw.Solve(
		func(s float64) float64 {
			v, err := PutValue(f, s, k)
			if err != nil {
				return math.NaN()
			}
			return v - p
		},
		func(s float64) float64 {
			v, err := PutVega(f, s, k)
			if err != nil {
				return math.NaN()
			}
			return v
		},
	)
	return res.Root, nil
}

// ImpliedOption overrides the implied-vol solver's seed or budget.
type ImpliedOption func(*root1d.Newton)

// WithImpliedSeed sets the initial vol guess.
func WithImpliedSeed(s0 float64) ImpliedOption {
	return func(nw *root1d.Newton) { nw.X0 = s0 }
}

// WithImpliedTolerance sets the residual tolerance.
func WithImpliedTolerance(tol float64) ImpliedOption {
	return func(nw *root1d.Newton) { nw.Tolerance = tol }
}

// WithImpliedBudget sets the iteration budget.
func WithImpliedBudget(n int) ImpliedOption {
	return func(nw *root1d.Newton) { nw.MaxIterations = n }
}
