// Package vswap computes variance swap replication weights and par variance
// by Carr-Madan static hedging.
//
// The realized variance payoff sum (dX_j/X_j)^2 is replicated by the static
// payoff f(x) = -2*log(x/x0) + 2*(x - x0)/z (a European claim) plus a
// dynamic futures hedge. Approximating f piecewise-linearly on the strike
// grid puts all of its curvature at the interior strikes, where the
// second-difference weights multiply out-of-the-money option prices:
// puts below the separator z, calls at or above it. Requiring z to lie on
// the strike grid makes the separator cross-term vanish exactly.
package vswap

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrStrikes is returned for an unusable strike grid.
	ErrStrikes = errors.New("vswap: need at least three increasing strikes")

	// ErrQuotes is returned when option quotes violate the monotonicity
	// an arbitrage-free chain must have.
	ErrQuotes = errors.New("vswap: option quotes not monotone")

	// ErrSeparator is returned when the put/call separator is off the
	// strike grid interior.
	ErrSeparator = errors.New("vswap: separator must be an interior strike")
)

// StaticPayoff returns f(x) = -2*log(x/x0) + 2*(x - x0)/z, the European
// payoff replicating realized variance up to a futures hedge.
func StaticPayoff(x0, z, x float64) float64 {
	return -2*math.Log(x/x0) + 2*(x-x0)/z
}

// differenceQuotient replaces f[i] with (f[i+1]-f[i])/(k[i+1]-k[i]) for
// i < n-1, leaving the last entry in place.
func differenceQuotient(k, f []float64) {
	for i := 0; i+1 < len(f); i++ {
		f[i] = (f[i+1] - f[i]) / (k[i+1] - k[i])
	}
}

// Weights returns the replication weights on the strike grid: w[i] is the
// second difference of the piecewise-linear static payoff at k[i], for
// interior strikes 1..n-2 (the boundary entries are meaningless and zero).
// Since f''(x) = 2/x^2, valid weights are positive and decreasing; anything
// else means the grid is unusable.
func Weights(x0, z float64, k []float64) ([]float64, error) {
	n := len(k)
	if n < 3 {
		return nil, ErrStrikes
	}
	for i := 1; i < n; i++ {
		if k[i] <= k[i-1] {
			return nil, fmt.Errorf("%w: k[%d]=%v, k[%d]=%v", ErrStrikes, i-1, k[i-1], i, k[i])
		}
	}
	if x0 <= 0 || z <= 0 || k[0] <= 0 {
		return nil, fmt.Errorf("%w: positive spot, separator and strikes required", ErrStrikes)
	}

	w := make([]float64, n)
	for i, ki := range k {
		w[i] = StaticPayoff(x0, z, ki)
	}
	differenceQuotient(k, w) // w[i] = slope on [k[i], k[i+1]]

	// Second differences at interior strikes, from the back so each slope
	// is still intact when consumed.
	for i := n - 2; i >= 1; i-- {
		w[i] -= w[i-1]
	}
	w[0], w[n-1] = 0, 0

	for i := 1; i < n-1; i++ {
		if w[i] <= 0 {
			return nil, fmt.Errorf("vswap: non-positive weight %v at strike %v", w[i], k[i])
		}
		if i > 1 && w[i] >= w[i-1] {
			return nil, fmt.Errorf("vswap: weights not decreasing at strike %v", k[i])
		}
	}
	return w, nil
}

// quoteOK skips unusable quotes: NaN or zero prices are ignored by the
// monotonicity checks, matching how sparse option chains are quoted.
func quoteOK(p float64) bool {
	return !math.IsNaN(p) && p != 0
}

func isMonotone(p []float64, increasing bool) bool {
	last := math.NaN()
	for _, x := range p {
		if !quoteOK(x) {
			continue
		}
		if quoteOK(last) {
			if increasing && x < last {
				return false
			}
			if !increasing && x > last {
				return false
			}
		}
		last = x
	}
	return true
}

// ParVariance returns the fair variance strike E[sigma^2] over dt years:
// the weighted sum of put prices below the separator z and call prices at
// or above it, divided by dt. The separator must be one of the interior
// strikes. Puts must be nondecreasing and calls nonincreasing in strike,
// ignoring NaN/zero quotes.
func ParVariance(dt, x0, z float64, k, puts, calls []float64) (float64, error) {
	if dt <= 0 {
		return 0, fmt.Errorf("vswap: non-positive accrual %v", dt)
	}
	if len(puts) != len(k) || len(calls) != len(k) {
		return 0, fmt.Errorf("vswap: %d strikes vs %d puts, %d calls", len(k), len(puts), len(calls))
	}
	if !isMonotone(puts, true) {
		return 0, fmt.Errorf("%w: puts must be nondecreasing in strike", ErrQuotes)
	}
	if !isMonotone(calls, false) {
		return 0, fmt.Errorf("%w: calls must be nonincreasing in strike", ErrQuotes)
	}

	w, err := Weights(x0, z, k)
	if err != nil {
		return 0, err
	}

	sep := -1
	for i := 1; i < len(k)-1; i++ {
		if k[i] == z {
			sep = i
			break
		}
	}
	if sep < 0 {
		return 0, fmt.Errorf("%w: z=%v", ErrSeparator, z)
	}

	var s2 float64
	for i := 1; i < len(k)-1; i++ {
		if i < sep {
			s2 += w[i] * puts[i]
		} else {
			s2 += w[i] * calls[i]
		}
	}
	return s2 / dt, nil
}
