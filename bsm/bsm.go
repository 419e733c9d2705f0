// Package bsm prices European options under Black-Scholes/Merton dynamics,
// S_t = s0*exp((r - sigma^2/2)*t + sigma*B_t), by deflating to the Black
// forward model: f = s0*exp(r*t), s = sigma*sqrt(t), D = exp(-r*t).
package bsm

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/qflib/black"
)

// ErrNotPositive is returned when spot, vol or expiry is not strictly
// positive.
var ErrNotPositive = errors.New("bsm: parameter must be positive")

// BlackParams converts BSM parameters to the Black model: discount factor
// D = exp(-r*t), forward f = s0/D, and total vol s = sigma*sqrt(t).
func BlackParams(r, s0, sigma, t float64) (D, f, s float64, err error) {
	if s0 <= 0 || sigma <= 0 || t <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: s0=%v, sigma=%v, t=%v", ErrNotPositive, s0, sigma, t)
	}
	D = math.Exp(-r * t)
	return D, s0 / D, sigma * math.Sqrt(t), nil
}

// PutValue returns exp(-r*t)*E[max(k - S_t, 0)].
func PutValue(r, s0, sigma, t, k float64) (float64, error) {
	D, f, s, err := BlackParams(r, s0, sigma, t)
	if err != nil {
		return 0, err
	}
	p, err := black.PutValue(f, s, k)
	if err != nil {
		return 0, err
	}
	return D * p, nil
}

// PutDelta returns (d/ds0) of the put value. Since dF/ds0 = exp(r*t)
// cancels the discounting, the BSM delta equals the Black delta.
func PutDelta(r, s0, sigma, t, k float64) (float64, error) {
	_, f, s, err := BlackParams(r, s0, sigma, t)
	if err != nil {
		return 0, err
	}
	return black.PutDelta(f, s, k)
}

// PutGamma returns (d/ds0)^2 of the put value: Black gamma divided by D.
func PutGamma(r, s0, sigma, t, k float64) (float64, error) {
	D, f, s, err := BlackParams(r, s0, sigma, t)
	if err != nil {
		return 0, err
	}
	g, err := black.PutGamma(f, s, k)
	if err != nil {
		return 0, err
	}
	return g / D, nil
}

// PutVega returns (d/dsigma) of the put value: D * Black vega * sqrt(t).
func PutVega(r, s0, sigma, t, k float64) (float64, error) {
	D, f, s, err := BlackParams(r, s0, sigma, t)
	if err != nil {
		return 0, err
	}
	v, err := black.PutVega(f, s, k)
	if err != nil {
		return 0, err
	}
	return D * v * math.Sqrt(t), nil
}

// PutImplied returns the BSM volatility sigma recovering put price p, by
// inverting the Black total vol and rescaling by sqrt(t). A NaN result
// means the solver's iteration budget ran out.
func PutImplied(r, s0, p, t, k float64, opts ...black.ImpliedOption) (float64, error) {
	if s0 <= 0 || t <= 0 {
		return 0, fmt.Errorf("%w: s0=%v, t=%v", ErrNotPositive, s0, t)
	}
	D := math.Exp(-r * t)
	f := s0 / D

	s, err := black.PutImplied(f, p/D, k, opts...)
	if err != nil {
		return 0, err
	}
	return s / math.Sqrt(t), nil
}
