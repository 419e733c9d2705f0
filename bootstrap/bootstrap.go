// Package bootstrap calibrates a piecewise-flat forward curve to market
// instrument prices, one pillar per instrument.
//
// For each instrument in maturity order the bootstrap solves the scalar
// equation
//
//	PV(instrument, curve extended at rate x) = target
//
// for x, and commits (final cash-flow time, x) as a new knot. Present value
// is evaluated over a borrowed curve view with a candidate extrapolated
// rate, so root-finder iterations allocate nothing.
package bootstrap

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/qflib/config"
	"github.com/meenmo/qflib/instrument"
	"github.com/meenmo/qflib/pwflat"
	"github.com/meenmo/qflib/root1d"
)

var (
	// ErrNilInstrument is returned when an instrument in the calibration
	// list is nil. This is a caller bug, never silently skipped.
	ErrNilInstrument = errors.New("bootstrap: nil instrument")

	// ErrMaturityOrder is returned when an instrument does not mature
	// strictly after the current last curve knot.
	ErrMaturityOrder = errors.New("bootstrap: instrument must mature after the curve's last knot")
)

// CalibrationError reports a pillar that failed to calibrate within the
// iteration budget.
type CalibrationError struct {
	// Index of the failing instrument in the calibration list, -1 for
	// single-instrument solves.
	Index int
	// Maturity is the pillar time that could not be solved.
	Maturity float64
	// Result is the root finder's final state (NaN root, last residual,
	// iterations used).
	Result root1d.Result
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("bootstrap: instrument %d (maturity %g) did not calibrate after %d iterations (residual %g)",
		e.Index, e.Maturity, e.Result.Iterations, e.Result.Residual)
}

// PresentValue returns the sum of discounted cash flows against the curve.
func PresentValue(in instrument.Instrument, c pwflat.View) (float64, error) {
	if len(in) == 0 {
		return 0, instrument.ErrEmpty
	}
	var pv float64
	for _, cf := range in {
		pv += cf.Amount * c.Discount(cf.Time)
	}
	return pv, nil
}

// Duration returns sum of t*c*D(t) over the cash flows.
//
// This is not the textbook bond duration: it equals minus the derivative of
// PresentValue with respect to a uniform shift of the forward curve, since
// d/df exp(-f*t) = -t exp(-f*t). Newton steps on the forward rate therefore
// use -Duration as the slope.
func Duration(in instrument.Instrument, c pwflat.View) (float64, error) {
	if len(in) == 0 {
		return 0, instrument.ErrEmpty
	}
	var dur float64
	for _, cf := range in {
		dur += cf.Time * cf.Amount * c.Discount(cf.Time)
	}
	return dur, nil
}

// seedRate picks the first secant seed: the curve's extrapolated rate when
// set, otherwise the last knot rate (zero for an empty curve).
func seedRate(v pwflat.View) float64 {
	if fx := v.ExtrapRate(); !math.IsNaN(fx) {
		return fx
	}
	return v.Back().Rate
}

// checkExtends validates the instrument and that it matures strictly after
// the curve's last knot, returning the pillar time.
func checkExtends(in instrument.Instrument, v pwflat.View) (float64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	u, _ := in.Maturity()
	if last := v.Back().Time; u <= last {
		return 0, fmt.Errorf("%w: maturity %v, last knot %v", ErrMaturityOrder, u, last)
	}
	return u, nil
}

// Bootstrap0 solves one pillar: the forward rate x such that the instrument
// prices to target when the curve is extended at x beyond its last knot.
// The committed knot is not appended; the caller decides.
func Bootstrap0(in instrument.Instrument, c *pwflat.Curve, target float64, cfg config.Config) (pwflat.Knot, error) {
	v := c.View()
	u, err := checkExtends(in, v)
	if err != nil {
		return pwflat.Knot{}, err
	}

	f0 := seedRate(v)
	s := root1d.Secant{
		X0:            f0,
		X1:            f0 + cfg.SeedBump,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
	}
	res := s.Solve(func(x float64) float64 {
		pv, _ := PresentValue(in, v.Extrapolate(x))
		return pv - target
	})
	if !res.Converged() {
		return pwflat.Knot{}, &CalibrationError{Index: -1, Maturity: u, Result: res}
	}
	return pwflat.Knot{Time: u, Rate: res.Root}, nil
}

// Bootstrap0Newton solves one pillar by Newton iteration with the analytic
// sensitivity of present value to the extrapolated rate: only cash flows
// beyond the last knot t_ depend on it, each through
// d/dx c*D(u) = -(u - t_) * c * D(u).
func Bootstrap0Newton(in instrument.Instrument, c *pwflat.Curve, target float64, cfg config.Config) (pwflat.Knot, error) {
	v := c.View()
	u, err := checkExtends(in, v)
	if err != nil {
		return pwflat.Knot{}, err
	}
	last := v.Back().Time

	nw := root1d.Newton{
		X0:            seedRate(v),
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
		Lower:         math.Inf(-1),
		Upper:         math.Inf(1),
	}
	res := nw.Solve(
		func(x float64) float64 {
			pv, _ := PresentValue(in, v.Extrapolate(x))
			return pv - target
		},
		func(x float64) float64 {
			vx := v.Extrapolate(x)
			var d float64
			for _, cf := range in {
				if cf.Time > last {
					d -= (cf.Time - last) * cf.Amount * vx.Discount(cf.Time)
				}
			}
			return d
		},
	)
	if !res.Converged() {
		return pwflat.Knot{}, &CalibrationError{Index: -1, Maturity: u, Result: res}
	}
	return pwflat.Knot{Time: u, Rate: res.Root}, nil
}

// BootstrapDeposit extends the curve for an instrument with a single cash
// flow beyond the last knot, where the pillar rate has a closed form:
//
//	pvKnown + c*D(t_)*exp(-x*(u - t_)) = target
//	x = -log((target - pvKnown) / (c*D(t_))) / (u - t_)
func BootstrapDeposit(in instrument.Instrument, c *pwflat.Curve, target float64) (pwflat.Knot, error) {
	v := c.View()
	u, err := checkExtends(in, v)
	if err != nil {
		return pwflat.Knot{}, err
	}
	last := v.Back().Time

	var pvKnown float64
	for _, cf := range in[:len(in)-1] {
		if cf.Time > last {
			return pwflat.Knot{}, fmt.Errorf("bootstrap: deposit form needs a single cash flow past the last knot, found one at %v", cf.Time)
		}
		pvKnown += cf.Amount * v.Discount(cf.Time)
	}
	final := in[len(in)-1]

	ratio := (target - pvKnown) / (final.Amount * v.Discount(last))
	if ratio <= 0 {
		return pwflat.Knot{}, fmt.Errorf("bootstrap: no deposit rate reprices maturity %v to %v", u, target)
	}
	return pwflat.Knot{Time: u, Rate: -math.Log(ratio) / (u - last)}, nil
}

// Bootstrap calibrates a curve so that every instrument has present value
// zero, committing one knot per instrument in order. A nil seed starts from
// the empty curve. The first failing instrument aborts the whole
// calibration.
func Bootstrap(ins []instrument.Instrument, seed *pwflat.Curve, cfg config.Config) (*pwflat.Curve, error) {
	return BootstrapWithPrices(ins, nil, seed, cfg)
}

// BootstrapWithPrices is Bootstrap with per-instrument target prices.
// A nil prices slice means every target is zero (par instruments carry
// their price in the cash-flow schedule).
func BootstrapWithPrices(ins []instrument.Instrument, prices []float64, seed *pwflat.Curve, cfg config.Config) (*pwflat.Curve, error) {
	if prices != nil && len(prices) != len(ins) {
		return nil, fmt.Errorf("bootstrap: %d instruments vs %d prices", len(ins), len(prices))
	}

	c := seed
	if c == nil {
		c = pwflat.NewEmptyCurve()
	}

	for i, in := range ins {
		if in == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilInstrument, i)
		}
		var target float64
		if prices != nil {
			target = prices[i]
		}
		knot, err := Bootstrap0(in, c, target, cfg)
		if err != nil {
			var ce *CalibrationError
			if errors.As(err, &ce) {
				ce.Index = i
				return nil, ce
			}
			return nil, fmt.Errorf("bootstrap: instrument %d: %w", i, err)
		}
		if err := c.Append(knot.Time, knot.Rate); err != nil {
			return nil, fmt.Errorf("bootstrap: instrument %d: %w", i, err)
		}
	}
	return c, nil
}
