// Package pwflat implements a piecewise-flat right-continuous forward curve.
//
// The curve is determined by knot points (t[i], f[i]) with strictly
// increasing times, plus a single extrapolated rate applied beyond the last
// knot:
//
//	       { f[i] if t[i-1] < u <= t[i]
//	f(u) = { fx   if u > t[n-1]
//	       { NaN  if u < 0
//
// Note f(t[i]) == f[i]: the forward is constant on (t[i-1], t[i]] and takes
// the knot value at the right endpoint. The discount factor is
// D(u) = exp(-integral_0^u f(s) ds) and the spot rate is the average forward
// r(u) = integral_0^u f(s) ds / u.
//
// Two flavours are provided: View borrows its knot storage (used per
// root-finder iteration during bootstrapping, no allocation), and Curve owns
// a growable copy.
package pwflat

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotIncreasing is returned when a knot would not extend the curve with a
// strictly greater time.
var ErrNotIncreasing = errors.New("pwflat: knot times must be strictly increasing")

// Knot is a committed (time, forward rate) curve point.
type Knot struct {
	Time float64
	Rate float64
}

// View is a non-owning curve over borrowed knot slices.
//
// The zero View is the empty curve with NaN extrapolation: every positive
// time query answers NaN, which propagates "no curve" through arithmetic.
type View struct {
	t, f   []float64
	extrap float64
}

// NewView borrows t and f as the knot storage. Times must be strictly
// increasing and len(t) == len(f); the extrapolated rate applies beyond the
// last knot.
func NewView(t, f []float64, extrap float64) (View, error) {
	if len(t) != len(f) {
		return View{}, fmt.Errorf("pwflat: %d times vs %d rates", len(t), len(f))
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return View{}, fmt.Errorf("%w: t[%d]=%v, t[%d]=%v", ErrNotIncreasing, i-1, t[i-1], i, t[i])
		}
	}
	return View{t: t, f: f, extrap: extrap}, nil
}

// Flat is the constant curve at rate fx: no knots, extrapolation everywhere.
func Flat(fx float64) View {
	return View{extrap: fx}
}

// Empty is the curve with no knots and NaN extrapolation.
func Empty() View {
	return View{extrap: math.NaN()}
}

// Size returns the number of knots.
func (v View) Size() int {
	return len(v.t)
}

// Times returns the borrowed knot times. Callers must not modify it.
func (v View) Times() []float64 {
	return v.t
}

// Rates returns the borrowed knot rates. Callers must not modify it.
func (v View) Rates() []float64 {
	return v.f
}

// ExtrapRate returns the extrapolated rate used beyond the last knot.
func (v View) ExtrapRate() float64 {
	return v.extrap
}

// Extrapolate returns a view of the same knots with a different
// extrapolated rate. Storage is shared, so this is free to call per
// root-finder iteration.
func (v View) Extrapolate(fx float64) View {
	return View{t: v.t, f: v.f, extrap: fx}
}

// Back returns the last knot, or the zero Knot for an empty curve.
func (v View) Back() Knot {
	if len(v.t) == 0 {
		return Knot{}
	}
	n := len(v.t) - 1
	return Knot{Time: v.t[n], Rate: v.f[n]}
}

// Forward returns the instantaneous forward rate at u.
func (v View) Forward(u float64) float64 {
	if u < 0 {
		return math.NaN()
	}
	if len(v.t) == 0 {
		return v.extrap
	}
	// First knot with t[i] >= u; right-continuity means Forward(t[i]) == f[i].
	i := sort.SearchFloat64s(v.t, u)
	if i == len(v.t) {
		return v.extrap
	}
	return v.f[i]
}

// Integral returns integral_0^u f(s) ds.
func (v View) Integral(u float64) float64 {
	if u < 0 {
		return math.NaN()
	}
	if u == 0 {
		return 0
	}
	if len(v.t) == 0 {
		return u * v.extrap
	}

	var sum, prev float64
	var i int
	for i = 0; i < len(v.t) && v.t[i] <= u; i++ {
		sum += v.f[i] * (v.t[i] - prev)
		prev = v.t[i]
	}
	if u > prev {
		rate := v.extrap
		if i < len(v.t) {
			rate = v.f[i]
		}
		sum += rate * (u - prev)
	}
	return sum
}

// Discount returns the zero-coupon bond price D(u) = exp(-Integral(u)).
func (v View) Discount(u float64) float64 {
	return math.Exp(-v.Integral(u))
}

// Spot returns the continuously compounded spot rate r(u) = Integral(u)/u.
// At or before the first knot time it equals f[0] (the average of a constant
// is the constant), which also avoids dividing by a near-zero time.
func (v View) Spot(u float64) float64 {
	if len(v.t) == 0 {
		return v.extrap
	}
	if u <= v.t[0] {
		return v.f[0]
	}
	return v.Integral(u) / u
}

// Curve owns a growable piecewise-flat forward curve.
type Curve struct {
	t, f   []float64
	extrap float64
}

// NewCurve copies the given knots into an owned curve. Times must be
// strictly increasing.
func NewCurve(t, f []float64, extrap float64) (*Curve, error) {
	if _, err := NewView(t, f, extrap); err != nil {
		return nil, err
	}
	c := &Curve{
		t:      append([]float64(nil), t...),
		f:      append([]float64(nil), f...),
		extrap: extrap,
	}
	return c, nil
}

// NewEmptyCurve returns a curve with no knots and NaN extrapolation, the
// usual starting point for bootstrapping.
func NewEmptyCurve() *Curve {
	return &Curve{extrap: math.NaN()}
}

// View borrows the curve's knot storage. The view stays valid until the
// next Append.
func (c *Curve) View() View {
	return View{t: c.t, f: c.f, extrap: c.extrap}
}

// Append commits a new knot. The time must strictly exceed the last knot
// time (zero for an empty curve).
func (c *Curve) Append(t, f float64) error {
	last := c.Back().Time
	if t <= last {
		return fmt.Errorf("%w: %v after %v", ErrNotIncreasing, t, last)
	}
	c.t = append(c.t, t)
	c.f = append(c.f, f)
	return nil
}

// SetExtrap replaces the extrapolated rate, leaving the knots untouched.
func (c *Curve) SetExtrap(fx float64) {
	c.extrap = fx
}

// Size returns the number of knots.
func (c *Curve) Size() int { return len(c.t) }

// Back returns the last knot, or the zero Knot for an empty curve.
func (c *Curve) Back() Knot { return c.View().Back() }

// Forward, Integral, Discount and Spot delegate to the borrowed view.

func (c *Curve) Forward(u float64) float64  { return c.View().Forward(u) }
func (c *Curve) Integral(u float64) float64 { return c.View().Integral(u) }
func (c *Curve) Discount(u float64) float64 { return c.View().Discount(u) }
func (c *Curve) Spot(u float64) float64     { return c.View().Spot(u) }

// ExtrapRate returns the extrapolated rate.
func (c *Curve) ExtrapRate() float64 { return c.extrap }

// Knots returns a copy of the committed knots in time order.
func (c *Curve) Knots() []Knot {
	ks := make([]Knot, len(c.t))
	for i := range c.t {
		ks[i] = Knot{Time: c.t[i], Rate: c.f[i]}
	}
	return ks
}
