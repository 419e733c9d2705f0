package bootstrap

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/qflib/config"
	"github.com/meenmo/qflib/instrument"
	"github.com/meenmo/qflib/pwflat"
)

func mustCurve(t *testing.T, times, rates []float64, extrap float64) *pwflat.Curve {
	t.Helper()
	c, err := pwflat.NewCurve(times, rates, extrap)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	return c
}

func TestPresentValueZCB(t *testing.T) {
	t.Parallel()

	c := mustCurve(t, []float64{1, 2}, []float64{.05, .06}, math.NaN())
	zcb, err := instrument.ZeroCouponBond(2, 0.9)
	if err != nil {
		t.Fatalf("ZeroCouponBond: %v", err)
	}

	pv, err := PresentValue(zcb, c.View())
	if err != nil {
		t.Fatalf("PresentValue: %v", err)
	}
	want := -0.9 + math.Exp(-(.05 + .06))
	if math.Abs(pv-want) > 1e-15 {
		t.Fatalf("pv = %v, want %v", pv, want)
	}
}

func TestPresentValueEmpty(t *testing.T) {
	t.Parallel()

	c := pwflat.NewEmptyCurve()
	if _, err := PresentValue(nil, c.View()); !errors.Is(err, instrument.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if _, err := Duration(nil, c.View()); !errors.Is(err, instrument.ErrEmpty) {
		t.Fatalf("Duration err = %v, want ErrEmpty", err)
	}
}

// Duration must equal minus the numerical derivative of present value with
// respect to a uniform forward-rate shift.
func TestDurationIsMinusPVDerivative(t *testing.T) {
	t.Parallel()

	swap, err := instrument.InterestRateSwap(2, 0.04, instrument.SemiAnnual)
	if err != nil {
		t.Fatalf("InterestRateSwap: %v", err)
	}

	const base, eps = 0.03, 1e-6
	pvAt := func(f float64) float64 {
		pv, err := PresentValue(swap, pwflat.Flat(f))
		if err != nil {
			t.Fatalf("PresentValue: %v", err)
		}
		return pv
	}
	dur, err := Duration(swap, pwflat.Flat(base))
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}

	numeric := (pvAt(base+eps) - pvAt(base-eps)) / (2 * eps)
	if math.Abs(-dur-numeric) > 1e-6 {
		t.Fatalf("-Duration = %v, d(pv)/df = %v", -dur, numeric)
	}
}

func TestBootstrapSingleZCB(t *testing.T) {
	t.Parallel()

	const u, price = 2.0, 0.92
	zcb, err := instrument.ZeroCouponBond(u, price)
	if err != nil {
		t.Fatalf("ZeroCouponBond: %v", err)
	}

	c, err := Bootstrap([]instrument.Instrument{zcb}, nil, config.DefaultConfig)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
	if got := c.Discount(u); math.Abs(got-price) > 1e-7 {
		t.Fatalf("Discount(%v) = %v, want %v", u, got, price)
	}
	// Solved flat rate is -log(price)/u.
	want := -math.Log(price) / u
	if got := c.Forward(1); math.Abs(got-want) > 1e-7 {
		t.Fatalf("Forward(1) = %v, want %v", got, want)
	}
}

func TestBootstrapSequence(t *testing.T) {
	t.Parallel()

	// Deposit, ZCB, and par swap with increasing maturities: each pillar
	// must reprice its instrument against the final curve.
	dep, _ := instrument.CashDeposit(0.5, 0.03)
	zcb, _ := instrument.ZeroCouponBond(1, 0.96)
	swp, _ := instrument.InterestRateSwap(2, 0.045, instrument.SemiAnnual)
	ins := []instrument.Instrument{dep, zcb, swp}

	c, err := Bootstrap(ins, nil, config.DefaultConfig)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if c.Size() != 3 {
		t.Fatalf("size = %d, want 3", c.Size())
	}
	for i, in := range ins {
		pv, err := PresentValue(in, c.View())
		if err != nil {
			t.Fatalf("PresentValue %d: %v", i, err)
		}
		if math.Abs(pv) > 1e-7 {
			t.Fatalf("instrument %d: pv = %v, want 0", i, pv)
		}
	}
	// Knot times are the instrument maturities.
	knots := c.Knots()
	for i, want := range []float64{0.5, 1, 2} {
		if knots[i].Time != want {
			t.Fatalf("knot %d time = %v, want %v", i, knots[i].Time, want)
		}
	}
	// Deposit pillar recovers the deposit rate (continuous compounding).
	if math.Abs(knots[0].Rate-0.03) > 1e-7 {
		t.Fatalf("deposit pillar rate = %v, want 0.03", knots[0].Rate)
	}
}

func TestBootstrap0NewtonMatchesSecant(t *testing.T) {
	t.Parallel()

	zcb, _ := instrument.ZeroCouponBond(3, 0.88)
	c := pwflat.NewEmptyCurve()

	ks, err := Bootstrap0(zcb, c, 0, config.DefaultConfig)
	if err != nil {
		t.Fatalf("Bootstrap0: %v", err)
	}
	kn, err := Bootstrap0Newton(zcb, c, 0, config.DefaultConfig)
	if err != nil {
		t.Fatalf("Bootstrap0Newton: %v", err)
	}
	if math.Abs(ks.Rate-kn.Rate) > 1e-7 {
		t.Fatalf("secant rate %v vs newton rate %v", ks.Rate, kn.Rate)
	}
}

func TestBootstrapDepositClosedForm(t *testing.T) {
	t.Parallel()

	dep, _ := instrument.CashDeposit(0.25, 0.028)
	c := pwflat.NewEmptyCurve()

	k, err := BootstrapDeposit(dep, c, 0)
	if err != nil {
		t.Fatalf("BootstrapDeposit: %v", err)
	}
	if k.Time != 0.25 {
		t.Fatalf("pillar time = %v, want 0.25", k.Time)
	}
	if math.Abs(k.Rate-0.028) > 1e-12 {
		t.Fatalf("pillar rate = %v, want 0.028", k.Rate)
	}
}

func TestBootstrapRejectsStaleMaturity(t *testing.T) {
	t.Parallel()

	c := mustCurve(t, []float64{1, 2}, []float64{.05, .05}, math.NaN())
	zcb, _ := instrument.ZeroCouponBond(2, 0.9)

	if _, err := Bootstrap0(zcb, c, 0, config.DefaultConfig); !errors.Is(err, ErrMaturityOrder) {
		t.Fatalf("err = %v, want ErrMaturityOrder", err)
	}
}

func TestBootstrapRejectsEmptyAndNil(t *testing.T) {
	t.Parallel()

	if _, err := Bootstrap([]instrument.Instrument{{}}, nil, config.DefaultConfig); !errors.Is(err, instrument.ErrEmpty) {
		t.Fatalf("empty instrument err = %v, want ErrEmpty", err)
	}
	if _, err := Bootstrap([]instrument.Instrument{nil}, nil, config.DefaultConfig); !errors.Is(err, instrument.ErrEmpty) && !errors.Is(err, ErrNilInstrument) {
		t.Fatalf("nil instrument err = %v", err)
	}
}

func TestBootstrapAbortsOnFailure(t *testing.T) {
	t.Parallel()

	// A ZCB with negative price admits no real pillar rate; the bootstrap
	// must fail with a CalibrationError naming the instrument.
	good, _ := instrument.ZeroCouponBond(1, 0.95)
	bad := instrument.Instrument{{Time: 0, Amount: 1}, {Time: 2, Amount: 1}} // pv always positive

	_, err := Bootstrap([]instrument.Instrument{good, bad}, nil, config.DefaultConfig)
	var ce *CalibrationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CalibrationError", err)
	}
	if ce.Index != 1 {
		t.Fatalf("failing index = %d, want 1", ce.Index)
	}
	if ce.Result.Converged() {
		t.Fatal("calibration error must carry a NaN root")
	}
}

func TestBootstrapWithPrices(t *testing.T) {
	t.Parallel()

	// Bond paying 1 at maturity, quoted at price 0.9: target pv = 0.9
	// without the -price flow in the schedule.
	bond := instrument.Instrument{{Time: 1.5, Amount: 1}}
	c, err := BootstrapWithPrices([]instrument.Instrument{bond}, []float64{0.9}, nil, config.DefaultConfig)
	if err != nil {
		t.Fatalf("BootstrapWithPrices: %v", err)
	}
	if got := c.Discount(1.5); math.Abs(got-0.9) > 1e-7 {
		t.Fatalf("Discount(1.5) = %v, want 0.9", got)
	}

	if _, err := BootstrapWithPrices([]instrument.Instrument{bond}, []float64{0.9, 0.8}, nil, config.DefaultConfig); err == nil {
		t.Fatal("mismatched prices length must fail")
	}
}

func TestBootstrapExtendsSeedCurve(t *testing.T) {
	t.Parallel()

	seed := mustCurve(t, []float64{1}, []float64{.03}, math.NaN())
	zcb, _ := instrument.ZeroCouponBond(2, 0.93)

	c, err := Bootstrap([]instrument.Instrument{zcb}, seed, config.DefaultConfig)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
	// First knot untouched.
	if got := c.Forward(1); got != .03 {
		t.Fatalf("Forward(1) = %v, want 0.03", got)
	}
	if got := c.Discount(2); math.Abs(got-0.93) > 1e-7 {
		t.Fatalf("Discount(2) = %v, want 0.93", got)
	}
}
