// Package instrument constructs the cash-flow schedules of standard
// fixed-income contracts.
//
// An Instrument is an ordered list of (time, amount) cash flows representing
// the net payments of a contract at unit notional. Par instruments carry
// their price inside the schedule (e.g. a zero-coupon bond pays -price at
// time zero), so that "present value equals zero" is the pricing condition.
package instrument

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmpty is returned when an instrument without cash flows is used.
var ErrEmpty = errors.New("instrument: empty cash flows")

// CashFlow is a payment of Amount at Time (in years, >= 0).
type CashFlow struct {
	Time   float64
	Amount float64
}

// Instrument is a time-ascending cash-flow schedule. It is constructed once
// and never mutated afterwards.
type Instrument []CashFlow

// Maturity returns the time of the final cash flow.
func (in Instrument) Maturity() (float64, error) {
	if len(in) == 0 {
		return 0, ErrEmpty
	}
	return in[len(in)-1].Time, nil
}

// Back returns the final cash flow.
func (in Instrument) Back() (CashFlow, error) {
	if len(in) == 0 {
		return CashFlow{}, ErrEmpty
	}
	return in[len(in)-1], nil
}

// Validate checks the schedule is non-empty with non-negative,
// strictly ascending times.
func (in Instrument) Validate() error {
	if len(in) == 0 {
		return ErrEmpty
	}
	if in[0].Time < 0 {
		return fmt.Errorf("instrument: negative cash-flow time %v", in[0].Time)
	}
	for i := 1; i < len(in); i++ {
		if in[i].Time <= in[i-1].Time {
			return fmt.Errorf("instrument: cash-flow times not ascending at index %d (%v then %v)",
				i, in[i-1].Time, in[i].Time)
		}
	}
	return nil
}

// ZeroCouponBond pays 1 at maturity u against price paid now:
// {(0, -price), (u, 1)}.
func ZeroCouponBond(u, price float64) (Instrument, error) {
	if u <= 0 {
		return nil, fmt.Errorf("ZeroCouponBond: maturity must be positive, got %v", u)
	}
	return Instrument{{0, -price}, {u, 1}}, nil
}

// CashDeposit invests 1 now and receives continuously compounded simple
// growth at maturity: {(0, -1), (u, exp(r*u))}.
func CashDeposit(u, r float64) (Instrument, error) {
	if u <= 0 {
		return nil, fmt.Errorf("CashDeposit: maturity must be positive, got %v", u)
	}
	return Instrument{{0, -1}, {u, math.Exp(r * u)}}, nil
}

// ForwardRateAgreement exchanges 1 at u for exp(f*(v-u)) at v:
// {(u, -1), (v, exp(f*(v-u)))}.
func ForwardRateAgreement(u, v, f float64) (Instrument, error) {
	if u < 0 {
		return nil, fmt.Errorf("ForwardRateAgreement: start must be non-negative, got %v", u)
	}
	if v <= u {
		return nil, fmt.Errorf("ForwardRateAgreement: end %v must follow start %v", v, u)
	}
	return Instrument{{u, -1}, {v, math.Exp(f * (v - u))}}, nil
}

// Frequency is the number of coupon payments per year.
type Frequency int

const (
	Annual     Frequency = 1
	SemiAnnual Frequency = 2
	Quarterly  Frequency = 4
	Monthly    Frequency = 12
)

// InterestRateSwap is a par swap at unit notional: -1 now, coupon c/n each
// period, and 1 + c/n at maturity u.
func InterestRateSwap(u, c float64, n Frequency) (Instrument, error) {
	if u <= 0 {
		return nil, fmt.Errorf("InterestRateSwap: maturity must be positive, got %v", u)
	}
	switch n {
	case Annual, SemiAnnual, Quarterly, Monthly:
	default:
		return nil, fmt.Errorf("InterestRateSwap: unsupported frequency %d", n)
	}

	periods := int(float64(n) * u)
	if periods < 1 {
		return nil, fmt.Errorf("InterestRateSwap: maturity %v shorter than one %d-per-year period", u, n)
	}
	du := 1 / float64(n)

	in := make(Instrument, periods+1)
	in[0] = CashFlow{0, -1}
	for i := 1; i <= periods; i++ {
		in[i] = CashFlow{du * float64(i), c * du}
	}
	in[periods] = CashFlow{u, 1 + c*du}
	return in, nil
}
