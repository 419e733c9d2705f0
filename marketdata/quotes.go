// Package marketdata models calibration instrument quotes and the feeds
// that supply them.
package marketdata

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/qflib/instrument"
	"github.com/meenmo/qflib/utils"
)

// Kind identifies the contract type behind a quote.
type Kind string

const (
	KindDeposit Kind = "deposit"
	KindZero    Kind = "zero"
	KindFRA     Kind = "fra"
	KindSwap    Kind = "swap"
)

// Quote is one calibration instrument quote as of a curve date.
//
// Maturity and Start are year fractions on the curve time axis. Rate is a
// decimal (0.025 == 2.5%) for deposits, FRAs and swaps; Price is the
// zero-coupon bond price for KindZero.
type Quote struct {
	Kind      Kind                 `json:"kind"`
	Start     float64              `json:"start,omitempty"`
	Maturity  float64              `json:"maturity"`
	Rate      float64              `json:"rate,omitempty"`
	Price     float64              `json:"price,omitempty"`
	Frequency instrument.Frequency `json:"frequency,omitempty"`
}

// DatedQuote is a quote with calendar-date maturities, the form quotes
// arrive from market sources. Resolve maps it onto curve time.
type DatedQuote struct {
	Kind         Kind                 `json:"kind"`
	StartDate    string               `json:"start_date,omitempty"`
	MaturityDate string               `json:"maturity_date"`
	Rate         float64              `json:"rate,omitempty"`
	Price        float64              `json:"price,omitempty"`
	Frequency    instrument.Frequency `json:"frequency,omitempty"`
}

// Resolve converts calendar dates to ACT/365F year fractions from the
// curve date.
func (d DatedQuote) Resolve(curveDate time.Time) (Quote, error) {
	q := Quote{Kind: d.Kind, Rate: d.Rate, Price: d.Price, Frequency: d.Frequency}

	mat, err := utils.ParseDate(d.MaturityDate)
	if err != nil {
		return Quote{}, fmt.Errorf("Resolve: maturity: %w", err)
	}
	q.Maturity = utils.YearFraction(curveDate, mat, "ACT/365F")
	if q.Maturity <= 0 {
		return Quote{}, fmt.Errorf("Resolve: maturity %s is not after curve date %s",
			d.MaturityDate, curveDate.Format("2006-01-02"))
	}

	if d.StartDate != "" {
		start, err := utils.ParseDate(d.StartDate)
		if err != nil {
			return Quote{}, fmt.Errorf("Resolve: start: %w", err)
		}
		q.Start = utils.YearFraction(curveDate, start, "ACT/365F")
	}
	return q, nil
}

// ResolveQuotes maps dated quotes onto curve time.
func ResolveQuotes(curveDate time.Time, dated []DatedQuote) ([]Quote, error) {
	quotes := make([]Quote, 0, len(dated))
	for i, d := range dated {
		q, err := d.Resolve(curveDate)
		if err != nil {
			return nil, fmt.Errorf("marketdata: quote %d: %w", i, err)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// ErrNoQuotes is returned when a feed has nothing for the requested date.
var ErrNoQuotes = errors.New("marketdata: no quotes for date")

// Feed supplies calibration quotes as of a curve date.
type Feed interface {
	Quotes(curveDate time.Time) ([]Quote, error)
}

// StaticFeed is a map-backed Feed for development and testing, keyed by
// YYYY-MM-DD curve date.
type StaticFeed struct {
	quotes map[string][]Quote
}

// NewStaticFeed builds a feed over fixed per-date quote sets.
func NewStaticFeed(quotes map[string][]Quote) *StaticFeed {
	return &StaticFeed{quotes: quotes}
}

func (s *StaticFeed) Quotes(curveDate time.Time) ([]Quote, error) {
	qs, ok := s.quotes[curveDate.Format("2006-01-02")]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoQuotes, curveDate.Format("2006-01-02"))
	}
	return qs, nil
}

// BuildInstruments converts quotes into cash-flow instruments sorted by
// increasing maturity, ready for bootstrapping.
func BuildInstruments(quotes []Quote) ([]instrument.Instrument, error) {
	qs := append([]Quote(nil), quotes...)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Maturity < qs[j].Maturity })

	ins := make([]instrument.Instrument, 0, len(qs))
	for i, q := range qs {
		var in instrument.Instrument
		var err error
		switch q.Kind {
		case KindDeposit:
			in, err = instrument.CashDeposit(q.Maturity, q.Rate)
		case KindZero:
			in, err = instrument.ZeroCouponBond(q.Maturity, q.Price)
		case KindFRA:
			in, err = instrument.ForwardRateAgreement(q.Start, q.Maturity, q.Rate)
		case KindSwap:
			freq := q.Frequency
			if freq == 0 {
				freq = instrument.Annual
			}
			in, err = instrument.InterestRateSwap(q.Maturity, q.Rate, freq)
		default:
			err = fmt.Errorf("unknown quote kind %q", q.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("marketdata: quote %d: %w", i, err)
		}
		ins = append(ins, in)
	}
	return ins, nil
}
