// Package currency implements conversion between the two currencies the
// agency operates with: US dollars and Paraguayan guaraníes.  Rates are
// stored as "value of 1 USD in guaraníes" records with an effective date;
// the rate in force for a date is the most recent record whose effective
// date is on or before it.
package currency

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/money"
)

const (
	// USD and PYG are the only codes the converter understands.
	USD = "USD"
	PYG = "PYG"
)

// ErrUnsupportedConversion is returned for any currency pair other than
// USD<->PYG.
var ErrUnsupportedConversion = errors.New("currency: only USD and PYG conversions are supported")

// ErrNoEffectiveRate is returned when no exchange-rate record exists with
// an effective date on or before the requested date.  An operator must
// register a rate before the calling operation can proceed.
var ErrNoEffectiveRate = errors.New("currency: no effective exchange rate for date")

// RateSource supplies the USD value in guaraníes in force on a date.
// Implementations return ErrNoEffectiveRate when no record qualifies.
type RateSource interface {
	EffectiveRate(ctx context.Context, code string, asOf time.Time) (decimal.Decimal, error)
}

// Converter converts amounts between USD and PYG using a RateSource.
// When no as-of date is given it uses the current date in the agency's
// timezone (America/Asuncion).
type Converter struct {
	rates RateSource
	loc   *time.Location
}

// NewConverter builds a Converter.  The Asunción timezone is resolved at
// construction; if the zone database is unavailable the local zone is
// used instead.
func NewConverter(rates RateSource) *Converter {
	loc, err := time.LoadLocation("America/Asuncion")
	if err != nil {
		loc = time.Local
	}
	return &Converter{rates: rates, loc: loc}
}

// Today returns the current date in the agency timezone.
func (cv *Converter) Today() time.Time {
	now := time.Now().In(cv.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Convert converts a currency-tagged amount into the target currency as
// of the given date (nil means today).  Identity conversions return the
// amount unchanged.  USD->PYG multiplies by the effective rate; PYG->USD
// divides by it.  Any other pair fails with ErrUnsupportedConversion;
// an invalid target code fails with money.ErrInvalidCurrency.
func (cv *Converter) Convert(ctx context.Context, amount money.Amount, to string, asOf *time.Time) (money.Amount, error) {
	out, err := money.New(amount.Value, to)
	if err != nil {
		return money.Amount{}, err
	}
	if amount.Currency == out.Currency {
		return out, nil
	}
	date := cv.Today()
	if asOf != nil {
		date = *asOf
	}
	switch {
	case amount.Currency == USD && out.Currency == PYG:
		rate, err := cv.rates.EffectiveRate(ctx, USD, date)
		if err != nil {
			return money.Amount{}, err
		}
		return out.Mul(rate), nil
	case amount.Currency == PYG && out.Currency == USD:
		rate, err := cv.rates.EffectiveRate(ctx, USD, date)
		if err != nil {
			return money.Amount{}, err
		}
		if rate.IsZero() {
			return money.Amount{}, ErrNoEffectiveRate
		}
		return money.Amount{Value: amount.Value.DivRound(rate, 8), Currency: USD}, nil
	default:
		return money.Amount{}, ErrUnsupportedConversion
	}
}
