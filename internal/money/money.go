// Package money defines a currency-tagged decimal amount.  Every monetary
// value in the system carries its currency code so that arithmetic between
// amounts expressed in different currencies fails loudly instead of
// producing nonsense totals.  Conversion between currencies is the job of
// the currency package; this package only refuses to mix them.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidCurrency is returned when a currency code is missing or is not
// a three letter code.
var ErrInvalidCurrency = errors.New("money: invalid currency code")

// ErrCurrencyMismatch is returned when arithmetic is attempted between
// amounts tagged with different currencies.
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// Amount is a decimal value tagged with the ISO-style currency code it is
// expressed in (e.g. "USD", "PYG").
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// New builds an Amount validating the currency code.
func New(value decimal.Decimal, currency string) (Amount, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Amount{}, ErrInvalidCurrency
	}
	return Amount{Value: value, Currency: currency}, nil
}

// Must builds an Amount and panics on an invalid currency.  Intended for
// tests and fixtures.
func Must(value decimal.Decimal, currency string) Amount {
	a, err := New(value, currency)
	if err != nil {
		panic(err)
	}
	return a
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Amount {
	return Amount{Value: decimal.Zero, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Add returns a+b or ErrCurrencyMismatch when the currencies differ.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency}, nil
}

// MulInt multiplies the amount by an integer count (e.g. passengers,
// nights) preserving the currency.
func (a Amount) MulInt(n int64) Amount {
	return Amount{Value: a.Value.Mul(decimal.NewFromInt(n)), Currency: a.Currency}
}

// Mul scales the amount by a dimensionless factor such as a markup
// percentage, preserving the currency.
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return Amount{Value: a.Value.Mul(factor), Currency: a.Currency}
}

// Cmp compares two amounts of the same currency: -1 when a<b, 0 when
// equal, 1 when a>b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.sameCurrency(b); err != nil {
		return 0, err
	}
	return a.Value.Cmp(b.Value), nil
}

func (a Amount) sameCurrency(b Amount) error {
	if a.Currency == "" || b.Currency == "" {
		return ErrInvalidCurrency
	}
	if a.Currency != b.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// ParseDecimal converts free-form user input to a decimal.  It accepts
// both comma and dot as the decimal separator and maps empty or
// unparsable input to zero.  Callers that need to reject bad input must
// validate before calling; this parser exists for tolerant ingestion of
// legacy data, not for validation.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
