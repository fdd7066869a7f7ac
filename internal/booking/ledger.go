package booking

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDistributionMismatch is returned when the distribution rows of a
// payment voucher do not sum exactly to the voucher amount.  Exact
// decimal equality, no tolerance.
var ErrDistributionMismatch = errors.New("booking: distribution amounts do not sum to voucher total")

// Distribucion is one slice of a voucher assigned to a passenger.
type Distribucion struct {
	PasajeroID uint64
	Monto      decimal.Decimal
}

// ValidarDistribuciones checks that the distribution rows sum exactly
// to the voucher amount and that every row is positive.  Nothing may be
// persisted when this fails.
func ValidarDistribuciones(monto decimal.Decimal, distribuciones []Distribucion) error {
	if len(distribuciones) == 0 {
		return ErrDistributionMismatch
	}
	sum := decimal.Zero
	for _, d := range distribuciones {
		if !d.Monto.IsPositive() {
			return ErrDistributionMismatch
		}
		sum = sum.Add(d.Monto)
	}
	if !sum.Equal(monto) {
		return ErrDistributionMismatch
	}
	return nil
}

// SaldoPendiente is the passenger's outstanding balance.  Overpayment
// yields a negative balance; that is a valid state, not an error.
func (p Passenger) SaldoPendiente() decimal.Decimal {
	return p.PrecioAsignado.Sub(p.MontoPagado)
}

// PorcentajePagado is the paid fraction of the assigned price as a
// percentage.  Zero when no price is assigned.
func (p Passenger) PorcentajePagado() decimal.Decimal {
	if !p.PrecioAsignado.IsPositive() {
		return decimal.Zero
	}
	return p.MontoPagado.Div(p.PrecioAsignado).Mul(decimal.NewFromInt(100))
}

// TieneSeniaPagada reports whether this passenger has covered the fixed
// per-passenger deposit of the departure.
func (p Passenger) TieneSeniaPagada(senia decimal.Decimal) bool {
	return p.MontoPagado.GreaterThanOrEqual(senia)
}

// EstaTotalmentePagado reports whether this passenger's seat is fully
// paid.
func (p Passenger) EstaTotalmentePagado() bool {
	return p.MontoPagado.GreaterThanOrEqual(p.PrecioAsignado)
}
