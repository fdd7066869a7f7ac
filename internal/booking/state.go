package booking

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/model"
)

// ErrInvalidBilling is returned when a confirmation requests a billing
// mode / payment condition combination the agency does not support.
var ErrInvalidBilling = errors.New("booking: invalid billing mode or payment condition")

// Passenger is the slice of a reservation the state machine needs per
// traveller: whether the identity is still a placeholder, the price
// assigned to the seat and the amount paid into it so far.  All amounts
// are in the reservation currency.
type Passenger struct {
	ID             uint64
	EsTitular      bool
	PorAsignar     bool
	PrecioAsignado decimal.Decimal
	MontoPagado    decimal.Decimal
}

// Snapshot is an in-memory view of one reservation, loaded by the
// repository and fed through Recompute after every payment or passenger
// change.  Estado carries the CURRENT persisted state so that cancelada
// stays terminal.
type Snapshot struct {
	Estado            string
	CantidadPasajeros uint32
	PrecioUnitario    decimal.Decimal
	MontoPagado       decimal.Decimal
	Senia             decimal.Decimal
	Pasajeros         []Passenger
}

// SeniaTotal is the required deposit for the whole reservation: the
// departure's fixed per-passenger deposit times the passenger count.
func (s Snapshot) SeniaTotal() decimal.Decimal {
	return s.Senia.Mul(decimal.NewFromInt(int64(s.CantidadPasajeros)))
}

// CostoTotalEstimado is the cached unit price times the passenger count.
func (s Snapshot) CostoTotalEstimado() decimal.Decimal {
	return s.PrecioUnitario.Mul(decimal.NewFromInt(int64(s.CantidadPasajeros)))
}

// FaltanDatosPasajeros reports whether any passenger is still a
// placeholder, or fewer real passengers are loaded than the reservation
// expects.
func (s Snapshot) FaltanDatosPasajeros() bool {
	real := 0
	for _, p := range s.Pasajeros {
		if p.PorAsignar {
			return true
		}
		real++
	}
	return real < int(s.CantidadPasajeros)
}

// PuedeConfirmarse reports whether the deposit requirement is met.
// While placeholder passengers remain the check is aggregate
// (monto_pagado >= seña_total); once every passenger is a real person
// each one must individually have the deposit covered.
func (s Snapshot) PuedeConfirmarse() bool {
	if s.FaltanDatosPasajeros() {
		return s.MontoPagado.GreaterThanOrEqual(s.SeniaTotal())
	}
	for _, p := range s.Pasajeros {
		if p.MontoPagado.LessThan(s.Senia) {
			return false
		}
	}
	return true
}

// EstaTotalmentePagada reports whether the reservation is 100% paid,
// with the same two-level rule as PuedeConfirmarse: aggregate while
// placeholders remain, per-passenger once all identities are loaded.
func (s Snapshot) EstaTotalmentePagada() bool {
	if s.FaltanDatosPasajeros() {
		return s.MontoPagado.GreaterThanOrEqual(s.CostoTotalEstimado())
	}
	for _, p := range s.Pasajeros {
		if p.MontoPagado.LessThan(p.PrecioAsignado) {
			return false
		}
	}
	return true
}

// Recompute derives the reservation state and the datos_completos flag
// from the snapshot.  Cancelada is terminal: a cancelled snapshot comes
// back cancelled no matter what the payments say.  The function is pure
// and idempotent; running it twice on the same snapshot yields the same
// result, and a payment annulment that drops monto_pagado below a
// threshold regresses the state accordingly.
func Recompute(s Snapshot) (estado string, datosCompletos bool) {
	datosCompletos = !s.FaltanDatosPasajeros()
	if s.Estado == model.EstadoCancelada {
		return model.EstadoCancelada, datosCompletos
	}
	switch {
	case s.EstaTotalmentePagada() && datosCompletos:
		return model.EstadoFinalizada, true
	case s.PuedeConfirmarse():
		return model.EstadoConfirmada, datosCompletos
	default:
		return model.EstadoPendiente, datosCompletos
	}
}

// ValidarFacturacion checks a billing mode / payment condition pair.
// Individual billing on credit is not offered: each passenger would
// need their own credit line, which the agency does not extend.
func ValidarFacturacion(modalidad, condicion string) error {
	switch modalidad {
	case model.FacturacionGlobal, model.FacturacionIndividual:
	default:
		return ErrInvalidBilling
	}
	switch condicion {
	case model.PagoContado, model.PagoCredito:
	default:
		return ErrInvalidBilling
	}
	if modalidad == model.FacturacionIndividual && condicion == model.PagoCredito {
		return ErrInvalidBilling
	}
	return nil
}
