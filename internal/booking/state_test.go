package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-agency-api/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// twoSeats builds a snapshot with a real lead passenger and one
// placeholder, unit price 10000 and a 1500 per-passenger deposit.
func twoSeats() Snapshot {
	return Snapshot{
		Estado:            model.EstadoPendiente,
		CantidadPasajeros: 2,
		PrecioUnitario:    d("10000"),
		Senia:             d("1500"),
		Pasajeros: []Passenger{
			{ID: 1, EsTitular: true, PrecioAsignado: d("10000")},
			{ID: 2, PorAsignar: true, PrecioAsignado: d("10000")},
		},
	}
}

func TestSeniaTotal(t *testing.T) {
	s := twoSeats()
	require.True(t, s.SeniaTotal().Equal(d("3000")))
	require.True(t, s.CostoTotalEstimado().Equal(d("20000")))
}

func TestRecomputeAggregateDepositConfirms(t *testing.T) {
	// While a placeholder remains, the deposit check is aggregate:
	// paying the full deposit for both seats confirms even though the
	// placeholder seat has nothing on it.
	s := twoSeats()
	s.MontoPagado = d("3000")
	s.Pasajeros[0].MontoPagado = d("3000")

	estado, datosCompletos := Recompute(s)
	require.Equal(t, model.EstadoConfirmada, estado)
	require.False(t, datosCompletos)
}

func TestRecomputeBelowDepositStaysPending(t *testing.T) {
	s := twoSeats()
	s.MontoPagado = d("2999.99")
	s.Pasajeros[0].MontoPagado = d("2999.99")

	estado, _ := Recompute(s)
	require.Equal(t, model.EstadoPendiente, estado)
}

func TestRecomputePerPassengerDepositOnceComplete(t *testing.T) {
	// With every identity loaded the rule tightens: each passenger must
	// individually cover the deposit.  The same aggregate amount spread
	// onto one passenger no longer confirms.
	s := twoSeats()
	s.Pasajeros[1].PorAsignar = false
	s.MontoPagado = d("3000")
	s.Pasajeros[0].MontoPagado = d("3000")

	estado, datosCompletos := Recompute(s)
	require.Equal(t, model.EstadoPendiente, estado)
	require.True(t, datosCompletos)

	// Splitting the deposit across both passengers confirms.
	s.Pasajeros[0].MontoPagado = d("1500")
	s.Pasajeros[1].MontoPagado = d("1500")
	estado, _ = Recompute(s)
	require.Equal(t, model.EstadoConfirmada, estado)
}

func TestRecomputeFinalizesWhenCompleteAndFullyPaid(t *testing.T) {
	s := twoSeats()
	s.Pasajeros[1].PorAsignar = false
	s.MontoPagado = d("20000")
	s.Pasajeros[0].MontoPagado = d("10000")
	s.Pasajeros[1].MontoPagado = d("10000")

	estado, datosCompletos := Recompute(s)
	require.Equal(t, model.EstadoFinalizada, estado)
	require.True(t, datosCompletos)
}

func TestRecomputeFullyPaidWithPlaceholderDoesNotFinalize(t *testing.T) {
	// Full aggregate payment with a placeholder still pending leaves the
	// reservation confirmed, never finalized.
	s := twoSeats()
	s.MontoPagado = d("20000")
	s.Pasajeros[0].MontoPagado = d("20000")

	estado, datosCompletos := Recompute(s)
	require.Equal(t, model.EstadoConfirmada, estado)
	require.False(t, datosCompletos)
}

func TestRecomputeIdempotent(t *testing.T) {
	s := twoSeats()
	s.MontoPagado = d("3000")
	s.Pasajeros[0].MontoPagado = d("3000")

	estado1, dc1 := Recompute(s)
	s.Estado = estado1
	estado2, dc2 := Recompute(s)
	require.Equal(t, estado1, estado2)
	require.Equal(t, dc1, dc2)
}

func TestRecomputeRegressesAfterAnnulment(t *testing.T) {
	// Annulling a voucher drops monto_pagado below the deposit; the
	// confirmed state regresses to pending.
	s := twoSeats()
	s.Estado = model.EstadoConfirmada
	s.MontoPagado = d("1000")
	s.Pasajeros[0].MontoPagado = d("1000")

	estado, _ := Recompute(s)
	require.Equal(t, model.EstadoPendiente, estado)
}

func TestRecomputeCanceladaIsTerminal(t *testing.T) {
	s := twoSeats()
	s.Estado = model.EstadoCancelada
	s.Pasajeros[1].PorAsignar = false
	s.MontoPagado = d("20000")
	s.Pasajeros[0].MontoPagado = d("10000")
	s.Pasajeros[1].MontoPagado = d("10000")

	estado, datosCompletos := Recompute(s)
	require.Equal(t, model.EstadoCancelada, estado)
	require.True(t, datosCompletos)
}

func TestFaltanDatosPasajerosFewerRowsThanExpected(t *testing.T) {
	s := twoSeats()
	s.Pasajeros = s.Pasajeros[:1] // one real passenger of two expected
	require.True(t, s.FaltanDatosPasajeros())
}

func TestValidarFacturacion(t *testing.T) {
	tests := []struct {
		modalidad string
		condicion string
		wantErr   bool
	}{
		{model.FacturacionGlobal, model.PagoContado, false},
		{model.FacturacionGlobal, model.PagoCredito, false},
		{model.FacturacionIndividual, model.PagoContado, false},
		{model.FacturacionIndividual, model.PagoCredito, true},
		{"mensual", model.PagoContado, true},
		{model.FacturacionGlobal, "cheque", true},
		{"", "", true},
	}
	for _, tt := range tests {
		err := ValidarFacturacion(tt.modalidad, tt.condicion)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidBilling, "%s/%s", tt.modalidad, tt.condicion)
		} else {
			require.NoError(t, err, "%s/%s", tt.modalidad, tt.condicion)
		}
	}
}
