package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/booking"
	"github.com/iliyamo/travel-agency-api/internal/repository"
)

func decimalFromUint(n uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// pasajeroLedger renders the per-passenger ledger for detail and
// account-statement responses: paid amount, balance due (negative on
// overpayment), percentage paid and the deposit/full-payment flags.
func pasajeroLedger(pasajeros []repository.PasajeroDetail, senia decimal.Decimal) []echo.Map {
	out := make([]echo.Map, 0, len(pasajeros))
	for _, p := range pasajeros {
		ledger := booking.Passenger{
			ID:             p.ID,
			EsTitular:      p.EsTitular,
			PorAsignar:     p.PorAsignar,
			PrecioAsignado: p.PrecioAsignado,
			MontoPagado:    p.MontoPagado,
		}
		item := echo.Map{
			"id":                      p.ID,
			"es_titular":              p.EsTitular,
			"por_asignar":             p.PorAsignar,
			"precio_asignado":         p.PrecioAsignado.String(),
			"monto_pagado":            p.MontoPagado.String(),
			"saldo_pendiente":         ledger.SaldoPendiente().String(),
			"porcentaje_pagado":       ledger.PorcentajePagado().Round(2).String(),
			"senia_requerida":         senia.String(),
			"tiene_senia_pagada":      ledger.TieneSeniaPagada(senia),
			"esta_totalmente_pagado":  ledger.EstaTotalmentePagado(),
		}
		if p.PersonaID != nil {
			item["persona_id"] = *p.PersonaID
		}
		if p.Nombre != nil {
			item["nombre"] = *p.Nombre
		}
		if p.Apellido != nil {
			item["apellido"] = *p.Apellido
		}
		if p.NumeroDocumento != nil {
			item["numero_documento"] = *p.NumeroDocumento
		}
		out = append(out, item)
	}
	return out
}
