package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-agency-api/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPasajeroLedger(t *testing.T) {
	personaID := uint64(7)
	nombre := "Ana"
	pasajeros := []repository.PasajeroDetail{
		{
			ID:             1,
			EsTitular:      true,
			PersonaID:      &personaID,
			Nombre:         &nombre,
			PrecioAsignado: dec("10000"),
			MontoPagado:    dec("12000"),
		},
		{
			ID:             2,
			PorAsignar:     true,
			PrecioAsignado: dec("10000"),
			MontoPagado:    dec("0"),
		},
	}

	out := pasajeroLedger(pasajeros, dec("1500"))
	require.Len(t, out, 2)

	titular := out[0]
	require.Equal(t, "-2000", titular["saldo_pendiente"])
	require.Equal(t, "120", titular["porcentaje_pagado"])
	require.Equal(t, true, titular["tiene_senia_pagada"])
	require.Equal(t, true, titular["esta_totalmente_pagado"])
	require.Equal(t, personaID, titular["persona_id"])
	require.Equal(t, "Ana", titular["nombre"])

	placeholder := out[1]
	require.Equal(t, "10000", placeholder["saldo_pendiente"])
	require.Equal(t, "0", placeholder["porcentaje_pagado"])
	require.Equal(t, false, placeholder["tiene_senia_pagada"])
	require.Equal(t, false, placeholder["esta_totalmente_pagado"])
	require.NotContains(t, placeholder, "persona_id")
	require.NotContains(t, placeholder, "nombre")
}
