package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-agency-api/internal/model"
)

func TestDiasHastaSalida(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	tests := []struct {
		salida time.Time
		want   int
	}{
		// Clock time never matters; only calendar days count.
		{time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC), 10},
		{time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), -1},
		{time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), 15},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, DiasHastaSalida(now, tt.salida), "salida %s", tt.salida)
	}
}

func unpaidSnapshot(estado string) Snapshot {
	return Snapshot{
		Estado:            estado,
		CantidadPasajeros: 2,
		PrecioUnitario:    d("10000"),
		Senia:             d("1500"),
		MontoPagado:       d("3000"),
		Pasajeros: []Passenger{
			{ID: 1, EsTitular: true, PrecioAsignado: d("10000"), MontoPagado: d("3000")},
			{ID: 2, PorAsignar: true, PrecioAsignado: d("10000")},
		},
	}
}

func TestCalificaCancelacionAutomatica(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in10 := now.AddDate(0, 0, 10)
	in20 := now.AddDate(0, 0, 20)

	tests := []struct {
		name string
		cand Candidato
		want bool
	}{
		{
			"unpaid inside window qualifies",
			Candidato{Activo: true, FechaSalida: in10, Snapshot: unpaidSnapshot(model.EstadoConfirmada)},
			true,
		},
		{
			"pending inside window qualifies",
			Candidato{Activo: true, FechaSalida: in10, Snapshot: unpaidSnapshot(model.EstadoPendiente)},
			true,
		},
		{
			"outside window does not qualify",
			Candidato{Activo: true, FechaSalida: in20, Snapshot: unpaidSnapshot(model.EstadoConfirmada)},
			false,
		},
		{
			"exactly at window boundary does not qualify",
			Candidato{Activo: true, FechaSalida: now.AddDate(0, 0, AutoCancelWindowDays), Snapshot: unpaidSnapshot(model.EstadoPendiente)},
			false,
		},
		{
			"inactive never qualifies",
			Candidato{Activo: false, FechaSalida: in10, Snapshot: unpaidSnapshot(model.EstadoPendiente)},
			false,
		},
		{
			"already cancelled never qualifies",
			Candidato{Activo: true, FechaSalida: in10, Snapshot: unpaidSnapshot(model.EstadoCancelada)},
			false,
		},
		{
			"finalized never qualifies",
			Candidato{Activo: true, FechaSalida: in10, Snapshot: unpaidSnapshot(model.EstadoFinalizada)},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CalificaCancelacionAutomatica(now, tt.cand))
		})
	}
}

func TestCalificaCancelacionAutomaticaFullyPaidIsSafe(t *testing.T) {
	// A fully paid reservation is never swept, no matter how close the
	// departure is.
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := unpaidSnapshot(model.EstadoConfirmada)
	s.MontoPagado = d("20000")
	s.Pasajeros[0].MontoPagado = d("20000")

	cand := Candidato{Activo: true, FechaSalida: now.AddDate(0, 0, 2), Snapshot: s}
	require.False(t, CalificaCancelacionAutomatica(now, cand))
}
