package booking

import (
	"time"

	"github.com/iliyamo/travel-agency-api/internal/model"
)

// AutoCancelWindowDays is the payment deadline: reservations closer
// than this many days to departure without full payment are cancelled
// by the sweep.
const AutoCancelWindowDays = 15

// DiasHastaSalida returns whole days from now until the departure date,
// comparing calendar days rather than clock instants.
func DiasHastaSalida(now, fechaSalida time.Time) int {
	d0 := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	d1 := time.Date(fechaSalida.Year(), fechaSalida.Month(), fechaSalida.Day(), 0, 0, 0, 0, time.UTC)
	return int(d1.Sub(d0).Hours() / 24)
}

// Candidato is the view of a reservation the sweep evaluates.
type Candidato struct {
	Activo      bool
	FechaSalida time.Time
	Snapshot    Snapshot
}

// CalificaCancelacionAutomatica reports whether the reservation must be
// cancelled by the automatic sweep: active, in a cancellable state,
// closer than AutoCancelWindowDays to departure, and not fully paid.
// A fully paid reservation is never auto-cancelled, even if it never
// confirmed; only manual cancellation remains available for it.
func CalificaCancelacionAutomatica(now time.Time, c Candidato) bool {
	if !c.Activo {
		return false
	}
	switch c.Snapshot.Estado {
	case model.EstadoPendiente, model.EstadoConfirmada:
	default:
		return false
	}
	if DiasHastaSalida(now, c.FechaSalida) >= AutoCancelWindowDays {
		return false
	}
	return !c.Snapshot.EstaTotalmentePagada()
}
