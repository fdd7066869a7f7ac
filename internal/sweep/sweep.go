// Package sweep implements the automatic cancellation job: unpaid
// reservations whose departure is inside the payment window are moved
// to the cancelled state and their cupo returned.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-agency-api/internal/booking"
	"github.com/iliyamo/travel-agency-api/internal/model"
	"github.com/iliyamo/travel-agency-api/internal/queue"
	"github.com/iliyamo/travel-agency-api/internal/repository"
	publisher "github.com/iliyamo/travel-agency-api/internal/service"
)

// Sweeper cancels reservations that missed the payment deadline.  Each
// candidate is processed in its own transaction so one failing row never
// blocks the rest of the run.
type Sweeper struct {
	ReservaRepo *repository.ReservaRepo
	SalidaRepo  *repository.SalidaRepo
	PaqueteRepo *repository.PaqueteRepo

	// DryRun logs what would be cancelled without touching the database.
	DryRun bool

	// Now supplies the sweep clock; defaults to time.Now when nil.
	Now func() time.Time
}

// Result summarizes one sweep run.
type Result struct {
	Evaluated int
	Cancelled int
	Skipped   int
	Failed    int
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run evaluates every candidate reservation and cancels the ones that
// qualify.  The candidate list is a coarse pre-filter; the decisive
// check re-reads fresh payment sums inside each item's transaction, so
// a payment that lands between listing and processing saves the
// reservation.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	var res Result
	now := s.now()
	deadline := now.AddDate(0, 0, booking.AutoCancelWindowDays)

	candidates, err := s.ReservaRepo.ListAutoCancelCandidates(ctx, deadline)
	if err != nil {
		return res, err
	}
	for _, cand := range candidates {
		res.Evaluated++
		cancelled, err := s.processOne(ctx, now, cand)
		if err != nil {
			res.Failed++
			log.Printf("sweep: reserva %s (id=%d) failed: %v", cand.Codigo, cand.ReservaID, err)
			continue
		}
		if cancelled {
			res.Cancelled++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

// processOne re-evaluates a single candidate inside its own transaction
// and cancels it when it still qualifies.  Returns whether the
// reservation was cancelled.
func (s *Sweeper) processOne(ctx context.Context, now time.Time, cand repository.AutoCancelCandidate) (bool, error) {
	tx, err := s.ReservaRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	reserva, err := s.ReservaRepo.GetByIDTx(ctx, tx, cand.ReservaID)
	if err != nil {
		return false, err
	}
	snap, err := s.ReservaRepo.LoadSnapshotTx(ctx, tx, cand.ReservaID)
	if err != nil {
		return false, err
	}
	qualifies := booking.CalificaCancelacionAutomatica(now, booking.Candidato{
		Activo:      reserva.Activo,
		FechaSalida: cand.FechaSalida,
		Snapshot:    snap,
	})
	if !qualifies {
		return false, nil
	}
	if s.DryRun {
		log.Printf("sweep: would cancel reserva %s (id=%d, salida %s)",
			cand.Codigo, cand.ReservaID, cand.FechaSalida.Format("2006-01-02"))
		return false, nil
	}

	motivo := model.MotivosCancelacion[model.MotivoCancelacionAutomatica]
	prev, err := s.ReservaRepo.MarkCancelledTx(ctx, tx, cand.ReservaID, model.MotivoCancelacionAutomatica, motivo, nil)
	if err != nil {
		return false, err
	}

	cupoLiberado := false
	if !prev.CuposLiberados {
		paquete, err := s.PaqueteRepo.GetByID(ctx, prev.PaqueteID)
		if err != nil {
			return false, err
		}
		if paquete.Propio {
			if err := s.SalidaRepo.ReleaseCupoTx(ctx, tx, prev.SalidaID, prev.HabitacionID, prev.CantidadPasajeros); err != nil {
				return false, err
			}
			if err := s.ReservaRepo.SetCuposLiberadosTx(ctx, tx, cand.ReservaID); err != nil {
				return false, err
			}
			cupoLiberado = true
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true

	ev := queue.ReservaCancelledEvent{
		EventID:      uuid.NewString(),
		ReservaID:    cand.ReservaID,
		Codigo:       cand.Codigo,
		SalidaID:     prev.SalidaID,
		MotivoID:     model.MotivoCancelacionAutomatica,
		Motivo:       motivo,
		CupoLiberado: cupoLiberado,
		CancelledAt:  now.UTC().Format(time.RFC3339),
	}
	pubCtx, cancelPub := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPub()
	if err := publisher.PublishReservaCancelled(pubCtx, ev); err != nil {
		log.Printf("sweep: publish cancelled event for reserva %s failed: %v", cand.Codigo, err)
	}
	log.Printf("sweep: cancelled reserva %s (id=%d)", cand.Codigo, cand.ReservaID)
	return true, nil
}
