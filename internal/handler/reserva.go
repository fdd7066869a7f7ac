package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency-api/internal/booking"
	"github.com/iliyamo/travel-agency-api/internal/model"
	"github.com/iliyamo/travel-agency-api/internal/pricing"
	"github.com/iliyamo/travel-agency-api/internal/queue"
	"github.com/iliyamo/travel-agency-api/internal/repository"
	publisher "github.com/iliyamo/travel-agency-api/internal/service"
)

// ReservaHandler groups the repositories needed to create, inspect and
// cancel reservations and to manage their passengers.  All methods
// assume that JWT authentication and role validation has already been
// performed by middleware.  Each method runs critical DB operations
// inside a transaction to guarantee atomicity: a reservation is never
// persisted without its passengers or without its cupo hold.
type ReservaHandler struct {
	ReservaRepo     *repository.ReservaRepo
	PasajeroRepo    *repository.PasajeroRepo
	PaqueteRepo     *repository.PaqueteRepo
	SalidaRepo      *repository.SalidaRepo
	ComprobanteRepo *repository.ComprobanteRepo
	Resolver        *pricing.Resolver
}

// NewReservaHandler constructs a ReservaHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewReservaHandler(reservaRepo *repository.ReservaRepo, pasajeroRepo *repository.PasajeroRepo, paqueteRepo *repository.PaqueteRepo, salidaRepo *repository.SalidaRepo, comprobanteRepo *repository.ComprobanteRepo, resolver *pricing.Resolver) *ReservaHandler {
	if reservaRepo == nil || pasajeroRepo == nil || paqueteRepo == nil || salidaRepo == nil || comprobanteRepo == nil || resolver == nil {
		panic("nil dependency passed to NewReservaHandler")
	}
	return &ReservaHandler{
		ReservaRepo:     reservaRepo,
		PasajeroRepo:    pasajeroRepo,
		PaqueteRepo:     paqueteRepo,
		SalidaRepo:      salidaRepo,
		ComprobanteRepo: comprobanteRepo,
		Resolver:        resolver,
	}
}

// reservaResource builds the JSON representation returned by booking
// and detail endpoints, including the derived totals.
func reservaResource(res *model.Reserva) echo.Map {
	snap := booking.Snapshot{
		CantidadPasajeros: res.CantidadPasajeros,
		PrecioUnitario:    res.PrecioUnitario,
	}
	out := echo.Map{
		"id":                    res.ID,
		"codigo":                res.Codigo,
		"paquete_id":            res.PaqueteID,
		"salida_id":             res.SalidaID,
		"habitacion_id":         res.HabitacionID,
		"titular_id":            res.TitularID,
		"cantidad_pasajeros":    res.CantidadPasajeros,
		"precio_unitario":       res.PrecioUnitario.String(),
		"costo_total_estimado":  snap.CostoTotalEstimado().String(),
		"moneda":                res.MonedaCodigo,
		"monto_pagado":          res.MontoPagado.String(),
		"estado":                res.Estado,
		"datos_completos":       res.DatosCompletos,
		"activo":                res.Activo,
		"fecha_reserva":         res.FechaReserva.UTC().Format(time.RFC3339),
	}
	if res.ModalidadFacturacion != nil {
		out["modalidad_facturacion"] = *res.ModalidadFacturacion
	}
	if res.CondicionPago != nil {
		out["condicion_pago"] = *res.CondicionPago
	}
	if res.MotivoCancelacionID != nil {
		out["motivo_cancelacion_id"] = *res.MotivoCancelacionID
	}
	if res.MotivoCancelacion != nil {
		out["motivo_cancelacion"] = *res.MotivoCancelacion
	}
	if res.FechaCancelacion != nil {
		out["fecha_cancelacion"] = res.FechaCancelacion.UTC().Format(time.RFC3339)
	}
	return out
}

// Create handles POST /v1/reservas.  It prices the requested room with
// the resolver, caches the unit price on the reservation, decrements
// cupo (owned packages hold inventory; distributor packages do not)
// and creates the titular passenger plus placeholders, all in one
// transaction.  cantidad_pasajeros defaults to the room capacity.
func (h *ReservaHandler) Create(c echo.Context) error {
	var body struct {
		PaqueteID         uint64 `json:"paquete_id"`
		SalidaID          uint64 `json:"salida_id"`
		HabitacionID      uint64 `json:"habitacion_id"`
		TitularID         uint64 `json:"titular_id"`
		CantidadPasajeros uint32 `json:"cantidad_pasajeros"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PaqueteID == 0 || body.SalidaID == 0 || body.HabitacionID == 0 || body.TitularID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "paquete_id, salida_id, habitacion_id and titular_id are required"})
	}
	ctx := c.Request().Context()

	paquete, err := h.PaqueteRepo.GetByID(ctx, body.PaqueteID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "paquete not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !paquete.Activo {
		return c.JSON(http.StatusConflict, echo.Map{"error": "paquete is not active"})
	}
	salida, err := h.SalidaRepo.GetByID(ctx, body.SalidaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salida not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if salida.PaqueteID != paquete.ID || !salida.Activo {
		return c.JSON(http.StatusConflict, echo.Map{"error": "salida does not belong to paquete or is inactive"})
	}
	if _, err := h.PasajeroRepo.GetPersonaByID(ctx, body.TitularID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "titular persona not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	input, err := h.SalidaRepo.BuildPricingInput(ctx, body.SalidaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	unitPrice, err := h.Resolver.UnitPrice(ctx, *input, body.HabitacionID)
	if err != nil {
		if errors.Is(err, pricing.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "habitacion not offered on this salida"})
		}
		return conversionError(c, err)
	}

	cantidad := body.CantidadPasajeros
	if cantidad == 0 {
		cap, err := h.SalidaRepo.RoomCapacity(ctx, body.HabitacionID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		cantidad = cap
	}

	tx, err := h.ReservaRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Distributor packages sell from the distributor's allotment; only
	// owned packages hold local inventory.
	if paquete.Propio {
		if err := h.SalidaRepo.DecrementCupoTx(ctx, tx, body.SalidaID, body.HabitacionID, cantidad); err != nil {
			if errors.Is(err, repository.ErrInsufficientCupo) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "no cupo available for habitacion"})
			}
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "habitacion not offered on this salida"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hold cupo"})
		}
	}

	res := &model.Reserva{
		PaqueteID:         body.PaqueteID,
		SalidaID:          body.SalidaID,
		HabitacionID:      body.HabitacionID,
		TitularID:         body.TitularID,
		CantidadPasajeros: cantidad,
		PrecioUnitario:    unitPrice.Value,
	}
	if err := h.ReservaRepo.CreateTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reserva"})
	}
	if err := h.PasajeroRepo.CreateForReservaTx(ctx, tx, res.ID, body.TitularID, cantidad, unitPrice.Value); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create pasajeros"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	res.MonedaCodigo = salida.MonedaCodigo
	resource := reservaResource(res)
	resource["senia_total"] = salida.Senia.Mul(decimalFromUint(cantidad)).String()
	return c.JSON(http.StatusCreated, resource)
}

// Get handles GET /v1/reservas/:id.  It returns the reservation with
// the passenger ledger: per-passenger paid amounts, balances and
// percentages derived from active voucher distributions.
func (h *ReservaHandler) Get(c echo.Context) error {
	reservaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserva id"})
	}
	ctx := c.Request().Context()
	res, err := h.ReservaRepo.GetByID(ctx, reservaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	salida, err := h.SalidaRepo.GetByID(ctx, res.SalidaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pasajeros, err := h.PasajeroRepo.ListByReserva(ctx, reservaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resource := reservaResource(res)
	resource["senia_total"] = salida.Senia.Mul(decimalFromUint(res.CantidadPasajeros)).String()
	resource["pasajeros"] = pasajeroLedger(pasajeros, salida.Senia)
	return c.JSON(http.StatusOK, resource)
}

// AssignPasajero handles PUT /v1/reservas/:id/pasajeros/:pid.  It
// binds a real persona to a placeholder passenger and recomputes the
// reservation state, since completing the passenger list can move the
// reservation to finalizada.
func (h *ReservaHandler) AssignPasajero(c echo.Context) error {
	reservaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserva id"})
	}
	pasajeroID, ok := pathID(c, "pid")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pasajero id"})
	}
	var body struct {
		PersonaID uint64 `json:"persona_id"`
	}
	if err := c.Bind(&body); err != nil || body.PersonaID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "persona_id is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.PasajeroRepo.GetPersonaByID(ctx, body.PersonaID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "persona not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tx, err := h.ReservaRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.ReservaRepo.GetByIDTx(ctx, tx, reservaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if res.Estado == model.EstadoCancelada {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reserva is cancelled"})
	}
	if err := h.PasajeroRepo.AssignIdentityTx(ctx, tx, reservaID, pasajeroID, body.PersonaID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "pasajero is not an assignable placeholder of this reserva"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign pasajero"})
	}
	newEstado, err := h.recomputeTx(ctx, tx, reservaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute estado"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	h.publishOnConfirm(res, newEstado)
	return c.JSON(http.StatusOK, echo.Map{
		"reserva_id":  reservaID,
		"pasajero_id": pasajeroID,
		"persona_id":  body.PersonaID,
		"estado":      newEstado,
	})
}

// Cancelar handles POST /v1/reservas/:id/cancelar.  The body carries
// the reason id from the cancellation catalog, optional notes and
// whether held cupo should be returned.  Cancelling an already
// cancelled reservation fails with 409 and never releases cupo twice.
func (h *ReservaHandler) Cancelar(c echo.Context) error {
	reservaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserva id"})
	}
	var body struct {
		MotivoID      string  `json:"motivo_id"`
		Observaciones *string `json:"observaciones"`
		LiberarCupo   bool    `json:"liberar_cupo"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MotivoID == "" {
		body.MotivoID = model.MotivoCancelacionOtro
	}
	motivo, ok := model.MotivosCancelacion[body.MotivoID]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown motivo_id"})
	}
	ctx := c.Request().Context()

	tx, err := h.ReservaRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prev, err := h.ReservaRepo.MarkCancelledTx(ctx, tx, reservaID, body.MotivoID, motivo, body.Observaciones)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCancelled) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reserva already cancelled"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel"})
	}

	released := false
	if body.LiberarCupo && !prev.CuposLiberados {
		paquete, err := h.PaqueteRepo.GetByID(ctx, prev.PaqueteID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if paquete.Propio {
			if err := h.SalidaRepo.ReleaseCupoTx(ctx, tx, prev.SalidaID, prev.HabitacionID, prev.CantidadPasajeros); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release cupo"})
			}
			if err := h.ReservaRepo.SetCuposLiberadosTx(ctx, tx, reservaID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release cupo"})
			}
			released = true
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	go func() {
		ev := queue.ReservaCancelledEvent{
			EventID:      uuid.NewString(),
			ReservaID:    prev.ID,
			Codigo:       prev.Codigo,
			SalidaID:     prev.SalidaID,
			MotivoID:     body.MotivoID,
			Motivo:       motivo,
			CupoLiberado: released,
			CancelledAt:  time.Now().UTC().Format(time.RFC3339),
		}
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.PublishReservaCancelled(pubCtx, ev); err != nil {
			log.Printf("reserva: publish cancelled event failed: %v", err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"reserva_id":    reservaID,
		"estado":        model.EstadoCancelada,
		"motivo_id":     body.MotivoID,
		"cupo_liberado": released,
	})
}

// Facturacion handles POST /v1/reservas/:id/facturacion.  It fixes the
// billing mode and payment condition on the reservation; the pair is
// immutable afterwards in the sense that invoicing reads it as-is.
func (h *ReservaHandler) Facturacion(c echo.Context) error {
	reservaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserva id"})
	}
	var body struct {
		Modalidad string `json:"modalidad_facturacion"`
		Condicion string `json:"condicion_pago"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := booking.ValidarFacturacion(body.Modalidad, body.Condicion); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid modalidad_facturacion / condicion_pago combination"})
	}
	ctx := c.Request().Context()

	tx, err := h.ReservaRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.ReservaRepo.GetByIDTx(ctx, tx, reservaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if res.Estado == model.EstadoCancelada {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reserva is cancelled"})
	}
	if err := h.ReservaRepo.ConfirmBillingTx(ctx, tx, reservaID, body.Modalidad, body.Condicion); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set facturacion"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"reserva_id":            reservaID,
		"modalidad_facturacion": body.Modalidad,
		"condicion_pago":        body.Condicion,
	})
}

// EstadoCuenta handles GET /v1/reservas/:id/estado-cuenta.  It returns
// the account statement: totals for the reservation plus the
// per-passenger ledger and the voucher history.
func (h *ReservaHandler) EstadoCuenta(c echo.Context) error {
	reservaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserva id"})
	}
	ctx := c.Request().Context()
	res, err := h.ReservaRepo.GetByID(ctx, reservaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	salida, err := h.SalidaRepo.GetByID(ctx, res.SalidaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pasajeros, err := h.PasajeroRepo.ListByReserva(ctx, reservaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	vouchers, err := h.ComprobanteRepo.ListByReserva(ctx, reservaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	voucherOut := make([]echo.Map, 0, len(vouchers))
	for _, v := range vouchers {
		voucherOut = append(voucherOut, echo.Map{
			"id":                 v.ID,
			"numero_comprobante": v.NumeroComprobante,
			"tipo":               v.Tipo,
			"monto":              v.Monto.String(),
			"metodo_pago":        v.MetodoPago,
			"activo":             v.Activo,
			"fecha_emision":      v.FechaEmision.UTC().Format(time.RFC3339),
		})
	}
	resource := reservaResource(res)
	resource["senia_total"] = salida.Senia.Mul(decimalFromUint(res.CantidadPasajeros)).String()
	resource["pasajeros"] = pasajeroLedger(pasajeros, salida.Senia)
	resource["comprobantes"] = voucherOut
	return c.JSON(http.StatusOK, resource)
}

// recomputeTx reloads the reservation snapshot inside the transaction,
// runs the state machine and persists the outcome.  Returns the new
// estado.
func (h *ReservaHandler) recomputeTx(ctx context.Context, tx *sql.Tx, reservaID uint64) (string, error) {
	snap, err := h.ReservaRepo.LoadSnapshotTx(ctx, tx, reservaID)
	if err != nil {
		return "", err
	}
	estado, datosCompletos := booking.Recompute(snap)
	if err := h.ReservaRepo.ApplyRecomputeTx(ctx, tx, reservaID, estado, datosCompletos, snap.MontoPagado); err != nil {
		return "", err
	}
	return estado, nil
}

// publishOnConfirm emits a confirmation event when the state machine
// has just moved the reservation into confirmada.  Publishing is
// best-effort and never blocks the request.
func (h *ReservaHandler) publishOnConfirm(prev *model.Reserva, newEstado string) {
	if newEstado != model.EstadoConfirmada || prev.Estado == model.EstadoConfirmada {
		return
	}
	ev := queue.ReservaConfirmedEvent{
		EventID:           uuid.NewString(),
		ReservaID:         prev.ID,
		Codigo:            prev.Codigo,
		PaqueteID:         prev.PaqueteID,
		SalidaID:          prev.SalidaID,
		TitularID:         prev.TitularID,
		CantidadPasajeros: prev.CantidadPasajeros,
		MontoPagado:       prev.MontoPagado.String(),
		Moneda:            prev.MonedaCodigo,
		ConfirmedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.PublishReservaConfirmed(pubCtx, ev); err != nil {
			log.Printf("reserva: publish confirmed event failed: %v", err)
		}
	}()
}
