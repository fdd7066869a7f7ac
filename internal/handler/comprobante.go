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
	"github.com/iliyamo/travel-agency-api/internal/money"
	"github.com/iliyamo/travel-agency-api/internal/queue"
	"github.com/iliyamo/travel-agency-api/internal/repository"
	publisher "github.com/iliyamo/travel-agency-api/internal/service"
)

// ComprobanteHandler registers and annuls payment vouchers.  Voucher
// creation is the only write path for passenger payments: the voucher,
// its distribution rows and the reservation state recomputation commit
// in a single transaction, so a voucher can never exist without its
// distributions nor leave stale aggregates behind.
type ComprobanteHandler struct {
	ComprobanteRepo *repository.ComprobanteRepo
	ReservaRepo     *repository.ReservaRepo
	PasajeroRepo    *repository.PasajeroRepo
}

// NewComprobanteHandler constructs a ComprobanteHandler with the
// provided dependencies.  All dependencies must be non-nil.
func NewComprobanteHandler(comprobanteRepo *repository.ComprobanteRepo, reservaRepo *repository.ReservaRepo, pasajeroRepo *repository.PasajeroRepo) *ComprobanteHandler {
	if comprobanteRepo == nil || reservaRepo == nil || pasajeroRepo == nil {
		panic("nil dependency passed to NewComprobanteHandler")
	}
	return &ComprobanteHandler{
		ComprobanteRepo: comprobanteRepo,
		ReservaRepo:     reservaRepo,
		PasajeroRepo:    pasajeroRepo,
	}
}

// Create handles POST /v1/comprobantes.  The voucher amount must be
// distributed exactly across passengers of the reservation; a sum
// mismatch rejects the whole request with 400 and nothing is
// persisted.
func (h *ComprobanteHandler) Create(c echo.Context) error {
	empleadoID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ReservaID     uint64  `json:"reserva_id"`
		Tipo          string  `json:"tipo"`
		MetodoPago    string  `json:"metodo_pago"`
		Monto         string  `json:"monto"`
		Referencia    *string `json:"referencia"`
		Observaciones *string `json:"observaciones"`
		Distribuciones []struct {
			PasajeroID uint64 `json:"pasajero_id"`
			Monto      string `json:"monto"`
		} `json:"distribuciones"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservaID == 0 || body.MetodoPago == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reserva_id and metodo_pago are required"})
	}
	switch body.Tipo {
	case model.ComprobanteSenia, model.ComprobantePagoParcial, model.ComprobantePagoTotal, model.ComprobanteDevolucion:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tipo"})
	}
	monto := money.ParseDecimal(body.Monto)
	if !monto.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "monto must be positive"})
	}
	distribuciones := make([]booking.Distribucion, 0, len(body.Distribuciones))
	for _, d := range body.Distribuciones {
		distribuciones = append(distribuciones, booking.Distribucion{
			PasajeroID: d.PasajeroID,
			Monto:      money.ParseDecimal(d.Monto),
		})
	}
	if err := booking.ValidarDistribuciones(monto, distribuciones); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "distribuciones must sum exactly to monto"})
	}
	ctx := c.Request().Context()

	tx, err := h.ComprobanteRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.ReservaRepo.GetByIDTx(ctx, tx, body.ReservaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if res.Estado == model.EstadoCancelada {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reserva is cancelled"})
	}
	for _, d := range distribuciones {
		ok, err := h.PasajeroRepo.ExistsInReservaTx(ctx, tx, body.ReservaID, d.PasajeroID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "pasajero does not belong to reserva"})
		}
	}

	comp := &model.ComprobantePago{
		ReservaID:     body.ReservaID,
		Tipo:          body.Tipo,
		Monto:         monto,
		MetodoPago:    body.MetodoPago,
		Referencia:    body.Referencia,
		Observaciones: body.Observaciones,
		EmpleadoID:    empleadoID,
	}
	if err := h.ComprobanteRepo.CreateTx(ctx, tx, comp, distribuciones); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create comprobante"})
	}
	snap, err := h.ReservaRepo.LoadSnapshotTx(ctx, tx, body.ReservaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute estado"})
	}
	estado, datosCompletos := booking.Recompute(snap)
	if err := h.ReservaRepo.ApplyRecomputeTx(ctx, tx, body.ReservaID, estado, datosCompletos, snap.MontoPagado); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute estado"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	if estado == model.EstadoConfirmada && res.Estado != model.EstadoConfirmada {
		ev := queue.ReservaConfirmedEvent{
			EventID:           uuid.NewString(),
			ReservaID:         res.ID,
			Codigo:            res.Codigo,
			PaqueteID:         res.PaqueteID,
			SalidaID:          res.SalidaID,
			TitularID:         res.TitularID,
			CantidadPasajeros: res.CantidadPasajeros,
			MontoPagado:       snap.MontoPagado.String(),
			Moneda:            res.MonedaCodigo,
			ConfirmedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := publisher.PublishReservaConfirmed(pubCtx, ev); err != nil {
				log.Printf("comprobante: publish confirmed event failed: %v", err)
			}
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                 comp.ID,
		"numero_comprobante": comp.NumeroComprobante,
		"reserva_id":         comp.ReservaID,
		"tipo":               comp.Tipo,
		"monto":              comp.Monto.String(),
		"metodo_pago":        comp.MetodoPago,
		"estado_reserva":     estado,
		"monto_pagado":       snap.MontoPagado.String(),
		"fecha_emision":      comp.FechaEmision.UTC().Format(time.RFC3339),
	})
}

// Anular handles POST /v1/comprobantes/:id/anular.  Annulment flips
// the voucher inactive and recomputes the reservation aggregates; the
// state machine may regress the reservation (confirmada back to
// pendiente) when the annulled amount drops below the deposit.
func (h *ComprobanteHandler) Anular(c echo.Context) error {
	comprobanteID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comprobante id"})
	}
	ctx := c.Request().Context()

	tx, err := h.ComprobanteRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	reservaID, err := h.ComprobanteRepo.AnularTx(ctx, tx, comprobanteID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comprobante not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "comprobante already annulled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to annul"})
	}
	snap, err := h.ReservaRepo.LoadSnapshotTx(ctx, tx, reservaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute estado"})
	}
	estado, datosCompletos := booking.Recompute(snap)
	if err := h.ReservaRepo.ApplyRecomputeTx(ctx, tx, reservaID, estado, datosCompletos, snap.MontoPagado); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute estado"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"comprobante_id": comprobanteID,
		"reserva_id":     reservaID,
		"estado_reserva": estado,
		"monto_pagado":   snap.MontoPagado.String(),
	})
}
