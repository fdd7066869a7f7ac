package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Voucher types.  A devolucion records money returned to the customer
// and subtracts from the paid total.
const (
	ComprobanteSenia       = "senia"
	ComprobantePagoParcial = "pago_parcial"
	ComprobantePagoTotal   = "pago_total"
	ComprobanteDevolucion  = "devolucion"
)

// ComprobantePago is a payment voucher against one reservation.  Its
// Monto must be fully distributed across the reservation's passengers;
// voiding a voucher flips Activo and triggers a recompute of all derived
// paid amounts.
//
// Fields:
//  ID                 – primary key identifier.
//  NumeroComprobante  – unique human code (CPG-YYYY-NNNN).
//  ReservaID          – reservation the payment applies to.
//  Tipo               – senia | pago_parcial | pago_total | devolucion.
//  Monto              – voucher amount in the reservation currency.
//  MetodoPago         – efectivo, transferencia, tarjeta, etc.
//  Referencia         – external reference (bank slip, card auth code).
//  Observaciones      – free-form notes.
//  EmpleadoID         – staff member who registered the payment.
//  Activo             – false once annulled.
type ComprobantePago struct {
	ID                uint64          // ComprobantePago.id
	NumeroComprobante string          // ComprobantePago.numero_comprobante
	ReservaID         uint64          // ComprobantePago.reserva_id
	Tipo              string          // ComprobantePago.tipo
	Monto             decimal.Decimal // ComprobantePago.monto
	MetodoPago        string          // ComprobantePago.metodo_pago
	Referencia        *string         // ComprobantePago.referencia (nullable)
	Observaciones     *string         // ComprobantePago.observaciones (nullable)
	EmpleadoID        uint64          // ComprobantePago.empleado_id
	Activo            bool            // ComprobantePago.activo
	FechaEmision      time.Time       // ComprobantePago.fecha_emision
}

// ComprobantePagoDistribucion assigns a slice of a voucher's Monto to one
// passenger.  The distribution rows of a voucher must sum exactly to the
// voucher amount.
type ComprobantePagoDistribucion struct {
	ID            uint64          // ComprobantePagoDistribucion.id
	ComprobanteID uint64          // ComprobantePagoDistribucion.comprobante_id
	PasajeroID    uint64          // ComprobantePagoDistribucion.pasajero_id
	Monto         decimal.Decimal // ComprobantePagoDistribucion.monto
}
