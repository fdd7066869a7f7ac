package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation lifecycle states.  Cancelada is terminal: once set, state
// recomputation never moves the reservation out of it.
const (
	EstadoPendiente  = "pendiente"
	EstadoConfirmada = "confirmada"
	EstadoFinalizada = "finalizada"
	EstadoCancelada  = "cancelada"
)

// Billing modes fixed at confirmation time.
const (
	FacturacionGlobal     = "global"
	FacturacionIndividual = "individual"
)

// Payment conditions fixed at confirmation time.
const (
	PagoContado = "contado"
	PagoCredito = "credito"
)

// Cancellation reason catalog.  Reason 5 is reserved for the automatic
// sweep; 8 is the manual default.
var MotivosCancelacion = map[string]string{
	"1": "Cancelación voluntaria del cliente",
	"2": "Cambio de planes del cliente",
	"3": "Problemas de salud",
	"4": "Problemas con documentación",
	"5": "Cancelación automática por falta de pago",
	"6": "Fuerza mayor / Caso fortuito",
	"7": "Error en la reserva",
	"8": "Otro motivo",
}

// MotivoCancelacionAutomatica is the reason id used by the sweep.
const MotivoCancelacionAutomatica = "5"

// MotivoCancelacionOtro is the fallback reason id for manual cancellation.
const MotivoCancelacionOtro = "8"

// Reserva books one room on one departure for a lead passenger plus
// companions.  PrecioUnitario is computed once at creation by the pricing
// resolver and cached; MontoPagado is maintained transactionally as
// payment vouchers are distributed.
//
// Fields:
//  ID                 – primary key identifier.
//  Codigo             – unique human code (RSV-YYYY-NNNN).
//  PaqueteID          – booked package.
//  SalidaID           – booked departure.
//  HabitacionID       – booked room.
//  TitularID          – lead passenger persona.
//  CantidadPasajeros  – passenger count, defaults to the room capacity.
//  PrecioUnitario     – per-passenger price cached at creation.
//  MonedaCodigo       – currency of all monetary fields on this row.
//  MontoPagado        – aggregate of active voucher distributions.
//  Estado             – pendiente | confirmada | finalizada | cancelada.
//  DatosCompletos     – all real passenger identities loaded.
//  ModalidadFacturacion / CondicionPago – fixed when confirming.
//  Observacion        – free-form notes.
//  Activo             – soft-delete flag.
//  FechaCancelacion, MotivoCancelacionID, MotivoCancelacion – cancel metadata.
//  CuposLiberados     – guard so a cancellation never releases cupo twice.
type Reserva struct {
	ID                   uint64          // Reserva.id
	Codigo               string          // Reserva.codigo
	PaqueteID            uint64          // Reserva.paquete_id
	SalidaID             uint64          // Reserva.salida_id
	HabitacionID         uint64          // Reserva.habitacion_id
	TitularID            uint64          // Reserva.titular_id
	CantidadPasajeros    uint32          // Reserva.cantidad_pasajeros
	PrecioUnitario       decimal.Decimal // Reserva.precio_unitario
	MonedaCodigo         string          // Moneda.codigo of the salida, joined on read
	MontoPagado          decimal.Decimal // Reserva.monto_pagado
	Estado               string          // Reserva.estado
	DatosCompletos       bool            // Reserva.datos_completos
	ModalidadFacturacion *string         // Reserva.modalidad_facturacion (nullable)
	CondicionPago        *string         // Reserva.condicion_pago (nullable)
	Observacion          *string         // Reserva.observacion (nullable)
	Activo               bool            // Reserva.activo
	FechaCancelacion     *time.Time      // Reserva.fecha_cancelacion (nullable)
	MotivoCancelacionID  *string         // Reserva.motivo_cancelacion_id (nullable)
	MotivoCancelacion    *string         // Reserva.motivo_cancelacion (nullable)
	CuposLiberados       bool            // Reserva.cupos_liberados
	FechaReserva         time.Time       // Reserva.fecha_reserva
	UpdatedAt            time.Time       // Reserva.fecha_modificacion
}

// Pasajero is one traveller on a reservation.  Placeholder rows
// (PorAsignar) are created at booking time and replaced with real
// identities as the customer supplies them.  MontoPagado is derived from
// active voucher distributions.
type Pasajero struct {
	ID             uint64          // Pasajero.id
	ReservaID      uint64          // Pasajero.reserva_id
	PersonaID      *uint64         // Pasajero.persona_id (nil on placeholders)
	EsTitular      bool            // Pasajero.es_titular
	PorAsignar     bool            // Pasajero.por_asignar
	PrecioAsignado decimal.Decimal // Pasajero.precio_asignado
	MontoPagado    decimal.Decimal // derived: sum of active distribution rows
	FechaRegistro  time.Time       // Pasajero.fecha_registro
}
