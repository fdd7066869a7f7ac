// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by publishers and the background consumer.
const (
	ReservaConfirmedQueue = "reserva.confirmada"
	ReservaCancelledQueue = "reserva.cancelada"
)

// ReservaConfirmedEvent is published when a reservation reaches the
// confirmed state (deposit covered). It contains enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type ReservaConfirmedEvent struct {
	EventID           string `json:"event_id"`
	ReservaID         uint64 `json:"reserva_id"`
	Codigo            string `json:"codigo"`
	PaqueteID         uint64 `json:"paquete_id"`
	SalidaID          uint64 `json:"salida_id"`
	TitularID         uint64 `json:"titular_id"`
	CantidadPasajeros uint32 `json:"cantidad_pasajeros"`
	MontoPagado       string `json:"monto_pagado"`
	Moneda            string `json:"moneda"`
	ConfirmedAt       string `json:"confirmed_at"`
}

// ReservaCancelledEvent is published when a reservation is cancelled,
// whether manually or by the automatic payment-deadline sweep.
type ReservaCancelledEvent struct {
	EventID      string `json:"event_id"`
	ReservaID    uint64 `json:"reserva_id"`
	Codigo       string `json:"codigo"`
	SalidaID     uint64 `json:"salida_id"`
	MotivoID     string `json:"motivo_id"`
	Motivo       string `json:"motivo"`
	CupoLiberado bool   `json:"cupo_liberado"`
	CancelledAt  string `json:"cancelled_at"`
}
