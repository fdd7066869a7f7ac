package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Paquete is a tour package offered by the agency.  A package is either
// propio (operated by the agency, markup = ganancia) or sourced from a
// distribuidora (markup = comision).  Departure dates, capacity and
// pricing live on the child SalidaPaquete records.
//
// Fields:
//  ID             – primary key identifier.
//  Nombre         – package name.
//  TipoPaqueteID  – package type reference.
//  DestinoID      – destination reference.
//  DistribuidoraID – sourcing distributor (nil for owned packages).
//  MonedaID       – currency the package is sold in.
//  MonedaCodigo   – code of that currency, loaded on read.
//  Propio         – true when the package is operated by the agency.
//  Activo         – soft-delete flag.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Paquete struct {
	ID              uint64    // Paquete.id
	Nombre          string    // Paquete.nombre
	TipoPaqueteID   uint64    // Paquete.tipo_paquete_id
	DestinoID       uint64    // Paquete.destino_id
	DistribuidoraID *uint64   // Paquete.distribuidora_id (nullable)
	MonedaID        uint64    // Paquete.moneda_id
	MonedaCodigo    string    // Moneda.codigo, joined on read
	Propio          bool      // Paquete.propio
	Activo          bool      // Paquete.activo
	CreatedAt       time.Time // Paquete.fecha_creacion
	UpdatedAt       time.Time // Paquete.fecha_modificacion
}

// Servicio is a bookable service (transfer, excursion, insurance) with a
// base price in its own currency.
type Servicio struct {
	ID           uint64          // Servicio.id
	Nombre       string          // Servicio.nombre
	Precio       decimal.Decimal // Servicio.precio
	MonedaID     uint64          // Servicio.moneda_id
	MonedaCodigo string          // Moneda.codigo, joined on read
	Activo       bool            // Servicio.activo
}

// PaqueteServicio links a service into a package.  Precio, when positive,
// overrides the service's base price for this package.
type PaqueteServicio struct {
	ID         uint64          // PaqueteServicio.id
	PaqueteID  uint64          // PaqueteServicio.paquete_id
	ServicioID uint64          // PaqueteServicio.servicio_id
	Precio     decimal.Decimal // PaqueteServicio.precio (0 = use service base price)
	Servicio   Servicio        // joined service row
}
