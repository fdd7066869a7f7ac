package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hotel groups the rooms available at a property.  Nightly prices are
// defined per room; the hotel only carries identity and a currency
// default.
type Hotel struct {
	ID        uint64    // Hotel.id
	Nombre    string    // Hotel.nombre
	Activo    bool      // Hotel.activo
	CreatedAt time.Time // Hotel.fecha_creacion
	UpdatedAt time.Time // Hotel.fecha_modificacion
}

// TipoHabitacion describes a room category and its passenger capacity
// (single, double, triple...).
type TipoHabitacion struct {
	ID        uint64 // TipoHabitacion.id
	Nombre    string // TipoHabitacion.nombre
	Capacidad uint32 // TipoHabitacion.capacidad
}

// Habitacion is one bookable room type at a hotel with its nightly base
// price.  The price may be overridden per departure via the catalog
// tables on SalidaPaquete.
//
// Fields:
//  ID           – primary key identifier.
//  HotelID      – owning hotel.
//  TipoID       – room type reference.
//  Capacidad    – passenger capacity, joined from the room type.
//  PrecioNoche  – nightly base price.
//  MonedaID     – currency of the nightly price.
//  MonedaCodigo – code of that currency, joined on read.
//  Activo       – soft-delete flag.
type Habitacion struct {
	ID           uint64          // Habitacion.id
	HotelID      uint64          // Habitacion.hotel_id
	TipoID       uint64          // Habitacion.tipo_habitacion_id
	Capacidad    uint32          // TipoHabitacion.capacidad, joined on read
	PrecioNoche  decimal.Decimal // Habitacion.precio_noche
	MonedaID     uint64          // Habitacion.moneda_id
	MonedaCodigo string          // Moneda.codigo, joined on read
	Activo       bool            // Habitacion.activo
}
