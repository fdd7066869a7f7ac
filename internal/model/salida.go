package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalidaPaquete is one departure instance of a package: a concrete
// outbound date with its own capacity, deposit and markup.  Suggested
// sale prices are derived by the pricing resolver and cached here.
//
// Fields:
//  ID              – primary key identifier.
//  PaqueteID       – owning package.
//  FechaSalida     – outbound date.
//  FechaRegreso    – return date (nil when open-ended; counts as 1 night).
//  Senia           – fixed deposit amount required per passenger.
//  Cupo            – remaining aggregate passenger capacity (nil = unlimited).
//  Ganancia        – profit margin percent (owned packages).
//  Comision        – commission percent (distributor packages).
//  MonedaID        – currency the departure is priced in.
//  MonedaCodigo    – code of that currency, joined on read.
//  PrecioSugeridoMin/Max – cached output of the pricing resolver.
//  Activo          – false when the departure is no longer offered.
type SalidaPaquete struct {
	ID                uint64          // SalidaPaquete.id
	PaqueteID         uint64          // SalidaPaquete.paquete_id
	FechaSalida       time.Time       // SalidaPaquete.fecha_salida
	FechaRegreso      *time.Time      // SalidaPaquete.fecha_regreso (nullable)
	Senia             decimal.Decimal // SalidaPaquete.senia
	Cupo              *int64          // SalidaPaquete.cupo (nullable)
	Ganancia          decimal.Decimal // SalidaPaquete.ganancia
	Comision          decimal.Decimal // SalidaPaquete.comision
	MonedaID          uint64          // SalidaPaquete.moneda_id
	MonedaCodigo      string          // Moneda.codigo, joined on read
	PrecioSugeridoMin decimal.Decimal // SalidaPaquete.precio_venta_sugerido_min
	PrecioSugeridoMax decimal.Decimal // SalidaPaquete.precio_venta_sugerido_max
	Activo            bool            // SalidaPaquete.activo
	CreatedAt         time.Time       // SalidaPaquete.fecha_creacion
	UpdatedAt         time.Time       // SalidaPaquete.fecha_modificacion
}

// CupoHabitacionSalida is the remaining bookable count of a room type on
// a departure.  Decremented when a reservation is created, incremented
// back when a reservation releases its hold.
type CupoHabitacionSalida struct {
	ID           uint64 // CupoHabitacionSalida.id
	SalidaID     uint64 // CupoHabitacionSalida.salida_id
	HabitacionID uint64 // CupoHabitacionSalida.habitacion_id
	Cupo         int64  // CupoHabitacionSalida.cupo
}

// PrecioCatalogoHotel overrides the nightly price of every room of a
// hotel for one departure.
type PrecioCatalogoHotel struct {
	ID             uint64          // PrecioCatalogoHotel.id
	SalidaID       uint64          // PrecioCatalogoHotel.salida_id
	HotelID        uint64          // PrecioCatalogoHotel.hotel_id
	PrecioCatalogo decimal.Decimal // PrecioCatalogoHotel.precio_catalogo
}

// PrecioCatalogoHabitacion overrides the nightly price of a single room
// for one departure.  Takes precedence over PrecioCatalogoHotel.
type PrecioCatalogoHabitacion struct {
	ID             uint64          // PrecioCatalogoHabitacion.id
	SalidaID       uint64          // PrecioCatalogoHabitacion.salida_id
	HabitacionID   uint64          // PrecioCatalogoHabitacion.habitacion_id
	PrecioCatalogo decimal.Decimal // PrecioCatalogoHabitacion.precio_catalogo
}
