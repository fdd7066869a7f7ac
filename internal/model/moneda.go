package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Moneda is a supported currency.  Reference data: rows are created at
// installation time and never mutated beyond the activo flag.
//
// Fields:
//  ID        – primary key identifier.
//  Nombre    – display name ("Dólar", "Guaraní").
//  Simbolo   – printable symbol ("$", "Gs").
//  Codigo    – unique three letter code ("USD", "PYG").
//  Activo    – whether the currency can be used on new records.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Moneda struct {
	ID        uint64    // Moneda.id
	Nombre    string    // Moneda.nombre
	Simbolo   string    // Moneda.simbolo
	Codigo    string    // Moneda.codigo
	Activo    bool      // Moneda.activo
	CreatedAt time.Time // Moneda.fecha_creacion
	UpdatedAt time.Time // Moneda.fecha_modificacion
}

// CotizacionMoneda is one exchange-rate record for a currency: how many
// guaraníes one unit of the currency is worth from FechaVigencia onward.
// Several records may exist per currency; the one in force for a date is
// the latest record with fecha_vigencia <= that date (newest id wins on
// ties).
//
// Fields:
//  ID               – primary key identifier.
//  MonedaID         – currency this rate belongs to.
//  FechaVigencia    – date from which the rate applies.
//  ValorEnGuaranies – value of one unit in guaraníes.
//  CreatedAt        – creation timestamp.
type CotizacionMoneda struct {
	ID               uint64          // CotizacionMoneda.id
	MonedaID         uint64          // CotizacionMoneda.moneda_id
	FechaVigencia    time.Time       // CotizacionMoneda.fecha_vigencia
	ValorEnGuaranies decimal.Decimal // CotizacionMoneda.valor_en_guaranies
	CreatedAt        time.Time       // CotizacionMoneda.fecha_creacion
}
