package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/currency"
	"github.com/iliyamo/travel-agency-api/internal/model"
)

// CurrencyRepo provides read access to currencies and exchange rates
// and registration of new rate records.  It implements
// currency.RateSource so the converter can be wired straight onto it.
type CurrencyRepo struct {
	db *sql.DB
}

// NewCurrencyRepo returns a new CurrencyRepo bound to the given database.
func NewCurrencyRepo(db *sql.DB) *CurrencyRepo { return &CurrencyRepo{db: db} }

// GetMonedaByCodigo returns the currency with the given ISO-style code
// (e.g. "USD").  sql.ErrNoRows is returned when the code is unknown.
func (r *CurrencyRepo) GetMonedaByCodigo(ctx context.Context, codigo string) (*model.Moneda, error) {
	const q = `SELECT id, nombre, simbolo, codigo, activo, fecha_creacion, fecha_modificacion
			   FROM Moneda WHERE codigo = ?`
	var m model.Moneda
	err := r.db.QueryRowContext(ctx, q, codigo).Scan(
		&m.ID, &m.Nombre, &m.Simbolo, &m.Codigo, &m.Activo, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// EffectiveRate returns the "value in guaraníes" of one unit of the
// given currency as of the given date: the rate record with the
// greatest fecha_vigencia ≤ asOf, ties broken by the most recently
// inserted row.  currency.ErrNoEffectiveRate is returned when no such
// record exists.
func (r *CurrencyRepo) EffectiveRate(ctx context.Context, codigo string, asOf time.Time) (decimal.Decimal, error) {
	const q = `SELECT c.valor_en_guaranies
			   FROM CotizacionMoneda c
			   JOIN Moneda m ON m.id = c.moneda_id
			   WHERE m.codigo = ? AND c.fecha_vigencia <= ?
			   ORDER BY c.fecha_vigencia DESC, c.id DESC
			   LIMIT 1`
	var valor decimal.Decimal
	err := r.db.QueryRowContext(ctx, q, codigo, asOf.Format("2006-01-02")).Scan(&valor)
	if err == sql.ErrNoRows {
		return decimal.Zero, currency.ErrNoEffectiveRate
	}
	if err != nil {
		return decimal.Zero, err
	}
	return valor, nil
}

// CreateCotizacion registers a new exchange-rate record and populates
// the generated ID on the provided struct.
func (r *CurrencyRepo) CreateCotizacion(ctx context.Context, c *model.CotizacionMoneda) error {
	const q = `INSERT INTO CotizacionMoneda (moneda_id, fecha_vigencia, valor_en_guaranies)
			   VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, c.MonedaID, c.FechaVigencia.Format("2006-01-02"), c.ValorEnGuaranies)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetVigente returns the full effective rate record for a currency code
// on a date, for the rate-lookup endpoint.  sql.ErrNoRows propagates
// when no rate is registered on or before the date.
func (r *CurrencyRepo) GetVigente(ctx context.Context, codigo string, asOf time.Time) (*model.CotizacionMoneda, error) {
	const q = `SELECT c.id, c.moneda_id, c.fecha_vigencia, c.valor_en_guaranies, c.fecha_creacion
			   FROM CotizacionMoneda c
			   JOIN Moneda m ON m.id = c.moneda_id
			   WHERE m.codigo = ? AND c.fecha_vigencia <= ?
			   ORDER BY c.fecha_vigencia DESC, c.id DESC
			   LIMIT 1`
	var c model.CotizacionMoneda
	err := r.db.QueryRowContext(ctx, q, codigo, asOf.Format("2006-01-02")).Scan(
		&c.ID, &c.MonedaID, &c.FechaVigencia, &c.ValorEnGuaranies, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
