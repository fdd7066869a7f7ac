package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/travel-agency-api/internal/booking"
	"github.com/iliyamo/travel-agency-api/internal/model"
)

// ComprobanteRepo provides operations on payment vouchers and their
// per-passenger distributions.  Voucher creation and annulment are
// Tx-scoped: the handler combines them with the reservation state
// recomputation in one atomic transaction so a voucher can never be
// persisted without its distributions.
type ComprobanteRepo struct {
	db *sql.DB
}

// NewComprobanteRepo returns a new ComprobanteRepo bound to the given
// database.
func NewComprobanteRepo(db *sql.DB) *ComprobanteRepo { return &ComprobanteRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *ComprobanteRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a voucher and its distribution rows within a
// transaction.  It generates the next CPG-YYYY-NNNN number and
// populates the generated ID and number on the provided record.
// Distribution validation (exact sum) must have happened before this
// is called.
func (r *ComprobanteRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.ComprobantePago, distribuciones []booking.Distribucion) error {
	numero, err := nextCodigoTx(ctx, tx, "ComprobantePago", "numero_comprobante", "CPG", time.Now().UTC())
	if err != nil {
		return err
	}
	c.NumeroComprobante = numero
	const q = `INSERT INTO ComprobantePago
			   (numero_comprobante, reserva_id, tipo, monto, metodo_pago, referencia, observaciones, empleado_id, activo)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`
	result, err := tx.ExecContext(ctx, q,
		c.NumeroComprobante, c.ReservaID, c.Tipo, c.Monto, c.MetodoPago,
		c.Referencia, c.Observaciones, c.EmpleadoID,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.Activo = true
	if len(distribuciones) == 0 {
		return nil
	}
	query := `INSERT INTO ComprobantePagoDistribucion (comprobante_id, pasajero_id, monto) VALUES `
	args := make([]interface{}, 0, len(distribuciones)*3)
	for i, d := range distribuciones {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, c.ID, d.PasajeroID, d.Monto)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	const sel = `SELECT fecha_emision FROM ComprobantePago WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, c.ID).Scan(&c.FechaEmision)
}

// GetByID returns one voucher.  sql.ErrNoRows is returned when it does
// not exist.
func (r *ComprobanteRepo) GetByID(ctx context.Context, id uint64) (*model.ComprobantePago, error) {
	const q = `SELECT id, numero_comprobante, reserva_id, tipo, monto, metodo_pago,
					  referencia, observaciones, empleado_id, activo, fecha_emision
			   FROM ComprobantePago WHERE id = ?`
	var c model.ComprobantePago
	var referencia, observaciones sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.NumeroComprobante, &c.ReservaID, &c.Tipo, &c.Monto, &c.MetodoPago,
		&referencia, &observaciones, &c.EmpleadoID, &c.Activo, &c.FechaEmision,
	)
	if err != nil {
		return nil, err
	}
	if referencia.Valid {
		v := referencia.String
		c.Referencia = &v
	}
	if observaciones.Valid {
		v := observaciones.String
		c.Observaciones = &v
	}
	return &c, nil
}

// AnularTx deactivates a voucher within a transaction and returns the
// reservation it belonged to so the caller can recompute aggregates.
// sql.ErrNoRows is returned for an unknown voucher, ErrConflict when
// the voucher is already annulled.
func (r *ComprobanteRepo) AnularTx(ctx context.Context, tx *sql.Tx, comprobanteID uint64) (uint64, error) {
	const sel = `SELECT reserva_id, activo FROM ComprobantePago WHERE id = ? FOR UPDATE`
	var reservaID uint64
	var activo bool
	if err := tx.QueryRowContext(ctx, sel, comprobanteID).Scan(&reservaID, &activo); err != nil {
		return 0, err
	}
	if !activo {
		return 0, ErrConflict
	}
	const q = `UPDATE ComprobantePago SET activo = 0 WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, comprobanteID); err != nil {
		return 0, err
	}
	return reservaID, nil
}

// ListByReserva returns the vouchers of a reservation ordered by
// emission time, newest first, for account statements.
func (r *ComprobanteRepo) ListByReserva(ctx context.Context, reservaID uint64) ([]model.ComprobantePago, error) {
	const q = `SELECT id, numero_comprobante, reserva_id, tipo, monto, metodo_pago,
					  referencia, observaciones, empleado_id, activo, fecha_emision
			   FROM ComprobantePago
			   WHERE reserva_id = ?
			   ORDER BY fecha_emision DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, reservaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ComprobantePago, 0)
	for rows.Next() {
		var c model.ComprobantePago
		var referencia, observaciones sql.NullString
		if err := rows.Scan(
			&c.ID, &c.NumeroComprobante, &c.ReservaID, &c.Tipo, &c.Monto, &c.MetodoPago,
			&referencia, &observaciones, &c.EmpleadoID, &c.Activo, &c.FechaEmision,
		); err != nil {
			return nil, err
		}
		if referencia.Valid {
			v := referencia.String
			c.Referencia = &v
		}
		if observaciones.Valid {
			v := observaciones.String
			c.Observaciones = &v
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
