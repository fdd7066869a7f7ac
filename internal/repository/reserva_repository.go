package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/booking"
	"github.com/iliyamo/travel-agency-api/internal/model"
)

// ReservaRepo provides CRUD operations for reservations.  Booking,
// payment and cancellation flows run through Tx-scoped methods so the
// handler can combine reservation writes, passenger writes and cupo
// mutation in one atomic transaction.  All timestamp fields are
// assumed to be stored in UTC.
type ReservaRepo struct {
	db *sql.DB
}

// NewReservaRepo returns a new ReservaRepo bound to the given database.
func NewReservaRepo(db *sql.DB) *ReservaRepo { return &ReservaRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *ReservaRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It generates the next RSV-YYYY-NNNN code, populates
// the generated ID and code on the provided record and reads back the
// row defaults.  The caller must commit or rollback the transaction.
func (r *ReservaRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reserva) error {
	codigo, err := nextCodigoTx(ctx, tx, "Reserva", "codigo", "RSV", time.Now().UTC())
	if err != nil {
		return err
	}
	res.Codigo = codigo
	const q = `INSERT INTO Reserva
			   (codigo, paquete_id, salida_id, habitacion_id, titular_id,
				cantidad_pasajeros, precio_unitario, monto_pagado, estado,
				datos_completos, activo, cupos_liberados)
			   VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, 0, 1, 0)`
	result, err := tx.ExecContext(ctx, q,
		res.Codigo, res.PaqueteID, res.SalidaID, res.HabitacionID, res.TitularID,
		res.CantidadPasajeros, res.PrecioUnitario, model.EstadoPendiente,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Estado = model.EstadoPendiente
	res.MontoPagado = decimal.Zero
	res.Activo = true
	const sel = `SELECT fecha_reserva, fecha_modificacion FROM Reserva WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.FechaReserva, &res.UpdatedAt)
}

const reservaColumns = `r.id, r.codigo, r.paquete_id, r.salida_id, r.habitacion_id, r.titular_id,
						r.cantidad_pasajeros, r.precio_unitario, m.codigo, r.monto_pagado,
						r.estado, r.datos_completos, r.modalidad_facturacion, r.condicion_pago,
						r.observacion, r.activo, r.fecha_cancelacion, r.motivo_cancelacion_id,
						r.motivo_cancelacion, r.cupos_liberados, r.fecha_reserva, r.fecha_modificacion`

// scanReserva reads one joined reservation row.
func scanReserva(scan func(dest ...interface{}) error) (*model.Reserva, error) {
	var res model.Reserva
	var modalidad, condicion, observacion, motivoID, motivo sql.NullString
	var fechaCancel sql.NullTime
	err := scan(
		&res.ID, &res.Codigo, &res.PaqueteID, &res.SalidaID, &res.HabitacionID, &res.TitularID,
		&res.CantidadPasajeros, &res.PrecioUnitario, &res.MonedaCodigo, &res.MontoPagado,
		&res.Estado, &res.DatosCompletos, &modalidad, &condicion,
		&observacion, &res.Activo, &fechaCancel, &motivoID,
		&motivo, &res.CuposLiberados, &res.FechaReserva, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if modalidad.Valid {
		v := modalidad.String
		res.ModalidadFacturacion = &v
	}
	if condicion.Valid {
		v := condicion.String
		res.CondicionPago = &v
	}
	if observacion.Valid {
		v := observacion.String
		res.Observacion = &v
	}
	if motivoID.Valid {
		v := motivoID.String
		res.MotivoCancelacionID = &v
	}
	if motivo.Valid {
		v := motivo.String
		res.MotivoCancelacion = &v
	}
	if fechaCancel.Valid {
		t := fechaCancel.Time
		res.FechaCancelacion = &t
	}
	return &res, nil
}

// GetByID returns one reservation with the departure currency joined
// in.  sql.ErrNoRows is returned when it does not exist.
func (r *ReservaRepo) GetByID(ctx context.Context, id uint64) (*model.Reserva, error) {
	q := `SELECT ` + reservaColumns + `
		  FROM Reserva r
		  JOIN SalidaPaquete s ON s.id = r.salida_id
		  JOIN Moneda m ON m.id = s.moneda_id
		  WHERE r.id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	return scanReserva(row.Scan)
}

// GetByIDTx is GetByID within a transaction, locking the reservation
// row so payment and cancellation flows serialize per reservation.
func (r *ReservaRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reserva, error) {
	q := `SELECT ` + reservaColumns + `
		  FROM Reserva r
		  JOIN SalidaPaquete s ON s.id = r.salida_id
		  JOIN Moneda m ON m.id = s.moneda_id
		  WHERE r.id = ?
		  FOR UPDATE OF r`
	row := tx.QueryRowContext(ctx, q, id)
	return scanReserva(row.Scan)
}

// LoadSnapshotTx builds the state-machine view of a reservation inside
// a transaction: header amounts plus the per-passenger paid sums
// derived from active voucher distributions.  Refund vouchers subtract;
// a passenger's paid amount is floored at zero.
func (r *ReservaRepo) LoadSnapshotTx(ctx context.Context, tx *sql.Tx, reservaID uint64) (booking.Snapshot, error) {
	const headQ = `SELECT r.estado, r.cantidad_pasajeros, r.precio_unitario, s.senia
				   FROM Reserva r
				   JOIN SalidaPaquete s ON s.id = r.salida_id
				   WHERE r.id = ?`
	var snap booking.Snapshot
	err := tx.QueryRowContext(ctx, headQ, reservaID).Scan(
		&snap.Estado, &snap.CantidadPasajeros, &snap.PrecioUnitario, &snap.Senia,
	)
	if err != nil {
		return booking.Snapshot{}, err
	}
	const paxQ = `SELECT p.id, p.es_titular, p.por_asignar, p.precio_asignado, ` + paidSumExpr + `
				  FROM Pasajero p
				  LEFT JOIN ComprobantePagoDistribucion d ON d.pasajero_id = p.id
				  LEFT JOIN ComprobantePago c ON c.id = d.comprobante_id AND c.activo = 1
				  WHERE p.reserva_id = ?
				  GROUP BY p.id, p.es_titular, p.por_asignar, p.precio_asignado
				  ORDER BY p.id`
	rows, err := tx.QueryContext(ctx, paxQ, reservaID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	defer rows.Close()
	total := decimal.Zero
	for rows.Next() {
		var p booking.Passenger
		if err := rows.Scan(&p.ID, &p.EsTitular, &p.PorAsignar, &p.PrecioAsignado, &p.MontoPagado); err != nil {
			return booking.Snapshot{}, err
		}
		total = total.Add(p.MontoPagado)
		snap.Pasajeros = append(snap.Pasajeros, p)
	}
	if err := rows.Err(); err != nil {
		return booking.Snapshot{}, err
	}
	snap.MontoPagado = total
	return snap, nil
}

// ApplyRecomputeTx persists the outcome of a state recomputation:
// estado, datos_completos and the aggregate paid amount.
func (r *ReservaRepo) ApplyRecomputeTx(ctx context.Context, tx *sql.Tx, reservaID uint64, estado string, datosCompletos bool, montoPagado decimal.Decimal) error {
	const q = `UPDATE Reserva
			   SET estado = ?, datos_completos = ?, monto_pagado = ?, fecha_modificacion = NOW()
			   WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, estado, datosCompletos, montoPagado, reservaID)
	return err
}

// ConfirmBillingTx fixes the billing mode and payment condition on the
// reservation.  Validation of the pair happens in the booking package
// before this is called.
func (r *ReservaRepo) ConfirmBillingTx(ctx context.Context, tx *sql.Tx, reservaID uint64, modalidad, condicion string) error {
	const q = `UPDATE Reserva
			   SET modalidad_facturacion = ?, condicion_pago = ?, fecha_modificacion = NOW()
			   WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, modalidad, condicion, reservaID)
	return err
}

// MarkCancelledTx moves a reservation into the terminal cancelled
// state with its reason metadata.  ErrAlreadyCancelled is returned
// when the reservation is already cancelled; nothing is modified in
// that case and cupo is never double-released.  The returned record is
// the pre-cancellation row so the caller can decide on cupo release.
func (r *ReservaRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, reservaID uint64, motivoID, motivo string, observaciones *string) (*model.Reserva, error) {
	res, err := r.GetByIDTx(ctx, tx, reservaID)
	if err != nil {
		return nil, err
	}
	if res.Estado == model.EstadoCancelada {
		return nil, ErrAlreadyCancelled
	}
	const q = `UPDATE Reserva
			   SET estado = ?, fecha_cancelacion = NOW(), motivo_cancelacion_id = ?,
				   motivo_cancelacion = ?, observacion = COALESCE(?, observacion),
				   fecha_modificacion = NOW()
			   WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, model.EstadoCancelada, motivoID, motivo, observaciones, reservaID); err != nil {
		return nil, err
	}
	return res, nil
}

// SetCuposLiberadosTx flips the double-release guard after cupo has
// been returned to the departure.
func (r *ReservaRepo) SetCuposLiberadosTx(ctx context.Context, tx *sql.Tx, reservaID uint64) error {
	const q = `UPDATE Reserva SET cupos_liberados = 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, reservaID)
	return err
}

// AutoCancelCandidate is one reservation the cancellation sweep should
// evaluate: the id plus the departure date used for the day window.
type AutoCancelCandidate struct {
	ReservaID   uint64
	Codigo      string
	FechaSalida time.Time
}

// ListAutoCancelCandidates returns active reservations in a
// cancellable state whose departure falls within the payment window.
// The fully-paid exclusion is NOT applied here; the sweep re-checks it
// per item inside the item's own transaction, against fresh sums.
func (r *ReservaRepo) ListAutoCancelCandidates(ctx context.Context, before time.Time) ([]AutoCancelCandidate, error) {
	const q = `SELECT r.id, r.codigo, s.fecha_salida
			   FROM Reserva r
			   JOIN SalidaPaquete s ON s.id = r.salida_id
			   WHERE r.activo = 1
				 AND r.estado IN (?, ?)
				 AND s.fecha_salida IS NOT NULL
				 AND s.fecha_salida < ?
			   ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q, model.EstadoPendiente, model.EstadoConfirmada, before.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AutoCancelCandidate, 0)
	for rows.Next() {
		var c AutoCancelCandidate
		if err := rows.Scan(&c.ReservaID, &c.Codigo, &c.FechaSalida); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
