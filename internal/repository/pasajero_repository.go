package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/model"
)

// PasajeroRepo provides operations on the passengers of a reservation.
// Passenger rows are created in bulk at booking time (one titular plus
// placeholders) and upgraded to real identities as the customer
// supplies them.
type PasajeroRepo struct {
	db *sql.DB
}

// NewPasajeroRepo returns a new PasajeroRepo bound to the given database.
func NewPasajeroRepo(db *sql.DB) *PasajeroRepo { return &PasajeroRepo{db: db} }

// paidSumExpr derives a passenger's paid amount from voucher
// distributions.  The ComprobantePago join keeps activo = 1 in its
// ON-clause, so a distribution of an annulled voucher still produces a
// row with c NULL-ed out; that row must count as zero, not fall through
// to the positive branch.  Refunds subtract and the sum is floored at
// zero.
const paidSumExpr = `GREATEST(COALESCE(SUM(
					   CASE WHEN c.id IS NULL THEN 0
							WHEN c.tipo = 'devolucion' THEN -d.monto
							ELSE d.monto END), 0), 0)`

// CreateForReservaTx inserts the passenger rows for a new reservation
// within a transaction: one titular row bound to the lead persona and
// cantidad-1 placeholder rows.  Every row gets the reservation's unit
// price as its assigned price.
func (r *PasajeroRepo) CreateForReservaTx(ctx context.Context, tx *sql.Tx, reservaID, titularPersonaID uint64, cantidad uint32, precioAsignado decimal.Decimal) error {
	if cantidad == 0 {
		return nil
	}
	query := `INSERT INTO Pasajero (reserva_id, persona_id, es_titular, por_asignar, precio_asignado) VALUES `
	args := make([]interface{}, 0, int(cantidad)*5)
	query += "(?, ?, 1, 0, ?)"
	args = append(args, reservaID, titularPersonaID, precioAsignado)
	for i := uint32(1); i < cantidad; i++ {
		query += ",(?, NULL, 0, 1, ?)"
		args = append(args, reservaID, precioAsignado)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// AssignIdentityTx binds a real persona to a placeholder passenger.
// It only matches placeholder rows of the given reservation; assigning
// an already-assigned passenger or one belonging to another
// reservation returns ErrConflict.
func (r *PasajeroRepo) AssignIdentityTx(ctx context.Context, tx *sql.Tx, reservaID, pasajeroID, personaID uint64) error {
	const q = `UPDATE Pasajero SET persona_id = ?, por_asignar = 0
			   WHERE id = ? AND reserva_id = ? AND por_asignar = 1`
	result, err := tx.ExecContext(ctx, q, personaID, pasajeroID, reservaID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// PasajeroDetail is a passenger row with its derived paid amount, as
// returned for account statements and reservation detail views.
type PasajeroDetail struct {
	ID              uint64          `json:"id"`
	EsTitular       bool            `json:"es_titular"`
	PorAsignar      bool            `json:"por_asignar"`
	PersonaID       *uint64         `json:"persona_id,omitempty"`
	Nombre          *string         `json:"nombre,omitempty"`
	Apellido        *string         `json:"apellido,omitempty"`
	NumeroDocumento *string         `json:"numero_documento,omitempty"`
	PrecioAsignado  decimal.Decimal `json:"precio_asignado"`
	MontoPagado     decimal.Decimal `json:"monto_pagado"`
}

// ListByReserva returns the passengers of a reservation ordered by id,
// each with its paid amount derived from active voucher distributions
// (refunds subtract, floored at zero) and the persona identity joined
// in where assigned.
func (r *PasajeroRepo) ListByReserva(ctx context.Context, reservaID uint64) ([]PasajeroDetail, error) {
	const q = `SELECT p.id, p.es_titular, p.por_asignar, p.persona_id,
					  pe.nombre, pe.apellido, pe.numero_documento, p.precio_asignado, ` + paidSumExpr + `
			   FROM Pasajero p
			   LEFT JOIN Persona pe ON pe.id = p.persona_id
			   LEFT JOIN ComprobantePagoDistribucion d ON d.pasajero_id = p.id
			   LEFT JOIN ComprobantePago c ON c.id = d.comprobante_id AND c.activo = 1
			   WHERE p.reserva_id = ?
			   GROUP BY p.id, p.es_titular, p.por_asignar, p.persona_id,
						pe.nombre, pe.apellido, pe.numero_documento, p.precio_asignado
			   ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q, reservaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PasajeroDetail, 0)
	for rows.Next() {
		var d PasajeroDetail
		var personaID sql.NullInt64
		var nombre, apellido, documento sql.NullString
		if err := rows.Scan(
			&d.ID, &d.EsTitular, &d.PorAsignar, &personaID,
			&nombre, &apellido, &documento, &d.PrecioAsignado, &d.MontoPagado,
		); err != nil {
			return nil, err
		}
		if personaID.Valid {
			pid := uint64(personaID.Int64)
			d.PersonaID = &pid
		}
		if nombre.Valid {
			v := nombre.String
			d.Nombre = &v
		}
		if apellido.Valid {
			v := apellido.String
			d.Apellido = &v
		}
		if documento.Valid {
			v := documento.String
			d.NumeroDocumento = &v
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsInReservaTx reports whether a passenger id belongs to the
// reservation, used to validate voucher distributions before insert.
func (r *PasajeroRepo) ExistsInReservaTx(ctx context.Context, tx *sql.Tx, reservaID, pasajeroID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM Pasajero WHERE id = ? AND reserva_id = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, pasajeroID, reservaID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetPersonaByID returns one persona record.  sql.ErrNoRows is
// returned when the persona does not exist.
func (r *PasajeroRepo) GetPersonaByID(ctx context.Context, id uint64) (*model.Persona, error) {
	const q = `SELECT id, nombre, apellido, numero_documento, telefono, email, fecha_nacimiento, activo, fecha_creacion
			   FROM Persona WHERE id = ?`
	var p model.Persona
	var telefono, email sql.NullString
	var nacimiento sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Nombre, &p.Apellido, &p.NumeroDocumento,
		&telefono, &email, &nacimiento, &p.Activo, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if telefono.Valid {
		v := telefono.String
		p.Telefono = &v
	}
	if email.Valid {
		v := email.String
		p.Email = &v
	}
	if nacimiento.Valid {
		t := nacimiento.Time
		p.FechaNacimiento = &t
	}
	return &p, nil
}
