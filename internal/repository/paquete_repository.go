package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-agency-api/internal/model"
)

// PaqueteRepo provides read access to the package catalog and the
// services linked into each package.
type PaqueteRepo struct {
	db *sql.DB
}

// NewPaqueteRepo returns a new PaqueteRepo bound to the given database.
func NewPaqueteRepo(db *sql.DB) *PaqueteRepo { return &PaqueteRepo{db: db} }

// GetByID returns one package with its currency code joined in.
// sql.ErrNoRows is returned when the package does not exist.
func (r *PaqueteRepo) GetByID(ctx context.Context, id uint64) (*model.Paquete, error) {
	const q = `SELECT p.id, p.nombre, p.tipo_paquete_id, p.destino_id, p.distribuidora_id,
					  p.moneda_id, m.codigo, p.propio, p.activo, p.fecha_creacion, p.fecha_modificacion
			   FROM Paquete p
			   JOIN Moneda m ON m.id = p.moneda_id
			   WHERE p.id = ?`
	var p model.Paquete
	var distID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Nombre, &p.TipoPaqueteID, &p.DestinoID, &distID,
		&p.MonedaID, &p.MonedaCodigo, &p.Propio, &p.Activo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if distID.Valid {
		d := uint64(distID.Int64)
		p.DistribuidoraID = &d
	}
	return &p, nil
}

// ListActive returns the active packages ordered by name, for the
// public catalog endpoint.  An empty slice is returned when none exist.
func (r *PaqueteRepo) ListActive(ctx context.Context) ([]model.Paquete, error) {
	const q = `SELECT p.id, p.nombre, p.tipo_paquete_id, p.destino_id, p.distribuidora_id,
					  p.moneda_id, m.codigo, p.propio, p.activo, p.fecha_creacion, p.fecha_modificacion
			   FROM Paquete p
			   JOIN Moneda m ON m.id = p.moneda_id
			   WHERE p.activo = 1
			   ORDER BY p.nombre`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Paquete, 0)
	for rows.Next() {
		var p model.Paquete
		var distID sql.NullInt64
		if err := rows.Scan(
			&p.ID, &p.Nombre, &p.TipoPaqueteID, &p.DestinoID, &distID,
			&p.MonedaID, &p.MonedaCodigo, &p.Propio, &p.Activo, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if distID.Valid {
			d := uint64(distID.Int64)
			p.DistribuidoraID = &d
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListServicios returns the services linked into a package together
// with each service's base price, currency and per-package override.
// Ordered by service id for deterministic totals.
func (r *PaqueteRepo) ListServicios(ctx context.Context, paqueteID uint64) ([]model.PaqueteServicio, error) {
	const q = `SELECT ps.id, ps.paquete_id, ps.servicio_id, ps.precio,
					  s.id, s.nombre, s.precio, s.moneda_id, m.codigo, s.activo
			   FROM PaqueteServicio ps
			   JOIN Servicio s ON s.id = ps.servicio_id
			   JOIN Moneda m ON m.id = s.moneda_id
			   WHERE ps.paquete_id = ?
			   ORDER BY ps.servicio_id`
	rows, err := r.db.QueryContext(ctx, q, paqueteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PaqueteServicio, 0)
	for rows.Next() {
		var ps model.PaqueteServicio
		if err := rows.Scan(
			&ps.ID, &ps.PaqueteID, &ps.ServicioID, &ps.Precio,
			&ps.Servicio.ID, &ps.Servicio.Nombre, &ps.Servicio.Precio,
			&ps.Servicio.MonedaID, &ps.Servicio.MonedaCodigo, &ps.Servicio.Activo,
		); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
