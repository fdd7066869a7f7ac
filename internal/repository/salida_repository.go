package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/model"
	"github.com/iliyamo/travel-agency-api/internal/pricing"
)

// SalidaRepo provides access to package departures, their room/price
// catalog and the cupo counters.  Cupo mutation methods are Tx-scoped:
// booking and cancellation wrap them together with the reservation
// writes in a single transaction.
type SalidaRepo struct {
	db *sql.DB
}

// NewSalidaRepo returns a new SalidaRepo bound to the given database.
func NewSalidaRepo(db *sql.DB) *SalidaRepo { return &SalidaRepo{db: db} }

// scanSalida reads one joined departure row.
func scanSalida(scan func(dest ...interface{}) error) (*model.SalidaPaquete, error) {
	var s model.SalidaPaquete
	var regreso sql.NullTime
	var cupo sql.NullInt64
	err := scan(
		&s.ID, &s.PaqueteID, &s.FechaSalida, &regreso, &s.Senia, &cupo,
		&s.Ganancia, &s.Comision, &s.MonedaID, &s.MonedaCodigo,
		&s.PrecioSugeridoMin, &s.PrecioSugeridoMax, &s.Activo,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if regreso.Valid {
		t := regreso.Time
		s.FechaRegreso = &t
	}
	if cupo.Valid {
		c := cupo.Int64
		s.Cupo = &c
	}
	return &s, nil
}

const salidaColumns = `s.id, s.paquete_id, s.fecha_salida, s.fecha_regreso, s.senia, s.cupo,
					   s.ganancia, s.comision, s.moneda_id, m.codigo,
					   s.precio_venta_sugerido_min, s.precio_venta_sugerido_max, s.activo,
					   s.fecha_creacion, s.fecha_modificacion`

// GetByID returns one departure with its currency code joined in.
// sql.ErrNoRows is returned when it does not exist.
func (r *SalidaRepo) GetByID(ctx context.Context, id uint64) (*model.SalidaPaquete, error) {
	q := `SELECT ` + salidaColumns + `
		  FROM SalidaPaquete s
		  JOIN Moneda m ON m.id = s.moneda_id
		  WHERE s.id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	return scanSalida(row.Scan)
}

// GetByIDTx is GetByID within the scope of an existing transaction.
func (r *SalidaRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.SalidaPaquete, error) {
	q := `SELECT ` + salidaColumns + `
		  FROM SalidaPaquete s
		  JOIN Moneda m ON m.id = s.moneda_id
		  WHERE s.id = ?`
	row := tx.QueryRowContext(ctx, q, id)
	return scanSalida(row.Scan)
}

// ListByPaquete returns the active departures of a package ordered by
// outbound date, for the public catalog.
func (r *SalidaRepo) ListByPaquete(ctx context.Context, paqueteID uint64) ([]model.SalidaPaquete, error) {
	q := `SELECT ` + salidaColumns + `
		  FROM SalidaPaquete s
		  JOIN Moneda m ON m.id = s.moneda_id
		  WHERE s.paquete_id = ? AND s.activo = 1
		  ORDER BY s.fecha_salida`
	rows, err := r.db.QueryContext(ctx, q, paqueteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SalidaPaquete, 0)
	for rows.Next() {
		s, err := scanSalida(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildPricingInput loads everything the price resolver needs for one
// departure: the rooms on the departure with their remaining cupo and
// base nightly prices (ordered by habitacion_id so tie-breaking is
// deterministic), the per-hotel and per-room price overrides, the
// package's services and the markup parameters.
func (r *SalidaRepo) BuildPricingInput(ctx context.Context, salidaID uint64) (*pricing.SalidaInput, error) {
	const headQ = `SELECT s.fecha_salida, s.fecha_regreso, p.propio, s.ganancia, s.comision, m.codigo
				   FROM SalidaPaquete s
				   JOIN Paquete p ON p.id = s.paquete_id
				   JOIN Moneda m ON m.id = s.moneda_id
				   WHERE s.id = ?`
	var in pricing.SalidaInput
	var regreso sql.NullTime
	err := r.db.QueryRowContext(ctx, headQ, salidaID).Scan(
		&in.FechaSalida, &regreso, &in.Propio, &in.Ganancia, &in.Comision, &in.MonedaCodigo,
	)
	if err != nil {
		return nil, err
	}
	if regreso.Valid {
		t := regreso.Time
		in.FechaRegreso = &t
	}

	const roomsQ = `SELECT ch.habitacion_id, h.hotel_id, ch.cupo, h.precio_noche, m.codigo
					FROM CupoHabitacionSalida ch
					JOIN Habitacion h ON h.id = ch.habitacion_id
					JOIN Moneda m ON m.id = h.moneda_id
					WHERE ch.salida_id = ?
					ORDER BY ch.habitacion_id`
	rows, err := r.db.QueryContext(ctx, roomsQ, salidaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var room pricing.RoomInput
		if err := rows.Scan(&room.HabitacionID, &room.HotelID, &room.Cupo, &room.PrecioNoche, &room.MonedaCodigo); err != nil {
			return nil, err
		}
		in.Rooms = append(in.Rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	in.OverridesHotel = make(map[uint64]decimal.Decimal)
	const hotelQ = `SELECT hotel_id, precio_catalogo FROM PrecioCatalogoHotel WHERE salida_id = ?`
	hrows, err := r.db.QueryContext(ctx, hotelQ, salidaID)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var hotelID uint64
		var precio decimal.Decimal
		if err := hrows.Scan(&hotelID, &precio); err != nil {
			return nil, err
		}
		in.OverridesHotel[hotelID] = precio
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}

	in.OverridesHabitacion = make(map[uint64]decimal.Decimal)
	const habQ = `SELECT habitacion_id, precio_catalogo FROM PrecioCatalogoHabitacion WHERE salida_id = ?`
	habRows, err := r.db.QueryContext(ctx, habQ, salidaID)
	if err != nil {
		return nil, err
	}
	defer habRows.Close()
	for habRows.Next() {
		var habID uint64
		var precio decimal.Decimal
		if err := habRows.Scan(&habID, &precio); err != nil {
			return nil, err
		}
		in.OverridesHabitacion[habID] = precio
	}
	if err := habRows.Err(); err != nil {
		return nil, err
	}

	const servQ = `SELECT ps.servicio_id, sv.precio, ps.precio, m.codigo
				   FROM SalidaPaquete s
				   JOIN PaqueteServicio ps ON ps.paquete_id = s.paquete_id
				   JOIN Servicio sv ON sv.id = ps.servicio_id
				   JOIN Moneda m ON m.id = sv.moneda_id
				   WHERE s.id = ?
				   ORDER BY ps.servicio_id`
	srows, err := r.db.QueryContext(ctx, servQ, salidaID)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var sv pricing.ServicioInput
		if err := srows.Scan(&sv.ServicioID, &sv.PrecioBase, &sv.PrecioOverride, &sv.MonedaCodigo); err != nil {
			return nil, err
		}
		in.Servicios = append(in.Servicios, sv)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return &in, nil
}

// UpdatePreciosSugeridos persists the resolver's suggested sale price
// bounds on the departure row.
func (r *SalidaRepo) UpdatePreciosSugeridos(ctx context.Context, salidaID uint64, min, max decimal.Decimal) error {
	const q = `UPDATE SalidaPaquete
			   SET precio_venta_sugerido_min = ?, precio_venta_sugerido_max = ?, fecha_modificacion = NOW()
			   WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, min, max, salidaID)
	return err
}

// DecrementCupoTx takes one room slot on the departure and books
// pasajeros seats against the departure's aggregate cupo.  Both
// counters are read under FOR UPDATE so concurrent bookings against
// the last slot serialize; ErrInsufficientCupo is returned when either
// counter cannot cover the booking.  The aggregate check is skipped
// when the departure has unlimited cupo (NULL).
func (r *SalidaRepo) DecrementCupoTx(ctx context.Context, tx *sql.Tx, salidaID, habitacionID uint64, pasajeros uint32) error {
	const roomQ = `SELECT cupo FROM CupoHabitacionSalida
				   WHERE salida_id = ? AND habitacion_id = ? FOR UPDATE`
	var roomCupo int64
	if err := tx.QueryRowContext(ctx, roomQ, salidaID, habitacionID).Scan(&roomCupo); err != nil {
		return err
	}
	if roomCupo < 1 {
		return ErrInsufficientCupo
	}
	const aggQ = `SELECT cupo FROM SalidaPaquete WHERE id = ? FOR UPDATE`
	var aggCupo sql.NullInt64
	if err := tx.QueryRowContext(ctx, aggQ, salidaID).Scan(&aggCupo); err != nil {
		return err
	}
	if aggCupo.Valid && aggCupo.Int64 < int64(pasajeros) {
		return ErrInsufficientCupo
	}
	const updRoom = `UPDATE CupoHabitacionSalida SET cupo = cupo - 1
					 WHERE salida_id = ? AND habitacion_id = ?`
	if _, err := tx.ExecContext(ctx, updRoom, salidaID, habitacionID); err != nil {
		return err
	}
	if aggCupo.Valid {
		const updAgg = `UPDATE SalidaPaquete SET cupo = cupo - ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, updAgg, pasajeros, salidaID); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseCupoTx reverses DecrementCupoTx when a reservation is
// cancelled with cupo release.  The caller guards against double
// release via the reservation's cupos_liberados flag.
func (r *SalidaRepo) ReleaseCupoTx(ctx context.Context, tx *sql.Tx, salidaID, habitacionID uint64, pasajeros uint32) error {
	const updRoom = `UPDATE CupoHabitacionSalida SET cupo = cupo + 1
					 WHERE salida_id = ? AND habitacion_id = ?`
	if _, err := tx.ExecContext(ctx, updRoom, salidaID, habitacionID); err != nil {
		return err
	}
	const updAgg = `UPDATE SalidaPaquete SET cupo = cupo + ?
					WHERE id = ? AND cupo IS NOT NULL`
	_, err := tx.ExecContext(ctx, updAgg, pasajeros, salidaID)
	return err
}

// RoomCapacity returns the passenger capacity of a room, used to
// default cantidad_pasajeros at booking time.
func (r *SalidaRepo) RoomCapacity(ctx context.Context, habitacionID uint64) (uint32, error) {
	const q = `SELECT t.capacidad
			   FROM Habitacion h
			   JOIN TipoHabitacion t ON t.id = h.tipo_habitacion_id
			   WHERE h.id = ?`
	var cap uint32
	if err := r.db.QueryRowContext(ctx, q, habitacionID).Scan(&cap); err != nil {
		return 0, err
	}
	return cap, nil
}
