package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-agency-api/internal/currency"
	"github.com/iliyamo/travel-agency-api/internal/money"
)

// ErrRoomNotFound is returned by UnitPrice when the requested room is
// not part of the departure input.
var ErrRoomNotFound = errors.New("pricing: room not on departure")

// RoomInput is one bookable room on a departure, with its remaining
// cupo and its resolved base nightly price.  PrecioNoche is the room's
// own catalogue price; per-departure overrides live on SalidaInput.
type RoomInput struct {
	HabitacionID uint64
	HotelID      uint64
	Cupo         int64
	PrecioNoche  decimal.Decimal
	MonedaCodigo string
}

// ServicioInput is one service included in the package.  PrecioOverride,
// when positive, replaces the base price for this package.
type ServicioInput struct {
	ServicioID     uint64
	PrecioBase     decimal.Decimal
	PrecioOverride decimal.Decimal
	MonedaCodigo   string
}

// SalidaInput gathers everything the resolver needs about one
// departure.  Rooms must come ordered by habitacion_id so that min/max
// tie-breaking is deterministic.  Override maps are keyed by hotel and
// room id; override amounts are nightly prices in the room's currency.
type SalidaInput struct {
	FechaSalida         time.Time
	FechaRegreso        *time.Time
	Propio              bool
	Ganancia            decimal.Decimal
	Comision            decimal.Decimal
	MonedaCodigo        string
	Rooms               []RoomInput
	Servicios           []ServicioInput
	OverridesHotel      map[uint64]decimal.Decimal
	OverridesHabitacion map[uint64]decimal.Decimal
}

// Suggestion is the resolver output: suggested sale price bounds across
// the rooms that still have cupo, tagged with the departure currency.
// HasRooms is false when no room has cupo > 0, in which case Min and Max
// are zero and the caller must treat the departure as "no rooms
// available" rather than an error.
type Suggestion struct {
	Min      money.Amount
	Max      money.Amount
	HasRooms bool
}

// Resolver computes suggested sale prices and per-room unit prices for
// a departure.  All amounts are converted into the departure currency
// as of the departure date before any arithmetic, so the outputs are
// always in a single currency.
type Resolver struct {
	conv *currency.Converter
}

// NewResolver returns a Resolver backed by the given converter.
func NewResolver(conv *currency.Converter) *Resolver {
	return &Resolver{conv: conv}
}

// Nights returns the stay length of the departure: the day difference
// between return and outbound dates, or 1 when there is no return date.
func Nights(s SalidaInput) int64 {
	if s.FechaRegreso == nil {
		return 1
	}
	n := int64(s.FechaRegreso.Sub(s.FechaSalida).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// markupFactor returns 1 + ganancia% for owned packages and
// 1 + comision% for distributor packages.
func markupFactor(s SalidaInput) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	if s.Propio {
		return one.Add(s.Ganancia.Div(hundred))
	}
	return one.Add(s.Comision.Div(hundred))
}

// nightlyPrice resolves the effective nightly price of a room applying
// the override chain: per-room override, then per-hotel override, then
// the room's own catalogue price.
func nightlyPrice(s SalidaInput, room RoomInput) decimal.Decimal {
	if p, ok := s.OverridesHabitacion[room.HabitacionID]; ok && p.IsPositive() {
		return p
	}
	if p, ok := s.OverridesHotel[room.HotelID]; ok && p.IsPositive() {
		return p
	}
	return room.PrecioNoche
}

// TotalServicios sums the package's service costs in the departure
// currency.  Each service uses its per-package override when positive,
// its base price otherwise; prices in other currencies are converted as
// of the departure date before joining the sum, so a service whose cost
// somehow escaped conversion trips the currency mismatch guard instead
// of polluting the total.
func (r *Resolver) TotalServicios(ctx context.Context, s SalidaInput) (money.Amount, error) {
	total := money.Zero(s.MonedaCodigo)
	asOf := s.FechaSalida
	for _, sv := range s.Servicios {
		precio := sv.PrecioBase
		if sv.PrecioOverride.IsPositive() {
			precio = sv.PrecioOverride
		}
		amt, err := money.New(precio, sv.MonedaCodigo)
		if err != nil {
			return money.Amount{}, err
		}
		converted, err := r.conv.Convert(ctx, amt, s.MonedaCodigo, &asOf)
		if err != nil {
			return money.Amount{}, err
		}
		total, err = total.Add(converted)
		if err != nil {
			return money.Amount{}, err
		}
	}
	return total, nil
}

// roomSalePrice computes the suggested sale price of one room:
// nightly price × nights converted to the departure currency, plus
// service costs when the package is owned, times the markup factor.
// Distributor packages mark up the room price alone.
func (r *Resolver) roomSalePrice(ctx context.Context, s SalidaInput, room RoomInput, nights int64, servicios money.Amount) (money.Amount, error) {
	asOf := s.FechaSalida
	nightly, err := money.New(nightlyPrice(s, room), room.MonedaCodigo)
	if err != nil {
		return money.Amount{}, err
	}
	costoBase, err := r.conv.Convert(ctx, nightly.MulInt(nights), s.MonedaCodigo, &asOf)
	if err != nil {
		return money.Amount{}, err
	}
	if s.Propio {
		costoBase, err = costoBase.Add(servicios)
		if err != nil {
			return money.Amount{}, err
		}
	}
	return costoBase.Mul(markupFactor(s)), nil
}

// Suggest computes the suggested sale price bounds for the departure
// across every room with remaining cupo.  On ties the first room in
// input order wins.
func (r *Resolver) Suggest(ctx context.Context, s SalidaInput) (Suggestion, error) {
	nights := Nights(s)
	servicios, err := r.TotalServicios(ctx, s)
	if err != nil {
		return Suggestion{}, err
	}
	out := Suggestion{Min: money.Zero(s.MonedaCodigo), Max: money.Zero(s.MonedaCodigo)}
	for _, room := range s.Rooms {
		if room.Cupo <= 0 {
			continue
		}
		venta, err := r.roomSalePrice(ctx, s, room, nights, servicios)
		if err != nil {
			return Suggestion{}, err
		}
		if !out.HasRooms {
			out.Min, out.Max, out.HasRooms = venta, venta, true
			continue
		}
		if cmp, err := venta.Cmp(out.Min); err != nil {
			return Suggestion{}, err
		} else if cmp < 0 {
			out.Min = venta
		}
		if cmp, err := venta.Cmp(out.Max); err != nil {
			return Suggestion{}, err
		} else if cmp > 0 {
			out.Max = venta
		}
	}
	return out, nil
}

// UnitPrice computes the per-passenger price of a specific room on the
// departure, used when creating a reservation.  The room does not need
// remaining cupo here; availability is enforced by the caller.
func (r *Resolver) UnitPrice(ctx context.Context, s SalidaInput, habitacionID uint64) (money.Amount, error) {
	nights := Nights(s)
	servicios, err := r.TotalServicios(ctx, s)
	if err != nil {
		return money.Amount{}, err
	}
	for _, room := range s.Rooms {
		if room.HabitacionID != habitacionID {
			continue
		}
		return r.roomSalePrice(ctx, s, room, nights, servicios)
	}
	return money.Amount{}, ErrRoomNotFound
}
