package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-agency-api/internal/currency"
	"github.com/iliyamo/travel-agency-api/internal/money"
)

type fixedRates struct {
	rate decimal.Decimal
}

func (f fixedRates) EffectiveRate(context.Context, string, time.Time) (decimal.Decimal, error) {
	return f.rate, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestResolver(rate string) *Resolver {
	return NewResolver(currency.NewConverter(fixedRates{rate: d(rate)}))
}

func weekSalida() SalidaInput {
	salida := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regreso := salida.AddDate(0, 0, 7)
	return SalidaInput{
		FechaSalida:  salida,
		FechaRegreso: &regreso,
		MonedaCodigo: "PYG",
	}
}

func TestNights(t *testing.T) {
	s := weekSalida()
	require.Equal(t, int64(7), Nights(s))

	s.FechaRegreso = nil
	require.Equal(t, int64(1), Nights(s))

	sameDay := s.FechaSalida
	s.FechaRegreso = &sameDay
	require.Equal(t, int64(1), Nights(s))
}

func TestSuggestOwnedPackageWithServices(t *testing.T) {
	// One room at 60 USD a night for 7 nights with the USD->PYG rate at
	// 7110, plus 160 PYG of services, marked up 30%:
	// ((60*7*7110)+160)*1.30 = 3,882,268.
	s := weekSalida()
	s.Propio = true
	s.Ganancia = d("30")
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 4, PrecioNoche: d("60"), MonedaCodigo: "USD"},
	}
	s.Servicios = []ServicioInput{
		{ServicioID: 1, PrecioBase: d("160"), MonedaCodigo: "PYG"},
	}

	got, err := newTestResolver("7110").Suggest(context.Background(), s)
	require.NoError(t, err)
	require.True(t, got.HasRooms)
	require.True(t, got.Min.Value.Equal(d("3882268")), "min = %s", got.Min.Value)
	require.True(t, got.Max.Value.Equal(d("3882268")), "max = %s", got.Max.Value)
}

func TestSuggestDistributorExcludesServices(t *testing.T) {
	// Distributor packages mark up the room cost alone; service costs
	// never enter the sale price.
	s := weekSalida()
	s.Propio = false
	s.Comision = d("10")
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 2, PrecioNoche: d("100000"), MonedaCodigo: "PYG"},
	}
	s.Servicios = []ServicioInput{
		{ServicioID: 1, PrecioBase: d("999999"), MonedaCodigo: "PYG"},
	}

	got, err := newTestResolver("7300").Suggest(context.Background(), s)
	require.NoError(t, err)
	// 100000*7 nights * 1.10
	require.True(t, got.Min.Value.Equal(d("770000")), "min = %s", got.Min.Value)
}

func TestSuggestOverridePrecedence(t *testing.T) {
	s := weekSalida()
	s.Propio = true
	s.Ganancia = d("0")
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 10, Cupo: 1, PrecioNoche: d("100"), MonedaCodigo: "PYG"},
		{HabitacionID: 2, HotelID: 10, Cupo: 1, PrecioNoche: d("200"), MonedaCodigo: "PYG"},
		{HabitacionID: 3, HotelID: 20, Cupo: 1, PrecioNoche: d("300"), MonedaCodigo: "PYG"},
	}
	// Room 1 has a per-room override, room 2 falls back to its hotel
	// override, room 3 uses its own catalogue price.
	s.OverridesHabitacion = map[uint64]decimal.Decimal{1: d("50")}
	s.OverridesHotel = map[uint64]decimal.Decimal{10: d("150")}

	r := newTestResolver("7300")
	ctx := context.Background()

	p1, err := r.UnitPrice(ctx, s, 1)
	require.NoError(t, err)
	require.True(t, p1.Value.Equal(d("350"))) // 50*7

	p2, err := r.UnitPrice(ctx, s, 2)
	require.NoError(t, err)
	require.True(t, p2.Value.Equal(d("1050"))) // 150*7

	p3, err := r.UnitPrice(ctx, s, 3)
	require.NoError(t, err)
	require.True(t, p3.Value.Equal(d("2100"))) // 300*7
}

func TestSuggestIgnoresZeroOverride(t *testing.T) {
	s := weekSalida()
	s.Propio = true
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 1, PrecioNoche: d("200"), MonedaCodigo: "PYG"},
	}
	// A non-positive override does not apply.
	s.OverridesHabitacion = map[uint64]decimal.Decimal{1: decimal.Zero}

	p, err := newTestResolver("7300").UnitPrice(context.Background(), s, 1)
	require.NoError(t, err)
	require.True(t, p.Value.Equal(d("1400")))
}

func TestSuggestMinMaxSkipsRoomsWithoutCupo(t *testing.T) {
	s := weekSalida()
	s.Propio = true
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 0, PrecioNoche: d("10"), MonedaCodigo: "PYG"},
		{HabitacionID: 2, HotelID: 1, Cupo: 3, PrecioNoche: d("500"), MonedaCodigo: "PYG"},
		{HabitacionID: 3, HotelID: 1, Cupo: 1, PrecioNoche: d("100"), MonedaCodigo: "PYG"},
	}

	got, err := newTestResolver("7300").Suggest(context.Background(), s)
	require.NoError(t, err)
	require.True(t, got.HasRooms)
	// The cheapest room with cupo wins min; the zero-cupo room is ignored
	// even though it is cheaper.
	require.True(t, got.Min.Value.Equal(d("700")), "min = %s", got.Min.Value)
	require.True(t, got.Max.Value.Equal(d("3500")), "max = %s", got.Max.Value)
}

func TestSuggestNoRoomsAvailable(t *testing.T) {
	s := weekSalida()
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 0, PrecioNoche: d("100"), MonedaCodigo: "PYG"},
	}

	got, err := newTestResolver("7300").Suggest(context.Background(), s)
	require.NoError(t, err)
	require.False(t, got.HasRooms)
	require.True(t, got.Min.Value.IsZero())
	require.True(t, got.Max.Value.IsZero())
}

func TestSuggestTagsDepartureCurrency(t *testing.T) {
	// Room prices in USD and services in PYG both come out tagged with
	// the departure currency; nothing joins the sums untagged.
	s := weekSalida()
	s.Propio = true
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 2, PrecioNoche: d("60"), MonedaCodigo: "USD"},
	}
	s.Servicios = []ServicioInput{
		{ServicioID: 1, PrecioBase: d("160"), MonedaCodigo: "PYG"},
	}

	got, err := newTestResolver("7110").Suggest(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, "PYG", got.Min.Currency)
	require.Equal(t, "PYG", got.Max.Currency)

	p, err := newTestResolver("7110").UnitPrice(context.Background(), s, 1)
	require.NoError(t, err)
	require.Equal(t, "PYG", p.Currency)
}

func TestSuggestRejectsUnconvertibleServiceCurrency(t *testing.T) {
	s := weekSalida()
	s.Propio = true
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 1, PrecioNoche: d("100"), MonedaCodigo: "PYG"},
	}
	s.Servicios = []ServicioInput{
		{ServicioID: 1, PrecioBase: d("50"), MonedaCodigo: "EUR"},
	}

	_, err := newTestResolver("7300").Suggest(context.Background(), s)
	require.ErrorIs(t, err, currency.ErrUnsupportedConversion)

	s.Servicios[0].MonedaCodigo = ""
	_, err = newTestResolver("7300").Suggest(context.Background(), s)
	require.ErrorIs(t, err, money.ErrInvalidCurrency)
}

func TestUnitPriceUnknownRoom(t *testing.T) {
	s := weekSalida()
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 1, PrecioNoche: d("100"), MonedaCodigo: "PYG"},
	}
	_, err := newTestResolver("7300").UnitPrice(context.Background(), s, 99)
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestUnitPriceIgnoresCupo(t *testing.T) {
	// Availability is the caller's concern; pricing a sold-out room
	// still works.
	s := weekSalida()
	s.Propio = true
	s.Rooms = []RoomInput{
		{HabitacionID: 1, HotelID: 1, Cupo: 0, PrecioNoche: d("100"), MonedaCodigo: "PYG"},
	}
	p, err := newTestResolver("7300").UnitPrice(context.Background(), s, 1)
	require.NoError(t, err)
	require.True(t, p.Value.Equal(d("700")))
}
