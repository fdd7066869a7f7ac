package currency

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-agency-api/internal/money"
)

// stubRates returns a fixed rate, or an error when none is configured.
type stubRates struct {
	rate decimal.Decimal
	err  error
	// lastAsOf records the date the converter asked for.
	lastAsOf time.Time
}

func (s *stubRates) EffectiveRate(_ context.Context, _ string, asOf time.Time) (decimal.Decimal, error) {
	s.lastAsOf = asOf
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.rate, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usd(s string) money.Amount { return money.Must(d(s), USD) }
func pyg(s string) money.Amount { return money.Must(d(s), PYG) }

func TestConvertIdentity(t *testing.T) {
	cv := NewConverter(&stubRates{err: ErrNoEffectiveRate})
	got, err := cv.Convert(context.Background(), usd("123.45"), USD, nil)
	require.NoError(t, err)
	require.True(t, got.Value.Equal(d("123.45")))
	require.Equal(t, USD, got.Currency)
}

func TestConvertUSDToPYG(t *testing.T) {
	cv := NewConverter(&stubRates{rate: d("7300")})
	got, err := cv.Convert(context.Background(), usd("100"), PYG, nil)
	require.NoError(t, err)
	require.True(t, got.Value.Equal(d("730000")), "got %s", got.Value)
	require.Equal(t, PYG, got.Currency)
}

func TestConvertPYGToUSD(t *testing.T) {
	cv := NewConverter(&stubRates{rate: d("7300")})
	got, err := cv.Convert(context.Background(), pyg("730000"), USD, nil)
	require.NoError(t, err)
	require.True(t, got.Value.Equal(d("100")), "got %s", got.Value)
	require.Equal(t, USD, got.Currency)
}

func TestConvertRoundTripRounding(t *testing.T) {
	// PYG->USD rounds to 8 decimal places, so an uneven amount survives
	// a round trip within that precision.
	cv := NewConverter(&stubRates{rate: d("7315")})
	inUSD, err := cv.Convert(context.Background(), pyg("1000000"), USD, nil)
	require.NoError(t, err)
	require.Equal(t, int32(-8), inUSD.Value.Exponent())

	back, err := cv.Convert(context.Background(), inUSD, PYG, nil)
	require.NoError(t, err)
	diff := back.Value.Sub(d("1000000")).Abs()
	require.True(t, diff.LessThan(d("0.001")), "round trip drift %s", diff)
}

func TestConvertUsesAsOfDate(t *testing.T) {
	stub := &stubRates{rate: d("7300")}
	cv := NewConverter(stub)
	asOf := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := cv.Convert(context.Background(), usd("1"), PYG, &asOf)
	require.NoError(t, err)
	require.True(t, stub.lastAsOf.Equal(asOf))
}

func TestConvertNoEffectiveRate(t *testing.T) {
	cv := NewConverter(&stubRates{err: ErrNoEffectiveRate})
	_, err := cv.Convert(context.Background(), usd("10"), PYG, nil)
	require.ErrorIs(t, err, ErrNoEffectiveRate)
}

func TestConvertZeroRateDividesToError(t *testing.T) {
	cv := NewConverter(&stubRates{rate: decimal.Zero})
	_, err := cv.Convert(context.Background(), pyg("10"), USD, nil)
	require.ErrorIs(t, err, ErrNoEffectiveRate)
}

func TestConvertUnsupportedPair(t *testing.T) {
	cv := NewConverter(&stubRates{rate: d("7300")})
	for _, pair := range [][2]string{{"EUR", PYG}, {USD, "BRL"}, {"EUR", "BRL"}} {
		_, err := cv.Convert(context.Background(), money.Must(d("10"), pair[0]), pair[1], nil)
		require.ErrorIs(t, err, ErrUnsupportedConversion, "pair %v", pair)
	}
}

func TestConvertInvalidTargetCode(t *testing.T) {
	cv := NewConverter(&stubRates{rate: d("7300")})
	_, err := cv.Convert(context.Background(), usd("10"), "", nil)
	require.ErrorIs(t, err, money.ErrInvalidCurrency)
}
