package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		wantErr  bool
	}{
		{"valid upper", "USD", false},
		{"valid lower normalized", "pyg", false},
		{"padded", " USD ", false},
		{"empty", "", true},
		{"too short", "US", true},
		{"too long", "USDT", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(decimal.NewFromInt(10), tt.currency)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCurrency)
				return
			}
			require.NoError(t, err)
			require.Len(t, a.Currency, 3)
		})
	}
}

func TestArithmeticRefusesMixedCurrencies(t *testing.T) {
	usd := Must(decimal.NewFromInt(100), "USD")
	pyg := Must(decimal.NewFromInt(730000), "PYG")

	_, err := usd.Add(pyg)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = usd.Cmp(pyg)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestArithmeticSameCurrency(t *testing.T) {
	a := Must(decimal.NewFromInt(1500), "PYG")
	b := Must(decimal.NewFromInt(500), "PYG")

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.True(t, sum.Value.Equal(decimal.NewFromInt(2000)))
	require.Equal(t, "PYG", sum.Currency)

	total := b.MulInt(4)
	require.True(t, total.Value.Equal(decimal.NewFromInt(2000)))
	require.Equal(t, "PYG", total.Currency)

	marked := b.Mul(decimal.RequireFromString("1.3"))
	require.True(t, marked.Value.Equal(decimal.NewFromInt(650)))
	require.Equal(t, "PYG", marked.Currency)

	cmp, err := a.Cmp(b)
	require.NoError(t, err)
	require.Equal(t, 1, cmp)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1500.50", "1500.5"},
		{"1500,50", "1500.5"},
		{"  42 ", "42"},
		{"", "0"},
		{"abc", "0"},
		{"-10.25", "-10.25"},
	}
	for _, tt := range tests {
		got := ParseDecimal(tt.in)
		require.True(t, got.Equal(decimal.RequireFromString(tt.want)), "ParseDecimal(%q) = %s", tt.in, got)
	}
}
