package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidarDistribuciones(t *testing.T) {
	tests := []struct {
		name    string
		monto   string
		rows    []string
		wantErr bool
	}{
		{"exact split", "1000", []string{"600", "400"}, false},
		{"single row", "1500.50", []string{"1500.50"}, false},
		{"sum short", "1000", []string{"600", "300"}, true},
		{"sum over", "1000", []string{"600", "500"}, true},
		{"off by a cent", "1000", []string{"600", "399.99"}, true},
		{"zero row", "1000", []string{"1000", "0"}, true},
		{"negative row", "1000", []string{"1100", "-100"}, true},
		{"no rows", "1000", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Distribucion, 0, len(tt.rows))
			for i, m := range tt.rows {
				rows = append(rows, Distribucion{PasajeroID: uint64(i + 1), Monto: d(m)})
			}
			err := ValidarDistribuciones(d(tt.monto), rows)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDistributionMismatch)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSaldoPendienteAllowsOverpayment(t *testing.T) {
	p := Passenger{PrecioAsignado: d("10000"), MontoPagado: d("12000")}
	require.True(t, p.SaldoPendiente().Equal(d("-2000")))
	require.True(t, p.EstaTotalmentePagado())
}

func TestPorcentajePagado(t *testing.T) {
	p := Passenger{PrecioAsignado: d("10000"), MontoPagado: d("2500")}
	require.True(t, p.PorcentajePagado().Equal(d("25")))

	// No assigned price means no meaningful percentage.
	free := Passenger{PrecioAsignado: decimal.Zero, MontoPagado: d("100")}
	require.True(t, free.PorcentajePagado().IsZero())
}

func TestTieneSeniaPagada(t *testing.T) {
	senia := d("1500")
	require.True(t, Passenger{MontoPagado: d("1500")}.TieneSeniaPagada(senia))
	require.True(t, Passenger{MontoPagado: d("2000")}.TieneSeniaPagada(senia))
	require.False(t, Passenger{MontoPagado: d("1499.99")}.TieneSeniaPagada(senia))
}
