package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The paid-sum expression is shared by the snapshot loader and the
// account-statement listing; both join ComprobantePago with activo = 1
// in the ON-clause, so distributions of annulled vouchers survive the
// join with c NULL-ed out.  Without an explicit NULL branch ahead of
// the tipo check those rows fall through to the positive branch and an
// annulment never moves the sums.
func TestPaidSumZeroesAnnulledVouchers(t *testing.T) {
	nullGuard := strings.Index(paidSumExpr, "WHEN c.id IS NULL THEN 0")
	refund := strings.Index(paidSumExpr, "WHEN c.tipo = 'devolucion' THEN -d.monto")
	require.NotEqual(t, -1, nullGuard, "expression must zero out distributions of annulled vouchers")
	require.NotEqual(t, -1, refund, "expression must subtract refund distributions")
	require.Less(t, nullGuard, refund, "the NULL branch must be tested before tipo, which is NULL for annulled vouchers")
}

// Both paid-sum queries must go through the shared expression so the
// snapshot used for state recomputation and the ledger shown to staff
// can never disagree on what counts as paid.
func TestPaidSumFloorsAtZero(t *testing.T) {
	require.True(t, strings.HasPrefix(strings.TrimSpace(paidSumExpr), "GREATEST("))
	require.Contains(t, paidSumExpr, "COALESCE(SUM(")
}
