package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// nextCodigoTx generates the next sequential human code for a table,
// formatted PREFIX-YYYY-NNNN with the counter restarting each year.
// The MAX scan runs under FOR UPDATE so two concurrent inserts cannot
// take the same number.  table and column are trusted identifiers
// supplied by the repositories, never user input.
func nextCodigoTx(ctx context.Context, tx *sql.Tx, table, column, prefix string, now time.Time) (string, error) {
	year := now.Year()
	like := fmt.Sprintf("%s-%d-%%", prefix, year)
	// SUBSTRING offset: prefix, dash, four digit year, dash.
	offset := len(prefix) + 7
	q := fmt.Sprintf(
		`SELECT COALESCE(MAX(CAST(SUBSTRING(%s, %d) AS UNSIGNED)), 0) FROM %s WHERE %s LIKE ? FOR UPDATE`,
		column, offset, table, column,
	)
	var last uint64
	if err := tx.QueryRowContext(ctx, q, like).Scan(&last); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, last+1), nil
}
