package postgres

import "database/sql"

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so single-row and
// multi-row queries can share scanning code.
type rowScanner interface {
	Scan(dest ...any) error
}

// Ensure interfaces are satisfied.
var (
	_ rowScanner = (*sql.Row)(nil)
	_ rowScanner = (*sql.Rows)(nil)
)
