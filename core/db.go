package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
		PingContext(ctx context.Context) error
		Close() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CleanOrderings drops orderings on fields that are not in `allowed`.
// Ordering fields come straight from query params and end up in ORDER BY clauses.
func CleanOrderings(orderings []DBOrdering, allowed ...string) []DBOrdering {
	if len(orderings) == 0 {
		return nil
	}
	ok := make(map[string]bool, len(allowed))
	for _, fld := range allowed {
		ok[fld] = true
	}
	cleaned := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if ok[ord.Field] {
			cleaned = append(cleaned, ord)
		}
	}
	return cleaned
}
