package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "pizza-service/internal/common/errors"
)

// Querier is satisfied by *sql.DB and *sql.Tx so lookups can run inside or
// outside an explicit transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Offset converts a 1-based page number into a zero-based row skip.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// GetID resolves a foreign lookup, e.g. a franchise name to its id. Zero
// matching rows yields a classified not-found error carrying the table and
// value; with multiple matches the first row wins.
func GetID(ctx context.Context, q Querier, idColumn string, value interface{}, table string) (int64, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1 LIMIT 1", table, idColumn)

	var id int64
	err := q.QueryRowContext(ctx, query, value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NewNotFound(fmt.Sprintf("no id found for %v in %s", value, table))
	}
	if err != nil {
		return 0, fmt.Errorf("id lookup in %s failed: %w", table, err)
	}
	return id, nil
}
