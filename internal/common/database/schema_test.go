package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema_CreatesEveryTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{
		"users", "user_roles", "sessions", "menu_items",
		"franchises", "stores", "orders", "order_items",
	} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, InitSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema_StopsOnFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnError(errors.New("permission denied"))

	err = InitSchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema init failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
