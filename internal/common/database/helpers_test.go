package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pizza-service/internal/common/errors"
)

func TestOffset(t *testing.T) {
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 6, Offset(4, 2))
}

func TestGetID_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM franchises WHERE name`).
		WithArgs("PizzaCo").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := GetID(context.Background(), db, "name", "PizzaCo", "franchises")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM franchises WHERE name`).
		WithArgs("Unknown").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = GetID(context.Background(), db, "name", "Unknown", "franchises")
	require.Error(t, err)
	assert.True(t, apperrors.IsStatus(err, apperrors.StatusNotFound))
	assert.Contains(t, err.Error(), "NOT_FOUND")
}
