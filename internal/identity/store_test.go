package identity

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "pizza-service/internal/common/errors"
	"pizza-service/internal/common/logger"
	"pizza-service/internal/models"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func TestAddUser_DinerRole(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("A", "a@test.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(int64(1), "diner", int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := store.AddUser(context.Background(), models.User{
		Name:     "A",
		Email:    "a@test.com",
		Password: "p",
		Roles:    []models.Role{{Role: models.RoleDiner}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Len(t, user.Roles, 1)
	assert.Empty(t, user.Password)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUser_FranchiseeRoleResolvesScope(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("F", "f@test.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT id FROM franchises WHERE name`).
		WithArgs("PizzaCo").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(int64(2), "franchisee", int64(99)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := store.AddUser(context.Background(), models.User{
		Name:     "F",
		Email:    "f@test.com",
		Password: "p",
		Roles:    []models.Role{{Role: models.RoleFranchisee, Object: "PizzaCo"}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
	assert.Equal(t, int64(99), user.Roles[0].ObjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUser_FranchiseeRoleUnresolvedScopeStoredUnscoped(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("F", "f@test.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`SELECT id FROM franchises WHERE name`).
		WithArgs("Nowhere").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(int64(3), "franchisee", int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := store.AddUser(context.Background(), models.User{
		Name:     "F",
		Email:    "f@test.com",
		Password: "p",
		Roles:    []models.Role{{Role: models.RoleFranchisee, Object: "Nowhere"}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Roles[0].ObjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_ValidPassword(t *testing.T) {
	store, mock := newTestStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("good"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, email, password FROM users`).
		WithArgs("a@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).
			AddRow(1, "A", "a@test.com", string(hash)))
	mock.ExpectQuery(`SELECT role, object_id FROM user_roles`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role", "object_id"}).AddRow("diner", 0))

	user, err := store.GetUser(context.Background(), "a@test.com", "good")
	require.NoError(t, err)
	assert.Len(t, user.Roles, 1)
	assert.True(t, user.IsRole(models.RoleDiner))
	assert.Empty(t, user.Password)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_InvalidPassword(t *testing.T) {
	store, mock := newTestStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("good"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, email, password FROM users`).
		WithArgs("a@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).
			AddRow(1, "A", "a@test.com", string(hash)))

	_, err = store.GetUser(context.Background(), "a@test.com", "bad")
	require.Error(t, err)
	assert.True(t, apperrors.IsStatus(err, apperrors.StatusUnauthorized))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_UnknownEmail(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT id, name, email, password FROM users`).
		WithArgs("ghost@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}))

	_, err := store.GetUser(context.Background(), "ghost@test.com", "p")
	require.Error(t, err)
	assert.True(t, apperrors.IsStatus(err, apperrors.StatusUnauthorized))
}

func TestUpdateUser_NoFieldsIsNoOp(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT id, name, email FROM users`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "A", "a@test.com"))
	mock.ExpectQuery(`SELECT role, object_id FROM user_roles`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role", "object_id"}).AddRow("diner", 0))

	user, err := store.UpdateUser(context.Background(), 1, "", "")
	require.NoError(t, err)
	assert.Equal(t, "a@test.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_EmailChange(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT id, name, email FROM users`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "A", "old@test.com"))
	mock.ExpectExec(`UPDATE users SET email`).
		WithArgs("new@test.com", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT role, object_id FROM user_roles`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role", "object_id"}).AddRow("diner", 0))

	user, err := store.UpdateUser(context.Background(), 1, "new@test.com", "")
	require.NoError(t, err)
	assert.Equal(t, "new@test.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_MissingUser(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT id, name, email FROM users`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	_, err := store.UpdateUser(context.Background(), 42, "x@test.com", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsStatus(err, apperrors.StatusNotFound))
}
