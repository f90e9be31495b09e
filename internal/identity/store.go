// Package identity implements user accounts: creation, credential
// verification, partial update and role assignment.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pizza-service/internal/common/database"
	apperrors "pizza-service/internal/common/errors"
	"pizza-service/internal/common/logger"
	"pizza-service/internal/common/metrics"
	"pizza-service/internal/models"
)

const storeName = "identity"

type Store struct {
	db  *sql.DB
	log logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.WithFields(map[string]interface{}{"store": storeName}),
	}
}

// AddUser hashes the password, inserts the user row and one role row per
// assignment. A Franchisee role scoped to an unknown franchise name is
// stored without a numeric scope instead of failing the operation.
func (s *Store) AddUser(ctx context.Context, user models.User) (_ models.User, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "add_user", start, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id`,
		user.Name, user.Email, string(hash)).Scan(&user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	for i, role := range user.Roles {
		objectID := int64(0)
		if role.Role == models.RoleFranchisee && role.Object != "" {
			id, lookupErr := database.GetID(ctx, s.db, "name", role.Object, "franchises")
			switch {
			case lookupErr == nil:
				objectID = id
			case apperrors.IsStatus(lookupErr, apperrors.StatusNotFound):
				s.log.Warn("franchisee role scope did not resolve, storing unscoped", map[string]interface{}{
					"userId": user.ID,
					"object": role.Object,
				})
			default:
				return models.User{}, lookupErr
			}
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role, object_id)
			VALUES ($1, $2, $3)`,
			user.ID, string(role.Role), objectID)
		if err != nil {
			return models.User{}, fmt.Errorf("insert role: %w", err)
		}
		user.Roles[i].ObjectID = objectID
	}

	s.log.Info("user created", map[string]interface{}{
		"userId": user.ID,
		"roles":  len(user.Roles),
	})

	user.Password = ""
	return user, nil
}

// GetUser looks a user up by email and verifies the password. Both a
// missing row and a hash mismatch yield the same unauthorized error so the
// caller cannot distinguish unknown accounts from bad passwords.
func (s *Store) GetUser(ctx context.Context, email, password string) (_ models.User, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "get_user", start, err) }()

	var user models.User
	var hash string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password FROM users WHERE email = $1`,
		email).Scan(&user.ID, &user.Name, &user.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.NewUnauthorized("unknown user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.User{}, apperrors.NewUnauthorized("unknown user")
	}

	user.Roles, err = s.loadRoles(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser applies the supplied fields to an existing user. Empty email
// and password leave the stored values unchanged; supplying neither is a
// successful no-op. The refreshed user is returned with roles loaded.
func (s *Store) UpdateUser(ctx context.Context, userID int64, email, password string) (_ models.User, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "update_user", start, err) }()

	var user models.User
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, email FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Name, &user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.NewNotFound(fmt.Sprintf("no user found for id %d", userID))
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if email != "" {
		args = append(args, email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
		user.Email = email
	}
	if password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return models.User{}, fmt.Errorf("hash password: %w", hashErr)
		}
		args = append(args, string(hash))
		sets = append(sets, fmt.Sprintf("password = $%d", len(args)))
	}

	if len(sets) > 0 {
		args = append(args, userID)
		query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
			return models.User{}, fmt.Errorf("update user: %w", err)
		}
	}

	user.Roles, err = s.loadRoles(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) loadRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, object_id FROM user_roles WHERE user_id = $1 ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		var kind string
		if err := rows.Scan(&kind, &role.ObjectID); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.Role = models.RoleKind(kind)
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
