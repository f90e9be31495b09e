// Package auth implements revocable login sessions: signed credentials are
// issued as JWTs while only the trailing signature segment is persisted as
// the revocation key.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pizza-service/internal/common/logger"
	"pizza-service/internal/common/metrics"
)

const storeName = "session"

type SessionStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewSessionStore(db *sql.DB, log logger.Logger) *SessionStore {
	return &SessionStore{
		db:  db,
		log: log.WithFields(map[string]interface{}{"store": storeName}),
	}
}

// LoginUser records the token's signature for the user. Earlier sessions
// stay valid; one row per active token.
func (s *SessionStore) LoginUser(ctx context.Context, userID int64, token string) (err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "login", start, err) }()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (signature, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		TokenSignature(token), userID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	s.log.Debug("session recorded", map[string]interface{}{"userId": userID})
	return nil
}

// IsLoggedIn reports whether the token's signature has an active session
// row. A malformed token yields an empty signature that matches nothing.
func (s *SessionStore) IsLoggedIn(ctx context.Context, token string) (_ bool, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "is_logged_in", start, err) }()

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM sessions WHERE signature = $1)`,
		TokenSignature(token)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("session lookup: %w", err)
	}
	return exists, nil
}

// LogoutUser revokes the session matching the token's signature. Revoking a
// session that does not exist is not an error.
func (s *SessionStore) LogoutUser(ctx context.Context, token string) (err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "logout", start, err) }()

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE signature = $1`,
		TokenSignature(token))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// TokenSignature extracts the trailing signature segment of a dot-delimited
// signed token. Anything without the three-part structure yields "".
func TokenSignature(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}
