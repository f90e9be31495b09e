package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "pizza-service/internal/common/errors"
	"pizza-service/internal/models"
)

// Claims is the authenticated identity resolved from a session credential.
type Claims struct {
	UserID int64         `json:"userId"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Roles  []models.Role `json:"roles"`
	jwt.RegisteredClaims
}

// IsRole reports whether the claims carry the given role kind, independent
// of scoping.
func (c *Claims) IsRole(kind models.RoleKind) bool {
	for _, r := range c.Roles {
		if r.Role == kind {
			return true
		}
	}
	return false
}

// TokenService issues and verifies HS256 session credentials.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a credential embedding the user's identity and roles.
func (t *TokenService) Issue(user models.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a credential, returning the claims. Any
// malformed, mis-signed or otherwise invalid token yields an unauthorized
// error and no identity.
func (t *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewUnauthorized("unauthorized")
	}
	return claims, nil
}
