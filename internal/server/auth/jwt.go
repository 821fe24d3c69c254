// Package auth signs the session cookie value. The token carries only the
// opaque session handle in its jti claim; the user is always resolved
// server-side, so a valid signature alone grants nothing.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims of a session token. ID holds the handle.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs handle with HS256. A nil expiresAt yields a token
// without an exp claim, matching a session that ends with the browser.
func GenerateToken(handle string, secretKey []byte, expiresAt *time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       handle,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetHandleFromToken verifies tokenString and returns the session handle.
// Expired tokens yield common.ErrSessionInvalid; any other failure yields
// common.ErrInvalidToken.
func GetHandleFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrSessionInvalid
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ID, nil
}
