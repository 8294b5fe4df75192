package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"pivotdash/errors"
)

// UserClaims is the payload carried by dashboard access tokens.
type UserClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueUserToken signs an HS256 access token for the given account.
func IssueUserToken(email, secret string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := UserClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseUserToken verifies the signature and expiry, returning the email claim.
func ParseUserToken(tokenString, secret string) (string, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorized(errors.ErrJWTVerification)
		}
		return []byte(secret), nil
	})
	if err != nil {
		if verr, ok := err.(*jwt.ValidationError); ok && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return "", errors.NewUnauthorized(errors.ErrExpiredToken)
		}
		return "", errors.NewUnauthorized(errors.ErrJWTVerification)
	}
	if !token.Valid {
		return "", errors.NewUnauthorized(errors.ErrJWTVerification)
	}
	return claims.Email, nil
}

// NewSalt returns a random 16-byte hex salt for password hashing.
func NewSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives a salted SHA-512 digest of the password.
func HashPassword(password, salt string) string {
	sum := sha512.Sum512([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
