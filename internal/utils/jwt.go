package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and parses the stateless session credential. There is
// no session table: validity is signature plus expiry, nothing else.
type JWTManager struct {
	Secret          []byte
	Issuer          string
	SessionTokenTTL time.Duration
}

type SessionClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (m JWTManager) IssueSessionToken(userID string, role string) (string, time.Duration, error) {
	ttl := m.SessionTokenTTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

// ParseSessionToken returns ErrInvalidToken for expired and tampered tokens
// alike; callers cannot tell the two apart.
func (m JWTManager) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
