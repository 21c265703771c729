package token

import (
	"errors"
	"time"

	"github.com/authline/authline/internal/domain"
	"github.com/authline/authline/internal/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Decode failure reasons. Callers decide whether to surface the
// distinction; the session middleware deliberately does not.
var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("invalid token signature")
	ErrExpired      = errors.New("token expired")
)

// Signer issues and verifies HMAC-signed session tokens. The signing key is
// loaded once at startup and injected here; it is immutable afterwards.
type Signer struct {
	secretKey string
	ttl       time.Duration
}

func NewSigner(secretKey string, ttl time.Duration) *Signer {
	return &Signer{secretKey, ttl}
}

// Issue mints a signed token carrying the identity claims and an absolute
// expiry of now + ttl.
func (s *Signer) Issue(identity domain.SessionClaims) (string, error) {
	claims := jwt.MapClaims{}
	claims["uid"] = identity.Id
	claims["email"] = identity.Email
	claims["exp"] = time.Now().Add(s.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", errors.New("can't create token")
	}

	return tokenString, nil
}

// Decode verifies signature and expiry and returns the embedded claims.
// Any failure yields one of the typed errors above, never partial claims.
func (s *Signer) Decode(tokenString string) (domain.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.SessionClaims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.SessionClaims{}, ErrBadSignature
		default:
			return domain.SessionClaims{}, ErrMalformed
		}
	}
	if !token.Valid {
		return domain.SessionClaims{}, ErrBadSignature
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.SessionClaims{}, ErrMalformed
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return domain.SessionClaims{}, ErrMalformed
	}
	email, ok := claims["email"].(string)
	if !ok {
		return domain.SessionClaims{}, ErrMalformed
	}

	return domain.SessionClaims{Id: int64(uid), Email: email}, nil
}
