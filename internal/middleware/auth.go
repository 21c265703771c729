package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/authline/authline/internal/domain"
	"github.com/authline/authline/internal/logger"
)

// Key to store the session claims in the request context
type key int

const userClaimsKey key = 0

type TokenDecoder interface {
	Decode(tokenString string) (domain.SessionClaims, error)
}

// Auth guards routes behind a valid session token.
type Auth struct {
	signer TokenDecoder
}

func NewAuth(signer TokenDecoder) *Auth {
	return &Auth{signer: signer}
}

// extractClaims reads the token from the Authorization header (preferred) or
// the accessToken cookie and verifies it.
func (a *Auth) extractClaims(r *http.Request) (*domain.SessionClaims, error) {
	var tokenString string
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	} else if accessCookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = accessCookie.Value
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	claims, err := a.signer.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

// NeedAuth rejects any request without a verifiable token. The rejection is
// uniform regardless of why verification failed, so callers can't probe
// token internals.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.extractClaims(r)
			if err != nil {
				if err != errNoToken {
					logger.Log.Debug("token verification failed", "error", err)
				}
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext retrieves the session claims attached by NeedAuth.
func GetClaimsFromContext(r *http.Request) *domain.SessionClaims {
	claims, ok := r.Context().Value(userClaimsKey).(*domain.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
