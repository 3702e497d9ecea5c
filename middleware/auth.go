package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const hostIDContextKey contextKey = "host_id"

var ErrNoHostInContext = errors.New("no authenticated host in request context")

// Authenticate validates the Bearer token and stores the host id in the
// request context. Everything behind it can assume GetHostIDFromContext works.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "Authorization header must be a Bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid or expired token")
				return
			}

			hostID, err := hostIDFromClaims(claims)
			if err != nil {
				unauthorized(w, "invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), hostIDContextKey, hostID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetHostIDFromContext returns the authenticated host's id. Calling it outside
// the Authenticate middleware is a programming error.
func GetHostIDFromContext(ctx context.Context) (int, error) {
	hostID, ok := ctx.Value(hostIDContextKey).(int)
	if !ok {
		return 0, ErrNoHostInContext
	}
	return hostID, nil
}

func hostIDFromClaims(claims jwt.MapClaims) (int, error) {
	raw, ok := claims["host_id"]
	if !ok {
		return 0, errors.New("host_id claim is missing")
	}
	// JSON numbers decode as float64.
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("host_id claim has unexpected type %T", raw)
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"message": %q}`+"\n", message)
}
