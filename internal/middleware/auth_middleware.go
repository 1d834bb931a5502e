package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/talentsift/auth-service/internal/services"
	"github.com/talentsift/auth-service/internal/utils"
)

type contextKey string

const ContextKeySession = contextKey("session")

// AuthMiddleware protects endpoints that require a session. The JWT is
// read from Authorization: Bearer and verified purely by signature and
// expiry; no session store is consulted.
func AuthMiddleware(jwtService services.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractBearerToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			claims, err := jwtService.VerifySessionToken(tokenStr)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the verified claims placed by
// AuthMiddleware, or nil on an unprotected route.
func SessionFromContext(ctx context.Context) *services.SessionClaims {
	claims, _ := ctx.Value(ContextKeySession).(*services.SessionClaims)
	return claims
}

func extractBearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing Authorization header")
	}
	return strings.TrimPrefix(h, "Bearer "), nil
}
