package middleware

import (
	"net/http"
	"strings"

	"snacket-be/internal/auth"
	"snacket-be/internal/utils"
)

// RequireAuth rejects requests without a valid bearer token and puts the
// caller's identity into the request context.
func RequireAuth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "missing bearer token")
				return
			}

			claims, err := auth.ParseToken(jwtSecret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
