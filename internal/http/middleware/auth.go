package middleware

import (
	"net/http"
	"strings"

	"github.com/akozyrev/leadwell/internal/auth"
	"github.com/akozyrev/leadwell/internal/http/respond"
	"github.com/akozyrev/leadwell/internal/permission"
)

type unauthorized struct {
	Error string `json:"error"`
}

// RequireAuth verifies the bearer token and attaches the user to the
// request context.
func RequireAuth(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respond.JSON(w, http.StatusUnauthorized, unauthorized{Error: "missing bearer token"})
				return
			}

			u, err := authSvc.Verify(r.Context(), token)
			if err != nil {
				respond.JSON(w, http.StatusUnauthorized, unauthorized{Error: "invalid token"})
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}

// RequirePermission gates a route on a static permission. Ownership
// scoped checks happen in the handlers where the entity is loaded.
func RequirePermission(perms *permission.Manager, perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := auth.FromContext(r.Context())
			if !perms.IsGranted(u, perm, nil) {
				respond.JSON(w, http.StatusForbidden, unauthorized{Error: "permission denied: " + perm})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
