package middleware

import (
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/auth"
	"github.com/frahmantamala/workforce-presence/internal/transport"
)

// RequireRoles lets the request through only when the authenticated user holds one of roles.
// It must run after auth.Handler.AuthMiddleware.
func RequireRoles(base *transport.BaseHandler, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				base.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("missing authorization token"))
				return
			}

			if !user.HasRole(roles...) {
				base.Logger.Warn("access denied: role not allowed",
					"user_id", user.ID,
					"role", user.Role,
					"required_roles", roles)
				base.HandleServiceError(w, internal.ErrRoleNotAllowed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
