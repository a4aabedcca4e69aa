package middleware

import (
	"net/http"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

// AdminMiddleware lets only store staff reach the admin API. It expects
// AuthMiddleware to have run first.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}

		if user.Role != domain.RoleAdmin {
			logger.WithContext(r.Context()).Warn().
				Str("user_id", user.ID).
				Str("role", user.Role).
				Str("path", r.URL.Path).
				Msg("Admin route refused")
			utils.WriteError(w, http.StatusForbidden, "Forbidden: store staff only")
			return
		}

		next.ServeHTTP(w, r)
	})
}
