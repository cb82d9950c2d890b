package middleware

import (
	"net/http"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/pkg/response"
)

// RequireUserType checks that the authenticated actor has one of the allowed
// user types. The type is read from context, set by AuthMiddleware from JWT
// claims.
func RequireUserType(allowedTypes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userType, ok := GetUserTypeFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "User type information not found")
				return
			}

			allowed := false
			for _, allowedType := range allowedTypes {
				if userType == allowedType {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireDoctor restricts an endpoint to doctor accounts
func RequireDoctor(next http.Handler) http.Handler {
	return RequireUserType(entity.UserTypeDoctor)(next)
}

// RequirePatient restricts an endpoint to patient accounts
func RequirePatient(next http.Handler) http.Handler {
	return RequireUserType(entity.UserTypePatient)(next)
}
