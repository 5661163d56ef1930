package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the
// authenticated user carries one of the given roles.  The roles
// correspond to the JWT's "role" claim as stored in context by
// JWTAuth.  A missing or unexpected role yields 403 Forbidden; role
// checks never surface as server errors.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
