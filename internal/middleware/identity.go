package middleware

// identity.go holds helpers shared across middleware files.  The
// response cache keys on the caller identity because listings are
// role- and user-shaped; two users must never share a cached body.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identity returns a stable string for the authenticated caller, or
// "guest" for unauthenticated requests.
func identity(c echo.Context) string {
	if id, ok := c.Get(CtxUserID).(uint64); ok && id > 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
