package handler // handler defines the HTTP handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// success writes the standard success envelope.  Every 2xx response
// carries a message and (optionally) a data document.
func success(c echo.Context, status int, message string, data interface{}) error {
	if data == nil {
		return c.JSON(status, echo.Map{"message": message})
	}
	return c.JSON(status, echo.Map{"message": message, "data": data})
}

// fail writes the standard error envelope.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"message": message})
}

var errNoIdentity = errors.New("invalid user_id in context")

// getUserID extracts the authenticated user id stored in context by
// the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errNoIdentity
}

// getRole extracts the caller's role from context.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses a numeric path parameter, reporting false on garbage.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// callerID resolves the caller id or reports false.  Handlers behind
// JWTAuth should never hit the failure branch, but a broken chain must
// surface as unauthorized rather than a server error.
func callerID(c echo.Context) (uint64, bool) {
	uid, err := getUserID(c)
	return uid, err == nil
}
