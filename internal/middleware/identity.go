package middleware

import "github.com/labstack/echo/v4"

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Roles carried in the token's "role" claim.
const (
	RoleAdmin      = "admin"
	RoleHotelAdmin = "hotel_admin"
	RoleClient     = "client"
)

// UserID returns the authenticated subject, or "" when JWTAuth did not run.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// Role returns the authenticated role, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}
