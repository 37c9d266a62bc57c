package middleware

// identity.go provides helpers shared across middleware files for reading
// the authenticated identity that JWTAuth stored in the Echo context.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable string form of the authenticated caller's
// id for use in rate-limit keys.  JWT numeric claims decode as float64;
// anything unrecognized falls back to "anon" so unauthenticated traffic
// still shares one bucket per IP/route.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	switch t := v.(type) {
	case nil:
		return "anon"
	case string:
		if t != "" {
			return t
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
