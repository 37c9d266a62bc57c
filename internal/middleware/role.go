package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role claim values used across the API: USER for requesters coming
// through the chat frontend, PARTNER for connected service partners.
const (
	RoleUser    = "USER"
	RolePartner = "PARTNER"
)

// RequireRole returns a middleware function that enforces that the
// authenticated caller has one of the specified roles.  The roles
// correspond to the values stored in the JWT's "role" claim.  If the
// caller's role is not in the allowed set, the request is aborted with a
// 403 Forbidden response.  It assumes JWTAuth has extracted the role into
// the context under the key "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
