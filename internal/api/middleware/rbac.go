package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// roleRank orders the roles a token can carry; a higher rank includes every
// permission of the lower ones.
var roleRank = map[string]int{
	RoleViewer: 1,
	RoleAdmin:  2,
}

// RequireRole lets the request through when the role injected by Auth is at
// least minRole. Requests without a role are unauthenticated (401), those
// with a lower or unknown role are forbidden (403).
func RequireRole(minRole string) echo.MiddlewareFunc {
	need, ok := roleRank[minRole]
	if !ok {
		panic(fmt.Sprintf("middleware: unknown role %q", minRole))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}
			if roleRank[role] < need {
				return echo.NewHTTPError(http.StatusForbidden, minRole+" role required")
			}
			return next(c)
		}
	}
}
