package middleware

import (
	"net/http"

	"inkbytr/internal/entity"

	"github.com/labstack/echo/v4"
)

// RequireRole composes after RequireAuth: the caller is authenticated but
// not entitled, hence 403 rather than 401.
func RequireRole(role entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			currentRole, ok := RoleFromContext(c)
			if !ok || currentRole != role {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
