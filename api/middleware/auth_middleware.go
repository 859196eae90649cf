package middleware

import (
	"net/http"
	"strings"

	"inkbytr/internal/entity"
	"inkbytr/internal/utils"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type AuthMiddleware struct {
	JWT *utils.JWTManager
}

// RequireAuth validates the bearer session token and attaches the caller's
// identity and role to the request context. Expired and tampered tokens
// are rejected identically.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.JWT == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		claims, err := m.JWT.ParseSessionToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		SetAuthContext(c, userID, entity.UserRole(claims.Role))
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
