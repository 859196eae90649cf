package middleware

import (
	"inkbytr/internal/entity"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	contextUserIDKey = "auth_user_id"
	contextRoleKey   = "auth_role"
)

func SetAuthContext(c echo.Context, userID bson.ObjectID, role entity.UserRole) {
	c.Set(contextUserIDKey, userID)
	c.Set(contextRoleKey, role)
}

func UserIDFromContext(c echo.Context) (bson.ObjectID, bool) {
	value := c.Get(contextUserIDKey)
	userID, ok := value.(bson.ObjectID)
	return userID, ok
}

func RoleFromContext(c echo.Context) (entity.UserRole, bool) {
	value := c.Get(contextRoleKey)
	role, ok := value.(entity.UserRole)
	return role, ok
}
