package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"inkbytr/api/middleware"
	"inkbytr/internal/entity"
	"inkbytr/internal/service"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func authedUser(c echo.Context) (bson.ObjectID, bool) {
	return middleware.UserIDFromContext(c)
}

func roleFromContext(c echo.Context) (entity.UserRole, bool) {
	return middleware.RoleFromContext(c)
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"message": err.Error()})
}

// writeServiceError maps tagged service outcomes onto the REST contract.
// Anything unrecognized degrades to a generic 500 without leaking the
// underlying error.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAlreadyLiked),
		errors.Is(err, service.ErrNotLiked):
		return writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, http.StatusUnauthorized, err)
	case errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrForbidden):
		return writeError(c, http.StatusForbidden, err)
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return writeError(c, http.StatusNotFound, err)
	}
	return writeError(c, http.StatusInternalServerError, errors.New("server error"))
}
