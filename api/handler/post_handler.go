package handler

import (
	"errors"
	"net/http"

	"inkbytr/internal/dto"
	"inkbytr/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type PostHandler struct {
	Service  *service.PostService
	Validate *validator.Validate
}

func NewPostHandler(svc *service.PostService, validate *validator.Validate) *PostHandler {
	return &PostHandler{Service: svc, Validate: validate}
}

func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) MyPosts(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	posts, err := h.Service.ListByAuthor(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetByID(c echo.Context) error {
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	post, err := h.Service.GetByID(c.Request().Context(), postID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.CreatePostRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	post, err := h.Service.Create(c.Request().Context(), userID, req.Title, req.Content)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.PostCreatedResponse{Message: "Post created", Post: *post})
}

func (h *PostHandler) Update(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	var req dto.UpdatePostRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	post, err := h.Service.Update(c.Request().Context(), postID, userID, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.PostCreatedResponse{Message: "Post updated", Post: *post})
}

func (h *PostHandler) Delete(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	role, _ := roleFromContext(c)
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	if err := h.Service.Delete(c.Request().Context(), postID, userID, role); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Post deleted"})
}

func (h *PostHandler) Like(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	if err := h.Service.Like(c.Request().Context(), postID, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Post liked"})
}

func (h *PostHandler) Unlike(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	if err := h.Service.Unlike(c.Request().Context(), postID, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Post unliked"})
}

func (h *PostHandler) AddComment(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	var req dto.CreateCommentRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	comments, err := h.Service.AddComment(c.Request().Context(), postID, userID, req.Text)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.CommentsResponse{Message: "Comment added", Comments: comments})
}

func (h *PostHandler) DeleteComment(c echo.Context) error {
	userID, ok := authedUser(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	role, _ := roleFromContext(c)
	postID, err := postIDParam(c)
	if err != nil {
		return writeServiceError(c, service.ErrPostNotFound)
	}
	commentID, err := bson.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return writeServiceError(c, service.ErrCommentNotFound)
	}
	if err := h.Service.DeleteComment(c.Request().Context(), postID, commentID, userID, role); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Comment deleted"})
}

func (h *PostHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func postIDParam(c echo.Context) (bson.ObjectID, error) {
	return bson.ObjectIDFromHex(c.Param("id"))
}
