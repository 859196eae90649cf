package handler

import (
	"net/http"

	"inkbytr/internal/dto"
	"inkbytr/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.Register(c.Request().Context(), req.Email, req.Password); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.MessageResponse{
		Message: "Registration successful. Please check your email to verify your account.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	token, err := h.Service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TokenResponse{Message: "Login successful", Token: token})
}

// VerifyEmail consumes the emailed link. The path segment is an opaque
// capability, not a resource id; nothing beyond non-emptiness is assumed
// about it before hashing.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token, err := h.Service.VerifyEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TokenResponse{Message: "Email verified successfully.", Token: token})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	// Identical acknowledgement whether or not the account exists.
	return c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "If a user with that email exists, a password reset link has been sent.",
	})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	token, err := h.Service.ResetPassword(c.Request().Context(), c.Param("token"), req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TokenResponse{Message: "Password reset successful", Token: token})
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
