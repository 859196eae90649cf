package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("token is invalid or has expired")
	ErrValidation         = errors.New("validation failed")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyLiked       = errors.New("already liked")
	ErrNotLiked           = errors.New("post not liked")
	ErrUserNotFound       = errors.New("user not found")
)
