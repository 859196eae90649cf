package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"inkbytr/internal/dto"
)

// APIError carries the server's machine-readable message and status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// API is the REST consumer. It injects the bearer token from the session
// state on every request; the server re-verifies it regardless.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *SessionState
}

func NewAPI(baseURL string, session *SessionState) *API {
	return &API{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Session:    session,
	}
}

func (a *API) Register(ctx context.Context, email, password string) (string, error) {
	var out dto.MessageResponse
	err := a.do(ctx, http.MethodPost, "/auth/register", dto.RegisterRequest{Email: email, Password: password}, &out)
	return out.Message, err
}

// Login stores the returned token in the session state on success.
func (a *API) Login(ctx context.Context, email, password string) (string, error) {
	var out dto.TokenResponse
	if err := a.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Token, a.Session.SetToken(out.Token)
}

func (a *API) VerifyEmail(ctx context.Context, token string) (string, error) {
	var out dto.TokenResponse
	if err := a.do(ctx, http.MethodGet, "/auth/verify-email/"+token, nil, &out); err != nil {
		return "", err
	}
	return out.Token, a.Session.SetToken(out.Token)
}

func (a *API) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out dto.MessageResponse
	err := a.do(ctx, http.MethodPost, "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email}, &out)
	return out.Message, err
}

func (a *API) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var out dto.TokenResponse
	if err := a.do(ctx, http.MethodPost, "/auth/reset-password/"+token, dto.ResetPasswordRequest{Password: password}, &out); err != nil {
		return "", err
	}
	return out.Token, a.Session.SetToken(out.Token)
}

func (a *API) ListPosts(ctx context.Context) ([]dto.PostResponse, error) {
	var out []dto.PostResponse
	err := a.do(ctx, http.MethodGet, "/posts", nil, &out)
	return out, err
}

func (a *API) MyPosts(ctx context.Context) ([]dto.PostResponse, error) {
	var out []dto.PostResponse
	err := a.do(ctx, http.MethodGet, "/posts/myposts", nil, &out)
	return out, err
}

func (a *API) GetPost(ctx context.Context, id string) (*dto.PostResponse, error) {
	var out dto.PostResponse
	err := a.do(ctx, http.MethodGet, "/posts/"+id, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CreatePost(ctx context.Context, title, content string) (*dto.PostResponse, error) {
	var out dto.PostCreatedResponse
	err := a.do(ctx, http.MethodPost, "/posts", dto.CreatePostRequest{Title: title, Content: content}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Post, nil
}

func (a *API) UpdatePost(ctx context.Context, id string, patch dto.UpdatePostRequest) (*dto.PostResponse, error) {
	var out dto.PostCreatedResponse
	err := a.do(ctx, http.MethodPut, "/posts/"+id, patch, &out)
	if err != nil {
		return nil, err
	}
	return &out.Post, nil
}

func (a *API) DeletePost(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/posts/"+id, nil, nil)
}

func (a *API) LikePost(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPost, "/posts/"+id+"/like", nil, nil)
}

func (a *API) UnlikePost(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPost, "/posts/"+id+"/unlike", nil, nil)
}

func (a *API) AddComment(ctx context.Context, postID, text string) ([]dto.CommentResponse, error) {
	var out dto.CommentsResponse
	err := a.do(ctx, http.MethodPost, "/posts/"+postID+"/comments", dto.CreateCommentRequest{Text: text}, &out)
	return out.Comments, err
}

func (a *API) DeleteComment(ctx context.Context, postID, commentID string) error {
	return a.do(ctx, http.MethodDelete, "/posts/"+postID+"/comments/"+commentID, nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if a.Session != nil {
		if token := a.Session.Token(); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	response, err := a.HTTPClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		var failure dto.MessageResponse
		_ = json.NewDecoder(response.Body).Decode(&failure)
		if failure.Message == "" {
			failure.Message = http.StatusText(response.StatusCode)
		}
		return &APIError{Status: response.StatusCode, Message: failure.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(out)
}
