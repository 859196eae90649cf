package dto

import (
	"time"

	"inkbytr/internal/entity"
)

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=5"`
	Content string `json:"content" validate:"required,min=20"`
}

// UpdatePostRequest is a partial patch: nil fields keep their prior value.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=5"`
	Content *string `json:"content" validate:"omitempty,min=20"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// AuthorRef mirrors the populated author projection: id plus email only.
type AuthorRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	User      AuthorRef `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Author    AuthorRef         `json:"author"`
	Likes     []string          `json:"likes"`
	Comments  []CommentResponse `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type PostCreatedResponse struct {
	Message string       `json:"message"`
	Post    PostResponse `json:"post"`
}

type CommentsResponse struct {
	Message  string            `json:"message"`
	Comments []CommentResponse `json:"comments"`
}

// PostResponseFromEntity builds the populated view. Authors absent from the
// lookup map render with an empty email rather than failing the read.
func PostResponseFromEntity(post *entity.Post, authors map[string]string) PostResponse {
	likes := make([]string, 0, len(post.Likes))
	for _, id := range post.Likes {
		likes = append(likes, id.Hex())
	}
	comments := make([]CommentResponse, 0, len(post.Comments))
	for _, comment := range post.Comments {
		comments = append(comments, CommentResponse{
			ID:   comment.ID.Hex(),
			Text: comment.Text,
			User: AuthorRef{
				ID:    comment.UserID.Hex(),
				Email: authors[comment.UserID.Hex()],
			},
			CreatedAt: comment.CreatedAt,
		})
	}
	return PostResponse{
		ID:      post.ID.Hex(),
		Title:   post.Title,
		Content: post.Content,
		Author: AuthorRef{
			ID:    post.AuthorID.Hex(),
			Email: authors[post.AuthorID.Hex()],
		},
		Likes:     likes,
		Comments:  comments,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
