package service

import (
	"context"
	"time"
	"unicode/utf8"

	"inkbytr/internal/dto"
	"inkbytr/internal/entity"
	"inkbytr/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
	clock Clock
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, clock Clock) *PostService {
	return &PostService{posts: posts, users: users, clock: clock}
}

func (s *PostService) Create(ctx context.Context, authorID bson.ObjectID, title, content string) (*dto.PostResponse, error) {
	if utf8.RuneCountInString(title) < entity.PostTitleMinLen ||
		utf8.RuneCountInString(content) < entity.PostContentMinLen {
		return nil, ErrValidation
	}

	post := &entity.Post{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.populateOne(ctx, post)
}

func (s *PostService) List(ctx context.Context) ([]dto.PostResponse, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, posts)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID bson.ObjectID) ([]dto.PostResponse, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, posts)
}

func (s *PostService) GetByID(ctx context.Context, id bson.ObjectID) (*dto.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return s.populateOne(ctx, post)
}

// Update applies a partial patch. Only the author may edit; admins do not
// get edit rights, only delete rights.
func (s *PostService) Update(ctx context.Context, id, requesterID bson.ObjectID, patch dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != requesterID {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		if utf8.RuneCountInString(*patch.Title) < entity.PostTitleMinLen {
			return nil, ErrValidation
		}
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		if utf8.RuneCountInString(*patch.Content) < entity.PostContentMinLen {
			return nil, ErrValidation
		}
		post.Content = *patch.Content
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.populateOne(ctx, post)
}

// Delete removes the post and, because comments are embedded, every
// comment with it.
func (s *PostService) Delete(ctx context.Context, id, requesterID bson.ObjectID, requesterRole entity.UserRole) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != requesterID && requesterRole != entity.UserRoleAdmin {
		return ErrForbidden
	}
	return s.posts.Delete(ctx, id)
}

// Like is deliberately not idempotent: a repeat like is a Conflict the
// client is expected to avoid by tracking local like state. The set-add
// itself is atomic, so concurrent duplicates cannot corrupt the set.
func (s *PostService) Like(ctx context.Context, postID, userID bson.ObjectID) error {
	outcome, err := s.posts.AddLike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !outcome.Matched {
		return ErrPostNotFound
	}
	if !outcome.Modified {
		return ErrAlreadyLiked
	}
	return nil
}

func (s *PostService) Unlike(ctx context.Context, postID, userID bson.ObjectID) error {
	outcome, err := s.posts.RemoveLike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !outcome.Matched {
		return ErrPostNotFound
	}
	if !outcome.Modified {
		return ErrNotLiked
	}
	return nil
}

// AddComment returns the full comment list, not just the appended item, so
// the client cache can replace its copy wholesale with populated authors.
func (s *PostService) AddComment(ctx context.Context, postID, authorID bson.ObjectID, text string) ([]dto.CommentResponse, error) {
	comment := entity.Comment{
		ID:        bson.NewObjectID(),
		Text:      text,
		UserID:    authorID,
		CreatedAt: s.now(),
	}
	outcome, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}
	if !outcome.Matched {
		return nil, ErrPostNotFound
	}

	view, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return view.Comments, nil
}

func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, requesterID bson.ObjectID, requesterRole entity.UserRole) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	comment := post.CommentByID(commentID)
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.UserID != requesterID && requesterRole != entity.UserRoleAdmin {
		return ErrForbidden
	}

	outcome, err := s.posts.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if !outcome.Matched {
		return ErrPostNotFound
	}
	return nil
}

func (s *PostService) populateOne(ctx context.Context, post *entity.Post) (*dto.PostResponse, error) {
	views, err := s.populate(ctx, []entity.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// populate resolves author and commenter emails in one batch lookup,
// standing in for a join the document store does not have.
func (s *PostService) populate(ctx context.Context, posts []entity.Post) ([]dto.PostResponse, error) {
	seen := map[bson.ObjectID]struct{}{}
	ids := []bson.ObjectID{}
	for i := range posts {
		if _, ok := seen[posts[i].AuthorID]; !ok {
			seen[posts[i].AuthorID] = struct{}{}
			ids = append(ids, posts[i].AuthorID)
		}
		for _, comment := range posts[i].Comments {
			if _, ok := seen[comment.UserID]; !ok {
				seen[comment.UserID] = struct{}{}
				ids = append(ids, comment.UserID)
			}
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors := make(map[string]string, len(users))
	for id, user := range users {
		authors[id.Hex()] = user.Email
	}

	views := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		views = append(views, dto.PostResponseFromEntity(&posts[i], authors))
	}
	return views, nil
}

func (s *PostService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}
