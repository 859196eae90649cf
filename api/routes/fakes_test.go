package routes

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkbytr/internal/entity"
	"inkbytr/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// In-memory stand-ins for the document store, shared by the end-to-end
// route tests.

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*entity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[bson.ObjectID]*entity.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id bson.ObjectID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByIDs(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := make(map[bson.ObjectID]entity.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			found[id] = *user
		}
	}
	return found, nil
}

func (r *memoryUserRepo) SetVerificationToken(_ context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[userID]
	user.VerificationTokenHash = &hash
	user.VerificationExpires = &expiresAt
	return nil
}

func (r *memoryUserRepo) SetResetToken(_ context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[userID]
	user.PasswordResetHash = &hash
	user.PasswordResetExpires = &expiresAt
	return nil
}

func (r *memoryUserRepo) ConsumeVerificationToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.VerificationTokenHash != nil && *user.VerificationTokenHash == hash &&
			user.VerificationExpires != nil && user.VerificationExpires.After(now) {
			user.IsVerified = true
			user.VerificationTokenHash = nil
			user.VerificationExpires = nil
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) ConsumeResetToken(_ context.Context, hash string, newPasswordHash string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.PasswordResetHash != nil && *user.PasswordResetHash == hash &&
			user.PasswordResetExpires != nil && user.PasswordResetExpires.After(now) {
			user.PasswordHash = newPasswordHash
			user.PasswordResetHash = nil
			user.PasswordResetExpires = nil
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

type memoryPostRepo struct {
	mu    sync.Mutex
	posts map[bson.ObjectID]*entity.Post
	seq   int
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{posts: make(map[bson.ObjectID]*entity.Post)}
}

func (r *memoryPostRepo) Create(_ context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []bson.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []entity.Comment{}
	}
	r.seq++
	post.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = copyPost(post)
	return nil
}

func (r *memoryPostRepo) FindByID(_ context.Context, id bson.ObjectID) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok {
		return copyPost(post), nil
	}
	return nil, nil
}

func (r *memoryPostRepo) List(_ context.Context) ([]entity.Post, error) {
	return r.collect(func(*entity.Post) bool { return true }), nil
}

func (r *memoryPostRepo) ListByAuthor(_ context.Context, authorID bson.ObjectID) ([]entity.Post, error) {
	return r.collect(func(p *entity.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *memoryPostRepo) collect(keep func(*entity.Post) bool) []entity.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := []entity.Post{}
	for _, post := range r.posts {
		if keep(post) {
			posts = append(posts, *copyPost(post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

func (r *memoryPostRepo) Update(_ context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = copyPost(post)
	return nil
}

func (r *memoryPostRepo) Delete(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *memoryPostRepo) AddLike(_ context.Context, postID, userID bson.ObjectID) (repository.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repository.UpdateOutcome{}, nil
	}
	if post.LikedBy(userID) {
		return repository.UpdateOutcome{Matched: true}, nil
	}
	post.Likes = append(post.Likes, userID)
	return repository.UpdateOutcome{Matched: true, Modified: true}, nil
}

func (r *memoryPostRepo) RemoveLike(_ context.Context, postID, userID bson.ObjectID) (repository.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repository.UpdateOutcome{}, nil
	}
	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return repository.UpdateOutcome{Matched: true, Modified: true}, nil
		}
	}
	return repository.UpdateOutcome{Matched: true}, nil
}

func (r *memoryPostRepo) AddComment(_ context.Context, postID bson.ObjectID, comment entity.Comment) (repository.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repository.UpdateOutcome{}, nil
	}
	post.Comments = append(post.Comments, comment)
	return repository.UpdateOutcome{Matched: true, Modified: true}, nil
}

func (r *memoryPostRepo) RemoveComment(_ context.Context, postID, commentID bson.ObjectID) (repository.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repository.UpdateOutcome{}, nil
	}
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			return repository.UpdateOutcome{Matched: true, Modified: true}, nil
		}
	}
	return repository.UpdateOutcome{Matched: true}, nil
}

func copyPost(post *entity.Post) *entity.Post {
	copied := *post
	copied.Likes = append([]bson.ObjectID{}, post.Likes...)
	copied.Comments = append([]entity.Comment{}, post.Comments...)
	return &copied
}

type capturingSender struct {
	mu     sync.Mutex
	tokens []string
}

func (s *capturingSender) SendVerificationEmail(_ context.Context, _ string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *capturingSender) SendPasswordResetEmail(_ context.Context, _ string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *capturingSender) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[len(s.tokens)-1]
}
