package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkbytr/internal/entity"
	"inkbytr/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sentEmail struct {
	Kind  string
	Email string
	Token string
}

type recordingSender struct {
	mu   sync.Mutex
	Sent []sentEmail
	Err  error
}

func (s *recordingSender) SendVerificationEmail(_ context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, sentEmail{Kind: "verification", Email: email, Token: token})
	return nil
}

func (s *recordingSender) SendPasswordResetEmail(_ context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, sentEmail{Kind: "reset", Email: email, Token: token})
	return nil
}

func (s *recordingSender) last() sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Sent[len(s.Sent)-1]
}

// fakeUserRepo mirrors the document-store semantics in memory: consume
// operations match and clear in one step under the lock.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[bson.ObjectID]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id bson.ObjectID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
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

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]entity.User, error) {
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

func (r *fakeUserRepo) SetVerificationToken(_ context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[userID]
	user.VerificationTokenHash = &hash
	user.VerificationExpires = &expiresAt
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[userID]
	user.PasswordResetHash = &hash
	user.PasswordResetExpires = &expiresAt
	return nil
}

func (r *fakeUserRepo) ConsumeVerificationToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
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

func (r *fakeUserRepo) ConsumeResetToken(_ context.Context, hash string, newPasswordHash string, now time.Time) (*entity.User, error) {
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

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[bson.ObjectID]*entity.Post
	seq   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[bson.ObjectID]*entity.Post)}
}

func (r *fakePostRepo) Create(_ context.Context, post *entity.Post) error {
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
	// Distinct creation times keep the newest-first ordering stable.
	r.seq++
	post.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	post.UpdatedAt = post.CreatedAt
	copied := clonePost(post)
	r.posts[post.ID] = copied
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, id bson.ObjectID) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok {
		return clonePost(post), nil
	}
	return nil, nil
}

func (r *fakePostRepo) List(_ context.Context) ([]entity.Post, error) {
	return r.filter(func(*entity.Post) bool { return true }), nil
}

func (r *fakePostRepo) ListByAuthor(_ context.Context, authorID bson.ObjectID) ([]entity.Post, error) {
	return r.filter(func(p *entity.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) filter(keep func(*entity.Post) bool) []entity.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := []entity.Post{}
	for _, post := range r.posts {
		if keep(post) {
			posts = append(posts, *clonePost(post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

func (r *fakePostRepo) Update(_ context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.UpdatedAt = time.Now()
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID bson.ObjectID) (repository.UpdateOutcome, error) {
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

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID bson.ObjectID) (repository.UpdateOutcome, error) {
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

func (r *fakePostRepo) AddComment(_ context.Context, postID bson.ObjectID, comment entity.Comment) (repository.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return repository.UpdateOutcome{}, nil
	}
	post.Comments = append(post.Comments, comment)
	return repository.UpdateOutcome{Matched: true, Modified: true}, nil
}

func (r *fakePostRepo) RemoveComment(_ context.Context, postID, commentID bson.ObjectID) (repository.UpdateOutcome, error) {
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

func clonePost(post *entity.Post) *entity.Post {
	copied := *post
	copied.Likes = append([]bson.ObjectID{}, post.Likes...)
	copied.Comments = append([]entity.Comment{}, post.Comments...)
	return &copied
}
