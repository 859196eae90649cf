package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	PostTitleMinLen   = 5
	PostContentMinLen = 20
)

// Post is the aggregate root. Likes and comments live inside the post
// document, so every mutation is a single-document update and deleting a
// post takes its comments with it.
type Post struct {
	ID       bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title    string          `bson:"title" json:"title"`
	Content  string          `bson:"content" json:"content"`
	AuthorID bson.ObjectID   `bson:"author" json:"author"`
	Likes    []bson.ObjectID `bson:"likes" json:"likes"`
	Comments []Comment       `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Comment has identity but no life of its own: it is only ever addressed
// through its parent post.
type Comment struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Text      string        `bson:"text" json:"text"`
	UserID    bson.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

func (p *Post) LikedBy(userID bson.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Post) CommentByID(commentID bson.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
