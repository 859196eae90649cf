package repository

import (
	"context"
	"errors"
	"time"

	"inkbytr/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UpdateOutcome reports what a conditional single-document update matched
// and changed, letting the service distinguish a missing post from a
// precondition that did not hold.
type UpdateOutcome struct {
	Matched  bool
	Modified bool
}

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id bson.ObjectID) (*entity.Post, error)
	List(ctx context.Context) ([]entity.Post, error)
	ListByAuthor(ctx context.Context, authorID bson.ObjectID) ([]entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id bson.ObjectID) error
	AddLike(ctx context.Context, postID, userID bson.ObjectID) (UpdateOutcome, error)
	RemoveLike(ctx context.Context, postID, userID bson.ObjectID) (UpdateOutcome, error)
	AddComment(ctx context.Context, postID bson.ObjectID, comment entity.Comment) (UpdateOutcome, error)
	RemoveComment(ctx context.Context, postID, commentID bson.ObjectID) (UpdateOutcome, error)
}

type postRepository struct {
	collection *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{collection: db.Collection("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []bson.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []entity.Comment{}
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *postRepository) FindByID(ctx context.Context, id bson.ObjectID) (*entity.Post, error) {
	var post entity.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]entity.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID bson.ObjectID) ([]entity.Post, error) {
	return r.find(ctx, bson.M{"author": authorID})
}

func (r *postRepository) find(ctx context.Context, filter bson.M) ([]entity.Post, error) {
	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []entity.Post{}
	for cursor.Next(ctx) {
		var post entity.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, cursor.Err()
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	post.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	return err
}

func (r *postRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddLike appends the user to the liker set only if absent, in one atomic
// update. Matched=false means no such post; Modified=false means the user
// had already liked it. The update carries nothing but the set mutation,
// otherwise ModifiedCount could not tell the two apart.
func (r *postRepository) AddLike(ctx context.Context, postID, userID bson.ObjectID) (UpdateOutcome, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	return outcomeFrom(result, err)
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID bson.ObjectID) (UpdateOutcome, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	return outcomeFrom(result, err)
}

func (r *postRepository) AddComment(ctx context.Context, postID bson.ObjectID, comment entity.Comment) (UpdateOutcome, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return outcomeFrom(result, err)
}

func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID bson.ObjectID) (UpdateOutcome, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	)
	return outcomeFrom(result, err)
}

func outcomeFrom(result *mongo.UpdateResult, err error) (UpdateOutcome, error) {
	if err != nil {
		return UpdateOutcome{}, err
	}
	return UpdateOutcome{
		Matched:  result.MatchedCount > 0,
		Modified: result.ModifiedCount > 0,
	}, nil
}
