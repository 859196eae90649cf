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

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]entity.User, error)
	SetVerificationToken(ctx context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error
	SetResetToken(ctx context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	ConsumeResetToken(ctx context.Context, hash string, newPasswordHash string, now time.Time) (*entity.User, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection("users")}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id bson.ObjectID) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]entity.User, error) {
	users := make(map[bson.ObjectID]entity.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var user entity.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, cursor.Err()
}

func (r *userRepository) SetVerificationToken(ctx context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error {
	_, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"verificationTokenHash": hash,
			"verificationExpires":   expiresAt,
			"updatedAt":             time.Now(),
		},
	})
	return err
}

func (r *userRepository) SetResetToken(ctx context.Context, userID bson.ObjectID, hash string, expiresAt time.Time) error {
	_, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"passwordResetTokenHash": hash,
			"passwordResetExpires":   expiresAt,
			"updatedAt":              time.Now(),
		},
	})
	return err
}

// ConsumeVerificationToken matches the hash with an unexpired slot, marks
// the user verified and clears the slot in one document update. Two
// concurrent presentations of the same token cannot both match.
func (r *userRepository) ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{
			"verificationTokenHash": hash,
			"verificationExpires":   bson.M{"$gt": now},
		},
		bson.M{
			"$set":   bson.M{"isVerified": true, "updatedAt": now},
			"$unset": bson.M{"verificationTokenHash": "", "verificationExpires": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ConsumeResetToken(ctx context.Context, hash string, newPasswordHash string, now time.Time) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{
			"passwordResetTokenHash": hash,
			"passwordResetExpires":   bson.M{"$gt": now},
		},
		bson.M{
			"$set":   bson.M{"passwordHash": newPasswordHash, "updatedAt": now},
			"$unset": bson.M{"passwordResetTokenHash": "", "passwordResetExpires": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
