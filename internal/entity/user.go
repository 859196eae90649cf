package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"`
	Role         UserRole      `bson:"role" json:"role"`
	IsVerified   bool          `bson:"isVerified" json:"isVerified"`

	// Single-slot one-time tokens. Only the sha256 digest is stored;
	// issuing a new token overwrites the previous slot.
	VerificationTokenHash *string    `bson:"verificationTokenHash,omitempty" json:"-"`
	VerificationExpires   *time.Time `bson:"verificationExpires,omitempty" json:"-"`
	PasswordResetHash     *string    `bson:"passwordResetTokenHash,omitempty" json:"-"`
	PasswordResetExpires  *time.Time `bson:"passwordResetExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
