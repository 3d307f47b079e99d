// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account.
// Password and RefreshToken never leave the API: both are stripped from
// JSON output, and RefreshToken holds the single active session token.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	IsAdmin        bool               `bson:"isAdmin" json:"isAdmin"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	RefreshToken   string             `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}

// CommentAuthor is the author projection joined onto comment listings.
type CommentAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserImage string `json:"userImage,omitempty"`
}

// Author returns the projection of u used in comment listings.
func (u *User) Author() CommentAuthor {
	return CommentAuthor{
		ID:        u.ID.Hex(),
		Name:      u.Username,
		UserImage: u.ProfilePicture,
	}
}
